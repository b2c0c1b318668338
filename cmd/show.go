package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/catalog/internal/presentation"
	"github.com/zjrosen/catalog/internal/templates"
	"github.com/zjrosen/catalog/internal/ui/markdown"
)

const showWidth = 80

var showCmd = &cobra.Command{
	Use:   "show <template-id>",
	Short: "Describe an element template",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		tmpl, err := findTemplate(cmd, rt, args[0])
		if err != nil {
			return err
		}

		renderer, err := markdown.New(showWidth, rt.cfg.UI.MarkdownStyle)
		if err != nil {
			return err
		}
		out, err := renderer.Render(presentation.TemplateMarkdown(tmpl))
		if err != nil {
			return fmt.Errorf("rendering %s: %w", tmpl.ID, err)
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

// findTemplate looks id up and, when it is unknown, names the closest ids.
func findTemplate(cmd *cobra.Command, rt *runtime, id string) (templates.ElementTemplate, error) {
	tmpl, err := rt.loader.Find(cmd.Context(), id)
	if !errors.Is(err, templates.ErrTemplateNotFound) {
		return tmpl, err
	}
	all, loadErr := rt.loader.Load(cmd.Context())
	if loadErr != nil {
		return tmpl, err
	}
	if suggestions := templates.Suggest(all, id, 3); len(suggestions) > 0 {
		return tmpl, fmt.Errorf("%w (did you mean %s?)", err, strings.Join(suggestions, ", "))
	}
	return tmpl, err
}
