package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/catalog/internal/host"
	"github.com/zjrosen/catalog/internal/log"
)

var applyCmd = &cobra.Command{
	Use:   "apply <element-id> <template-id>",
	Short: "Apply an element template to a workspace element",
	Long: `Apply an element template to an element of the workspace and save it.

The template must apply to the element type. The workspace file keeps its
comments and formatting.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		elementID, templateID := args[0], args[1]
		tmpl, err := findTemplate(cmd, rt, templateID)
		if err != nil {
			return err
		}

		rt.host.Start()
		if err := rt.host.Select(elementID); err != nil {
			return err
		}
		if _, err := rt.host.TriggerAction(cmd.Context(), host.ActionApplyElementTemplate, tmpl); err != nil {
			return err
		}

		log.Info(log.CatHost, "Applied from command line", "element", elementID, "template", tmpl.ID)
		where := rt.workspace.Path()
		if where == "" {
			where = "sample workspace, not saved"
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "Applied %s to %s (%s)\n", tmpl.Name, elementID, where)
		return err
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
}
