package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/catalog/internal/catalog"
	"github.com/zjrosen/catalog/internal/flags"
	"github.com/zjrosen/catalog/internal/presentation"
	"github.com/zjrosen/catalog/internal/templates"
)

var (
	listType   string
	listSearch string
	listTags   []string
	listJSON   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List element templates",
	Long: `List the element templates found in the template directories and the
builtin catalog.

Examples:
  # Everything
  catalog list

  # Templates for service tasks mentioning "payment"
  catalog list --type bpmn:ServiceTask --search payment

  # Filter by tag (repeatable, any tag matches)
  catalog list --tag Payments --tag Connectors

  # Machine readable
  catalog list --json | jq '.[].id'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		list, err := rt.loader.Load(cmd.Context())
		if err != nil {
			return err
		}
		list = filterTemplates(rt.engine(), list, listType, catalog.FilterState{Search: listSearch, Tags: listTags})

		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		if listJSON {
			return formatter.FormatTemplates(list)
		}
		return formatter.FormatTemplateTable(list)
	},
}

func init() {
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "Only templates applicable to this element type (e.g., bpmn:ServiceTask)")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Case-insensitive substring of the template name")
	listCmd.Flags().StringArrayVar(&listTags, "tag", nil, "Filter by tag (can be repeated)")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print JSON instead of a table")
	rootCmd.AddCommand(listCmd)
}

func (r *runtime) engine() catalog.Engine {
	var opts []catalog.EngineOption
	if r.flags.Enabled(flags.FlagAllTags) {
		opts = append(opts, catalog.WithAllTags())
	}
	return catalog.NewEngine(opts...)
}

// filterTemplates narrows list to elementType (when set) and then applies f.
func filterTemplates(engine catalog.Engine, list []templates.ElementTemplate, elementType string, f catalog.FilterState) []templates.ElementTemplate {
	if elementType != "" {
		applicable := make([]templates.ElementTemplate, 0, len(list))
		for _, t := range list {
			if t.AppliesToType(elementType) {
				applicable = append(applicable, t)
			}
		}
		list = applicable
	}
	return engine.Filter(list, f)
}
