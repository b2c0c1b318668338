package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/catalog/internal/catalog"
	"github.com/zjrosen/catalog/internal/presentation"
)

var (
	tagsType string
	tagsJSON bool
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Show template counts per tag",
	Long: `Show how many templates carry each tag, sorted by tag name.

Only the first tag of a template (its catalog) is counted unless the
all-tags flag is enabled.`,
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
		engine := rt.engine()
		list = filterTemplates(engine, list, tagsType, catalog.FilterState{})
		counts := presentation.FromTagCounts(engine.TagCounts(list))

		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		if tagsJSON {
			return formatter.FormatJSON(counts)
		}
		return formatter.FormatTagTable(counts)
	},
}

func init() {
	tagsCmd.Flags().StringVarP(&tagsType, "type", "t", "", "Only count templates applicable to this element type")
	tagsCmd.Flags().BoolVar(&tagsJSON, "json", false, "Print JSON instead of a table")
	rootCmd.AddCommand(tagsCmd)
}
