package main

import (
	"github.com/spf13/cobra"

	"github.com/handiism/shelfsync/internal/match"
	"github.com/handiism/shelfsync/internal/model"
	"github.com/handiism/shelfsync/internal/report"
)

func newMatchDebugCommand(ctx *commandContext) *cobra.Command {
	var a, b model.CatalogItem
	var trace bool

	cmd := &cobra.Command{
		Use:   "match-debug",
		Short: "Explain how two books would be matched",
		Long: `Normalize two title/author pairs offline and show every comparison key and
the tier, if any, that would pair them. Use --trace to see the result of each
normalization step.`,
		Example: `  shelfsync match-debug \
    --title-a "Steelheart: A Reckoners Novel" --author-a "Brandon Sanderson" \
    --title-b "Steelheart (Unabridged)" --author-b "Sanderson, Brandon"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			a.ID, b.ID = "a", "b"
			ex := match.New(settings.Normalizer()).Explain(a, b)
			return report.WriteExplanation(cmd.OutOrStdout(), ex, trace)
		},
	}

	cmd.Flags().StringVar(&a.RawTitle, "title-a", "", "Title of book A")
	cmd.Flags().StringVar(&a.RawAuthor, "author-a", "", "Author of book A")
	cmd.Flags().StringVar(&b.RawTitle, "title-b", "", "Title of book B")
	cmd.Flags().StringVar(&b.RawAuthor, "author-b", "", "Author of book B")
	cmd.Flags().Float64Var(&a.DurationSeconds, "duration-a", 0, "Duration of book A in seconds")
	cmd.Flags().Float64Var(&b.DurationSeconds, "duration-b", 0, "Duration of book B in seconds")
	cmd.Flags().Int64Var(&a.SizeBytes, "size-a", 0, "Size of book A in bytes")
	cmd.Flags().Int64Var(&b.SizeBytes, "size-b", 0, "Size of book B in bytes")
	cmd.Flags().BoolVar(&trace, "trace", false, "Print every normalization step")
	for _, name := range []string{"title-a", "author-a", "title-b", "author-b"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
