package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/donelog/pkg/printers"
	"tableflip.dev/donelog/pkg/record"
	"tableflip.dev/donelog/pkg/suggest"
)

func addTags(topLevel *cobra.Command) {
	var limit int

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Show ranked tag statistics across all days",
		Example: `
donelog tags
donelog tags --limit 25
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, err := loadService()
			if err != nil {
				return err
			}
			ctx := context.Background()
			days := p.ScanAll(ctx)
			stats := suggest.Rank(days, p.ReadAliases(), record.Today(p.Location()))
			if limit > 0 && len(stats) > limit {
				stats = stats[:limit]
			}
			pp := printers.PrettyPrint{}
			pp.TagTable(stats)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Cap the number of rows (0 = all).")
	topLevel.AddCommand(cmd)
}

func addSuggest(topLevel *cobra.Command) {
	var limit int

	cmd := &cobra.Command{
		Use:   "suggest [typed]",
		Short: "Show tag completions for a partial token",
		Example: `
donelog suggest
donelog suggest he
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, err := loadService()
			if err != nil {
				return err
			}
			typed := ""
			if len(args) == 1 {
				typed = args[0]
			}
			ctx := context.Background()
			days := p.ScanAll(ctx)
			stats := suggest.Rank(days, p.ReadAliases(), record.Today(p.Location()))
			pp := printers.PrettyPrint{}
			pp.Suggestions(suggest.Filter(stats, typed, limit))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", suggest.DefaultLimit, "Cap the number of suggestions.")
	topLevel.AddCommand(cmd)
}
