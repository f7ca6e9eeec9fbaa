package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/donelog/pkg/commands/options"
	"tableflip.dev/donelog/pkg/printers"
	"tableflip.dev/donelog/pkg/tag"
)

func addAdd(topLevel *cobra.Command) {
	do := &options.DateOptions{}

	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Record an accomplishment for the day",
		Example: `
donelog add fixed the flaky build #work
donelog add "morning run" --date=2026-08-30
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, p, err := loadService()
			if err != nil {
				return err
			}
			date, err := do.Date(p.Location())
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			if _, err := svc.AddEntry(context.Background(), date, text); err != nil {
				return err
			}

			d := p.ReadDay(date)
			pp := printers.PrettyPrint{}
			pp.Day(d)
			pp.Tags(tag.Extract(text, p.ReadAliases()))
			return nil
		},
	}

	options.AddDateArgs(cmd, do)
	topLevel.AddCommand(cmd)
}
