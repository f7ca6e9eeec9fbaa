package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/donelog/pkg/commands/options"
	"tableflip.dev/donelog/pkg/printers"
)

func addGet(topLevel *cobra.Command) {
	do := &options.DateOptions{}
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show recorded days",
		Example: `
donelog get
donelog get --date=2026-08-30
donelog get --all
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, p, err := loadService()
			if err != nil {
				return err
			}
			ctx := context.Background()
			pp := printers.PrettyPrint{ShowID: oo.ShowID}

			if oo.All {
				days, err := svc.Days(ctx)
				if err != nil {
					return err
				}
				if len(days) == 0 {
					pp.Entries()
					return nil
				}
				for _, d := range days {
					pp.Day(d)
				}
				return nil
			}

			date, err := do.Date(p.Location())
			if err != nil {
				return err
			}
			d, err := svc.Day(ctx, date)
			if err != nil {
				return err
			}
			pp.Day(d)
			return nil
		},
	}

	options.AddDateArgs(cmd, do)
	options.AddAllDaysArg(cmd, oo)
	options.AddShowIDArgs(cmd, oo)
	topLevel.AddCommand(cmd)
}
