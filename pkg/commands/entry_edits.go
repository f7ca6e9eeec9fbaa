package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"tableflip.dev/donelog/pkg/commands/options"
	"tableflip.dev/donelog/pkg/printers"
)

func addDone(topLevel *cobra.Command) {
	do := &options.DateOptions{}
	var undo bool

	cmd := &cobra.Command{
		Use:   "done [id]",
		Short: "Mark an entry completed",
		Example: `
donelog done 171dff69
donelog done 171dff69 --undo
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, p, err := loadService()
			if err != nil {
				return err
			}
			date, err := do.Date(p.Location())
			if err != nil {
				return err
			}
			id, err := resolveEntryID(p, date, args[0])
			if err != nil {
				return err
			}
			if _, err := svc.SetDone(context.Background(), date, id, !undo); err != nil {
				return err
			}
			pp := printers.PrettyPrint{}
			pp.Day(p.ReadDay(date))
			return nil
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "Clear the completion flag instead.")
	options.AddDateArgs(cmd, do)
	topLevel.AddCommand(cmd)
}

func addEdit(topLevel *cobra.Command) {
	do := &options.DateOptions{}

	cmd := &cobra.Command{
		Use:   "edit [id] [text]",
		Short: "Replace the text of an entry",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, p, err := loadService()
			if err != nil {
				return err
			}
			date, err := do.Date(p.Location())
			if err != nil {
				return err
			}
			id, err := resolveEntryID(p, date, args[0])
			if err != nil {
				return err
			}
			text := strings.Join(args[1:], " ")
			if _, err := svc.EditEntry(context.Background(), date, id, text); err != nil {
				return err
			}
			pp := printers.PrettyPrint{}
			pp.Day(p.ReadDay(date))
			return nil
		},
	}

	options.AddDateArgs(cmd, do)
	topLevel.AddCommand(cmd)
}

func addRm(topLevel *cobra.Command) {
	do := &options.DateOptions{}

	cmd := &cobra.Command{
		Use:   "rm [id]",
		Short: "Remove an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, p, err := loadService()
			if err != nil {
				return err
			}
			date, err := do.Date(p.Location())
			if err != nil {
				return err
			}
			id, err := resolveEntryID(p, date, args[0])
			if err != nil {
				return err
			}
			if err := svc.DeleteEntry(context.Background(), date, id); err != nil {
				return err
			}
			pp := printers.PrettyPrint{}
			pp.Day(p.ReadDay(date))
			return nil
		},
	}

	options.AddDateArgs(cmd, do)
	topLevel.AddCommand(cmd)
}

func addMood(topLevel *cobra.Command) {
	do := &options.DateOptions{}

	cmd := &cobra.Command{
		Use:       "mood [value]",
		Short:     "Set how the day felt (great, good, ok, low, bad)",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"great", "good", "ok", "low", "bad"},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, p, err := loadService()
			if err != nil {
				return err
			}
			date, err := do.Date(p.Location())
			if err != nil {
				return err
			}
			d, err := svc.SetMood(context.Background(), date, args[0])
			if err != nil {
				return err
			}
			pp := printers.PrettyPrint{}
			pp.Day(d)
			return nil
		},
	}

	options.AddDateArgs(cmd, do)
	topLevel.AddCommand(cmd)
}

func addNote(topLevel *cobra.Command) {
	do := &options.DateOptions{}

	cmd := &cobra.Command{
		Use:   "note [text]",
		Short: "Set the day's free note",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, p, err := loadService()
			if err != nil {
				return err
			}
			date, err := do.Date(p.Location())
			if err != nil {
				return err
			}
			d, err := svc.SetNote(context.Background(), date, strings.Join(args, " "))
			if err != nil {
				return err
			}
			pp := printers.PrettyPrint{}
			pp.Day(d)
			return nil
		},
	}

	options.AddDateArgs(cmd, do)
	topLevel.AddCommand(cmd)
}
