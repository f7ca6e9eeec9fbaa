// Package options defines shared flag helpers for CLI commands.
package options

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/donelog/pkg/record"
)

// DateOptions selects the calendar day a command operates on.
type DateOptions struct {
	OnString string
}

// AddDateArgs wires the date selection flag on the provided command.
func AddDateArgs(cmd *cobra.Command, o *DateOptions) {
	cmd.Flags().StringVar(&o.OnString, "date", "",
		`Specify the day, example: --date="2026-08-28". Defaults to today.`)
}

// Date resolves the selected day key in the reference zone.
func (o *DateOptions) Date(loc *time.Location) (string, error) {
	if o.OnString == "" {
		return record.Today(loc), nil
	}
	if _, err := record.ParseDateKey(o.OnString); err != nil {
		return "", err
	}
	return o.OnString, nil
}
