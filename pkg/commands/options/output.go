package options

import "github.com/spf13/cobra"

// OutputOptions captures shared display flags.
type OutputOptions struct {
	ShowID bool
	All    bool
}

// AddShowIDArgs registers the entry-id display flag.
func AddShowIDArgs(cmd *cobra.Command, o *OutputOptions) {
	cmd.Flags().BoolVarP(&o.ShowID, "id", "i", false,
		"Show entry ids.")
}

// AddAllDaysArg registers the all-days flag.
func AddAllDaysArg(cmd *cobra.Command, o *OutputOptions) {
	cmd.Flags().BoolVar(&o.All, "all", false,
		"Show every recorded day.")
}
