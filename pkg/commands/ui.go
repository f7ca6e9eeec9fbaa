package commands

import (
	"context"

	"github.com/spf13/cobra"

	"tableflip.dev/donelog/pkg/tui/compose"
)

func addUI(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive capture screen",
		Example: `
donelog ui
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, p, err := loadService()
			if err != nil {
				return err
			}
			return compose.Run(context.Background(), svc, p)
		},
	}

	topLevel.AddCommand(cmd)
}
