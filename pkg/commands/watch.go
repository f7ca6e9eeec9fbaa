package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func addWatch(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream change events from the journal on disk",
		Example: `
donelog watch
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, p, err := loadService()
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(),
				os.Interrupt, syscall.SIGTERM)
			defer cancel()

			events, err := p.Watch(ctx)
			if err != nil {
				return err
			}
			for ev := range events {
				if ev.Date != "" {
					fmt.Printf("%s %s\n", ev.Kind, ev.Date)
				} else {
					fmt.Println(ev.Kind)
				}
			}
			return nil
		},
	}

	topLevel.AddCommand(cmd)
}
