// Package commands assembles the donelog CLI.
package commands

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tableflip.dev/donelog/pkg/app"
	"tableflip.dev/donelog/pkg/store"
)

var verbose bool

// New builds the root command with all subcommands attached.
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "donelog",
		Short: "Record what you got done today, one day at a time.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging.")

	AddCommands(cmd)
	return cmd
}

// AddCommands registers every subcommand on the top level.
func AddCommands(topLevel *cobra.Command) {
	addAdd(topLevel)
	addGet(topLevel)
	addDone(topLevel)
	addEdit(topLevel)
	addRm(topLevel)
	addMood(topLevel)
	addNote(topLevel)
	addTags(topLevel)
	addSuggest(topLevel)
	addAlias(topLevel)
	addUI(topLevel)
	addWatch(topLevel)
	addVersion(topLevel)
}

func logger() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// loadService builds the persistence and service most commands share.
func loadService() (*app.Service, store.Persistence, error) {
	p, err := store.Load(nil, store.WithLogger(logger()))
	if err != nil {
		return nil, nil, err
	}
	return &app.Service{Persistence: p}, p, nil
}
