package commands

import (
	"context"
	"sort"

	"github.com/spf13/cobra"

	"tableflip.dev/donelog/pkg/printers"
)

func addAlias(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "alias",
		Short: "Manage the tag alias dictionary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addAliasList(cmd)
	addAliasSet(cmd)
	addAliasRm(cmd)
	addAliasReset(cmd)

	topLevel.AddCommand(cmd)
}

func printAliases(dict map[string]string) {
	keys := make([]string, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pp := printers.PrettyPrint{}
	pp.AliasTable(dict, keys)
}

func addAliasList(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show all aliases",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadService()
			if err != nil {
				return err
			}
			dict, err := svc.Aliases(context.Background())
			if err != nil {
				return err
			}
			printAliases(dict)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addAliasSet(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "set [alias] [tag]",
		Short: "Map an alias spelling to a canonical tag",
		Example: `
donelog alias set health 健康
donelog alias set jog health
`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadService()
			if err != nil {
				return err
			}
			dict, err := svc.SetAlias(context.Background(), args[0], args[1])
			if err != nil {
				return err
			}
			printAliases(dict)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addAliasRm(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "rm [alias]",
		Short: "Remove one alias (removing the last restores the defaults)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadService()
			if err != nil {
				return err
			}
			dict, err := svc.RemoveAlias(context.Background(), args[0])
			if err != nil {
				return err
			}
			printAliases(dict)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}

func addAliasReset(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the built-in default aliases",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := loadService()
			if err != nil {
				return err
			}
			dict, err := svc.ResetAliases(context.Background())
			if err != nil {
				return err
			}
			printAliases(dict)
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}
