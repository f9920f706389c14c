// Package commands implements the xrbtree CLI subcommands.
package commands

import (
	"github.com/spf13/cobra"
)

const (
	configFlag  = "config"
	configUsage = "config file (default is .xrbtree.yaml in . or $HOME)"
)

type rootOptions struct {
	configPath string
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "xrbtree",
		Short: "xrbtree - Red-black tree ordered key container toolbox",
		Long: `xrbtree loads keys into a red-black tree and checks its invariants.

Commands:
  run       Bulk load, remove and find keys, optionally dump the tree
  stress    Randomized tree operations checked against an oracle
  version   Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, configFlag, "", configUsage)

	rootCmd.AddCommand(newRunCommand(opts))
	rootCmd.AddCommand(newStressCommand(opts))
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}
