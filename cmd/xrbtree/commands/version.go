package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set by -ldflags "-X github.com/benz9527/xrbtree/cmd/xrbtree/commands.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "xrbtree %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}
