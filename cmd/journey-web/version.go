package main

import (
	"fmt"

	"github.com/joestump/journey-web/internal/build"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "journey-web %s (commit %s, branch %s)\n",
				build.Version, build.Commit, build.Branch)
		},
	}
}
