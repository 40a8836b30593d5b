package main

import (
	"fmt"
	"runtime"

	"github.com/colorfulnotion/intcode/common"
	"github.com/spf13/cobra"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "intcode %s (commit %s, built %s, %s)\n",
				Version, common.GetCommitHash(), BuildTime, runtime.Version())
		},
	}
}
