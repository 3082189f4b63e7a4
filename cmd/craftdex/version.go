package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Populated at build time via -ldflags.
var (
	version   = "1.2.0"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "craftdex %s\n", version)
		fmt.Fprintf(cmd.OutOrStdout(), "Build Time: %s\n", buildTime)
		fmt.Fprintf(cmd.OutOrStdout(), "Git Commit: %s\n", gitCommit)
		fmt.Fprintf(cmd.OutOrStdout(), "Go Version: %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
