package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unmock/unmock-go/fingerprint"
)

var (
	// Set via ldflags at build time
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "unmock %s\n", version)
		fmt.Fprintf(out, "  commit:       %s\n", commit)
		fmt.Fprintf(out, "  built:        %s\n", buildDate)
		fmt.Fprintf(out, "  fingerprint:  %s\n", fingerprint.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
