package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unmock/unmock-go/config"
)

var (
	// Global flags
	cfgFile string
)

const (
	checkMark = "✓"
	crossMark = "✗"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "unmock",
	Short: "Compile mock response schemas and fingerprint requests",
	Long: `unmock turns mock response descriptions into JSON Schema and computes
request fingerprints used to key recorded snapshots.

Commands:
  unmock compile      # Compile a dynamic value document to JSON Schema
  unmock fingerprint  # Fingerprint a request
  unmock validate     # Validate configuration
  unmock endpoints    # List the endpoints declared in configuration`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "unmock.yaml", "config file path")
}

// loadConfig loads the config file when present and falls back to UNMOCK_*
// environment variables.
func loadConfig() (*config.Config, error) {
	return config.LoadWithFallback(cfgFile)
}
