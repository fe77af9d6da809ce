package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/unmock/unmock-go/config"
	"github.com/unmock/unmock-go/mock"
	"github.com/unmock/unmock-go/service"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long: `Validate the unmock configuration file.

Checks:
  - YAML syntax is valid
  - Ignore rules compile
  - Every declared endpoint compiles and registers

Examples:
  unmock validate
  unmock validate --config ./testdata/unmock.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Validating %s...\n\n", cfgFile)

	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		fmt.Fprintf(out, "  %s Config file exists\n", crossMark)
		return fmt.Errorf("config file not found: %s", cfgFile)
	}
	fmt.Fprintf(out, "  %s Config file exists\n", checkMark)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(out, "  %s Config valid\n", crossMark)
		return fmt.Errorf("config error: %w", err)
	}
	fmt.Fprintf(out, "  %s Config valid\n", checkMark)
	fmt.Fprintf(out, "  %s Fingerprint %s with %d ignore rule(s)\n", checkMark, cfg.Fingerprint.Version, len(cfg.Fingerprint.Ignore))

	store, err := register(cfg)
	if err != nil {
		fmt.Fprintf(out, "  %s Endpoints registered\n", crossMark)
		return err
	}
	fmt.Fprintf(out, "  %s Endpoints registered: %d across %d service(s)\n", checkMark, store.Len(), len(cfg.Services))
	return nil
}

func register(cfg *config.Config) (*service.Store, error) {
	logger := config.NewLogger(cfg.Logging, os.Stderr)
	store := service.New(service.WithLogger(logger))
	if _, err := cfg.Register(store, mock.WithLogger(logger)); err != nil {
		return nil, err
	}
	return store, nil
}
