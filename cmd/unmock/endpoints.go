package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unmock/unmock-go/canonicaljson"
)

var endpointsCmd = &cobra.Command{
	Use:   "endpoints",
	Short: "List the endpoints declared in configuration",
	Long: `Endpoints registers every configured service and prints one line per
endpoint definition: its key followed by the compiled response schema.
With --json each definition is printed as a JSON object instead.`,
	RunE: runEndpoints,
}

var endpointsJSON bool

func init() {
	rootCmd.AddCommand(endpointsCmd)

	endpointsCmd.Flags().BoolVar(&endpointsJSON, "json", false, "print definitions as JSON lines")
}

func runEndpoints(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := register(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, def := range store.List() {
		if endpointsJSON {
			b, err := json.Marshal(def)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			continue
		}
		b, err := canonicaljson.Marshal(def.Response)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", def.Key(), b)
	}
	return nil
}
