package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unmock/unmock-go/canonicaljson"
	"github.com/unmock/unmock-go/fingerprint"
)

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint [file]",
	Short: "Fingerprint a request",
	Long: `Fingerprint reads a request as JSON and prints its 8 character
fingerprint. Ignore rules come from --ignore tokens when given, otherwise
from the fingerprint.ignore section of the configuration.

Request fields: body, headers, hostname, method, path, story, user_id and
the optional signature.

Examples:
  unmock fingerprint request.json
  unmock fingerprint --ignore user_id --ignore 'headers=^X-Request-Id$' request.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFingerprint,
}

var (
	fingerprintIgnore  []string
	fingerprintExplain bool
)

func init() {
	rootCmd.AddCommand(fingerprintCmd)

	fingerprintCmd.Flags().StringArrayVar(&fingerprintIgnore, "ignore", nil, "ignore token, e.g. user_id or headers=^X-Id$ (repeatable)")
	fingerprintCmd.Flags().BoolVar(&fingerprintExplain, "explain", false, "also print the desensitized request that was hashed")
}

func runFingerprint(cmd *cobra.Command, args []string) error {
	data, _, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}
	var req fingerprint.Request
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("parse request: %w", err)
	}

	var rules fingerprint.Rules
	if len(fingerprintIgnore) > 0 {
		rules, err = fingerprint.ParseTokens(fingerprintIgnore)
		if err != nil {
			return err
		}
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rules = cfg.Fingerprint.Ignore
	}

	h, err := fingerprint.Compile(rules...)
	if err != nil {
		return err
	}
	fp, err := h.Sum(req)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, fp)

	if fingerprintExplain {
		w, err := h.Desensitize(req)
		if err != nil {
			return err
		}
		b, err := canonicaljson.Marshal(w)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(b))
	}
	return nil
}
