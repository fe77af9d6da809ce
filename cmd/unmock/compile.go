package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unmock/unmock-go/canonicaljson"
	"github.com/unmock/unmock-go/schema"
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a dynamic value document to JSON Schema",
	Long: `Compile reads a YAML or JSON document and prints the JSON Schema it
lowers to. Mappings carrying "$dynamic" are schema nodes; everything else
is literal data.

Examples:
  unmock compile response.yaml
  echo '{"sign": {"$dynamic": true, "type": "string"}}' | unmock compile --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompile,
}

var (
	compileFormat string
	compileIndent bool
)

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVar(&compileFormat, "format", "", "input format: yaml or json (default: from extension, yaml for stdin)")
	compileCmd.Flags().BoolVar(&compileIndent, "indent", false, "indent the output")
}

func runCompile(cmd *cobra.Command, args []string) error {
	data, name, err := readInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	format := strings.ToLower(compileFormat)
	if format == "" {
		format = "yaml"
		if strings.EqualFold(filepath.Ext(name), ".json") {
			format = "json"
		}
	}

	var v schema.Value
	switch format {
	case "json":
		v, err = schema.DecodeJSON(data)
	case "yaml", "yml":
		v, err = schema.DecodeYAML(data)
	default:
		return fmt.Errorf("unknown format %q", compileFormat)
	}
	if err != nil {
		return err
	}

	compiled, err := schema.Compile(v)
	if err != nil {
		return err
	}
	out, err := canonicaljson.Marshal(compiled)
	if err != nil {
		return err
	}
	if compileIndent {
		var buf bytes.Buffer
		if err := json.Indent(&buf, out, "", "  "); err != nil {
			return err
		}
		out = buf.Bytes()
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
