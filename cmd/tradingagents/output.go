package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func addOutputFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", formatJSON, "Output format: json, yaml")
}

// write renders v in the command's --output format. YAML goes through the
// JSON encoding so both formats share field names.
func write(cmd *cobra.Command, v any) error {
	format, _ := cmd.Flags().GetString("output")
	return render(cmd.OutOrStdout(), format, v)
}

func render(w io.Writer, format string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	switch strings.ToLower(format) {
	case "", formatJSON:
		_, err = fmt.Fprintln(w, string(raw))
		return err
	case formatYAML:
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return fmt.Errorf("encoding output: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (want json or yaml)", format)
	}
}
