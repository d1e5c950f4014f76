package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"ompscope/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show ompscope build information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	out := cmd.OutOrStdout()
	if format == "json" {
		return renderVersionJSON(out)
	}
	if format != "pretty" {
		return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
	}
	colorMode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	_, err = fmt.Fprintln(out, version.Info(useColor(colorMode)))
	return err
}

func renderVersionJSON(out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(version.Current())
}
