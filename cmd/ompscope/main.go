package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ompscope/internal/config"
	"ompscope/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "ompscope",
	Short: "OpenMP data-sharing analyzer for Fortran routines",
	Long: `ompscope validates OpenMP directives in a Fortran program tree and
computes the private, firstprivate, shared and depend clauses of tasks`,
	SilenceUsage: true,
}

// main registers subcommands and persistent flags, then executes the root command.
// If command execution returns an error, the process exits with status code 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics per file")
	rootCmd.PersistentFlags().String("config", "", "path to "+config.FileName+" (default: searched from the working directory up)")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (\"-\" for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "ring buffer size for --trace-mode ring|both")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit a heartbeat event at this interval (0 disables)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// useColor resolves the color setting against stdout. Values were checked
// by config validation; anything unknown falls back to auto.
func useColor(mode string) bool {
	t, err := parseToggle("color", mode)
	if err != nil {
		t = toggleAuto
	}
	return t.resolve(os.Stdout)
}
