package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ompscope/internal/config"
)

// loadConfig merges ompscope.toml, the environment and the command line,
// in that order of precedence from lowest to highest.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()

	explicit, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get config flag: %w", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.Load(wd, explicit)
	if err != nil {
		return config.Config{}, err
	}
	if err := config.ApplyEnv(&cfg, config.ProcessEnv); err != nil {
		return config.Config{}, err
	}

	if flags.Changed("color") {
		if cfg.Output.Color, err = flags.GetString("color"); err != nil {
			return config.Config{}, fmt.Errorf("failed to get color flag: %w", err)
		}
	}
	if flags.Changed("max-diagnostics") {
		if cfg.Analysis.MaxDiagnostics, err = flags.GetInt("max-diagnostics"); err != nil {
			return config.Config{}, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
		}
	}
	if flags.Changed("trace-level") {
		if cfg.Trace.Level, err = flags.GetString("trace-level"); err != nil {
			return config.Config{}, fmt.Errorf("failed to get trace-level flag: %w", err)
		}
	}
	if flags.Changed("trace-mode") {
		if cfg.Trace.Mode, err = flags.GetString("trace-mode"); err != nil {
			return config.Config{}, fmt.Errorf("failed to get trace-mode flag: %w", err)
		}
	}
	if flags.Changed("trace") {
		if cfg.Trace.Output, err = flags.GetString("trace"); err != nil {
			return config.Config{}, fmt.Errorf("failed to get trace flag: %w", err)
		}
	}

	local := cmd.Flags()
	if local.Lookup("format") != nil && local.Changed("format") {
		if cfg.Output.Format, err = local.GetString("format"); err != nil {
			return config.Config{}, fmt.Errorf("failed to get format flag: %w", err)
		}
	}
	if local.Lookup("jobs") != nil && local.Changed("jobs") {
		if cfg.Analysis.Jobs, err = local.GetInt("jobs"); err != nil {
			return config.Config{}, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if local.Lookup("emit-clauses") != nil && local.Changed("emit-clauses") {
		if cfg.Output.EmitClauses, err = local.GetBool("emit-clauses"); err != nil {
			return config.Config{}, fmt.Errorf("failed to get emit-clauses flag: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
