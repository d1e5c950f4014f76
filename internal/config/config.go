// Package config loads ompscope.toml and applies environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"ompscope/internal/trace"
)

// FileName is the configuration file looked up from the working directory upwards.
const FileName = "ompscope.toml"

var (
	// ErrInvalidFile is returned for configuration files that cannot be decoded.
	ErrInvalidFile = errors.New("invalid configuration file")
	// ErrInvalidOption is returned for values outside their allowed set.
	ErrInvalidOption = errors.New("invalid configuration option")
)

// Config is the merged configuration of one run.
type Config struct {
	// Path is the file the configuration was read from, empty for defaults.
	Path string `toml:"-"`

	Analysis Analysis `toml:"analysis"`
	Output   Output   `toml:"output"`
	Trace    Trace    `toml:"trace"`
}

type Analysis struct {
	// TransparentCalls are non-kernel calls the task-pair check may treat as known writers.
	TransparentCalls []string `toml:"transparent_calls"`
	MaxDiagnostics   int      `toml:"max_diagnostics"`
	Jobs             int      `toml:"jobs"`
}

type Output struct {
	Format      string `toml:"format"` // pretty, json, short, sarif
	Color       string `toml:"color"`  // auto, on, off
	EmitClauses bool   `toml:"emit_clauses"`
}

type Trace struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Analysis: Analysis{MaxDiagnostics: 100},
		Output:   Output{Format: "pretty", Color: "auto"},
		Trace:    Trace{Level: "off", Mode: "stream", Output: "-"},
	}
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load reads explicit when it is set, otherwise the nearest FileName above
// startDir. Without a file the defaults are returned.
func Load(startDir, explicit string) (Config, error) {
	path := explicit
	if path == "" {
		found, ok, err := Find(startDir)
		if err != nil {
			return Config{}, err
		}
		if !ok {
			return Default(), nil
		}
		path = found
	}
	return LoadFile(path)
}

// LoadFile decodes path over the defaults and validates the result.
// Unknown keys are rejected.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
		return Config{}, fmt.Errorf("%s: %w: %w", path, ErrInvalidFile, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: %w: unknown keys %s", path, ErrInvalidFile, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every enumerated option.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "pretty", "json", "short", "sarif":
	default:
		return fmt.Errorf("%w: output.format %q (expected pretty|json|short|sarif)", ErrInvalidOption, c.Output.Format)
	}
	switch c.Output.Color {
	case "auto", "on", "off":
	default:
		return fmt.Errorf("%w: output.color %q (expected auto|on|off)", ErrInvalidOption, c.Output.Color)
	}
	if c.Analysis.MaxDiagnostics < 0 {
		return fmt.Errorf("%w: analysis.max_diagnostics must not be negative", ErrInvalidOption)
	}
	if c.Analysis.Jobs < 0 {
		return fmt.Errorf("%w: analysis.jobs must not be negative", ErrInvalidOption)
	}
	for _, name := range c.Analysis.TransparentCalls {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: analysis.transparent_calls contains an empty name", ErrInvalidOption)
		}
	}
	if _, err := trace.ParseLevel(c.Trace.Level); err != nil {
		return fmt.Errorf("%w: trace.level: %w", ErrInvalidOption, err)
	}
	if _, err := trace.ParseMode(c.Trace.Mode); err != nil {
		return fmt.Errorf("%w: trace.mode: %w", ErrInvalidOption, err)
	}
	return nil
}
