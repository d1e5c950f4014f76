package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFindsFileAbove(t *testing.T) {
	root := t.TempDir()
	path := writeConfig(t, root, `
[analysis]
transparent_calls = ["halo_exchange", "Sync"]
max_diagnostics = 5

[output]
format = "short"
emit_clauses = true

[trace]
level = "phase"
`)
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nested, "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Path != path {
		t.Fatalf("path %q, want %q", cfg.Path, path)
	}
	if !slices.Equal(cfg.Analysis.TransparentCalls, []string{"halo_exchange", "Sync"}) {
		t.Fatalf("transparent calls: %v", cfg.Analysis.TransparentCalls)
	}
	if cfg.Analysis.MaxDiagnostics != 5 || cfg.Output.Format != "short" || !cfg.Output.EmitClauses {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	// незаданные ключи сохраняют значения по умолчанию
	if cfg.Output.Color != "auto" || cfg.Trace.Mode != "stream" || cfg.Trace.Level != "phase" {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Default()
	if cfg.Path != "" || cfg.Output != want.Output || cfg.Trace != want.Trace {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"syntax", "[output\nformat = 1", ErrInvalidFile},
		{"unknown key", "[output]\nfromat = \"json\"\n", ErrInvalidFile},
		{"format", "[output]\nformat = \"xml\"\n", ErrInvalidOption},
		{"color", "[output]\ncolor = \"sometimes\"\n", ErrInvalidOption},
		{"trace level", "[trace]\nlevel = \"loud\"\n", ErrInvalidOption},
		{"trace mode", "[trace]\nmode = \"tape\"\n", ErrInvalidOption},
		{"negative jobs", "[analysis]\njobs = -1\n", ErrInvalidOption},
		{"empty call", "[analysis]\ntransparent_calls = [\" \"]\n", ErrInvalidOption},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			if _, err := LoadFile(path); !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Load(t.TempDir(), filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("explicit missing file: %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	vars := map[string]string{
		EnvFormat:     "json",
		EnvJobs:       "3",
		EnvTraceLevel: "debug",
		EnvColor:      "",
	}
	lookup := func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
	cfg := Default()
	if err := ApplyEnv(&cfg, lookup); err != nil {
		t.Fatalf("ApplyEnv: %v", err)
	}
	if cfg.Output.Format != "json" || cfg.Analysis.Jobs != 3 || cfg.Trace.Level != "debug" || cfg.Output.Color != "auto" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	vars[EnvJobs] = "many"
	cfg = Default()
	if err := ApplyEnv(&cfg, lookup); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected invalid option, got %v", err)
	}
	vars[EnvJobs] = "1"
	vars[EnvFormat] = "yaml"
	cfg = Default()
	if err := ApplyEnv(&cfg, lookup); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("expected invalid format, got %v", err)
	}
}

func TestProcessEnv(t *testing.T) {
	if _, ok := ProcessEnv("OMPSCOPE_SURELY_UNSET_VARIABLE"); ok {
		t.Fatal("unset variable reported as set")
	}
}
