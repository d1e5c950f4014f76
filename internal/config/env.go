package config

import (
	"fmt"
	"strconv"

	"github.com/xyproto/env/v2"
)

// Environment variables that override the configuration file.
const (
	EnvFormat     = "OMPSCOPE_FORMAT"
	EnvColor      = "OMPSCOPE_COLOR"
	EnvJobs       = "OMPSCOPE_JOBS"
	EnvTraceLevel = "OMPSCOPE_TRACE_LEVEL"
)

// LookupFunc returns the value of an environment variable and whether it is set.
type LookupFunc func(name string) (string, bool)

// ProcessEnv reads the process environment.
func ProcessEnv(name string) (string, bool) {
	if !env.Has(name) {
		return "", false
	}
	return env.Str(name), true
}

// ApplyEnv overrides c with the variables visible through lookup and
// validates the result. A nil lookup reads the process environment.
func ApplyEnv(c *Config, lookup LookupFunc) error {
	if lookup == nil {
		lookup = ProcessEnv
	}
	if v, ok := lookup(EnvFormat); ok && v != "" {
		c.Output.Format = v
	}
	if v, ok := lookup(EnvColor); ok && v != "" {
		c.Output.Color = v
	}
	if v, ok := lookup(EnvTraceLevel); ok && v != "" {
		c.Trace.Level = v
	}
	if v, ok := lookup(EnvJobs); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidOption, EnvJobs, v)
		}
		c.Analysis.Jobs = n
	}
	return c.Validate()
}
