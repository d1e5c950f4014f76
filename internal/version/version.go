// Package version holds build information for the ompscope CLI.
// The variables can be overridden at build time via -ldflags.
package version

import (
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var partColors = []color.Attribute{color.FgYellow, color.FgGreen, color.FgBlue}

// Colored renders Version with the major, minor and patch parts in their own
// colors. Pre-release suffixes stay uncolored.
func Colored(enabled bool) string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.Split(core, ".")
	for i, p := range parts {
		c := color.New(partColors[i%len(partColors)], color.Bold)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		parts[i] = c.Sprint(p)
	}
	out := strings.Join(parts, ".")
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Info returns the one-line version banner.
func Info(colored bool) string {
	b := Current()
	line := b.Tool + " " + Colored(colored)
	var extra []string
	if b.GitCommit != "" {
		extra = append(extra, "commit "+shortCommit(b.GitCommit))
	}
	if b.BuildDate != "" {
		extra = append(extra, "built "+b.BuildDate)
	}
	if len(extra) == 0 {
		return line
	}
	return line + " (" + strings.Join(extra, ", ") + ")"
}

func shortCommit(c string) string {
	if len(c) > 12 {
		return c[:12]
	}
	return c
}
