package version

import (
	"runtime"
	"runtime/debug"
	"strings"
)

var readBuildInfo = debug.ReadBuildInfo

// Build is the machine-readable form of the version banner.
type Build struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	Go        string `json:"go"`
}

// Current collects build data. Values missing from -ldflags are taken
// from the VCS stamp embedded by the go tool, when present.
func Current() Build {
	b := Build{
		Tool:      "ompscope",
		Version:   strings.TrimSpace(Version),
		GitCommit: strings.TrimSpace(GitCommit),
		BuildDate: strings.TrimSpace(BuildDate),
		Go:        runtime.Version(),
	}
	if b.GitCommit != "" && b.BuildDate != "" {
		return b
	}
	info, ok := readBuildInfo()
	if !ok {
		return b
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && b.GitCommit == "":
			b.GitCommit = s.Value
		case s.Key == "vcs.time" && b.BuildDate == "":
			b.BuildDate = s.Value
		}
	}
	return b
}
