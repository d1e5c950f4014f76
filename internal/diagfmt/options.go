package diagfmt

import "fmt"

// PathMode selects how file paths appear in rendered diagnostics.
type PathMode uint8

const (
	PathModeAuto PathMode = iota // relative when under the base dir
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

var pathModeNames = [...]string{
	PathModeAuto:     "auto",
	PathModeAbsolute: "absolute",
	PathModeRelative: "relative",
	PathModeBasename: "basename",
}

func (m PathMode) String() string {
	if int(m) < len(pathModeNames) {
		return pathModeNames[m]
	}
	return pathModeNames[PathModeAuto]
}

// ParsePathMode maps a name back to its PathMode.
func ParsePathMode(name string) (PathMode, error) {
	for i, n := range pathModeNames {
		if n == name {
			return PathMode(i), nil
		}
	}
	return PathModeAuto, fmt.Errorf("unknown path mode %q", name)
}

// PrettyOpts controls the human-readable renderer.
type PrettyOpts struct {
	Color       bool
	Context     int8  // строки исходника перед строкой диагностики
	Width       uint8 // 0 - без обрезки
	PathMode    PathMode
	ShowNotes   bool
	ShowPreview bool
}

// JSONOpts controls the machine-readable renderer.
type JSONOpts struct {
	PathMode         PathMode
	IncludePositions bool
	IncludeNotes     bool
	Max              int // ограничивает вывод, сам Bag не трогает
}

// SarifRunMeta describes the invocation recorded in a SARIF run.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}
