package trace

import (
	"fmt"
	"strings"
)

// Level controls tracing verbosity.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // pass boundaries, meant for the ring dumped on failure
	LevelPhase        // driver and pass spans
	LevelDetail       // adds a span per directive
	LevelDebug        // adds validation and clause phases
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

// deepest is the finest scope each level emits.
var deepest = [...]Scope{
	LevelOff:    0,
	LevelError:  ScopePass,
	LevelPhase:  ScopePass,
	LevelDetail: ScopeRegion,
	LevelDebug:  ScopeNode,
}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel converts a flag value to a Level; the empty string is off.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return LevelOff, nil
	}
	for i, name := range levelNames {
		if name == s {
			return Level(i), nil
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: off|error|phase|detail|debug)", s)
}

// ShouldEmit reports whether events of scope are recorded at level l.
func (l Level) ShouldEmit(scope Scope) bool {
	if int(l) >= len(deepest) {
		return false
	}
	return scope != 0 && scope <= deepest[l]
}
