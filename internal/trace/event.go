package trace

import "time"

// Kind represents the type of trace event.
type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	// KindHeartbeat is emitted periodically while a run is alive.
	KindHeartbeat
)

var kindNames = [...]string{
	KindSpanBegin: "begin",
	KindSpanEnd:   "end",
	KindPoint:     "point",
	KindHeartbeat: "heartbeat",
}

// String returns the string representation of Kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return "unknown"
}

// Scope indicates the granularity level of the event.
// Lower numeric values represent coarser events.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1 // CLI command, one snapshot file
	ScopePass                    // analysis pass over a routine
	ScopeRegion                  // one directive
	ScopeNode                    // validation and clause phases of a directive
)

var scopeNames = [...]string{
	ScopeDriver: "driver",
	ScopePass:   "pass",
	ScopeRegion: "region",
	ScopeNode:   "node",
}

// String returns the string representation of Scope.
func (s Scope) String() string {
	if int(s) < len(scopeNames) && scopeNames[s] != "" {
		return scopeNames[s]
	}
	return "unknown"
}

// Attr is one key-value annotation of an event. Attributes keep the order in
// which they were added.
type Attr struct {
	Key   string
	Value string
}

// Event represents a single trace event.
type Event struct {
	Time     time.Time
	Seq      uint64 // assigned by the tracer that stores the event
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64 // 0 for roots
	File     string // snapshot the event belongs to, if any
	Name     string // e.g. "analyze_file", "omp_analyze", "omp:task"
	Detail   string
	Attrs    []Attr
}

// Attr returns the value of key and whether it is present.
func (ev *Event) Attr(key string) (string, bool) {
	for _, a := range ev.Attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}
