package trace

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatAuto   Format = iota // decided by the output path
	FormatText                 // one human-readable line per event
	FormatNDJSON               // newline-delimited JSON
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
}

// formatForPath picks NDJSON for .ndjson and .jsonl outputs.
func formatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ndjson", ".jsonl":
		return FormatNDJSON
	}
	return FormatText
}

// FormatEvent renders ev as one line in the given format.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev)
}

type jsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id"`
	ParentID uint64            `json:"parent_id,omitempty"`
	File     string            `json:"file,omitempty"`
	Name     string            `json:"name"`
	Detail   string            `json:"detail,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
}

func formatNDJSON(ev *Event) []byte {
	out := jsonEvent{
		Time:     ev.Time.UTC().Format(time.RFC3339Nano),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		File:     ev.File,
		Name:     ev.Name,
		Detail:   ev.Detail,
	}
	if len(ev.Attrs) > 0 {
		out.Attrs = make(map[string]string, len(ev.Attrs))
		for _, a := range ev.Attrs {
			out.Attrs[a.Key] = a.Value
		}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

var kindMarks = map[Kind]string{
	KindSpanBegin: "→",
	KindSpanEnd:   "←",
	KindPoint:     "•",
	KindHeartbeat: "♡",
}

// formatText renders "15:04:05.000 region   ← omp:task (ok) a=1 b=2 [file.omps]".
// Children of another span are indented by two spaces.
func formatText(ev *Event) []byte {
	var sb strings.Builder
	ts := ev.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	fmt.Fprintf(&sb, "%s %-6s ", ts.Format("15:04:05.000"), ev.Scope)
	if ev.ParentID != 0 {
		sb.WriteString("  ")
	}
	if mark, ok := kindMarks[ev.Kind]; ok {
		sb.WriteString(mark)
		sb.WriteByte(' ')
	}
	sb.WriteString(ev.Name)
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	for _, a := range ev.Attrs {
		fmt.Fprintf(&sb, " %s=%s", a.Key, a.Value)
	}
	if ev.File != "" {
		fmt.Fprintf(&sb, " [%s]", ev.File)
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
