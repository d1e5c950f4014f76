package diag

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"ompscope/internal/source"
)

// goldenLine is one rendered entry: a diagnostic or one of its notes.
type goldenLine struct {
	label   string
	code    string
	path    string
	line    uint32
	col     uint32
	message string
}

// FormatGoldenDiagnostics renders one line per diagnostic (and per note
// when includeNotes is set):
//
//	error OMP3003 src/kernel.f90:1:1 message
//
// Lines are sorted by location, then label, code and message. Diagnostics
// whose file is unknown to fs are dropped. The result has no trailing newline.
func FormatGoldenDiagnostics(diags []Diagnostic, fs *source.FileSet, includeNotes bool) string {
	if fs == nil {
		return ""
	}
	var lines []goldenLine
	for _, d := range diags {
		if l, ok := goldenAt(fs, d.Primary, d.Severity.Label(), d.Code, d.Message); ok {
			lines = append(lines, l)
		}
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			if l, ok := goldenAt(fs, n.Span, "note", d.Code, n.Msg); ok {
				lines = append(lines, l)
			}
		}
	}
	slices.SortStableFunc(lines, func(a, b goldenLine) int {
		return cmp.Or(
			cmp.Compare(a.path, b.path),
			cmp.Compare(a.line, b.line),
			cmp.Compare(a.col, b.col),
			cmp.Compare(a.label, b.label),
			cmp.Compare(a.code, b.code),
			cmp.Compare(a.message, b.message),
		)
	})

	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = fmt.Sprintf("%s %s %s:%d:%d %s", l.label, l.code, l.path, l.line, l.col, l.message)
	}
	return strings.Join(out, "\n")
}

func goldenAt(fs *source.FileSet, span source.Span, label string, code Code, msg string) (goldenLine, bool) {
	file := fs.Get(span.File)
	if file == nil {
		return goldenLine{}, false
	}
	start, _ := fs.Resolve(span)
	path := filepath.ToSlash(file.FormatPath("relative", fs.BaseDir()))
	for strings.HasPrefix(path, "./") {
		path = path[2:]
	}
	return goldenLine{
		label:   label,
		code:    code.ID(),
		path:    path,
		line:    start.Line,
		col:     start.Col,
		message: strings.Join(strings.Fields(strings.ReplaceAll(msg, "\r", "\n")), " "),
	}, true
}
