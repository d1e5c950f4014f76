package diagfmt

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"ompscope/internal/source"
)

const tabWidth = 4

// excerpt is one source line prepared for display with a marker under the span.
type excerpt struct {
	line      uint32
	text      string
	markStart int // display column, 0-based
	markWidth int
}

func expandTabs(s string) string {
	if !strings.Contains(s, "\t") {
		return s
	}
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

// displayWidth returns the terminal width of the first n bytes of line.
func displayWidth(line string, n int) int {
	n = max(0, min(n, len(line)))
	return runewidth.StringWidth(expandTabs(line[:n]))
}

// buildExcerpt returns the lines before and at the start of span. ok is false
// when the file has no text to show.
func buildExcerpt(fs *source.FileSet, span source.Span, context int) (before []excerpt, at excerpt, ok bool) {
	f := fs.Get(span.File)
	if f == nil || len(f.Content) == 0 {
		return nil, excerpt{}, false
	}
	start, end := fs.Resolve(span)
	first := start.Line
	for i := 0; i < context && first > 1; i++ {
		first--
	}
	for l := first; l < start.Line; l++ {
		before = append(before, excerpt{line: l, text: expandTabs(f.GetLine(l))})
	}
	raw := f.GetLine(start.Line)
	from := int(start.Col) - 1
	to := len(raw)
	if end.Line == start.Line {
		to = int(end.Col) - 1
	}
	at = excerpt{
		line:      start.Line,
		text:      expandTabs(raw),
		markStart: displayWidth(raw, from),
	}
	at.markWidth = max(1, displayWidth(raw, to)-at.markStart)
	return before, at, true
}

// clip cuts s to width display cells.
func clip(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
