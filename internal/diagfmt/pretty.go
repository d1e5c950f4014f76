package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"ompscope/internal/diag"
	"ompscope/internal/source"
)

type palette struct {
	err, warn, info, note *color.Color
	gutter, mark, bold    *color.Color
}

func newPalette(enabled bool) palette {
	mk := func(attrs ...color.Attribute) *color.Color {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	return palette{
		err:    mk(color.FgRed, color.Bold),
		warn:   mk(color.FgYellow, color.Bold),
		info:   mk(color.FgCyan, color.Bold),
		note:   mk(color.FgBlue, color.Bold),
		gutter: mk(color.FgBlue),
		mark:   mk(color.FgGreen, color.Bold),
		bold:   mk(color.Bold),
	}
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

func filePath(fs *source.FileSet, id source.FileID, mode PathMode) string {
	f := fs.Get(id)
	if f == nil {
		return "<unknown>"
	}
	return f.FormatPath(mode.String(), fs.BaseDir())
}

func position(fs *source.FileSet, span source.Span, mode PathMode) string {
	start, _ := fs.Resolve(span)
	return fmt.Sprintf("%s:%d:%d", filePath(fs, span.File, mode), start.Line, start.Col)
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем строку исходника с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s: %s %s\n",
			p.bold.Sprint(position(fs, d.Primary, opts.PathMode)),
			p.severity(d.Severity).Sprintf("%s %s:", d.Severity, d.Code.ID()),
			clip(d.Message, int(opts.Width)))
		if opts.ShowPreview {
			writeExcerpt(w, fs, d.Primary, int(opts.Context), int(opts.Width), p)
		}
		if !opts.ShowNotes {
			continue
		}
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), position(fs, n.Span, opts.PathMode), clip(n.Msg, int(opts.Width)))
			if opts.ShowPreview {
				writeExcerpt(w, fs, n.Span, 0, int(opts.Width), p)
			}
		}
	}
}

func writeExcerpt(w io.Writer, fs *source.FileSet, span source.Span, context, width int, p palette) {
	before, at, ok := buildExcerpt(fs, span, context)
	if !ok {
		return
	}
	digits := len(strconv.FormatUint(uint64(at.line), 10))
	bar := p.gutter.Sprint("|")
	for _, ex := range append(before, at) {
		num := p.gutter.Sprintf("%*d", digits+2, ex.line)
		fmt.Fprintf(w, "%s %s %s\n", num, bar, clip(ex.text, width))
	}
	marker := "^" + strings.Repeat("~", at.markWidth-1)
	fmt.Fprintf(w, "%s %s %s%s\n", strings.Repeat(" ", digits+2), bar, strings.Repeat(" ", at.markStart), p.mark.Sprint(marker))
}

// Summary returns "N errors, M warnings" for bag.
func Summary(bag *diag.Bag) string {
	plural := func(n int, word string) string {
		if n == 1 {
			return "1 " + word
		}
		return strconv.Itoa(n) + " " + word + "s"
	}
	return plural(bag.Count(diag.SevError), "error") + ", " + plural(bag.Count(diag.SevWarning), "warning")
}
