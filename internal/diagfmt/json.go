package diagfmt

import (
	"encoding/json"
	"io"

	"ompscope/internal/diag"
	"ompscope/internal/source"
)

// Position is a 1-based line/column pair.
type Position struct {
	Line uint32 `json:"line"`
	Col  uint32 `json:"col"`
}

// Location points at a byte range of a file. From/To are filled only when
// positions were requested.
type Location struct {
	Path  string    `json:"path"`
	Start uint32    `json:"start"`
	End   uint32    `json:"end"`
	From  *Position `json:"from,omitempty"`
	To    *Position `json:"to,omitempty"`
}

type NoteRecord struct {
	Message string   `json:"message"`
	At      Location `json:"at"`
}

type Record struct {
	Code     string       `json:"code"`
	Title    string       `json:"title,omitempty"`
	Severity string       `json:"severity"`
	Message  string       `json:"message"`
	At       Location     `json:"at"`
	Notes    []NoteRecord `json:"notes,omitempty"`
}

// Counts tallies the whole bag, including records cut by JSONOpts.Max.
type Counts struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

// Document is the top-level value written by JSON.
type Document struct {
	Counts      Counts   `json:"counts"`
	Truncated   bool     `json:"truncated,omitempty"`
	Diagnostics []Record `json:"diagnostics"`
}

type locator struct {
	fs        *source.FileSet
	mode      PathMode
	positions bool
}

func (l locator) at(span source.Span) Location {
	loc := Location{Path: filePath(l.fs, span.File, l.mode), Start: span.Start, End: span.End}
	if l.positions && l.fs.Get(span.File) != nil {
		from, to := l.fs.Resolve(span)
		loc.From = &Position{Line: from.Line, Col: from.Col}
		loc.To = &Position{Line: to.Line, Col: to.Col}
	}
	return loc
}

// BuildDocument converts bag into its JSON shape without encoding it.
func BuildDocument(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) Document {
	items := bag.Items()
	doc := Document{
		Counts: Counts{
			Errors:   bag.Count(diag.SevError),
			Warnings: bag.Count(diag.SevWarning),
			Infos:    bag.Count(diag.SevInfo),
		},
		Diagnostics: []Record{},
	}
	if opts.Max > 0 && len(items) > opts.Max {
		items = items[:opts.Max]
		doc.Truncated = true
	}
	loc := locator{fs: fs, mode: opts.PathMode, positions: opts.IncludePositions}
	for _, d := range items {
		rec := Record{
			Code:     d.Code.ID(),
			Title:    d.Code.Title(),
			Severity: d.Severity.Label(),
			Message:  d.Message,
			At:       loc.at(d.Primary),
		}
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				rec.Notes = append(rec.Notes, NoteRecord{Message: n.Msg, At: loc.at(n.Span)})
			}
		}
		doc.Diagnostics = append(doc.Diagnostics, rec)
	}
	return doc
}

// JSON writes bag as one indented Document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDocument(bag, fs, opts))
}
