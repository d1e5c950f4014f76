package diagfmt

import (
	"io"

	"ompscope/internal/diag"
	"ompscope/internal/source"
)

// Short writes one line per diagnostic: "<sev> <CODE> <path>:<line>:<col> <message>",
// sorted by location. Notes follow as "note" lines when includeNotes is set.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, includeNotes bool) error {
	out := diag.FormatGoldenDiagnostics(bag.Items(), fs, includeNotes)
	if out == "" {
		return nil
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}
