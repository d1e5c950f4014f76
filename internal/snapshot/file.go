package snapshot

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"ompscope/internal/source"
)

// ReadFile decodes the snapshot at path. When the document names a Fortran
// source that can be loaded (relative paths resolve against the snapshot's
// directory), spans point into it; otherwise they point into a virtual file
// registered under the snapshot path.
func ReadFile(fs *source.FileSet, path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := msgpack.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrMalformed, err)
	}
	file, ok := loadSource(fs, path, doc.Source)
	if !ok {
		file = fs.AddVirtual(path, nil)
	}
	prog, err := Build(&doc, Options{File: file})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

func loadSource(fs *source.FileSet, snapshot, src string) (source.FileID, bool) {
	if src == "" {
		return 0, false
	}
	if !filepath.IsAbs(src) {
		src = filepath.Join(filepath.Dir(snapshot), src)
	}
	id, err := fs.Load(src)
	if err != nil {
		return 0, false
	}
	return id, true
}

// WriteFile encodes prog to path atomically.
func WriteFile(path string, prog *Program) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() {
		_ = os.Remove(tmp)
	}()
	if err := Encode(f, prog); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(tmp, path)
}
