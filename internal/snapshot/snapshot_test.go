package snapshot

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"ompscope/internal/ast"
	"ompscope/internal/source"
	"ompscope/internal/symbols"
	"ompscope/internal/testkit"
)

func i64(v int64) *int64 { return &v }

func ref(name string) *Expr { return &Expr{Kind: "ref", Name: name} }

func lit(v string) *Expr { return &Expr{Kind: "lit", Value: v} }

func sampleDoc() *Document {
	fullRange := Expr{
		Kind:  "range",
		Left:  &Expr{Kind: "bound", Name: "a", Bound: "lbound", Dim: 2},
		Right: &Expr{Kind: "bound", Name: "a", Bound: "ubound", Dim: 2},
	}
	return &Document{
		Schema:  SchemaVersion,
		Unit:    "Solver",
		Symbols: []Symbol{{Name: "NX", Parameter: true}},
		Routines: []Routine{{
			Name: "Step",
			Span: &Span{Start: 10, End: 20},
			Symbols: []Symbol{
				{Name: "i"},
				{Name: "n", Interface: "argument"},
				{Name: "a", Dims: []Dim{{Lower: i64(1)}, {}}},
				{Name: "tmp"},
				{Name: "q", Kind: "structure"},
			},
			Body: []Node{{
				Kind: "directive", Directive: "parallel",
				Body: []Node{{
					Kind: "directive", Directive: "single", Nowait: true,
					Body: []Node{{
						Kind: "loop", Var: "I", Start: lit("1"), Stop: ref("n"),
						Body: []Node{
							{Kind: "directive", Directive: "task", Body: []Node{{
								Kind:   "assign",
								Target: &Expr{Kind: "index", Name: "a", Indices: []Expr{*ref("i"), fullRange}},
								Value:  &Expr{Kind: "binary", Op: "+", Left: ref("n"), Right: lit("1")},
							}}},
							{Kind: "call", Name: "Smooth", Kernel: true, Args: []Expr{*ref("tmp")}, Locals: []string{"tmp"}},
							{Kind: "codeblock", Text: "print *, i"},
							{
								Kind: "if",
								Cond: &Expr{Kind: "binary", Op: "==", Left: ref("i"), Right: lit("1")},
								Body: []Node{{Kind: "assign", Target: ref("tmp"), Value: lit("1")}},
								Else: []Node{{Kind: "assign", Target: ref("tmp"), Value: lit("2")}},
							},
							{
								Kind:   "assign",
								Target: &Expr{Kind: "member", Name: "q", Members: []Member{{Name: "X"}}},
								Value:  &Expr{Kind: "unary", Op: "-", Left: ref("nx")},
							},
						},
					}},
				}},
			}},
		}},
	}
}

const sampleDump = `routine step
  !$omp parallel
    !$omp single
      do i = 1, n, 1
        !$omp task
          a(i, lbound(a, 2):ubound(a, 2)) = n + 1
        call kernel smooth(tmp)
        codeblock print *, i
        if (i == 1)
          tmp = 1
        else
          tmp = 2
        q%x = -nx
`

func dump(t *testing.T, prog *Program) string {
	t.Helper()
	var sb strings.Builder
	p := ast.NewPrinter(prog.Builder, prog.Symbols)
	for _, r := range prog.Routines {
		if err := p.Dump(&sb, r); err != nil {
			t.Fatalf("dump: %v", err)
		}
	}
	return sb.String()
}

func decodeDoc(t *testing.T, doc *Document, opts Options) *Program {
	t.Helper()
	data, err := msgpack.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	prog, err := Decode(bytes.NewReader(data), opts)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return prog
}

func TestDecodeBuildsTree(t *testing.T) {
	prog := decodeDoc(t, sampleDoc(), Options{File: 3})
	if len(prog.Routines) != 1 {
		t.Fatalf("expected 1 routine, got %d", len(prog.Routines))
	}
	testkit.AssertText(t, sampleDump, dump(t, prog))

	root := prog.Routines[0]
	if got := prog.RoutineName(root); got != "step" {
		t.Fatalf("routine name: %q", got)
	}
	if sp := prog.Builder.Span(root); sp.File != 3 || sp.Start != 10 || sp.End != 20 {
		t.Fatalf("routine span: %+v", sp)
	}
	if err := testkit.CheckTreeInvariants(prog.Builder, root); err != nil {
		t.Fatalf("invariants: %v", err)
	}

	st := prog.Builder.Stmts
	single := st.Body(st.Body(root)[0])[0]
	if d, ok := st.Directive(single); !ok || d.Kind != ast.DirSingle || !d.Nowait {
		t.Fatalf("single directive not decoded: %+v", d)
	}
	loop, ok := st.Loop(st.Body(single)[0])
	if !ok {
		t.Fatal("expected a loop inside single")
	}
	// шаг по умолчанию
	if v, ok := prog.Builder.Exprs.IntValue(loop.Step); !ok || v != 1 {
		t.Fatalf("default step: %d %v", v, ok)
	}

	scope := prog.Symbols.Scopes.Get(prog.Unit)
	if scope == nil || scope.Kind != symbols.ScopeContainer {
		t.Fatal("unit scope missing")
	}
	nx, ok := prog.Symbols.Lookup(prog.Unit, "nx")
	if !ok || prog.Symbols.Symbol(nx).Flags&symbols.SymbolFlagParameter == 0 {
		t.Fatal("nx should be a module parameter")
	}
	r, _ := st.Routine(root)
	n, _ := prog.Symbols.Lookup(r.Scope, "N")
	if prog.Symbols.Symbol(n).Interface != symbols.InterfaceArgument {
		t.Fatal("n should be an argument")
	}
	a, _ := prog.Symbols.Lookup(r.Scope, "a")
	lo, _ := prog.Symbols.DeclaredBound(a, 1, false)
	hi, _ := prog.Symbols.DeclaredBound(a, 1, true)
	if !lo.Known || lo.Value != 1 || hi.Known || prog.Symbols.Rank(a) != 2 {
		t.Fatalf("array bounds: lo=%v hi=%v rank=%d", lo, hi, prog.Symbols.Rank(a))
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	first := decodeDoc(t, sampleDoc(), Options{})
	var buf bytes.Buffer
	if err := Encode(&buf, first); err != nil {
		t.Fatalf("encode: %v", err)
	}
	encoded := append([]byte(nil), buf.Bytes()...)
	second, err := Decode(&buf, Options{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	testkit.AssertText(t, dump(t, first), dump(t, second))

	var again bytes.Buffer
	if err := Encode(&again, second); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(encoded, again.Bytes()) {
		t.Fatal("re-encoding is not stable")
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Document)
		want   error
	}{
		{"version", func(d *Document) { d.Schema = SchemaVersion + 1 }, ErrVersion},
		{"undeclared", func(d *Document) {
			d.Routines[0].Body = append(d.Routines[0].Body, Node{Kind: "assign", Target: ref("zz"), Value: lit("1")})
		}, ErrInvalidTree},
		{"statement kind", func(d *Document) {
			d.Routines[0].Body = append(d.Routines[0].Body, Node{Kind: "goto"})
		}, ErrInvalidTree},
		{"directive", func(d *Document) {
			d.Routines[0].Body[0].Directive = "sections"
		}, ErrInvalidTree},
		{"operator", func(d *Document) {
			d.Routines[0].Body = append(d.Routines[0].Body, Node{
				Kind: "assign", Target: ref("tmp"),
				Value: &Expr{Kind: "binary", Op: "<<", Left: ref("i"), Right: lit("1")},
			})
		}, ErrInvalidTree},
		{"duplicate", func(d *Document) {
			d.Routines[0].Symbols = append(d.Routines[0].Symbols, Symbol{Name: "TMP"})
		}, ErrInvalidTree},
		{"missing value", func(d *Document) {
			d.Routines[0].Body = append(d.Routines[0].Body, Node{Kind: "assign", Target: ref("tmp")})
		}, ErrInvalidTree},
		{"bound without dim", func(d *Document) {
			d.Routines[0].Body = append(d.Routines[0].Body, Node{
				Kind: "assign", Target: ref("tmp"), Value: &Expr{Kind: "bound", Name: "a", Bound: "lbound"},
			})
		}, ErrInvalidTree},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sampleDoc()
			tt.mutate(doc)
			_, err := Build(doc, Options{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("got %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := Decode(bytes.NewReader([]byte{0xc1}), Options{}); !errors.Is(err, ErrMalformed) {
		t.Fatalf("garbage input: got %v", err)
	}
}

func TestDecodeErrorsNameRoutine(t *testing.T) {
	doc := sampleDoc()
	doc.Routines[0].Body = append(doc.Routines[0].Body, Node{Kind: "assign", Target: ref("zz"), Value: lit("1")})
	_, err := Build(doc, Options{})
	if !errors.Is(err, ErrInvalidTree) || !strings.Contains(err.Error(), "Step: undeclared symbol \"zz\"") {
		t.Fatalf("routine error: got %v", err)
	}

	// ошибки уровня модуля идут без имени процедуры
	doc = sampleDoc()
	doc.Symbols = append(doc.Symbols, Symbol{Name: "p", Kind: "pointer"})
	_, err = Build(doc, Options{})
	if !errors.Is(err, ErrInvalidTree) || strings.Contains(err.Error(), "Step:") {
		t.Fatalf("unit error: got %v", err)
	}
}

func TestWriteReadFile(t *testing.T) {
	dir := t.TempDir()
	doc := sampleDoc()
	doc.Source = "step.f90"
	prog, err := Build(doc, Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	path := filepath.Join(dir, "out", "step.omps")
	if err := WriteFile(path, prog); err != nil {
		t.Fatalf("write: %v", err)
	}

	// без исходника спаны указывают на сам снапшот
	fs := source.NewFileSet()
	got, err := ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if f := fs.Get(got.File); f == nil || f.Flags&source.FileVirtual == 0 {
		t.Fatalf("expected a virtual file, got %+v", f)
	}
	testkit.AssertText(t, sampleDump, dump(t, got))

	if err := os.WriteFile(filepath.Join(dir, "out", "step.f90"), []byte("subroutine step(n)\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	fs = source.NewFileSet()
	got, err = ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	f := fs.Get(got.File)
	if f == nil || !strings.HasSuffix(f.Path, "step.f90") {
		t.Fatalf("spans should point into the Fortran source, got %+v", f)
	}
	if sp := got.Builder.Span(got.Routines[0]); sp.File != got.File {
		t.Fatalf("span file %d, want %d", sp.File, got.File)
	}

	if _, err := ReadFile(source.NewFileSet(), filepath.Join(dir, "missing.omps")); !os.IsNotExist(err) {
		t.Fatalf("missing file: %v", err)
	}
}
