package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"ompscope/internal/diag"
	"ompscope/internal/source"
	"ompscope/internal/testkit"
)

const kernelSource = "subroutine s(n)\n  do i = 1, n\n\ta(i*2) = 0\n  end do\nend\n"

// fixture возвращает bag с одной ошибкой на a(i*2) и заметкой на do.
func fixture(t *testing.T) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.AddVirtual("kernel.f90", []byte(kernelSource))
	bag := diag.NewBag(10)
	d := diag.New(diag.SevError, diag.OmpUnsupportedIndex, source.Span{File: file, Start: 31, End: 37}, "unsupported index")
	d = d.WithNote(source.Span{File: file, Start: 18, End: 20}, "in this statement")
	bag.Add(d)
	return bag, fs
}

func TestPrettyExcerpt(t *testing.T) {
	bag, fs := fixture(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{
		Context:     1,
		PathMode:    PathModeBasename,
		ShowNotes:   true,
		ShowPreview: true,
	})
	want := "kernel.f90:3:2: ERROR OMP3002: unsupported index\n" +
		"  2 |   do i = 1, n\n" +
		"  3 |     a(i*2) = 0\n" +
		"    |     ^~~~~~\n" +
		"  note: kernel.f90:2:3: in this statement\n" +
		"  2 |   do i = 1, n\n" +
		"    |   ^~\n"
	testkit.AssertText(t, want, buf.String())
}

func TestPrettyWithoutPreview(t *testing.T) {
	bag, fs := fixture(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	testkit.AssertText(t, "kernel.f90:3:2: ERROR OMP3002: unsupported index\n", buf.String())
}

func TestPrettyColor(t *testing.T) {
	bag, fs := fixture(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Color: true, ShowPreview: true})
	if !strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected ANSI escapes, got:\n%s", buf.String())
	}
}

func TestPrettyVirtualFileWithoutText(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("broken.omps", nil)
	bag := diag.NewBag(10)
	bag.Add(diag.New(diag.SevError, diag.IOSnapshotDecode, source.Span{File: file}, "failed to load snapshot"))
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{ShowPreview: true, Context: 2})
	testkit.AssertText(t, "broken.omps:1:1: ERROR IO1002: failed to load snapshot\n", buf.String())
}

func TestPrettyWidthClipsLines(t *testing.T) {
	bag, fs := fixture(t)
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, Width: 10})
	if !strings.Contains(buf.String(), "unsupport…") {
		t.Fatalf("message not clipped:\n%s", buf.String())
	}
}

func TestSummary(t *testing.T) {
	bag, _ := fixture(t)
	if got := Summary(bag); got != "1 error, 0 warnings" {
		t.Fatalf("got %q", got)
	}
}

func TestShort(t *testing.T) {
	bag, fs := fixture(t)
	var buf bytes.Buffer
	if err := Short(&buf, bag, fs, true); err != nil {
		t.Fatal(err)
	}
	want := "note OMP3002 kernel.f90:2:3 in this statement\n" +
		"error OMP3002 kernel.f90:3:2 unsupported index\n"
	testkit.AssertText(t, want, buf.String())
}
