package testkit

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pmezard/go-difflib/difflib"
)

var update = flag.Bool("update", false, "rewrite golden files")

// Diff returns a unified diff of want and got, empty when they match.
func Diff(wantName, gotName, want, got string) string {
	if want == got {
		return ""
	}
	u := difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: wantName,
		ToFile:   gotName,
		Context:  3,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil || s == "" {
		return "--- " + wantName + "\n+++ " + gotName + "\n(contents differ)\n"
	}
	return s
}

// AssertText fails tb with a unified diff when got differs from want.
func AssertText(tb testing.TB, want, got string) {
	tb.Helper()
	if d := Diff("want", "got", want, got); d != "" {
		tb.Fatalf("output mismatch:\n%s", d)
	}
}

// Golden compares got against testdata/<name>.golden. With -update the file
// is rewritten instead.
func Golden(tb testing.TB, name, got string) {
	tb.Helper()
	path := filepath.Join("testdata", name+".golden")
	if *update {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			tb.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(got), 0o600); err != nil {
			tb.Fatalf("write golden: %v", err)
		}
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read golden %s: %v (run with -update to create it)", path, err)
	}
	want := strings.ReplaceAll(string(data), "\r\n", "\n")
	if d := Diff(path, "got", want, got); d != "" {
		tb.Fatalf("golden mismatch:\n%s", d)
	}
}
