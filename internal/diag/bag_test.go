package diag

import (
	"testing"

	"ompscope/internal/source"
)

func TestBagLimitAndCounts(t *testing.T) {
	bag := NewBag(2)
	r := BagReporter{Bag: bag}
	ReportError(r, OmpStructuralViolation, source.Span{Start: 4}, "first").Emit()
	ReportInfo(r, OmpClausesComputed, source.Span{Start: 1}, "second").Emit()
	ReportWarning(r, OmpInternal, source.Span{}, "dropped").Emit()

	if bag.Len() != 2 {
		t.Fatalf("expected 2 diagnostics, got %d", bag.Len())
	}
	if !bag.HasErrors() || !bag.HasWarnings() {
		t.Fatalf("expected errors and warnings to be reported")
	}
	if bag.Count(SevInfo) != 1 || bag.Count(SevWarning) != 0 {
		t.Fatalf("unexpected counts: info=%d warning=%d", bag.Count(SevInfo), bag.Count(SevWarning))
	}

	bag.Sort()
	if bag.Items()[0].Message != "second" {
		t.Fatalf("sort should order by start offset, got %q first", bag.Items()[0].Message)
	}
}

func TestNewBagUnlimited(t *testing.T) {
	if got := NewBag(0).Cap(); got != 65535 {
		t.Fatalf("cap = %d, want 65535", got)
	}
	if got := NewBag(1 << 20).Cap(); got != 65535 {
		t.Fatalf("cap = %d, want 65535", got)
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(10)
	b := ReportError(BagReporter{Bag: bag}, OmpUnprovableDependency, source.Span{}, "msg").
		WithNote(source.Span{Start: 3}, "conflicting task")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("expected a single diagnostic, got %d", bag.Len())
	}
	if notes := bag.Items()[0].Notes; len(notes) != 1 || notes[0].Msg != "conflicting task" {
		t.Fatalf("unexpected notes: %+v", notes)
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	for range 3 {
		ReportError(r, OmpSharedLoopVariable, source.Span{Start: 1, End: 2}, "same").Emit()
	}
	ReportError(r, OmpSharedLoopVariable, source.Span{Start: 1, End: 2}, "other").Emit()
	if bag.Len() != 2 || r.Distinct() != 2 {
		t.Fatalf("expected 2 unique diagnostics, got %d", bag.Len())
	}
}

func TestReporterFunc(t *testing.T) {
	var got []Diagnostic
	r := ReporterFunc(func(d Diagnostic) { got = append(got, d) })
	ReportWarning(r, OmpInternal, source.Span{}, "w").WithNote(source.Span{Start: 2}, "here").Emit()
	if len(got) != 1 || got[0].Severity != SevWarning || len(got[0].Notes) != 1 {
		t.Fatalf("unexpected reports: %+v", got)
	}
	var nilFunc ReporterFunc
	nilFunc.Report(got[0]) // не паникует
}

func TestCodeID(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{OmpStructuralViolation, "OMP3001"},
		{IOSnapshotVersion, "IO1003"},
		{OmpClausesComputed, "OMP3101"},
		{UnknownCode, "E0000"},
		{Code(2001), "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("%d.ID() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestSeverityLabels(t *testing.T) {
	if SevError.String() != "ERROR" || SevError.Label() != "error" || SevInfo.Label() != "info" {
		t.Fatalf("unexpected labels %s/%s", SevError, SevError.Label())
	}
	if Severity(9).String() != "UNKNOWN" {
		t.Fatalf("out of range severity should be UNKNOWN")
	}
}

func TestBagMergeAndFilter(t *testing.T) {
	a := NewBag(2)
	a.Add(New(SevInfo, OmpClausesComputed, source.Span{}, "omp task"))
	b := NewBag(2)
	b.Add(New(SevError, OmpInternal, source.Span{}, "x"))
	b.Add(New(SevError, OmpInternal, source.Span{}, "y"))

	a.Merge(b)
	if a.Len() != 3 || a.Cap() != 3 {
		t.Fatalf("merge should grow the limit: len=%d cap=%d", a.Len(), a.Cap())
	}
	a.Filter(func(d Diagnostic) bool { return d.Severity == SevError })
	if a.Len() != 2 || a.Count(SevInfo) != 0 {
		t.Fatalf("filter kept %d items", a.Len())
	}
	// исходный мешок не меняется
	if b.Len() != 2 {
		t.Fatalf("merge modified its argument")
	}
}

func TestWithNoteDoesNotAlias(t *testing.T) {
	base := New(SevError, OmpUnprovableDependency, source.Span{}, "msg").WithNote(source.Span{Start: 1}, "first")
	x := base.WithNote(source.Span{Start: 2}, "x")
	y := base.WithNote(source.Span{Start: 3}, "y")
	if x.Notes[1].Msg != "x" || y.Notes[1].Msg != "y" || len(base.Notes) != 1 {
		t.Fatalf("notes alias: %+v %+v", x.Notes, y.Notes)
	}
}
