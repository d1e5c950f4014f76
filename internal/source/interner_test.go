package source

import "testing"

func TestInternerBasic(t *testing.T) {
	in := NewInterner()

	// NoStringID зарезервирован под пустую строку
	if s, ok := in.Lookup(NoStringID); !ok || s != "" {
		t.Fatalf("NoStringID lookup = %q,%v", s, ok)
	}
	a := in.Intern("hello")
	b := in.Intern("hello")
	if a != b || a == NoStringID {
		t.Fatalf("Intern not stable: %d vs %d", a, b)
	}
	if in.Intern("world") == a {
		t.Fatalf("distinct strings share an ID")
	}
	if in.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", in.Len())
	}
	if _, ok := in.Lookup(StringID(42)); ok {
		t.Fatalf("unknown ID resolved")
	}
}

func TestInternNameFoldsCase(t *testing.T) {
	in := NewInterner()
	upper := in.InternName("JPK")
	lower := in.InternName("jpk")
	if upper != lower {
		t.Fatalf("InternName is case-sensitive: %d vs %d", upper, lower)
	}
	if got := in.MustLookup(upper); got != "jpk" {
		t.Fatalf("stored name = %q, want jpk", got)
	}
	if id, ok := in.LookupName("Jpk"); !ok || id != upper {
		t.Fatalf("LookupName = %d,%v", id, ok)
	}
	if _, ok := in.LookupName("missing"); ok {
		t.Fatalf("LookupName found an unknown name")
	}
}

func TestFoldNameNFC(t *testing.T) {
	// "e" + combining acute vs precomposed é
	decomposed := "cafe\u0301"
	if FoldName(decomposed) != FoldName("CAFÉ") {
		t.Fatalf("FoldName does not normalize: %q vs %q", FoldName(decomposed), FoldName("CAFÉ"))
	}
}
