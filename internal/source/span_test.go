package source

import "testing"

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want Span
	}{
		{"disjoint", Span{File: 1, Start: 10, End: 20}, Span{File: 1, Start: 30, End: 35}, Span{File: 1, Start: 10, End: 35}},
		{"nested", Span{File: 1, Start: 10, End: 40}, Span{File: 1, Start: 12, End: 14}, Span{File: 1, Start: 10, End: 40}},
		{"other file", Span{File: 1, Start: 10, End: 20}, Span{File: 2, Start: 0, End: 5}, Span{File: 1, Start: 10, End: 20}},
		{"zero absorbs", Span{}, Span{File: 3, Start: 4, End: 9}, Span{File: 3, Start: 4, End: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.want {
				t.Errorf("Cover() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpanLen(t *testing.T) {
	s := Span{File: 0, Start: 3, End: 11}
	if s.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", s.Len())
	}
	if s.Empty() {
		t.Fatalf("span %v reported empty", s)
	}
	if got := s.String(); got != "0:3-11" {
		t.Fatalf("String() = %q", got)
	}
}
