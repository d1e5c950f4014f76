package diag

import (
	"cmp"
	"math"
	"slices"

	"fortio.org/safecast"
)

// Bag collects the diagnostics of one snapshot up to a limit.
type Bag struct {
	items []Diagnostic
	max   uint16
}

// NewBag creates a bag holding at most max diagnostics; non-positive or
// oversized limits mean the largest supported capacity.
func NewBag(max int) *Bag {
	limit, err := safecast.Conv[uint16](max)
	if err != nil || limit == 0 {
		limit = math.MaxUint16
	}
	return &Bag{items: make([]Diagnostic, 0, min(int(limit), 64)), max: limit}
}

// Add appends d unless the bag is full and reports whether it was kept.
func (b *Bag) Add(d Diagnostic) bool {
	if len(b.items) >= int(b.max) {
		return false
	}
	b.items = append(b.items, d)
	return true
}

func (b *Bag) Cap() uint16 { return b.max }

func (b *Bag) Len() int { return len(b.items) }

// HasErrors reports whether any diagnostic is an error.
func (b *Bag) HasErrors() bool { return b.atLeast(SevError) }

// HasWarnings reports whether any diagnostic is a warning or worse.
func (b *Bag) HasWarnings() bool { return b.atLeast(SevWarning) }

func (b *Bag) atLeast(sev Severity) bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity >= sev })
}

// Count returns the number of diagnostics with exactly the given severity.
func (b *Bag) Count(sev Severity) int {
	n := 0
	for i := range b.items {
		if b.items[i].Severity == sev {
			n++
		}
	}
	return n
}

// Items returns the stored diagnostics. The slice aliases the bag and must
// not be modified.
func (b *Bag) Items() []Diagnostic {
	return b.items
}

// Filter keeps only diagnostics for which keep returns true.
func (b *Bag) Filter(keep func(Diagnostic) bool) {
	b.items = slices.DeleteFunc(b.items, func(d Diagnostic) bool { return !keep(d) })
}

// Merge appends the diagnostics of other, raising the limit of b when the
// union would not fit.
func (b *Bag) Merge(other *Bag) {
	if other == nil {
		return
	}
	total := len(b.items) + len(other.items)
	if total > int(b.max) {
		b.max = uint16(min(total, math.MaxUint16))
	}
	b.items = append(b.items, other.items[:min(len(other.items), int(b.max)-len(b.items))]...)
}

// Sort orders diagnostics by file, start, end, severity (errors first) and
// code. Equal diagnostics keep their report order.
func (b *Bag) Sort() {
	slices.SortStableFunc(b.items, func(x, y Diagnostic) int {
		return cmp.Or(
			cmp.Compare(x.Primary.File, y.Primary.File),
			cmp.Compare(x.Primary.Start, y.Primary.Start),
			cmp.Compare(x.Primary.End, y.Primary.End),
			cmp.Compare(y.Severity, x.Severity),
			cmp.Compare(x.Code, y.Code),
		)
	})
}
