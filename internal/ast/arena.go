package ast

import (
	"fmt"
	"iter"

	"fortio.org/safecast"
)

// Arena stores the nodes or payloads of one kind. Index i lives in
// items[i-1], so the zero index never names a value.
type Arena[T any] struct {
	items []T
}

func NewArena[T any](capHint uint) *Arena[T] {
	return &Arena[T]{items: make([]T, 0, capHint)}
}

// Allocate stores value and returns its index.
func (a *Arena[T]) Allocate(value T) uint32 {
	a.items = append(a.items, value)
	return a.Len()
}

// Get returns nil for index 0 and for indices never allocated.
func (a *Arena[T]) Get(index uint32) *T {
	if index == 0 || uint64(index) > uint64(len(a.items)) {
		return nil
	}
	return &a.items[index-1]
}

func (a *Arena[T]) Len() uint32 {
	n, err := safecast.Conv[uint32](len(a.items))
	if err != nil {
		panic(fmt.Errorf("ast arena overflow: %w", err))
	}
	return n
}

// All yields every stored value with its index, oldest first.
func (a *Arena[T]) All() iter.Seq2[uint32, *T] {
	return func(yield func(uint32, *T) bool) {
		for i := range a.items {
			if !yield(uint32(i+1), &a.items[i]) { // #nosec G115 -- bounded by Len
				return
			}
		}
	}
}
