package batch

import (
	"iter"
	"slices"
)

// Identifiable is implemented by items that can be deduplicated.
type Identifiable interface {
	// Key returns the stable identity of the item.
	Key() string
}

// Cursor identifies the page to fetch next. Once Href is set it
// supersedes Offset and Limit.
type Cursor struct {
	Offset int
	Limit  int
	Href   string
}

// IsZero reports whether the cursor points nowhere.
func (c Cursor) IsZero() bool {
	return c == Cursor{}
}

// Opaque reports whether the cursor is an upstream continuation token.
func (c Cursor) Opaque() bool {
	return c.Href != ""
}

// Page is the result of one upstream fetch. A zero Next ends the
// enumeration after this page.
type Page[T any] struct {
	Items []T
	Next  Cursor
}

// Batch is an immutable, ordered snapshot of the items yielded by one
// page fetch.
type Batch[T any] struct {
	index int
	items []T
}

// NewBatch wraps items in a Batch. The slice is copied.
func NewBatch[T any](index int, items []T) Batch[T] {
	return Batch[T]{index: index, items: slices.Clone(items)}
}

// Index returns the zero-based position of the batch in its enumeration.
func (b Batch[T]) Index() int { return b.index }

// Len returns the number of items.
func (b Batch[T]) Len() int { return len(b.items) }

// At returns the i-th item.
func (b Batch[T]) At(i int) T { return b.items[i] }

// Items returns a copy of the items.
func (b Batch[T]) Items() []T { return slices.Clone(b.items) }

// All iterates over the items in order.
func (b Batch[T]) All() iter.Seq[T] { return slices.Values(b.items) }
