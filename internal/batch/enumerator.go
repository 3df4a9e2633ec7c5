package batch

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"golang.org/x/sync/errgroup"

	"github.com/handiism/soundcloud-downloader/internal/limiter"
)

// Done is returned by Next when the enumeration is exhausted.
var Done = errors.New("no more batches")

// FetchFunc fetches the page identified by cur.
type FetchFunc[T any] func(ctx context.Context, cur Cursor) (Page[T], error)

// EnrichFunc turns a bare item into a complete one.
type EnrichFunc[T any] func(ctx context.Context, item T) (T, error)

// Option configures an Enumerator.
type Option[T Identifiable] func(*Enumerator[T])

// WithEnrichment runs fn over every new item of a page before the batch
// is yielded. At most lim.MaxCount() calls run at once; a nil lim leaves
// them unbounded.
func WithEnrichment[T Identifiable](fn EnrichFunc[T], lim *limiter.Limiter) Option[T] {
	return func(e *Enumerator[T]) {
		e.enrich = fn
		e.lim = lim
	}
}

// Enumerator yields deduplicated batches from a paginated source. It is
// not safe for concurrent use and cannot be restarted; create a new one
// to enumerate again.
type Enumerator[T Identifiable] struct {
	fetch  FetchFunc[T]
	enrich EnrichFunc[T]
	lim    *limiter.Limiter

	cursor  Cursor
	seen    map[string]struct{}
	stale   int
	fetches int
	batches int
	err     error
}

// New returns an Enumerator starting at start.
func New[T Identifiable](start Cursor, fetch FetchFunc[T], opts ...Option[T]) *Enumerator[T] {
	e := &Enumerator[T]{
		fetch:  fetch,
		cursor: start,
		seen:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fetches returns how many pages have been requested so far.
func (e *Enumerator[T]) Fetches() int {
	return e.fetches
}

// Next returns the next non-empty batch. It returns Done once the
// enumeration has ended; any other error ends it as well and is
// returned again by later calls.
func (e *Enumerator[T]) Next(ctx context.Context) (Batch[T], error) {
	for e.err == nil {
		if err := ctx.Err(); err != nil {
			e.err = err
			break
		}

		page, err := e.fetch(ctx, e.cursor)
		e.fetches++
		if err != nil {
			e.err = err
			break
		}
		if len(page.Items) == 0 {
			e.err = Done
			break
		}

		fresh := e.filter(page.Items)
		e.advance(page.Next)

		if len(fresh) == 0 {
			// Nothing new twice in a row means the upstream is looping.
			e.stale++
			if e.stale > 1 {
				e.err = Done
			}
			continue
		}
		e.stale = 0

		if e.enrich != nil {
			if fresh, err = e.fanOut(ctx, fresh); err != nil {
				e.err = err
				break
			}
		}

		b := Batch[T]{index: e.batches, items: fresh}
		e.batches++
		return b, nil
	}
	return Batch[T]{}, e.err
}

// All adapts Next to a range-over-func iterator. Exhaustion ends the
// loop silently; any other error is yielded once as the final element.
func (e *Enumerator[T]) All(ctx context.Context) iter.Seq2[Batch[T], error] {
	return func(yield func(Batch[T], error) bool) {
		for {
			b, err := e.Next(ctx)
			if errors.Is(err, Done) {
				return
			}
			if !yield(b, err) || err != nil {
				return
			}
		}
	}
}

// Collect drains e and returns every item in order.
func Collect[T Identifiable](ctx context.Context, e *Enumerator[T]) ([]T, error) {
	var out []T
	for b, err := range e.All(ctx) {
		if err != nil {
			return out, err
		}
		out = append(out, b.items...)
	}
	return out, nil
}

func (e *Enumerator[T]) filter(items []T) []T {
	fresh := make([]T, 0, len(items))
	for _, item := range items {
		key := item.Key()
		if _, ok := e.seen[key]; ok {
			continue
		}
		e.seen[key] = struct{}{}
		fresh = append(fresh, item)
	}
	return fresh
}

// advance moves the cursor; a missing continuation ends the enumeration
// once the current page has been handled.
func (e *Enumerator[T]) advance(next Cursor) {
	switch {
	case next.IsZero():
		e.err = Done
	case e.cursor.Opaque() && !next.Opaque():
		e.err = Done
	default:
		e.cursor = next
	}
}

func (e *Enumerator[T]) fanOut(ctx context.Context, items []T) ([]T, error) {
	results := make([]T, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		g.Go(func() error {
			if e.lim != nil {
				ticket, err := e.lim.Acquire(gctx)
				if err != nil {
					return err
				}
				defer ticket.Release()
			}
			out, err := e.enrich(gctx, item)
			if err != nil {
				return fmt.Errorf("enrich %s: %w", item.Key(), err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
