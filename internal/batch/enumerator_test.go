package batch

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/soundcloud-downloader/internal/limiter"
)

type item struct {
	id   int
	full bool
}

func (i item) Key() string { return strconv.Itoa(i.id) }

func items(ids ...int) []item {
	out := make([]item, len(ids))
	for n, id := range ids {
		out[n] = item{id: id}
	}
	return out
}

func ids(in []item) []int {
	out := make([]int, len(in))
	for n, it := range in {
		out[n] = it.id
	}
	return out
}

// pages serves a fixed list of pages linked by opaque hrefs.
func pages(p ...[]item) (FetchFunc[item], *atomic.Int32) {
	var calls atomic.Int32
	return func(_ context.Context, cur Cursor) (Page[item], error) {
		calls.Add(1)
		n := 0
		if cur.Opaque() {
			n, _ = strconv.Atoi(cur.Href)
		}
		if n >= len(p) {
			return Page[item]{}, nil
		}
		page := Page[item]{Items: p[n]}
		if n+1 < len(p) {
			page.Next = Cursor{Href: strconv.Itoa(n + 1)}
		}
		return page, nil
	}, &calls
}

func TestEnumeratorDeduplicates(t *testing.T) {
	fetch, _ := pages(items(1, 2, 3), items(3, 4, 1), items(5, 5, 6))
	got, err := Collect(context.Background(), New(Cursor{Limit: 3}, fetch))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, ids(got))
}

func TestEnumeratorBatchesFollowPageOrder(t *testing.T) {
	fetch, _ := pages(items(1, 2), items(3), items(4, 5))
	e := New(Cursor{}, fetch)

	var got [][]int
	for b, err := range e.All(context.Background()) {
		require.NoError(t, err)
		assert.Equal(t, len(got), b.Index())
		got = append(got, ids(b.Items()))
	}
	assert.Equal(t, [][]int{{1, 2}, {3}, {4, 5}}, got)
}

func TestEnumeratorStopsWithoutNextCursor(t *testing.T) {
	fetch, calls := pages(items(1, 2))
	e := New(Cursor{}, fetch)

	b, err := e.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, b.Len())

	_, err = e.Next(context.Background())
	assert.ErrorIs(t, err, Done)
	_, err = e.Next(context.Background())
	assert.ErrorIs(t, err, Done)
	assert.EqualValues(t, 1, calls.Load())
}

func TestEnumeratorStopsOnEmptyPage(t *testing.T) {
	fetch := func(_ context.Context, cur Cursor) (Page[item], error) {
		if cur.Offset >= 4 {
			return Page[item]{Next: Cursor{Offset: cur.Offset + 2, Limit: 2}}, nil
		}
		return Page[item]{
			Items: items(cur.Offset, cur.Offset+1),
			Next:  Cursor{Offset: cur.Offset + 2, Limit: 2},
		}, nil
	}
	e := New(Cursor{Limit: 2}, fetch)
	got, err := Collect(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, ids(got))
	assert.Equal(t, 3, e.Fetches())
}

func TestEnumeratorSkipsDuplicateOnlyPage(t *testing.T) {
	fetch, calls := pages(items(1, 2), items(1, 2), items(3))
	got, err := Collect(context.Background(), New(Cursor{}, fetch))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, ids(got))
	assert.EqualValues(t, 3, calls.Load())
}

func TestEnumeratorEndsAfterRepeatedStalePages(t *testing.T) {
	fetch, calls := pages(items(1), items(1), items(1), items(2))
	got, err := Collect(context.Background(), New(Cursor{}, fetch))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, ids(got))
	assert.EqualValues(t, 3, calls.Load())
}

func TestEnumeratorOpaqueCursorSupersedesOffset(t *testing.T) {
	var seen []Cursor
	fetch := func(_ context.Context, cur Cursor) (Page[item], error) {
		seen = append(seen, cur)
		switch len(seen) {
		case 1:
			return Page[item]{Items: items(1), Next: Cursor{Href: "next"}}, nil
		default:
			// offset-only continuation after an opaque one is ignored
			return Page[item]{Items: items(2), Next: Cursor{Offset: 10}}, nil
		}
	}
	got, err := Collect(context.Background(), New(Cursor{Offset: 0, Limit: 1}, fetch))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, ids(got))
	assert.Equal(t, []Cursor{{Limit: 1}, {Href: "next"}}, seen)
}

func TestEnumeratorEndlessUntilCanceled(t *testing.T) {
	var n atomic.Int32
	fetch := func(_ context.Context, cur Cursor) (Page[item], error) {
		id := int(n.Add(1))
		return Page[item]{Items: items(id), Next: Cursor{Href: strconv.Itoa(id)}}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := New(Cursor{}, fetch)
	for range 100 {
		_, err := e.Next(ctx)
		require.NoError(t, err)
	}
	cancel()
	_, err := e.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

var errRateLimited = errors.New("rate limited")

func TestEnumeratorPropagatesFetchError(t *testing.T) {
	var calls int
	fetch := func(_ context.Context, cur Cursor) (Page[item], error) {
		calls++
		if calls == 2 {
			return Page[item]{}, fmt.Errorf("page 2: %w", errRateLimited)
		}
		return Page[item]{Items: items(calls), Next: Cursor{Href: "x" + strconv.Itoa(calls)}}, nil
	}
	e := New(Cursor{}, fetch)

	_, err := e.Next(context.Background())
	require.NoError(t, err)
	_, err = e.Next(context.Background())
	assert.ErrorIs(t, err, errRateLimited)
	_, err = e.Next(context.Background())
	assert.ErrorIs(t, err, errRateLimited)
	assert.Equal(t, 2, calls)
}

func TestEnumeratorEnrichmentKeepsOrder(t *testing.T) {
	fetch, _ := pages(items(1, 2, 3, 4, 5, 6, 7, 8), items(9, 10, 11, 12))
	lim := limiter.New(3)

	var inFlight, peak atomic.Int32
	enrich := func(ctx context.Context, it item) (item, error) {
		cur := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(time.Duration(rand.IntN(5)) * time.Millisecond)
		it.full = true
		return it, nil
	}

	e := New(Cursor{}, fetch, WithEnrichment(enrich, lim))
	got, err := Collect(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, ids(got))
	for _, it := range got {
		assert.True(t, it.full)
	}
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Equal(t, 0, lim.Held())
}

func TestEnumeratorEnrichmentError(t *testing.T) {
	fetch, _ := pages(items(1, 2, 3))
	boom := errors.New("boom")
	enrich := func(_ context.Context, it item) (item, error) {
		if it.id == 2 {
			return it, boom
		}
		return it, nil
	}
	lim := limiter.New(2)
	_, err := New(Cursor{}, fetch, WithEnrichment(enrich, lim)).Next(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, lim.Held())
}

func TestBatchIsImmutable(t *testing.T) {
	src := items(1, 2)
	b := NewBatch(0, src)
	src[0].id = 99

	out := b.Items()
	out[1].id = 42
	assert.Equal(t, []int{1, 2}, ids(b.Items()))
	assert.Equal(t, 1, b.At(0).id)
}
