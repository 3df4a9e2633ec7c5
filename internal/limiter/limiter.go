package limiter

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
)

// ErrClosed is returned by Acquire when the limiter has been closed.
var ErrClosed = errors.New("limiter closed")

// Unbounded is the ceiling used when no limit is wanted.
const Unbounded = math.MaxInt

// Limiter is a FIFO counting semaphore whose ceiling can be changed
// while it is in use.
type Limiter struct {
	mu      sync.Mutex
	max     int
	held    int
	waiters *list.List // of *waiter
	closed  bool
	done    chan struct{}
}

type waiter struct {
	ready   chan struct{}
	granted bool
}

// Ticket is one held admission slot.
type Ticket struct {
	lim  *Limiter
	once sync.Once
}

// New creates a Limiter admitting at most maxCount concurrent holders.
// It panics if maxCount is negative.
func New(maxCount int) *Limiter {
	if maxCount < 0 {
		panic(fmt.Sprintf("limiter: negative max count %d", maxCount))
	}
	return &Limiter{
		max:     maxCount,
		waiters: list.New(),
		done:    make(chan struct{}),
	}
}

// MaxCount returns the current admission ceiling.
func (l *Limiter) MaxCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.max
}

// Held returns the number of tickets currently outstanding.
func (l *Limiter) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}

// Waiting returns the number of queued Acquire calls.
func (l *Limiter) Waiting() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.waiters.Len()
}

// SetMaxCount changes the admission ceiling and admits any queued
// waiters that now fit. It panics if n is negative.
func (l *Limiter) SetMaxCount(n int) {
	if n < 0 {
		panic(fmt.Sprintf("limiter: negative max count %d", n))
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.max = n
	l.admit()
}

// Acquire blocks until a slot is free, ctx is done or the limiter is
// closed. On success the caller owns the returned Ticket and must
// release it.
func (l *Limiter) Acquire(ctx context.Context) (*Ticket, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("acquire: %w", err)
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil, ErrClosed
	}
	if l.waiters.Len() == 0 && l.held < l.max {
		l.held++
		l.mu.Unlock()
		return &Ticket{lim: l}, nil
	}
	w := &waiter{ready: make(chan struct{})}
	elem := l.waiters.PushBack(w)
	l.mu.Unlock()

	var err error
	select {
	case <-w.ready:
		return &Ticket{lim: l}, nil
	case <-ctx.Done():
		err = fmt.Errorf("acquire: %w", ctx.Err())
	case <-l.done:
		err = ErrClosed
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if w.granted {
		// Admitted concurrently with cancellation: hand the slot on.
		l.held--
		l.admit()
		return nil, err
	}
	l.waiters.Remove(elem)
	return nil, err
}

// TryAcquire takes a slot only if one is free right now and nobody is
// queued ahead.
func (l *Limiter) TryAcquire() (*Ticket, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.waiters.Len() > 0 || l.held >= l.max {
		return nil, false
	}
	l.held++
	return &Ticket{lim: l}, true
}

// Close fails all queued waiters with ErrClosed and rejects future
// Acquire calls. It is safe to call more than once.
func (l *Limiter) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	for e := l.waiters.Front(); e != nil; {
		next := e.Next()
		l.waiters.Remove(e)
		e = next
	}
	close(l.done)
}

// Release gives the slot back. Calling it more than once is a no-op.
func (t *Ticket) Release() {
	t.once.Do(t.lim.release)
}

func (l *Limiter) release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.held--
	l.admit()
}

// admit grants queued waiters in FIFO order while slots are free.
// Callers must hold l.mu.
func (l *Limiter) admit() {
	for l.held < l.max {
		front := l.waiters.Front()
		if front == nil {
			return
		}
		w := l.waiters.Remove(front).(*waiter)
		w.granted = true
		l.held++
		close(w.ready)
	}
}
