// Package limiter provides a resizable counting semaphore used to bound
// the number of in-flight upstream requests.
//
// # Admission
//
// A Limiter hands out Tickets. Each Ticket represents one held slot and
// must be released exactly once:
//
//	lim := limiter.New(4)
//	defer lim.Close()
//
//	ticket, err := lim.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer ticket.Release()
//
// Waiters are admitted in strict FIFO order. A later Acquire never jumps
// ahead of an earlier one that is still queued.
//
// # Resizing
//
// SetMaxCount changes the ceiling at runtime. Raising it admits queued
// waiters immediately; lowering it never revokes held tickets, it only
// holds back new admissions until enough tickets are released.
//
// # Shutdown
//
// Close fails every queued waiter with ErrClosed. Tickets already held
// stay valid and may still be released.
package limiter
