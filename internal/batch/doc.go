// Package batch drives cursor-based pagination over an upstream API and
// turns it into a lazy, deduplicated sequence of item batches.
//
// An Enumerator is created with a starting Cursor and a FetchFunc that
// knows how to turn a cursor into one Page. Each call to Next performs
// at most the fetches needed to produce the next non-empty Batch:
//
//	e := batch.New(batch.Cursor{Limit: 50}, fetchPage)
//	for b, err := range e.All(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    for _, item := range b.Items() {
//	        // ...
//	    }
//	}
//
// Items are deduplicated by Key across the whole enumeration. The
// enumeration ends when a page comes back empty, when the response
// carries no continuation, or when two pages in a row contain nothing
// new. Errors from the fetch function are returned as-is and end the
// enumeration; retrying is left to the caller.
//
// With WithEnrichment each surviving item is passed through an
// EnrichFunc before its batch is yielded. Enrichment calls run
// concurrently, bounded by a limiter.Limiter, and results keep the
// order of the page.
package batch
