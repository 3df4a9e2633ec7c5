package http

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrRateLimitExceeded is matched by responses with status 429.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrTransport is matched by every other non-2xx response.
	ErrTransport = errors.New("transport failure")

	// ErrNotFound is matched by 404 responses.
	ErrNotFound = errors.New("not found")

	// ErrDownloadCanceled is returned when a stream is interrupted by
	// its context.
	ErrDownloadCanceled = errors.New("download canceled")

	// ErrContentLengthMismatch is returned when fewer or more bytes
	// arrive than the server announced.
	ErrContentLengthMismatch = errors.New("content length mismatch")
)

// StatusError describes a non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap exposes the sentinel errors the status maps to.
func (e *StatusError) Unwrap() []error {
	switch e.StatusCode {
	case http.StatusTooManyRequests:
		return []error{ErrRateLimitExceeded}
	case http.StatusNotFound:
		return []error{ErrNotFound, ErrTransport}
	default:
		return []error{ErrTransport}
	}
}
