package http

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrMustBePositive is returned by NewThrottle for a non-positive rate or burst.
var ErrMustBePositive = errors.New("must be greater than zero")

// throttle is an http.RoundTripper restricting outbound calls with a
// token bucket.
type throttle struct {
	limiter *rate.Limiter
	next    http.RoundTripper
	logger  *zap.Logger
}

// NewThrottle wraps next so that at most rps requests per second leave
// the process, with bursts of up to burst requests. Requests wait for a
// token or for their context to end.
func NewThrottle(rps float64, burst int, next http.RoundTripper, logger *zap.Logger) (http.RoundTripper, error) {
	if rps <= 0 || burst <= 0 {
		return nil, fmt.Errorf("rps[%v] and burst[%d] %w", rps, burst, ErrMustBePositive)
	}
	if next == nil {
		next = http.DefaultTransport
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &throttle{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		next:    next,
		logger:  logger,
	}, nil
}

// WithThrottle wraps the client's current transport with NewThrottle.
// Invalid values leave the transport unthrottled. Place it after
// WithTransport and WithLogger.
func WithThrottle(rps float64, burst int) Option {
	return func(c *Client) {
		rt, err := NewThrottle(rps, burst, c.httpClient.Transport, c.logger)
		if err != nil {
			c.logger.Warn("throttle disabled", zap.Error(err))
			return
		}
		c.httpClient.Transport = rt
	}
}

func (t *throttle) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()
	start := time.Now()
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("throttle wait: %w", err)
	}
	if waited := time.Since(start); waited > 10*time.Millisecond {
		t.logger.Debug("throttled request",
			zap.String("path", r.URL.Path),
			zap.Duration("waited", waited),
		)
	}
	return t.next.RoundTrip(r)
}
