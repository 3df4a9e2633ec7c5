package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// DefaultUserAgent is a desktop browser User-Agent accepted by SoundCloud.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/60.0.3112.113 Safari/537.36"

// DefaultTimeout bounds a whole request, body included.
const DefaultTimeout = 60 * time.Second

// maxErrorBody caps how much of a failed response is kept in a StatusError.
const maxErrorBody = 512

// Client wraps HTTP operations with SoundCloud-specific configuration.
//
// Example usage:
//
//	client := NewClient(WithLogger(logger))
//
//	// Fetch JSON
//	body, err := client.Get(ctx, resolveURL)
//
//	// Download a file with progress
//	err = client.DownloadFile(ctx, mediaURL, "/path/to/file.mp3", func(p Progress) {
//	    fmt.Printf("%.1f%%\n", p.Value()*100)
//	})
type Client struct {
	httpClient *http.Client
	userAgent  string
	logger     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithTimeout overrides DefaultTimeout. Zero disables the timeout, which
// is what long media downloads usually want.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithTransport replaces the underlying round tripper.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.httpClient.Transport = rt }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a new HTTP client.
//
// Without options the client uses DefaultTimeout, DefaultUserAgent and
// http.DefaultTransport.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  DefaultUserAgent,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends a request with the User-Agent set and converts non-2xx
// responses into a *StatusError. On success the caller owns resp.Body.
func (c *Client) do(ctx context.Context, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, redact(rawURL), err)
	}
	c.logger.Debug("http request",
		zap.String("method", method),
		zap.String("url", redact(rawURL)),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer closeBody(resp.Body)
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Method:     method,
			URL:        redact(resp.Request.URL.String()),
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
	return resp, nil
}

// Get performs a GET request and returns the response body as bytes.
//
// Example:
//
//	data, err := client.Get(ctx, "https://api-v2.soundcloud.com/tracks/123?client_id=...")
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", redact(rawURL), err)
	}
	return body, nil
}

// GetString performs a GET request and returns the response body as a string.
func (c *Client) GetString(ctx context.Context, rawURL string) (string, error) {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// ResolveRedirect follows redirects starting at rawURL and returns the
// final location without its query string and fragment.
func (c *Client) ResolveRedirect(ctx context.Context, rawURL string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, rawURL)
	if err != nil {
		return "", err
	}
	defer closeBody(resp.Body)

	final := *resp.Request.URL
	final.RawQuery = ""
	final.ForceQuery = false
	final.Fragment = ""
	final.RawFragment = ""
	return final.String(), nil
}

// GetFileSize returns the size of a file at the given URL via HEAD request.
//
// Returns an error if the server doesn't send a Content-Length header.
func (c *Client) GetFileSize(ctx context.Context, rawURL string) (int64, error) {
	resp, err := c.do(ctx, http.MethodHead, rawURL)
	if err != nil {
		return 0, err
	}
	defer closeBody(resp.Body)

	if resp.ContentLength < 0 {
		return 0, fmt.Errorf("no Content-Length header for %s", redact(rawURL))
	}
	return resp.ContentLength, nil
}

// DownloadBytes downloads a file and returns the bytes in memory.
//
// Use this for small files like artwork. For audio, use DownloadFile to
// stream directly to disk.
func (c *Client) DownloadBytes(ctx context.Context, rawURL string) ([]byte, error) {
	return c.Get(ctx, rawURL)
}

// closeBody drains what is left so the connection can be reused.
func closeBody(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 64<<10))
	_ = body.Close()
}

// redact hides the client_id query parameter in logs and errors.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if !q.Has("client_id") {
		return rawURL
	}
	q.Set("client_id", "REDACTED")
	u.RawQuery = q.Encode()
	return u.String()
}

// IsRetryable reports whether err is worth another attempt: rate limiting,
// server-side failures and network errors. Cancellation and 4xx responses
// other than 429 are not.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, ErrDownloadCanceled) {
		return false
	}
	if errors.Is(err, ErrRateLimitExceeded) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500
	}
	var ue *url.Error
	return errors.As(err, &ue) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, ErrContentLengthMismatch)
}
