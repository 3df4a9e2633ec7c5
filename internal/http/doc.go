// Package http provides the HTTP client used for SoundCloud API and media
// requests.
//
// The Client in this package handles:
//   - A browser User-Agent header on every request
//   - Mapping of non-2xx responses to typed errors
//   - Following short-link redirects
//   - Optional outbound rate limiting (see NewThrottle)
//   - Streaming downloads with progress tracking
//
// # Basic Usage
//
//	client := http.NewClient(http.WithTimeout(30 * time.Second))
//
//	body, err := client.Get(ctx, "https://api-v2.soundcloud.com/resolve?url=...")
//	if errors.Is(err, http.ErrRateLimitExceeded) {
//	    // back off
//	}
//
//	err = client.DownloadFile(ctx, mediaURL, "/music/song.mp3", func(p http.Progress) {
//	    if p.Known() {
//	        fmt.Printf("%.1f%%\r", p.Value()*100)
//	    }
//	})
//
// # Errors
//
// Every non-2xx response becomes a *StatusError carrying the method, URL
// and status code. It matches ErrRateLimitExceeded for 429 and
// ErrTransport otherwise; 404 additionally matches ErrNotFound.
//
// # Progress Tracking
//
// Stream and DownloadFile copy the body in fixed ChunkSize pieces and
// report a Progress after each one. When the server sends no
// Content-Length, Progress.Known is false and Progress.Value is a raw
// byte counter instead of a fraction.
package http
