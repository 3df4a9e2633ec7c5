package soundcloud

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"

	schttp "github.com/handiism/soundcloud-downloader/internal/http"
)

// Resolver turns a resource URL into the API's JSON for it.
//
// Short links (on.soundcloud.com/...) are followed to their target and
// mobile hosts (m.soundcloud.com) are rewritten before the single call
// to the resolve endpoint.
type Resolver struct {
	http       *schttp.Client
	endpoint   string
	shortLinks []string
}

// NewResolver creates a Resolver calling endpoint. extraShortLinkHosts
// are treated as short-link hosts in addition to on.soundcloud.*.
func NewResolver(h *schttp.Client, endpoint string, extraShortLinkHosts ...string) *Resolver {
	return &Resolver{
		http:       h,
		endpoint:   endpoint,
		shortLinks: extraShortLinkHosts,
	}
}

// Resolve returns the raw JSON payload describing rawURL.
//
// A 429 response yields an error matching ErrRateLimitExceeded; any
// other non-2xx yields ErrTransport (and ErrNotFound for 404).
func (r *Resolver) Resolve(ctx context.Context, auth Auth, rawURL string) ([]byte, error) {
	target, err := r.Canonicalize(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	endpoint, err := withQuery(r.endpoint, url.Values{
		"url":       {target},
		"client_id": {auth.ClientID},
	})
	if err != nil {
		return nil, fmt.Errorf("building resolve url: %w", err)
	}

	body, err := r.http.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", target, err)
	}
	return body, nil
}

// Canonicalize follows short links and strips the mobile host prefix.
func (r *Resolver) Canonicalize(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidResourceURL, rawURL)
	}

	if r.isShortLink(u.String()) {
		final, err := r.http.ResolveRedirect(ctx, u.String())
		if err != nil {
			return "", fmt.Errorf("following short link %s: %w", rawURL, err)
		}
		if u, err = url.Parse(final); err != nil {
			return "", fmt.Errorf("%w: %s", ErrInvalidResourceURL, final)
		}
	}

	u.Host = strings.TrimPrefix(u.Host, "m.")
	return u.String(), nil
}

func (r *Resolver) isShortLink(rawURL string) bool {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	return isShortLinkHost(host) || slices.Contains(r.shortLinks, u.Host) || slices.Contains(r.shortLinks, host)
}
