package soundcloud

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"

	"go.uber.org/zap"
)

// DefaultClientID is a public web client id. It is rotated by SoundCloud
// from time to time; FetchClientID obtains a current one.
const DefaultClientID = "a3e059563d7fd3372b49b37f00a00bcf"

// Auth carries the API credentials for one or more calls. It is a value:
// refreshing the client id produces a new Auth and never affects
// requests already in flight.
type Auth struct {
	ClientID string
}

// DefaultAuth returns an Auth using DefaultClientID.
func DefaultAuth() Auth {
	return Auth{ClientID: DefaultClientID}
}

// WithClientID returns a copy of a with the client id replaced.
func (a Auth) WithClientID(id string) Auth {
	a.ClientID = id
	return a
}

var (
	scriptSrcPattern = regexp.MustCompile(`<script[^>]+src="([^"]+)"`)
	clientIDPattern  = regexp.MustCompile(`[,{(]client_id\s*:\s*"([0-9A-Za-z]+)"`)
)

// FetchClientID scrapes the site's JavaScript bundles for the client id
// the web player uses. Bundles are tried from the last one backwards.
func (c *Client) FetchClientID(ctx context.Context) (Auth, error) {
	page, err := c.http.GetString(ctx, c.siteBase)
	if err != nil {
		return Auth{}, fmt.Errorf("fetch client id: %w", err)
	}

	base, err := url.Parse(c.siteBase)
	if err != nil {
		return Auth{}, fmt.Errorf("fetch client id: %w", err)
	}

	scripts := scriptSrcPattern.FindAllStringSubmatch(page, -1)
	for i := len(scripts) - 1; i >= 0; i-- {
		ref, err := url.Parse(scripts[i][1])
		if err != nil {
			continue
		}
		src := base.ResolveReference(ref).String()
		js, err := c.http.GetString(ctx, src)
		if err != nil {
			if errors.Is(err, ErrRateLimitExceeded) || ctx.Err() != nil {
				return Auth{}, fmt.Errorf("fetch client id: %w", err)
			}
			c.logger.Debug("skipping script", zap.String("src", src), zap.Error(err))
			continue
		}
		if m := clientIDPattern.FindStringSubmatch(js); m != nil {
			return Auth{ClientID: m[1]}, nil
		}
	}
	return Auth{}, ErrClientIDNotFound
}
