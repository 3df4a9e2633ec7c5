package soundcloud

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	schttp "github.com/handiism/soundcloud-downloader/internal/http"
	"github.com/handiism/soundcloud-downloader/internal/limiter"
	"github.com/handiism/soundcloud-downloader/internal/model"
	"github.com/handiism/soundcloud-downloader/internal/soundcloud/dto"
)

// Default endpoints.
const (
	DefaultAPIBase  = "https://api-v2.soundcloud.com"
	DefaultSiteBase = "https://soundcloud.com"
)

// Page size bounds for collection endpoints.
const (
	MinLimit     = 1
	MaxLimit     = 200
	DefaultLimit = 50

	// MaxIDsPerRequest is the most ids the tracks endpoint accepts at once.
	MaxIDsPerRequest = 50
)

// Client talks to the SoundCloud API. It holds no credentials; every
// operation takes an Auth.
type Client struct {
	http     *schttp.Client
	resolver *Resolver
	limiter  *limiter.Limiter
	logger   *zap.Logger

	apiBase    string
	siteBase   string
	shortLinks []string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport client.
func WithHTTPClient(h *schttp.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithAPIBase overrides DefaultAPIBase.
func WithAPIBase(base string) Option {
	return func(c *Client) { c.apiBase = base }
}

// WithSiteBase overrides DefaultSiteBase.
func WithSiteBase(base string) Option {
	return func(c *Client) { c.siteBase = base }
}

// WithShortLinkHosts adds hosts treated as short links in addition to
// on.soundcloud.*.
func WithShortLinkHosts(hosts ...string) Option {
	return func(c *Client) { c.shortLinks = append(c.shortLinks, hosts...) }
}

// WithLimiter sets the limiter bounding enrichment fan-out.
func WithLimiter(lim *limiter.Limiter) Option {
	return func(c *Client) { c.limiter = lim }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a Client. By default it allows 8 concurrent enrichment
// requests.
func New(opts ...Option) *Client {
	c := &Client{
		apiBase:  DefaultAPIBase,
		siteBase: DefaultSiteBase,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = schttp.NewClient(schttp.WithLogger(c.logger))
	}
	if c.limiter == nil {
		c.limiter = limiter.New(8)
	}
	c.resolver = NewResolver(c.http, c.apiBase+"/resolve", c.shortLinks...)
	return c
}

// Limiter returns the limiter bounding enrichment fan-out. Its ceiling
// may be changed while enumerations run.
func (c *Client) Limiter() *limiter.Limiter {
	return c.limiter
}

// HTTP returns the underlying transport client.
func (c *Client) HTTP() *schttp.Client {
	return c.http
}

// Resolver returns the client's resolver.
func (c *Client) Resolver() *Resolver {
	return c.resolver
}

// Resolve looks up rawURL and returns it as a Resource of whatever kind
// the server reports.
func (c *Client) Resolve(ctx context.Context, auth Auth, rawURL string) (model.Resource, error) {
	if ClassifyURL(rawURL) == URLUnknown && !c.resolver.isShortLink(rawURL) {
		return model.Resource{}, fmt.Errorf("%w: %s", ErrInvalidResourceURL, rawURL)
	}
	body, err := c.resolver.Resolve(ctx, auth, userPermalink(rawURL))
	if err != nil {
		return model.Resource{}, err
	}
	return decodeResource(body)
}

// decodeResource decodes a resolved payload by its kind field.
func decodeResource(body []byte) (model.Resource, error) {
	switch kind := gjson.GetBytes(body, "kind").String(); kind {
	case "track":
		var jt dto.JSONTrack
		if err := json.Unmarshal(body, &jt); err != nil {
			return model.Resource{}, fmt.Errorf("decoding track: %w", err)
		}
		return model.NewTrackResource(jt.ToTrack()), nil
	case "playlist", "system-playlist":
		var jp dto.JSONPlaylist
		if err := json.Unmarshal(body, &jp); err != nil {
			return model.Resource{}, fmt.Errorf("decoding playlist: %w", err)
		}
		return model.NewPlaylistResource(jp.ToPlaylist()), nil
	case "user":
		var ju dto.JSONUser
		if err := json.Unmarshal(body, &ju); err != nil {
			return model.Resource{}, fmt.Errorf("decoding user: %w", err)
		}
		return model.NewUserResource(ju.ToUser()), nil
	default:
		return model.Resource{}, fmt.Errorf("%w: unsupported kind %q", ErrInvalidResourceURL, kind)
	}
}

// resolveKind resolves rawURL and fails unless it is of kind want.
func (c *Client) resolveKind(ctx context.Context, auth Auth, rawURL string, want model.ResourceKind) (model.Resource, error) {
	res, err := c.Resolve(ctx, auth, rawURL)
	if err != nil {
		return model.Resource{}, err
	}
	if res.Kind != want {
		return model.Resource{}, fmt.Errorf("%w: %s is a %s, not a %s", ErrInvalidResourceURL, rawURL, res.Kind, want)
	}
	return res, nil
}

func validateLimit(limit int) error {
	if limit < MinLimit || limit > MaxLimit {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidLimit, limit, MinLimit, MaxLimit)
	}
	return nil
}

// validatePaging checks the offset and page size every enumerator takes.
func validatePaging(offset, limit int) error {
	if err := validateLimit(limit); err != nil {
		return err
	}
	if offset < 0 {
		return fmt.Errorf("%w: negative offset %d", ErrInvalidLimit, offset)
	}
	return nil
}
