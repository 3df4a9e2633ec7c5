package soundcloud

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	schttp "github.com/handiism/soundcloud-downloader/internal/http"
	"github.com/handiism/soundcloud-downloader/internal/model"
)

// MediaURL selects the best rendition of t and returns a direct URL to
// its audio together with the rendition chosen.
//
// Blocked tracks fail with ErrResourceUnavailable before any request is
// made. Bare track references are fetched in full first.
func (c *Client) MediaURL(ctx context.Context, auth Auth, t *model.Track) (string, model.Rendition, error) {
	if t.Blocked() {
		return "", model.Rendition{}, fmt.Errorf("%w: %q is blocked", ErrResourceUnavailable, t.Title)
	}
	if !t.Full {
		full, err := c.GetTrackByID(ctx, auth, t.ID)
		if err != nil {
			return "", model.Rendition{}, err
		}
		full.PlaylistName, full.Number = t.PlaylistName, t.Number
		*t = *full
		if t.Blocked() {
			return "", model.Rendition{}, fmt.Errorf("%w: %q is blocked", ErrResourceUnavailable, t.Title)
		}
	}

	r, err := SelectRendition(t.Renditions)
	if err != nil {
		return "", model.Rendition{}, fmt.Errorf("%w: %q: %w", ErrResourceUnavailable, t.Title, err)
	}

	params := url.Values{"client_id": {auth.ClientID}}
	if t.TrackAuthorization != "" {
		params.Set("track_authorization", t.TrackAuthorization)
	}
	endpoint, err := withQuery(r.URL, params)
	if err != nil {
		return "", r, fmt.Errorf("building rendition url: %w", err)
	}
	body, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return "", r, fmt.Errorf("rendition of %q: %w", t.Title, err)
	}

	media := gjson.GetBytes(body, "url").String()
	if media == "" {
		return "", r, fmt.Errorf("%w: rendition of %q has no url", ErrResourceUnavailable, t.Title)
	}
	if r.IsHLS() || strings.Contains(media, ".m3u8") {
		if media, err = c.resolveHLS(ctx, media); err != nil {
			return "", r, err
		}
	}

	c.logger.Debug("media url selected",
		zap.Int64("track", t.ID),
		zap.String("quality", r.Quality),
		zap.String("mime", r.MimeType),
		zap.String("protocol", r.Protocol),
	)
	return media, r, nil
}

// Download streams the audio of t into w and returns the number of bytes
// written. onProgress may be nil.
func (c *Client) Download(ctx context.Context, auth Auth, t *model.Track, w io.Writer, onProgress schttp.ProgressFunc) (int64, error) {
	media, _, err := c.MediaURL(ctx, auth, t)
	if err != nil {
		return 0, err
	}
	return c.http.Stream(ctx, media, w, onProgress)
}

// DownloadFile saves the audio of t to destPath. Nothing is left at
// destPath when the download fails.
func (c *Client) DownloadFile(ctx context.Context, auth Auth, t *model.Track, destPath string, onProgress schttp.ProgressFunc) error {
	media, _, err := c.MediaURL(ctx, auth, t)
	if err != nil {
		return err
	}
	return c.http.DownloadFile(ctx, media, destPath, onProgress)
}
