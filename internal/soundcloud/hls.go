package soundcloud

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/grafov/m3u8"
)

// resolveHLS turns an HLS media playlist into a single URL serving the
// whole file. SoundCloud segment URLs have the form
// .../media/<start>/<end>/...; setting start to 0 on the last segment
// covers the full byte range.
func (c *Client) resolveHLS(ctx context.Context, playlistURL string) (string, error) {
	body, err := c.http.Get(ctx, playlistURL)
	if err != nil {
		return "", fmt.Errorf("fetching hls playlist: %w", err)
	}

	playlist, listType, err := m3u8.DecodeFrom(bytes.NewReader(body), true)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedPlaylist, err)
	}
	if listType != m3u8.MEDIA {
		return "", fmt.Errorf("%w: master playlist", ErrUnsupportedPlaylist)
	}

	media := playlist.(*m3u8.MediaPlaylist)
	var last *m3u8.MediaSegment
	for _, seg := range media.Segments {
		if seg != nil {
			last = seg
		}
	}
	if last == nil {
		return "", fmt.Errorf("%w: no segments", ErrUnsupportedPlaylist)
	}
	return fullRangeURL(playlistURL, last.URI)
}

// fullRangeURL resolves segment against the playlist URL and rewrites
// the range start that follows the "media" path segment to 0.
func fullRangeURL(playlistURL, segment string) (string, error) {
	base, err := url.Parse(playlistURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedPlaylist, err)
	}
	ref, err := url.Parse(segment)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnsupportedPlaylist, err)
	}
	u := base.ResolveReference(ref)

	parts := strings.Split(u.Path, "/")
	for i, p := range parts {
		if p == "media" && i+1 < len(parts) {
			parts[i+1] = "0"
			u.Path = strings.Join(parts, "/")
			u.RawPath = ""
			return u.String(), nil
		}
	}
	return "", fmt.Errorf("%w: segment %s has no media range", ErrUnsupportedPlaylist, segment)
}
