package soundcloud

import (
	"context"
	"fmt"
	"sync"

	"github.com/handiism/soundcloud-downloader/internal/batch"
	"github.com/handiism/soundcloud-downloader/internal/model"
)

// GetPlaylist resolves a playlist or album URL. With populate set, every
// track reference is replaced by the full track.
func (c *Client) GetPlaylist(ctx context.Context, auth Auth, rawURL string, populate bool) (*model.Playlist, error) {
	if err := c.checkPlaylistURL(rawURL); err != nil {
		return nil, err
	}
	res, err := c.resolveKind(ctx, auth, rawURL, model.KindPlaylist)
	if err != nil {
		return nil, err
	}
	p := res.Playlist
	if populate {
		if err := c.Populate(ctx, auth, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Populate replaces p's bare track references with full tracks.
func (c *Client) Populate(ctx context.Context, auth Auth, p *model.Playlist) error {
	tracks, err := batch.Collect(ctx, c.playlistTracks(auth, DefaultLimit, func(context.Context) (*model.Playlist, error) {
		return p, nil
	}))
	if err != nil {
		return fmt.Errorf("populating %s: %w", p.Title, err)
	}
	p.Tracks = tracks
	return nil
}

// PlaylistTracks enumerates the tracks of a playlist, starting at the
// offset-th track. Each batch holds at most min(limit, MaxIDsPerRequest)
// tracks and costs at most one bulk request. The playlist itself is
// resolved by the first call to Next.
func (c *Client) PlaylistTracks(auth Auth, rawURL string, offset, limit int) (*batch.Enumerator[*model.Track], error) {
	if err := c.checkPlaylistURL(rawURL); err != nil {
		return nil, err
	}
	if err := validatePaging(offset, limit); err != nil {
		return nil, err
	}

	return c.playlistTracks(auth, limit, func(ctx context.Context) (*model.Playlist, error) {
		res, err := c.resolveKind(ctx, auth, rawURL, model.KindPlaylist)
		if err != nil {
			return nil, err
		}
		p := res.Playlist
		if offset >= len(p.Tracks) {
			p.Tracks = nil
		} else {
			p.Tracks = p.Tracks[offset:]
		}
		return p, nil
	}), nil
}

func (c *Client) playlistTracks(auth Auth, limit int, load func(context.Context) (*model.Playlist, error)) *batch.Enumerator[*model.Track] {
	size := min(limit, MaxIDsPerRequest)

	var (
		once     sync.Once
		playlist *model.Playlist
		loadErr  error
	)
	fetch := func(ctx context.Context, cur batch.Cursor) (batch.Page[*model.Track], error) {
		once.Do(func() { playlist, loadErr = load(ctx) })
		if loadErr != nil {
			return batch.Page[*model.Track]{}, loadErr
		}

		// The reference list is known, so a chunk whose tracks are all
		// gone moves on to the next one instead of ending the playlist.
		refs := playlist.Tracks
		for offset := cur.Offset; offset < len(refs); {
			end := min(offset+size, len(refs))
			tracks, err := c.fillTracks(ctx, auth, refs[offset:end], playlist.Title)
			if err != nil {
				return batch.Page[*model.Track]{}, err
			}
			if len(tracks) == 0 {
				offset = end
				continue
			}
			page := batch.Page[*model.Track]{Items: tracks}
			if end < len(refs) {
				page.Next = batch.Cursor{Offset: end, Limit: size}
			}
			return page, nil
		}
		return batch.Page[*model.Track]{}, nil
	}
	return batch.New(batch.Cursor{Offset: 0, Limit: size}, fetch)
}

func (c *Client) checkPlaylistURL(rawURL string) error {
	switch ClassifyURL(rawURL) {
	case URLPlaylist, URLShortLink:
		return nil
	}
	if c.resolver.isShortLink(rawURL) {
		return nil
	}
	return fmt.Errorf("%w: %s is not a playlist url", ErrInvalidResourceURL, rawURL)
}
