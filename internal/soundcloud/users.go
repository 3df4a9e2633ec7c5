package soundcloud

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/goccy/go-json"

	"github.com/handiism/soundcloud-downloader/internal/batch"
	"github.com/handiism/soundcloud-downloader/internal/model"
	"github.com/handiism/soundcloud-downloader/internal/soundcloud/dto"
)

// TrackSort selects which of a user's tracks are listed.
type TrackSort int

const (
	// SortRecent lists uploads, newest first.
	SortRecent TrackSort = iota

	// SortPopular lists the user's most played tracks.
	SortPopular
)

func (s TrackSort) path() string {
	if s == SortPopular {
		return "toptracks"
	}
	return "tracks"
}

// GetUser resolves a user URL.
func (c *Client) GetUser(ctx context.Context, auth Auth, rawURL string) (*model.User, error) {
	if err := c.checkUserURL(rawURL); err != nil {
		return nil, err
	}
	res, err := c.resolveKind(ctx, auth, rawURL, model.KindUser)
	if err != nil {
		return nil, err
	}
	return res.User, nil
}

// UserTracks enumerates a user's tracks.
func (c *Client) UserTracks(auth Auth, rawURL string, sort TrackSort, offset, limit int) (*batch.Enumerator[*model.Track], error) {
	endpoint, err := c.userEndpoint(auth, rawURL, sort.path(), offset, limit)
	if err != nil {
		return nil, err
	}
	return c.userTracks(auth, endpoint, offset, limit), nil
}

// UserTracksOf is UserTracks for an already resolved user.
func (c *Client) UserTracksOf(auth Auth, u *model.User, sort TrackSort, offset, limit int) (*batch.Enumerator[*model.Track], error) {
	endpoint, err := c.userIDEndpoint(u, sort.path(), offset, limit)
	if err != nil {
		return nil, err
	}
	return c.userTracks(auth, endpoint, offset, limit), nil
}

func (c *Client) userTracks(auth Auth, endpoint func(context.Context) (string, error), offset, limit int) *batch.Enumerator[*model.Track] {
	fetch := collectionFetcher(c, auth, endpoint, decodeTrack)
	return batch.New(batch.Cursor{Offset: offset, Limit: limit}, fetch)
}

// UserPlaylists enumerates a user's playlists. With populate set, each
// playlist's tracks are fetched before its batch is yielded, at most
// Limiter().MaxCount() playlists at a time.
func (c *Client) UserPlaylists(auth Auth, rawURL string, offset, limit int, populate bool) (*batch.Enumerator[*model.Playlist], error) {
	endpoint, err := c.userEndpoint(auth, rawURL, "playlists", offset, limit)
	if err != nil {
		return nil, err
	}
	return c.userSets(auth, endpoint, offset, limit, populate), nil
}

// UserAlbums enumerates a user's albums. See UserPlaylists.
func (c *Client) UserAlbums(auth Auth, rawURL string, offset, limit int, populate bool) (*batch.Enumerator[*model.Playlist], error) {
	endpoint, err := c.userEndpoint(auth, rawURL, "albums", offset, limit)
	if err != nil {
		return nil, err
	}
	return c.userSets(auth, endpoint, offset, limit, populate), nil
}

// UserPlaylistsOf is UserPlaylists for an already resolved user.
func (c *Client) UserPlaylistsOf(auth Auth, u *model.User, offset, limit int, populate bool) (*batch.Enumerator[*model.Playlist], error) {
	endpoint, err := c.userIDEndpoint(u, "playlists", offset, limit)
	if err != nil {
		return nil, err
	}
	return c.userSets(auth, endpoint, offset, limit, populate), nil
}

// UserAlbumsOf is UserAlbums for an already resolved user.
func (c *Client) UserAlbumsOf(auth Auth, u *model.User, offset, limit int, populate bool) (*batch.Enumerator[*model.Playlist], error) {
	endpoint, err := c.userIDEndpoint(u, "albums", offset, limit)
	if err != nil {
		return nil, err
	}
	return c.userSets(auth, endpoint, offset, limit, populate), nil
}

func (c *Client) userSets(auth Auth, endpoint func(context.Context) (string, error), offset, limit int, populate bool) *batch.Enumerator[*model.Playlist] {
	fetch := collectionFetcher(c, auth, endpoint, decodePlaylist)

	var opts []batch.Option[*model.Playlist]
	if populate {
		opts = append(opts, batch.WithEnrichment(func(ctx context.Context, p *model.Playlist) (*model.Playlist, error) {
			if err := c.Populate(ctx, auth, p); err != nil {
				return nil, err
			}
			return p, nil
		}, c.limiter))
	}
	return batch.New(batch.Cursor{Offset: offset, Limit: limit}, fetch, opts...)
}

// userEndpoint validates the arguments and returns a lazy builder of
// /users/{id}/{tab} that resolves the user once.
func (c *Client) userEndpoint(auth Auth, rawURL, tab string, offset, limit int) (func(context.Context) (string, error), error) {
	if err := c.checkUserURL(rawURL); err != nil {
		return nil, err
	}
	if err := validatePaging(offset, limit); err != nil {
		return nil, err
	}

	var (
		once sync.Once
		base string
		err  error
	)
	return func(ctx context.Context) (string, error) {
		once.Do(func() {
			var u *model.User
			if u, err = c.GetUser(ctx, auth, rawURL); err == nil {
				base = c.userTab(u.ID, tab)
			}
		})
		return base, err
	}, nil
}

func (c *Client) userIDEndpoint(u *model.User, tab string, offset, limit int) (func(context.Context) (string, error), error) {
	if u == nil || u.ID == 0 {
		return nil, fmt.Errorf("%w: user has no id", ErrInvalidResourceURL)
	}
	if err := validatePaging(offset, limit); err != nil {
		return nil, err
	}
	return staticEndpoint(c.userTab(u.ID, tab)), nil
}

func (c *Client) userTab(id int64, tab string) string {
	return c.apiBase + "/users/" + strconv.FormatInt(id, 10) + "/" + tab
}

func (c *Client) checkUserURL(rawURL string) error {
	switch ClassifyURL(rawURL) {
	case URLUser, URLShortLink:
		return nil
	}
	if c.resolver.isShortLink(rawURL) {
		return nil
	}
	return fmt.Errorf("%w: %s is not a user url", ErrInvalidResourceURL, rawURL)
}

func decodeTrack(raw []byte) (*model.Track, bool, error) {
	var jt dto.JSONTrack
	if err := json.Unmarshal(raw, &jt); err != nil {
		return nil, false, err
	}
	return jt.ToTrack(), jt.ID != 0, nil
}

func decodePlaylist(raw []byte) (*model.Playlist, bool, error) {
	var jp dto.JSONPlaylist
	if err := json.Unmarshal(raw, &jp); err != nil {
		return nil, false, err
	}
	return jp.ToPlaylist(), jp.ID != 0, nil
}
