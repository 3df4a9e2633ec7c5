package download

import (
	"context"
	"fmt"
	"time"

	"github.com/handiism/soundcloud-downloader/internal/batch"
	"github.com/handiism/soundcloud-downloader/internal/model"
	"github.com/handiism/soundcloud-downloader/internal/soundcloud"
)

// collect resolves one input URL into the collections it downloads as.
// A user expands according to settings.UserContent.
func (m *Manager) collect(ctx context.Context, auth soundcloud.Auth, rawURL string) ([]*model.Collection, error) {
	res, err := m.client.Resolve(ctx, auth, rawURL)
	if err != nil {
		return nil, err
	}

	switch res.Kind {
	case model.KindTrack:
		return []*model.Collection{m.trackCollection(res.Track)}, nil

	case model.KindPlaylist:
		if err := m.client.Populate(ctx, auth, res.Playlist); err != nil {
			return nil, err
		}
		return []*model.Collection{m.playlistCollection(res.Playlist)}, nil

	case model.KindUser:
		return m.userCollections(ctx, auth, res.User)

	default:
		return nil, fmt.Errorf("%w: %s", soundcloud.ErrInvalidResourceURL, rawURL)
	}
}

func (m *Manager) userCollections(ctx context.Context, auth soundcloud.Auth, u *model.User) ([]*model.Collection, error) {
	switch m.settings.UserContent {
	case "playlists", "albums":
		enumerate := m.client.UserPlaylistsOf
		if m.settings.UserContent == "albums" {
			enumerate = m.client.UserAlbumsOf
		}
		e, err := enumerate(auth, u, 0, m.settings.PageSize, true)
		if err != nil {
			return nil, err
		}
		playlists, err := batch.Collect(ctx, e)
		if err != nil {
			return nil, err
		}
		collections := make([]*model.Collection, 0, len(playlists))
		for _, p := range playlists {
			if len(p.Tracks) > 0 {
				collections = append(collections, m.playlistCollection(p))
			}
		}
		return collections, nil

	default:
		sort := soundcloud.SortRecent
		if m.settings.UserContent == "popular" {
			sort = soundcloud.SortPopular
		}
		e, err := m.client.UserTracksOf(auth, u, sort, 0, m.settings.PageSize)
		if err != nil {
			return nil, err
		}
		tracks, err := batch.Collect(ctx, e)
		if err != nil {
			return nil, err
		}
		return []*model.Collection{
			model.NewCollection(u.Username, "", u.AvatarURL, time.Time{}, tracks, m.pathCfg),
		}, nil
	}
}

func (m *Manager) trackCollection(t *model.Track) *model.Collection {
	artwork := t.ArtworkURL
	if artwork == "" && t.User != nil {
		artwork = t.User.AvatarURL
	}
	return model.NewCollection(t.Artist, "", artwork, t.Date(), []*model.Track{t}, m.pathCfg)
}

func (m *Manager) playlistCollection(p *model.Playlist) *model.Collection {
	return model.NewCollection(p.Artist, p.Title, p.ArtworkURL, p.Date(), p.Tracks, m.pathCfg)
}
