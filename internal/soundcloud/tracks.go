package soundcloud

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/handiism/soundcloud-downloader/internal/model"
	"github.com/handiism/soundcloud-downloader/internal/soundcloud/dto"
)

// GetTrack resolves a track URL.
func (c *Client) GetTrack(ctx context.Context, auth Auth, rawURL string) (*model.Track, error) {
	if k := ClassifyURL(rawURL); k != URLTrack && k != URLShortLink && !c.resolver.isShortLink(rawURL) {
		return nil, fmt.Errorf("%w: %s is not a track url", ErrInvalidResourceURL, rawURL)
	}
	res, err := c.resolveKind(ctx, auth, rawURL, model.KindTrack)
	if err != nil {
		return nil, err
	}
	return res.Track, nil
}

// GetTrackByID fetches a track by its numeric id.
func (c *Client) GetTrackByID(ctx context.Context, auth Auth, id int64) (*model.Track, error) {
	endpoint, err := withQuery(c.apiBase+"/tracks/"+strconv.FormatInt(id, 10), url.Values{
		"client_id": {auth.ClientID},
	})
	if err != nil {
		return nil, err
	}
	body, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("track %d: %w", id, err)
	}

	var jt dto.JSONTrack
	if err := json.Unmarshal(body, &jt); err != nil {
		return nil, fmt.Errorf("decoding track %d: %w", id, err)
	}
	return jt.ToTrack(), nil
}

// TracksByIDs fetches full tracks in the order of ids, MaxIDsPerRequest
// per call. Ids the server does not return (deleted or private tracks)
// are left out.
func (c *Client) TracksByIDs(ctx context.Context, auth Auth, ids []int64) ([]*model.Track, error) {
	out := make([]*model.Track, 0, len(ids))
	for _, chunk := range lo.Chunk(ids, MaxIDsPerRequest) {
		tracks, err := c.tracksChunk(ctx, auth, chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, tracks...)
	}
	return out, nil
}

func (c *Client) tracksChunk(ctx context.Context, auth Auth, ids []int64) ([]*model.Track, error) {
	idList := strings.Join(lo.Map(ids, func(id int64, _ int) string {
		return strconv.FormatInt(id, 10)
	}), ",")

	endpoint, err := withQuery(c.apiBase+"/tracks", url.Values{
		"ids":       {idList},
		"limit":     {strconv.Itoa(len(ids))},
		"client_id": {auth.ClientID},
	})
	if err != nil {
		return nil, err
	}
	body, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("tracks %s: %w", idList, err)
	}

	var payload []*dto.JSONTrack
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decoding tracks: %w", err)
	}

	// The server ignores the requested order.
	byID := make(map[int64]*model.Track, len(payload))
	for _, jt := range payload {
		if jt != nil {
			byID[jt.ID] = jt.ToTrack()
		}
	}
	ordered := make([]*model.Track, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			ordered = append(ordered, t)
		} else {
			c.logger.Debug("track missing from bulk response", zap.Int64("id", id))
		}
	}
	return ordered, nil
}

// fillTracks replaces bare references in refs with full tracks, keeping
// order, and stamps every track with playlistName.
func (c *Client) fillTracks(ctx context.Context, auth Auth, refs []*model.Track, playlistName string) ([]*model.Track, error) {
	bare := lo.FilterMap(refs, func(t *model.Track, _ int) (int64, bool) {
		return t.ID, !t.Full
	})

	fetched := map[int64]*model.Track{}
	if len(bare) > 0 {
		tracks, err := c.TracksByIDs(ctx, auth, bare)
		if err != nil {
			return nil, err
		}
		fetched = lo.KeyBy(tracks, func(t *model.Track) int64 { return t.ID })
	}

	out := make([]*model.Track, 0, len(refs))
	for _, ref := range refs {
		t := ref
		if !ref.Full {
			full, ok := fetched[ref.ID]
			if !ok {
				continue
			}
			t = full
		}
		t.PlaylistName = playlistName
		out = append(out, t)
	}
	return out, nil
}
