package soundcloud

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"github.com/handiism/soundcloud-downloader/internal/batch"
	"github.com/handiism/soundcloud-downloader/internal/model"
	"github.com/handiism/soundcloud-downloader/internal/soundcloud/dto"
)

// SearchFilter narrows a search to one kind of result.
type SearchFilter int

const (
	FilterNone SearchFilter = iota
	FilterTracks
	FilterPlaylists
	FilterPlaylistsWithoutAlbums
	FilterAlbums
	FilterUsers
)

func (f SearchFilter) path() string {
	switch f {
	case FilterTracks:
		return "/tracks"
	case FilterPlaylists:
		return "/playlists"
	case FilterPlaylistsWithoutAlbums:
		return "/playlists_without_albums"
	case FilterAlbums:
		return "/albums"
	case FilterUsers:
		return "/users"
	default:
		return ""
	}
}

// ParseSearchFilter maps names like "tracks" or "albums" to a filter.
func ParseSearchFilter(name string) (SearchFilter, error) {
	switch name {
	case "", "all", "none":
		return FilterNone, nil
	case "tracks", "track":
		return FilterTracks, nil
	case "playlists", "playlist":
		return FilterPlaylists, nil
	case "playlists_without_albums":
		return FilterPlaylistsWithoutAlbums, nil
	case "albums", "album":
		return FilterAlbums, nil
	case "users", "user":
		return FilterUsers, nil
	default:
		return FilterNone, fmt.Errorf("unknown search filter %q", name)
	}
}

// Search enumerates results for query. Results are deduplicated by
// permalink across pages.
func (c *Client) Search(auth Auth, query string, filter SearchFilter, offset, limit int) (*batch.Enumerator[model.Resource], error) {
	if err := validatePaging(offset, limit); err != nil {
		return nil, err
	}
	base, err := withQuery(c.apiBase+"/search"+filter.path(), url.Values{"q": {query}})
	if err != nil {
		return nil, err
	}
	fetch := collectionFetcher(c, auth, staticEndpoint(base), decodeSearchResult)
	return batch.New(batch.Cursor{Offset: offset, Limit: limit}, fetch), nil
}

// decodeSearchResult classifies a hit by the shape of its permalink:
// one path segment is a user, two a track, three with "sets" in the
// middle a playlist. Anything else is skipped.
func decodeSearchResult(raw []byte) (model.Resource, bool, error) {
	permalink := gjson.GetBytes(raw, "permalink_url").String()
	u, err := url.Parse(permalink)
	if permalink == "" || err != nil || !u.IsAbs() {
		return model.Resource{}, false, nil
	}

	segs := pathSegments(u.Path)
	switch {
	case len(segs) == 1:
		var ju dto.JSONUser
		if err := json.Unmarshal(raw, &ju); err != nil {
			return model.Resource{}, false, err
		}
		return model.NewUserResource(ju.ToUser()), true, nil
	case len(segs) == 2:
		var jt dto.JSONTrack
		if err := json.Unmarshal(raw, &jt); err != nil {
			return model.Resource{}, false, err
		}
		return model.NewTrackResource(jt.ToTrack()), true, nil
	case len(segs) == 3 && segs[1] == "sets":
		var jp dto.JSONPlaylist
		if err := json.Unmarshal(raw, &jp); err != nil {
			return model.Resource{}, false, err
		}
		return model.NewPlaylistResource(jp.ToPlaylist()), true, nil
	default:
		return model.Resource{}, false, nil
	}
}

// SearchQueries returns autocomplete suggestions for a partial query.
func (c *Client) SearchQueries(ctx context.Context, auth Auth, query string, offset, limit int) ([]string, error) {
	if err := validatePaging(offset, limit); err != nil {
		return nil, err
	}
	endpoint, err := withQuery(c.apiBase+"/search/queries", url.Values{
		"q":         {query},
		"client_id": {auth.ClientID},
		"offset":    {strconv.Itoa(offset)},
		"limit":     {strconv.Itoa(limit)},
	})
	if err != nil {
		return nil, err
	}
	body, err := c.http.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("search queries %q: %w", query, err)
	}

	var out []string
	for _, r := range gjson.GetBytes(body, "collection.#.output").Array() {
		out = append(out, r.String())
	}
	return out, nil
}
