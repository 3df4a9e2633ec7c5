package soundcloud

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/soundcloud-downloader/internal/batch"
	"github.com/handiism/soundcloud-downloader/internal/limiter"
	"github.com/handiism/soundcloud-downloader/internal/model"
)

const userURL = "https://soundcloud.com/artist"

// pagedHandler serves pages linked through next_href. Every request
// must carry the client id.
func pagedHandler(t *testing.T, api *fakeAPI, pages ...[]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testClientID, r.URL.Query().Get("client_id"))

		n := 0
		if c := r.URL.Query().Get("cursor"); c != "" {
			n = int(c[0] - '0')
		} else {
			assert.Equal(t, "0", r.URL.Query().Get("offset"))
			assert.NotEmpty(t, r.URL.Query().Get("limit"))
		}
		body := map[string]any{"collection": pages[n], "next_href": nil}
		if n+1 < len(pages) {
			body["next_href"] = api.srv.URL + r.URL.Path + "?cursor=" + string(rune('0'+n+1))
		}
		writeJSON(w, body)
	}
}

func TestUserTracksFollowsNextHref(t *testing.T) {
	api := newFakeAPI(t)
	api.addResolve(userURL, userPayload())
	api.handle("/users/7/tracks", pagedHandler(t, api,
		[]any{trackPayload(1), trackPayload(2)},
		[]any{trackPayload(2), trackPayload(3)},
	))

	e, err := api.client().UserTracks(testAuth, userURL, SortRecent, 0, 2)
	require.NoError(t, err)
	got, err := batch.Collect(context.Background(), e)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, trackIDs(got))
	assert.Equal(t, 2, api.count("/users/7/tracks"))
	assert.Equal(t, 1, api.count("/resolve"))
}

func TestUserTracksPopular(t *testing.T) {
	api := newFakeAPI(t)
	api.addResolve(userURL, userPayload())
	api.handle("/users/7/toptracks", pagedHandler(t, api, []any{trackPayload(9)}))

	e, err := api.client().UserTracks(testAuth, userURL, SortPopular, 0, 10)
	require.NoError(t, err)
	got, err := batch.Collect(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, []int64{9}, trackIDs(got))
}

func TestUserTracksRateLimited(t *testing.T) {
	api := newFakeAPI(t)
	api.addResolve(userURL, userPayload())
	api.handle("/users/7/tracks", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	e, err := api.client().UserTracks(testAuth, userURL, SortRecent, 0, 10)
	require.NoError(t, err)
	_, err = e.Next(context.Background())
	assert.ErrorIs(t, err, ErrRateLimitExceeded)
	assert.Equal(t, 1, api.count("/users/7/tracks"))
}

func TestUserPlaylistsPopulated(t *testing.T) {
	api := newFakeAPI(t)
	api.addResolve(userURL, userPayload())
	for _, id := range seq(1, 12) {
		api.addTracks(trackPayload(id))
	}
	api.handle("/users/7/playlists", pagedHandler(t, api,
		[]any{
			playlistPayload(101, "First", seq(1, 4)),
			playlistPayload(102, "Second", seq(5, 4)),
			playlistPayload(103, "Third", seq(9, 4)),
		},
	))

	lim := limiter.New(2)
	client := api.client(WithLimiter(lim))
	e, err := client.UserPlaylists(testAuth, userURL, 0, 10, true)
	require.NoError(t, err)
	got, err := batch.Collect(context.Background(), e)
	require.NoError(t, err)

	require.Len(t, got, 3)
	titles := []string{got[0].Title, got[1].Title, got[2].Title}
	assert.Equal(t, []string{"First", "Second", "Third"}, titles)
	for i, p := range got {
		assert.Equal(t, seq(int64(1+4*i), 4), trackIDs(p.Tracks))
		for _, tr := range p.Tracks {
			assert.Equal(t, p.Title, tr.PlaylistName)
			assert.True(t, tr.Full)
		}
	}
	assert.Equal(t, 3, api.count("/tracks"))
	assert.Equal(t, 0, lim.Held())
}

func TestUserAlbumsEndpoint(t *testing.T) {
	api := newFakeAPI(t)
	api.addResolve(userURL, userPayload())
	album := playlistPayload(201, "LP", nil)
	album["is_album"] = true
	api.handle("/users/7/albums", pagedHandler(t, api, []any{album}))

	e, err := api.client().UserAlbums(testAuth, userURL, 0, 10, false)
	require.NoError(t, err)
	got, err := batch.Collect(context.Background(), e)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].IsAlbum)
	assert.Equal(t, model.KindPlaylist, model.NewPlaylistResource(got[0]).Kind)
}

func TestUserEnumeratorsOfResolvedUser(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/users/7/toptracks", pagedHandler(t, api, []any{trackPayload(4), trackPayload(5)}))
	api.handle("/users/7/playlists", pagedHandler(t, api, []any{playlistPayload(101, "First", nil)}))
	api.handle("/users/7/albums", pagedHandler(t, api, []any{playlistPayload(201, "LP", nil)}))
	client := api.client()
	u := &model.User{ID: 7, Username: "artist", PermalinkURL: userURL}

	tracks, err := client.UserTracksOf(testAuth, u, SortPopular, 0, 10)
	require.NoError(t, err)
	gotTracks, err := batch.Collect(context.Background(), tracks)
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 5}, trackIDs(gotTracks))

	playlists, err := client.UserPlaylistsOf(testAuth, u, 0, 10, false)
	require.NoError(t, err)
	gotPlaylists, err := batch.Collect(context.Background(), playlists)
	require.NoError(t, err)
	require.Len(t, gotPlaylists, 1)
	assert.Equal(t, "First", gotPlaylists[0].Title)

	albums, err := client.UserAlbumsOf(testAuth, u, 0, 10, false)
	require.NoError(t, err)
	gotAlbums, err := batch.Collect(context.Background(), albums)
	require.NoError(t, err)
	require.Len(t, gotAlbums, 1)

	assert.Zero(t, api.count("/resolve"))
}

func TestUserEnumeratorsRejectBadArguments(t *testing.T) {
	api := newFakeAPI(t)
	client := api.client()

	_, err := client.UserTracksOf(testAuth, &model.User{}, SortRecent, 0, 10)
	assert.ErrorIs(t, err, ErrInvalidResourceURL)
	_, err = client.UserPlaylistsOf(testAuth, &model.User{ID: 7}, -1, 10, false)
	assert.ErrorIs(t, err, ErrInvalidLimit)
	_, err = client.UserTracks(testAuth, userURL, SortRecent, -1, 10)
	assert.ErrorIs(t, err, ErrInvalidLimit)
	assert.Zero(t, api.total())
}
