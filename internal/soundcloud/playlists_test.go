package soundcloud

import (
	"context"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handiism/soundcloud-downloader/internal/batch"
	"github.com/handiism/soundcloud-downloader/internal/model"
)

const setURL = "https://soundcloud.com/artist/sets/set-1"

func seedPlaylist(api *fakeAPI, n int64) []int64 {
	ids := seq(1000, n)
	api.addResolve(setURL, playlistPayload(1, "Road Trip", ids))
	for _, id := range ids {
		api.addTracks(trackPayload(id))
	}
	return ids
}

func trackIDs(tracks []*model.Track) []int64 {
	out := make([]int64, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func TestPlaylistTracksBulkFetch(t *testing.T) {
	api := newFakeAPI(t)
	ids := seedPlaylist(api, 120)

	e, err := api.client().PlaylistTracks(testAuth, setURL, 0, 50)
	require.NoError(t, err)
	assert.Zero(t, api.total(), "enumeration must be lazy")

	var sizes []int
	var all []*model.Track
	for b, err := range e.All(context.Background()) {
		require.NoError(t, err)
		sizes = append(sizes, b.Len())
		all = append(all, b.Items()...)
	}

	assert.Equal(t, []int{50, 50, 20}, sizes)
	assert.Equal(t, 3, api.count("/tracks"))
	assert.Equal(t, 1, api.count("/resolve"))
	assert.Equal(t, ids, trackIDs(all))
	for _, tr := range all {
		assert.Equal(t, "Road Trip", tr.PlaylistName)
		assert.True(t, tr.Full)
	}
}

func TestPlaylistTracksOffsetAndSmallLimit(t *testing.T) {
	api := newFakeAPI(t)
	ids := seedPlaylist(api, 10)

	e, err := api.client().PlaylistTracks(testAuth, setURL, 4, 3)
	require.NoError(t, err)
	got, err := batch.Collect(context.Background(), e)
	require.NoError(t, err)

	assert.Equal(t, ids[4:], trackIDs(got))
	assert.Equal(t, 2, api.count("/tracks"))
}

func TestPlaylistTracksSkipsDeletedTracks(t *testing.T) {
	api := newFakeAPI(t)
	api.addResolve(setURL, playlistPayload(1, "Gaps", []int64{1, 2, 3}))
	api.addTracks(trackPayload(1), trackPayload(3))

	e, err := api.client().PlaylistTracks(testAuth, setURL, 0, 50)
	require.NoError(t, err)
	got, err := batch.Collect(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, trackIDs(got))
}

func TestPlaylistTracksContinuePastMissingChunk(t *testing.T) {
	api := newFakeAPI(t)
	ids := seq(1000, 120)
	api.addResolve(setURL, playlistPayload(1, "Gaps", ids))
	for _, id := range ids {
		if id < 1050 || id >= 1100 {
			api.addTracks(trackPayload(id))
		}
	}
	want := append(slices.Clone(ids[:50]), ids[100:]...)

	e, err := api.client().PlaylistTracks(testAuth, setURL, 0, 50)
	require.NoError(t, err)
	got, err := batch.Collect(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, want, trackIDs(got))
	assert.Equal(t, 3, api.count("/tracks"))

	p, err := api.client().GetPlaylist(context.Background(), testAuth, setURL, true)
	require.NoError(t, err)
	assert.Len(t, p.Tracks, 70)
	assert.Equal(t, 6, api.count("/tracks"))
}

func TestPlaylistTracksInvalidLimit(t *testing.T) {
	api := newFakeAPI(t)
	client := api.client()

	for _, limit := range []int{0, -1, MaxLimit + 1} {
		_, err := client.PlaylistTracks(testAuth, setURL, 0, limit)
		assert.ErrorIs(t, err, ErrInvalidLimit, "limit %d", limit)
	}
	assert.Zero(t, api.total())
}

func TestGetPlaylistPopulate(t *testing.T) {
	api := newFakeAPI(t)
	ids := seedPlaylist(api, 60)

	p, err := api.client().GetPlaylist(context.Background(), testAuth, setURL, true)
	require.NoError(t, err)
	assert.Equal(t, "Road Trip", p.Title)
	assert.Equal(t, "artist", p.Artist)
	assert.Equal(t, ids, trackIDs(p.Tracks))
	assert.Equal(t, 2, api.count("/tracks"))
}

func TestGetPlaylistWithoutPopulateKeepsRefs(t *testing.T) {
	api := newFakeAPI(t)
	seedPlaylist(api, 5)

	p, err := api.client().GetPlaylist(context.Background(), testAuth, setURL, false)
	require.NoError(t, err)
	require.Len(t, p.Tracks, 5)
	assert.False(t, p.Tracks[0].Full)
	assert.Zero(t, api.count("/tracks"))
}
