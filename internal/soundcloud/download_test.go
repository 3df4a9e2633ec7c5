package soundcloud

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	schttp "github.com/handiism/soundcloud-downloader/internal/http"
	"github.com/handiism/soundcloud-downloader/internal/model"
)

var audio = bytes.Repeat([]byte("sc"), 40000)

func serveAudio(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Length", fmt.Sprint(len(audio)))
	_, _ = w.Write(audio)
}

// mediaLocation answers a transcoding request the way the API does.
func mediaLocation(t *testing.T, target func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testClientID, r.URL.Query().Get("client_id"))
		writeJSON(w, map[string]any{"url": target()})
	}
}

func TestMediaURLBlockedMakesNoRequests(t *testing.T) {
	api := newFakeAPI(t)
	track := &model.Track{ID: 1, Title: "Blocked", Policy: model.PolicyBlock, Full: true}

	_, _, err := api.client().MediaURL(context.Background(), testAuth, track)
	assert.ErrorIs(t, err, ErrResourceUnavailable)
	assert.Zero(t, api.total())
}

func TestMediaURLNoRendition(t *testing.T) {
	api := newFakeAPI(t)
	track := &model.Track{ID: 1, Title: "Preview", Full: true, Renditions: []model.Rendition{{
		URL: api.srv.URL + "/x", Quality: "sq", MimeType: "audio/mpeg", Protocol: model.ProtocolProgressive, Snipped: true,
	}}}

	_, _, err := api.client().MediaURL(context.Background(), testAuth, track)
	assert.ErrorIs(t, err, ErrResourceUnavailable)
	assert.ErrorIs(t, err, ErrNoRendition)
	assert.Zero(t, api.total())
}

func TestDownloadProgressive(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/transcodings/progressive", mediaLocation(t, func() string { return api.srv.URL + "/audio.mp3" }))
	api.handle("/audio.mp3", serveAudio)
	api.addTracks(trackPayload(5,
		transcoding(api.srv.URL+"/transcodings/hls", "sq", "audio/mpeg", model.ProtocolHLS),
		transcoding(api.srv.URL+"/transcodings/progressive", "sq", "audio/mpeg", model.ProtocolProgressive),
	))

	// A bare reference is fetched in full before its renditions are read.
	track := &model.Track{ID: 5, PlaylistName: "Mix", Number: 3}
	var (
		buf  bytes.Buffer
		last schttp.Progress
	)
	n, err := api.client().Download(context.Background(), testAuth, track, &buf, func(p schttp.Progress) {
		last = p
	})
	require.NoError(t, err)

	assert.Equal(t, int64(len(audio)), n)
	assert.Equal(t, audio, buf.Bytes())
	assert.Equal(t, schttp.Progress{Written: n, Total: n}, last)
	assert.True(t, track.Full)
	assert.Equal(t, "Track 5", track.Title)
	assert.Equal(t, "Mix", track.PlaylistName)
	assert.Equal(t, 3, track.Number)
	assert.Equal(t, 0, api.count("/transcodings/hls"))
}

const segmentedPlaylist = `#EXTM3U
#EXT-X-VERSION:6
#EXT-X-PLAYLIST-TYPE:VOD
#EXT-X-TARGETDURATION:10
#EXT-X-MEDIA-SEQUENCE:0
#EXTINF:9.9,
/media/0/1234/file.mp3
#EXTINF:9.9,
/media/1234/5678/file.mp3
#EXT-X-ENDLIST
`

func TestDownloadFileHLS(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/transcodings/hls", mediaLocation(t, func() string { return api.srv.URL + "/playlist/file.m3u8" }))
	api.handle("/playlist/file.m3u8", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
		_, _ = w.Write([]byte(segmentedPlaylist))
	})
	api.handle("/media/0/5678/file.mp3", serveAudio)

	track := &model.Track{ID: 8, Title: "Segmented", Full: true, Renditions: []model.Rendition{
		{URL: api.srv.URL + "/transcodings/hls", Quality: "sq", MimeType: "audio/mpeg", Protocol: model.ProtocolHLS},
	}}

	client := api.client()
	media, r, err := client.MediaURL(context.Background(), testAuth, track)
	require.NoError(t, err)
	assert.Equal(t, api.srv.URL+"/media/0/5678/file.mp3", media)
	assert.True(t, r.IsHLS())

	dest := filepath.Join(t.TempDir(), "segmented.mp3")
	require.NoError(t, client.DownloadFile(context.Background(), testAuth, track, dest, nil))
	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, audio, got)
	assert.Equal(t, 0, api.count("/media/1234/5678/file.mp3"))
}

func TestDownloadFileMissingMediaLeavesNothing(t *testing.T) {
	api := newFakeAPI(t)
	api.handle("/transcodings/progressive", mediaLocation(t, func() string { return api.srv.URL + "/gone.mp3" }))

	track := &model.Track{ID: 9, Title: "Gone", Full: true, Renditions: []model.Rendition{
		{URL: api.srv.URL + "/transcodings/progressive", Quality: "sq", MimeType: "audio/mpeg", Protocol: model.ProtocolProgressive},
	}}
	dest := filepath.Join(t.TempDir(), "gone.mp3")

	err := api.client().DownloadFile(context.Background(), testAuth, track, dest, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoFileExists(t, dest)
}
