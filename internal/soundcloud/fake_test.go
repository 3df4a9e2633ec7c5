package soundcloud

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	schttp "github.com/handiism/soundcloud-downloader/internal/http"
)

const testClientID = "test-client-id"

var testAuth = Auth{ClientID: testClientID}

// fakeAPI is an in-process stand-in for api-v2.soundcloud.com.
type fakeAPI struct {
	t   *testing.T
	srv *httptest.Server

	mu       sync.Mutex
	calls    map[string]int
	resolved []string
	resolve  map[string]any
	tracks   map[int64]map[string]any
	handlers map[string]http.HandlerFunc
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		t:        t,
		calls:    map[string]int{},
		resolve:  map[string]any{},
		tracks:   map[int64]map[string]any{},
		handlers: map[string]http.HandlerFunc{},
	}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) client(opts ...Option) *Client {
	base := []Option{
		WithAPIBase(f.srv.URL),
		WithSiteBase(f.srv.URL),
		WithHTTPClient(schttp.NewClient()),
	}
	return New(append(base, opts...)...)
}

func (f *fakeAPI) handle(path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[path] = h
}

func (f *fakeAPI) addResolve(url string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolve[url] = payload
}

func (f *fakeAPI) addTracks(payloads ...map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range payloads {
		f.tracks[p["id"].(int64)] = p
	}
}

func (f *fakeAPI) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls[r.URL.Path]++
	h, custom := f.handlers[r.URL.Path]
	f.mu.Unlock()

	if custom {
		h(w, r)
		return
	}
	if r.URL.Query().Get("client_id") != testClientID {
		http.Error(w, "missing client id", http.StatusUnauthorized)
		return
	}

	switch {
	case r.URL.Path == "/resolve":
		target := r.URL.Query().Get("url")
		f.mu.Lock()
		f.resolved = append(f.resolved, target)
		payload, ok := f.resolve[target]
		f.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, payload)

	case r.URL.Path == "/tracks":
		var out []any
		for _, s := range strings.Split(r.URL.Query().Get("ids"), ",") {
			id, _ := strconv.ParseInt(s, 10, 64)
			f.mu.Lock()
			p, ok := f.tracks[id]
			f.mu.Unlock()
			if ok {
				out = append(out, p)
			}
		}
		// The real endpoint does not keep the requested order.
		slices.Reverse(out)
		writeJSON(w, out)

	case strings.HasPrefix(r.URL.Path, "/tracks/"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/tracks/"), 10, 64)
		f.mu.Lock()
		p, ok := f.tracks[id]
		f.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, p)

	default:
		http.NotFound(w, r)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func trackPayload(id int64, transcodings ...map[string]any) map[string]any {
	return map[string]any{
		"kind":          "track",
		"id":            id,
		"title":         fmt.Sprintf("Track %d", id),
		"permalink_url": fmt.Sprintf("https://soundcloud.com/artist/track-%d", id),
		"policy":        "ALLOW",
		"duration":      180000,
		"created_at":    "2020-01-02T03:04:05Z",
		"user": map[string]any{
			"id":            int64(7),
			"kind":          "user",
			"username":      "artist",
			"permalink_url": "https://soundcloud.com/artist",
		},
		"media": map[string]any{"transcodings": transcodings},
	}
}

func transcoding(url, quality, mime, protocol string) map[string]any {
	return map[string]any{
		"url":     url,
		"quality": quality,
		"snipped": false,
		"format":  map[string]any{"mime_type": mime, "protocol": protocol},
	}
}

func playlistPayload(id int64, title string, trackIDs []int64) map[string]any {
	refs := make([]any, len(trackIDs))
	for i, tid := range trackIDs {
		refs[i] = map[string]any{"id": tid, "kind": "track"}
	}
	return map[string]any{
		"kind":          "playlist",
		"id":            id,
		"title":         title,
		"permalink_url": fmt.Sprintf("https://soundcloud.com/artist/sets/set-%d", id),
		"track_count":   len(trackIDs),
		"user": map[string]any{
			"id":       int64(7),
			"kind":     "user",
			"username": "artist",
		},
		"tracks": refs,
	}
}

func userPayload() map[string]any {
	return map[string]any{
		"kind":          "user",
		"id":            int64(7),
		"username":      "artist",
		"permalink_url": "https://soundcloud.com/artist",
	}
}

func seq(from, n int64) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = from + int64(i)
	}
	return out
}
