package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSetsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	body, err := NewClient().GetString(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestStatusMapping(t *testing.T) {
	testCases := []struct {
		name      string
		status    int
		matches   []error
		unmatched []error
	}{
		{
			name:      "rate limited",
			status:    http.StatusTooManyRequests,
			matches:   []error{ErrRateLimitExceeded},
			unmatched: []error{ErrTransport, ErrNotFound},
		},
		{
			name:      "not found",
			status:    http.StatusNotFound,
			matches:   []error{ErrNotFound, ErrTransport},
			unmatched: []error{ErrRateLimitExceeded},
		},
		{
			name:      "server error",
			status:    http.StatusBadGateway,
			matches:   []error{ErrTransport},
			unmatched: []error{ErrRateLimitExceeded, ErrNotFound},
		},
		{
			name:      "forbidden",
			status:    http.StatusForbidden,
			matches:   []error{ErrTransport},
			unmatched: []error{ErrRateLimitExceeded, ErrNotFound},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tc.status)
			}))
			defer srv.Close()

			_, err := NewClient().Get(context.Background(), srv.URL+"/path?client_id=secret")
			require.Error(t, err)
			for _, want := range tc.matches {
				assert.ErrorIs(t, err, want)
			}
			for _, not := range tc.unmatched {
				assert.NotErrorIs(t, err, not)
			}

			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tc.status, se.StatusCode)
			assert.Equal(t, http.MethodGet, se.Method)
			assert.Contains(t, se.URL, "/path")
			assert.NotContains(t, se.Error(), "secret")
		})
	}
}

func TestResolveRedirectStripsQuery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/artist/song?si=abc&utm_source=x#t=10", http.StatusFound)
	})
	mux.HandleFunc("/artist/song", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html></html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	got, err := NewClient().ResolveRedirect(context.Background(), srv.URL+"/short")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/artist/song", got)
}

func TestStreamProgressKnownLength(t *testing.T) {
	payload := bytes.Repeat([]byte("a"), 3*ChunkSize+17)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	var values []float64
	var buf bytes.Buffer
	n, err := NewClient().Stream(context.Background(), srv.URL, &buf, func(p Progress) {
		require.True(t, p.Known())
		values = append(values, p.Value())
	})
	require.NoError(t, err)
	assert.EqualValues(t, len(payload), n)
	assert.Equal(t, payload, buf.Bytes())

	require.NotEmpty(t, values)
	for i := 1; i < len(values); i++ {
		assert.GreaterOrEqual(t, values[i], values[i-1])
	}
	for _, v := range values {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.Equal(t, 1.0, values[len(values)-1])
}

func TestStreamProgressUnknownLength(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for range 4 {
			_, _ = w.Write(bytes.Repeat([]byte("b"), 1000))
			flusher.Flush()
		}
	}))
	defer srv.Close()

	var last Progress
	var values []float64
	_, err := NewClient().Stream(context.Background(), srv.URL, &bytes.Buffer{}, func(p Progress) {
		last = p
		values = append(values, p.Value())
	})
	require.NoError(t, err)
	assert.False(t, last.Known())
	assert.EqualValues(t, 4000, last.Written)
	assert.Equal(t, 4000.0, values[len(values)-1])
	for i := 1; i < len(values); i++ {
		assert.Greater(t, values[i], values[i-1])
	}
}

func TestDownloadFileRenamesOnSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("audio"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "song.mp3")
	require.NoError(t, NewClient().DownloadFile(context.Background(), srv.URL, dest, nil))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "audio", string(data))
	assertNoTempFiles(t, dir)
}

func TestDownloadFileCleansUpOnCancel(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "100000")
		_, _ = w.Write(make([]byte, 1000))
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	dir := t.TempDir()
	dest := filepath.Join(dir, "song.mp3")

	ctx, cancel := context.WithCancel(context.Background())
	err := NewClient().DownloadFile(ctx, srv.URL, dest, func(p Progress) {
		cancel()
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDownloadCanceled)

	_, statErr := os.Stat(dest)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
	assertNoTempFiles(t, dir)
}

func TestDownloadFileCleansUpOnStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	dir := t.TempDir()
	err := NewClient().DownloadFile(context.Background(), srv.URL, filepath.Join(dir, "x.mp3"), nil)
	assert.ErrorIs(t, err, ErrRateLimitExceeded)
	assertNoTempFiles(t, dir)
}

func TestThrottleValidation(t *testing.T) {
	_, err := NewThrottle(0, 1, nil, nil)
	assert.ErrorIs(t, err, ErrMustBePositive)
	_, err = NewThrottle(1, 0, nil, nil)
	assert.ErrorIs(t, err, ErrMustBePositive)
}

func TestThrottleLimitsRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	client := NewClient(WithThrottle(20, 1))
	start := time.Now()
	for range 5 {
		_, err := client.Get(context.Background(), srv.URL)
		require.NoError(t, err)
	}
	// 1 burst token, then 4 more at 50ms each.
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&StatusError{StatusCode: http.StatusTooManyRequests}))
	assert.True(t, IsRetryable(&StatusError{StatusCode: http.StatusServiceUnavailable}))
	assert.False(t, IsRetryable(&StatusError{StatusCode: http.StatusNotFound}))
	assert.False(t, IsRetryable(context.Canceled))
	assert.False(t, IsRetryable(errors.New("some local failure")))
	assert.False(t, IsRetryable(nil))
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".part"), "leftover temp file %s", e.Name())
	}
}
