package soundcloud

import (
	"errors"

	schttp "github.com/handiism/soundcloud-downloader/internal/http"
)

var (
	// ErrInvalidResourceURL is returned before any request when a URL does
	// not have the shape of a supported resource, or resolves to a
	// resource of another kind.
	ErrInvalidResourceURL = errors.New("invalid resource url")

	// ErrResourceUnavailable is returned for tracks that are blocked in
	// the caller's region or expose no usable rendition.
	ErrResourceUnavailable = errors.New("resource unavailable")

	// ErrNoRendition is returned by SelectRendition when no preference
	// matches. Callers downloading a track see it wrapped together with
	// ErrResourceUnavailable.
	ErrNoRendition = errors.New("no matching rendition")

	// ErrInvalidLimit is returned when a page size is out of range.
	ErrInvalidLimit = errors.New("invalid limit")

	// ErrClientIDNotFound is returned when the site scripts carry no
	// client id.
	ErrClientIDNotFound = errors.New("client id not found")

	// ErrUnsupportedPlaylist is returned for HLS playlists that cannot be
	// turned into a single media URL.
	ErrUnsupportedPlaylist = errors.New("unsupported hls playlist")
)

// Transport errors, re-exported so callers only need this package.
var (
	ErrRateLimitExceeded = schttp.ErrRateLimitExceeded
	ErrTransport         = schttp.ErrTransport
	ErrNotFound          = schttp.ErrNotFound
)
