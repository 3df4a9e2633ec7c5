package model

import (
	"strconv"
	"strings"
	"time"
)

// Transport protocols a Rendition can be served over.
const (
	ProtocolProgressive = "progressive"
	ProtocolHLS         = "hls"
)

// PolicyBlock marks a track that is not playable in the caller's region.
const PolicyBlock = "BLOCK"

// Track is a single SoundCloud track.
//
// A Track decoded from a playlist's track list may be bare: only ID is
// set and Full is false until the track is resolved through the tracks
// endpoint.
type Track struct {
	ID           int64
	Title        string
	PermalinkURL string

	// Artist is the publisher artist when present, otherwise the
	// uploader's username.
	Artist      string
	Genre       string
	Description string
	ArtworkURL  string
	Duration    time.Duration
	CreatedAt   time.Time
	ReleaseDate time.Time

	// Policy is the upstream availability flag, e.g. "ALLOW" or "BLOCK".
	Policy string

	// TrackAuthorization is appended to rendition requests when set.
	TrackAuthorization string

	// Renditions are the encodings advertised by the server, in server
	// order.
	Renditions []Rendition

	User *User

	// PlaylistName is set by playlist and user enumerations. It is not
	// part of the upstream payload.
	PlaylistName string

	// Number is the 1-based position inside the collection being
	// downloaded, 0 if unknown.
	Number int

	// Full is false for bare references carrying only an ID.
	Full bool
}

// Key identifies the track for deduplication.
func (t *Track) Key() string {
	if t.ID != 0 {
		return strconv.FormatInt(t.ID, 10)
	}
	return t.PermalinkURL
}

// Blocked reports whether the track's policy forbids playback.
func (t *Track) Blocked() bool {
	return strings.EqualFold(t.Policy, PolicyBlock)
}

// Date returns the release date, falling back to the upload date.
func (t *Track) Date() time.Time {
	if !t.ReleaseDate.IsZero() {
		return t.ReleaseDate
	}
	return t.CreatedAt
}

// Rendition is one encoding of a track's audio.
type Rendition struct {
	// URL must be requested with a client_id to obtain the media location.
	URL      string
	Preset   string
	Quality  string
	MimeType string
	Protocol string
	Snipped  bool
	Duration time.Duration
}

// IsHLS reports whether the rendition is served as an HLS playlist.
func (r Rendition) IsHLS() bool {
	return r.Protocol == ProtocolHLS
}

// Extension returns the file extension matching the rendition's
// container, including the dot.
func (r Rendition) Extension() string {
	switch mime := strings.ToLower(r.MimeType); {
	case strings.Contains(mime, "audio/mpeg"):
		return ".mp3"
	case strings.Contains(mime, "audio/mp4"):
		return ".m4a"
	case strings.Contains(mime, "opus"):
		return ".opus"
	case strings.Contains(mime, "ogg"):
		return ".ogg"
	default:
		return ".mp3"
	}
}
