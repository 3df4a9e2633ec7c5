package model

import (
	"strconv"
	"time"
)

// Playlist is a SoundCloud set. Albums are playlists with IsAlbum set.
type Playlist struct {
	ID           int64
	Title        string
	PermalinkURL string
	Artist       string
	ArtworkURL   string
	SetType      string
	IsAlbum      bool
	CreatedAt    time.Time
	ReleaseDate  time.Time
	TrackCount   int
	User         *User

	// Tracks holds the track references in playlist order. Unless the
	// playlist was fetched with population, most of them are bare.
	Tracks []*Track
}

// Key identifies the playlist for deduplication.
func (p *Playlist) Key() string {
	if p.ID != 0 {
		return strconv.FormatInt(p.ID, 10)
	}
	return p.PermalinkURL
}

// Date returns the release date, falling back to the creation date.
func (p *Playlist) Date() time.Time {
	if !p.ReleaseDate.IsZero() {
		return p.ReleaseDate
	}
	return p.CreatedAt
}

// User is a SoundCloud account.
type User struct {
	ID            int64
	Username      string
	FullName      string
	PermalinkURL  string
	AvatarURL     string
	City          string
	CountryCode   string
	Verified      bool
	TrackCount    int
	PlaylistCount int
	Followers     int
}

// Key identifies the user for deduplication.
func (u *User) Key() string {
	if u.ID != 0 {
		return strconv.FormatInt(u.ID, 10)
	}
	return u.PermalinkURL
}

// ResourceKind tells which variant a Resource holds.
type ResourceKind int

const (
	KindTrack ResourceKind = iota + 1
	KindPlaylist
	KindUser
)

func (k ResourceKind) String() string {
	switch k {
	case KindTrack:
		return "track"
	case KindPlaylist:
		return "playlist"
	case KindUser:
		return "user"
	default:
		return "unknown"
	}
}

// Resource is a tagged union over the resolvable SoundCloud resources,
// used for search hits and for URLs whose kind is only known after
// resolution. Exactly one of Track, Playlist and User is set, as
// indicated by Kind.
type Resource struct {
	Kind     ResourceKind
	URL      string
	Title    string
	Track    *Track
	Playlist *Playlist
	User     *User
}

// Key identifies the resource by its permalink.
func (r Resource) Key() string {
	return r.URL
}

// NewTrackResource wraps t.
func NewTrackResource(t *Track) Resource {
	return Resource{Kind: KindTrack, URL: t.PermalinkURL, Title: t.Title, Track: t}
}

// NewPlaylistResource wraps p.
func NewPlaylistResource(p *Playlist) Resource {
	return Resource{Kind: KindPlaylist, URL: p.PermalinkURL, Title: p.Title, Playlist: p}
}

// NewUserResource wraps u.
func NewUserResource(u *User) Resource {
	return Resource{Kind: KindUser, URL: u.PermalinkURL, Title: u.Username, User: u}
}
