package dto

import (
	"time"

	"github.com/handiism/soundcloud-downloader/internal/model"
)

// JSONTrack is a track as returned by the resolve and tracks endpoints.
// Tracks inside a playlist payload are often reduced to their id.
type JSONTrack struct {
	ID                 int64                  `json:"id"`
	Kind               string                 `json:"kind"`
	Title              *string                `json:"title"`
	PermalinkURL       string                 `json:"permalink_url"`
	ArtworkURL         *string                `json:"artwork_url"`
	Description        *string                `json:"description"`
	Genre              *string                `json:"genre"`
	Duration           int64                  `json:"duration"`
	CreatedAt          *time.Time             `json:"created_at"`
	ReleaseDate        *string                `json:"release_date"`
	DisplayDate        *string                `json:"display_date"`
	Policy             string                 `json:"policy"`
	Streamable         bool                   `json:"streamable"`
	TrackAuthorization string                 `json:"track_authorization"`
	PublisherMetadata  *JSONPublisherMetadata `json:"publisher_metadata"`
	Media              *JSONMedia             `json:"media"`
	User               *JSONUser              `json:"user"`
}

// JSONPublisherMetadata carries label-provided credits.
type JSONPublisherMetadata struct {
	Artist        string `json:"artist"`
	ContainsMusic bool   `json:"contains_music"`
}

// JSONMedia lists the track's transcodings.
type JSONMedia struct {
	Transcodings []JSONTranscoding `json:"transcodings"`
}

// JSONTranscoding is one advertised encoding.
type JSONTranscoding struct {
	URL      string     `json:"url"`
	Preset   string     `json:"preset"`
	Duration int64      `json:"duration"`
	Snipped  bool       `json:"snipped"`
	Quality  string     `json:"quality"`
	Format   JSONFormat `json:"format"`
}

// JSONFormat describes a transcoding's container and delivery.
type JSONFormat struct {
	Protocol string `json:"protocol"`
	MimeType string `json:"mime_type"`
}

// ToTrack converts JSONTrack to a model.Track.
func (jt *JSONTrack) ToTrack() *model.Track {
	t := &model.Track{
		ID:                 jt.ID,
		PermalinkURL:       jt.PermalinkURL,
		Title:              deref(jt.Title),
		Genre:              deref(jt.Genre),
		Description:        deref(jt.Description),
		ArtworkURL:         deref(jt.ArtworkURL),
		Duration:           time.Duration(jt.Duration) * time.Millisecond,
		Policy:             jt.Policy,
		TrackAuthorization: jt.TrackAuthorization,
		ReleaseDate:        parseDate(jt.ReleaseDate),
		Full:               jt.Title != nil,
	}
	if jt.CreatedAt != nil {
		t.CreatedAt = *jt.CreatedAt
	}
	if t.ReleaseDate.IsZero() {
		t.ReleaseDate = parseDate(jt.DisplayDate)
	}

	if jt.User != nil {
		t.User = jt.User.ToUser()
		t.Artist = t.User.Username
		if t.ArtworkURL == "" {
			t.ArtworkURL = t.User.AvatarURL
		}
	}
	if jt.PublisherMetadata != nil && jt.PublisherMetadata.Artist != "" {
		t.Artist = jt.PublisherMetadata.Artist
	}

	if jt.Media != nil {
		for _, tc := range jt.Media.Transcodings {
			t.Renditions = append(t.Renditions, model.Rendition{
				URL:      tc.URL,
				Preset:   tc.Preset,
				Quality:  tc.Quality,
				MimeType: tc.Format.MimeType,
				Protocol: tc.Format.Protocol,
				Snipped:  tc.Snipped,
				Duration: time.Duration(tc.Duration) * time.Millisecond,
			})
		}
	}
	return t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// parseDate accepts the timestamp formats seen in API payloads.
func parseDate(s *string) time.Time {
	if s == nil || *s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02", "2006/01/02 15:04:05 -0700"} {
		if t, err := time.Parse(layout, *s); err == nil {
			return t
		}
	}
	return time.Time{}
}
