package dto

import (
	"time"

	"github.com/handiism/soundcloud-downloader/internal/model"
)

// JSONPlaylist is a set as returned by the resolve endpoint.
type JSONPlaylist struct {
	ID           int64        `json:"id"`
	Kind         string       `json:"kind"`
	Title        string       `json:"title"`
	PermalinkURL string       `json:"permalink_url"`
	ArtworkURL   *string      `json:"artwork_url"`
	SetType      string       `json:"set_type"`
	IsAlbum      bool         `json:"is_album"`
	CreatedAt    *time.Time   `json:"created_at"`
	ReleaseDate  *string      `json:"release_date"`
	PublishedAt  *string      `json:"published_at"`
	TrackCount   int          `json:"track_count"`
	User         *JSONUser    `json:"user"`
	Tracks       []*JSONTrack `json:"tracks"`
}

// ToPlaylist converts JSONPlaylist to a model.Playlist. Track names are
// stamped with the playlist title.
func (jp *JSONPlaylist) ToPlaylist() *model.Playlist {
	p := &model.Playlist{
		ID:           jp.ID,
		Title:        jp.Title,
		PermalinkURL: jp.PermalinkURL,
		ArtworkURL:   deref(jp.ArtworkURL),
		SetType:      jp.SetType,
		IsAlbum:      jp.IsAlbum || jp.SetType == "album",
		ReleaseDate:  parseDate(jp.ReleaseDate),
		TrackCount:   jp.TrackCount,
	}
	if jp.CreatedAt != nil {
		p.CreatedAt = *jp.CreatedAt
	}
	if p.ReleaseDate.IsZero() {
		p.ReleaseDate = parseDate(jp.PublishedAt)
	}
	if jp.User != nil {
		p.User = jp.User.ToUser()
		p.Artist = p.User.Username
	}

	p.Tracks = make([]*model.Track, 0, len(jp.Tracks))
	for _, jt := range jp.Tracks {
		if jt == nil || jt.ID == 0 {
			continue
		}
		t := jt.ToTrack()
		t.PlaylistName = p.Title
		p.Tracks = append(p.Tracks, t)
	}
	if p.ArtworkURL == "" {
		for _, t := range p.Tracks {
			if t.Full && t.ArtworkURL != "" {
				p.ArtworkURL = t.ArtworkURL
				break
			}
		}
	}
	return p
}
