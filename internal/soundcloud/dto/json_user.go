package dto

import "github.com/handiism/soundcloud-downloader/internal/model"

// JSONUser is an account as embedded in tracks and playlists or
// returned by the resolve endpoint.
type JSONUser struct {
	ID             int64   `json:"id"`
	Kind           string  `json:"kind"`
	Username       string  `json:"username"`
	FullName       string  `json:"full_name"`
	PermalinkURL   string  `json:"permalink_url"`
	AvatarURL      *string `json:"avatar_url"`
	City           *string `json:"city"`
	CountryCode    *string `json:"country_code"`
	Verified       bool    `json:"verified"`
	TrackCount     int     `json:"track_count"`
	PlaylistCount  int     `json:"playlist_count"`
	FollowersCount int     `json:"followers_count"`
}

// ToUser converts JSONUser to a model.User.
func (ju *JSONUser) ToUser() *model.User {
	return &model.User{
		ID:            ju.ID,
		Username:      ju.Username,
		FullName:      ju.FullName,
		PermalinkURL:  ju.PermalinkURL,
		AvatarURL:     deref(ju.AvatarURL),
		City:          deref(ju.City),
		CountryCode:   deref(ju.CountryCode),
		Verified:      ju.Verified,
		TrackCount:    ju.TrackCount,
		PlaylistCount: ju.PlaylistCount,
		Followers:     ju.FollowersCount,
	}
}
