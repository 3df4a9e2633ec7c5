package soundcloud

import "testing"

func TestClassifyURL(t *testing.T) {
	tests := []struct {
		url  string
		want URLKind
	}{
		{"https://soundcloud.com/artist", URLUser},
		{"https://soundcloud.com/artist/", URLUser},
		{"https://soundcloud.com/artist/tracks", URLUser},
		{"https://soundcloud.com/artist/sets", URLUser},
		{"https://www.soundcloud.com/artist/song-name", URLTrack},
		{"https://m.soundcloud.com/artist/song-name", URLTrack},
		{"https://soundcloud.com/artist/song-name?in=x/sets/y", URLTrack},
		{"https://soundcloud.com/artist/song-name/s-AbCdE", URLTrack},
		{"https://soundcloud.com/artist/sets/my-set", URLPlaylist},
		{"https://soundcloud.com/artist/sets/my-set/s-secret", URLPlaylist},
		{"https://on.soundcloud.com/AbCd123", URLShortLink},
		{"https://on.soundcloud.com/", URLUnknown},
		{"https://soundcloud.com/discover", URLUnknown},
		{"https://soundcloud.com/", URLUnknown},
		{"https://example.com/artist/song", URLUnknown},
		{"artist/song", URLUnknown},
		{"", URLUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := ClassifyURL(tt.url); got != tt.want {
				t.Errorf("ClassifyURL(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}
