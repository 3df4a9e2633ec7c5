package audio

import (
	"strings"
	"testing"
	"time"

	"github.com/handiism/soundcloud-downloader/internal/model"
)

func TestPlaylistCreator_M3U(t *testing.T) {
	c, entries := createTestCollection()
	content := NewPlaylistCreator(model.PlaylistFormatM3U, false).CreatePlaylist(c, entries)

	if content != "01 track1.mp3\n02 track2.m4a\n" {
		t.Errorf("unexpected M3U:\n%s", content)
	}
}

func TestPlaylistCreator_M3UExtended(t *testing.T) {
	c, entries := createTestCollection()
	content := NewPlaylistCreator(model.PlaylistFormatM3U, true).CreatePlaylist(c, entries)

	if !strings.HasPrefix(content, "#EXTM3U\n") {
		t.Error("Extended M3U should start with #EXTM3U")
	}
	if !strings.Contains(content, "#EXTINF:180,Test Artist - track1\n01 track1.mp3\n") {
		t.Errorf("Extended M3U should describe each entry:\n%s", content)
	}
}

func TestPlaylistCreator_PLS(t *testing.T) {
	c, entries := createTestCollection()
	content := NewPlaylistCreator(model.PlaylistFormatPLS, false).CreatePlaylist(c, entries)

	for _, want := range []string{"[playlist]\n", "File1=01 track1.mp3\n", "Length2=200\n", "NumberOfEntries=2\n"} {
		if !strings.Contains(content, want) {
			t.Errorf("PLS should contain %q", want)
		}
	}
}

func TestPlaylistCreator_WPL(t *testing.T) {
	c, entries := createTestCollection()
	content := NewPlaylistCreator(model.PlaylistFormatWPL, false).CreatePlaylist(c, entries)

	if !strings.Contains(content, "<?wpl") {
		t.Error("WPL should contain XML declaration")
	}
	if strings.Count(content, "<media src=") != 2 {
		t.Error("WPL should contain one media element per entry")
	}
}

func TestPlaylistCreator_ZPL(t *testing.T) {
	c, entries := createTestCollection()
	content := NewPlaylistCreator(model.PlaylistFormatZPL, false).CreatePlaylist(c, entries)

	if !strings.Contains(content, "<?zpl") {
		t.Error("ZPL should contain XML declaration")
	}
	if !strings.Contains(content, `duration="180000"`) {
		t.Error("ZPL durations are in milliseconds")
	}
}

func TestPlaylistCreator_XMLEscape(t *testing.T) {
	track := &model.Track{ID: 1, Title: "Track & \"Quote\"", Artist: "Artist & Co"}
	c := model.NewCollection("Artist & Co", "Mix <Special>", "", time.Now(), []*model.Track{track}, pathConfig())

	content := NewPlaylistCreator(model.PlaylistFormatWPL, false).CreatePlaylist(c, []Entry{{Track: track, Path: "/music/a.mp3"}})

	if !strings.Contains(content, "Mix &lt;Special&gt;") {
		t.Error("WPL should escape < and >")
	}
	content = NewPlaylistCreator(model.PlaylistFormatZPL, false).CreatePlaylist(c, []Entry{{Track: track, Path: "/music/a.mp3"}})
	if !strings.Contains(content, "Track &amp; &quot;Quote&quot;") {
		t.Error("ZPL should escape & and quotes")
	}
}

func pathConfig() *model.PathConfig {
	return &model.PathConfig{
		DownloadsPath:          "/music/{artist}/{playlist}",
		CoverArtFileNameFormat: "{playlist}",
		PlaylistFileNameFormat: "{playlist}",
	}
}

func createTestCollection() (*model.Collection, []Entry) {
	tracks := []*model.Track{
		{ID: 1, Title: "track1", Artist: "Test Artist", Duration: 180 * time.Second},
		{ID: 2, Title: "track2", Artist: "Test Artist", Duration: 200 * time.Second},
	}
	c := model.NewCollection("Test Artist", "Test Mix", "", time.Now(), tracks, pathConfig())
	trackCfg := &model.TrackConfig{FileNameFormat: "{tracknum} {title}"}

	return c, []Entry{
		{Track: tracks[0], Path: c.TrackPath(tracks[0], ".mp3", trackCfg)},
		{Track: tracks[1], Path: c.TrackPath(tracks[1], ".m4a", trackCfg)},
	}
}
