package model

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Collection is a group of tracks saved into one folder: a playlist, an
// album, a user's uploads or a single track.
//
// Paths are computed by NewCollection using placeholders like
// {artist}, {playlist} and {year}.
//
// Example:
//
//	cfg := &PathConfig{
//	    DownloadsPath:          "/music/{artist}/{playlist}",
//	    CoverArtFileNameFormat: "cover",
//	    PlaylistFormat:         PlaylistFormatM3U,
//	}
//	c := NewCollection("Artist", "Mixtape", artURL, releaseDate, tracks, cfg)
//	// c.Path = "/music/Artist/Mixtape"
type Collection struct {
	// Artist is the collection owner.
	Artist string

	// Title is the playlist title; empty for loose tracks.
	Title string

	// ArtworkURL is empty when there is no cover.
	ArtworkURL string

	ReleaseDate time.Time

	Tracks []*Track

	// Path is the local folder where files are saved.
	Path string

	// ArtworkPath is empty if the collection has no artwork.
	ArtworkPath string

	PlaylistPath string
}

// NewCollection creates a Collection with computed paths and numbers the
// tracks in order.
func NewCollection(artist, title, artworkURL string, releaseDate time.Time, tracks []*Track, cfg *PathConfig) *Collection {
	c := &Collection{
		Artist:      artist,
		Title:       title,
		ArtworkURL:  artworkURL,
		ReleaseDate: releaseDate,
		Tracks:      tracks,
	}
	for i, t := range tracks {
		t.Number = i + 1
	}

	c.Path = c.parseFolderPath(cfg)
	c.PlaylistPath = c.parsePlaylistPath(cfg)
	c.ArtworkPath = c.parseArtworkPath(cfg)
	return c
}

// HasArtwork returns true if the collection has cover art available.
func (c *Collection) HasArtwork() bool {
	return c.ArtworkURL != ""
}

// TrackPath returns the file path for t inside the collection, ext
// including the dot.
func (c *Collection) TrackPath(t *Track, ext string, cfg *TrackConfig) string {
	fileName := c.parseTrackFileName(t, cfg)
	filePath := filepath.Join(c.Path, fileName+ext)

	// Windows MAX_PATH
	if len(filePath) >= 260 {
		maxLen := 11 - len(ext)
		if maxLen > 0 && maxLen < len(fileName) {
			filePath = filepath.Join(c.Path, fileName[:maxLen]+ext)
		}
	}
	return filePath
}

// PathConfig holds folder and file naming settings for collections.
//
// Placeholders:
//   - {artist} - Collection owner
//   - {playlist} - Playlist title, empty for loose tracks
//   - {year}, {month}, {day} - Release date components
type PathConfig struct {
	// DownloadsPath is the folder template.
	// Example: "/music/{artist}/{playlist}"
	DownloadsPath string

	// CoverArtFileNameFormat is the cover file name without extension.
	CoverArtFileNameFormat string

	// PlaylistFileNameFormat is the playlist file name without extension.
	PlaylistFileNameFormat string

	PlaylistFormat PlaylistFormat
}

// TrackConfig holds track file naming settings.
//
// FileNameFormat supports {tracknum}, {title}, {artist}, {playlist},
// {genre}, {id} and the date placeholders. It must not include the
// extension, which depends on the downloaded rendition.
type TrackConfig struct {
	FileNameFormat string
}

// PlaylistFormat represents supported playlist file formats.
type PlaylistFormat int

const (
	// PlaylistFormatM3U creates .m3u playlist files (most widely supported).
	PlaylistFormatM3U PlaylistFormat = iota

	// PlaylistFormatPLS creates .pls playlist files (used by Winamp).
	PlaylistFormatPLS

	// PlaylistFormatWPL creates .wpl playlist files (Windows Media Player).
	PlaylistFormatWPL

	// PlaylistFormatZPL creates .zpl playlist files (Zune Media Player).
	PlaylistFormatZPL
)

// Extension returns the file extension for the playlist format, including the dot.
func (pf PlaylistFormat) Extension() string {
	switch pf {
	case PlaylistFormatPLS:
		return ".pls"
	case PlaylistFormatWPL:
		return ".wpl"
	case PlaylistFormatZPL:
		return ".zpl"
	default:
		return ".m3u"
	}
}

// ParsePlaylistFormat maps a name such as "m3u" to a PlaylistFormat.
func ParsePlaylistFormat(name string) (PlaylistFormat, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "m3u", "":
		return PlaylistFormatM3U, nil
	case "pls":
		return PlaylistFormatPLS, nil
	case "wpl":
		return PlaylistFormatWPL, nil
	case "zpl":
		return PlaylistFormatZPL, nil
	default:
		return PlaylistFormatM3U, fmt.Errorf("unknown playlist format %q", name)
	}
}

func (c *Collection) replaceDate(s string) string {
	s = strings.ReplaceAll(s, "{year}", c.ReleaseDate.Format("2006"))
	s = strings.ReplaceAll(s, "{month}", c.ReleaseDate.Format("01"))
	return strings.ReplaceAll(s, "{day}", c.ReleaseDate.Format("02"))
}

func (c *Collection) parseFolderPath(cfg *PathConfig) string {
	path := c.replaceDate(cfg.DownloadsPath)
	path = strings.ReplaceAll(path, "{artist}", sanitizeFileName(c.Artist))
	path = strings.ReplaceAll(path, "{playlist}", sanitizeFileName(c.Title))
	path = filepath.Clean(path)

	if len(path) >= 248 {
		path = path[:247]
	}
	return path
}

func (c *Collection) parsePlaylistPath(cfg *PathConfig) string {
	fileName := c.replaceDate(cfg.PlaylistFileNameFormat)
	fileName = strings.ReplaceAll(fileName, "{playlist}", c.Title)
	fileName = strings.ReplaceAll(fileName, "{artist}", c.Artist)
	fileName = sanitizeFileName(fileName)
	if fileName == "" {
		fileName = sanitizeFileName(c.Artist)
	}
	return filepath.Join(c.Path, fileName+cfg.PlaylistFormat.Extension())
}

func (c *Collection) parseArtworkPath(cfg *PathConfig) string {
	if !c.HasArtwork() {
		return ""
	}

	ext := filepath.Ext(stripQuery(c.ArtworkURL))
	if ext == "" {
		ext = ".jpg"
	}
	fileName := c.replaceDate(cfg.CoverArtFileNameFormat)
	fileName = strings.ReplaceAll(fileName, "{playlist}", c.Title)
	fileName = strings.ReplaceAll(fileName, "{artist}", c.Artist)
	fileName = sanitizeFileName(fileName)
	if fileName == "" {
		fileName = "cover"
	}
	return filepath.Join(c.Path, fileName+ext)
}

func (c *Collection) parseTrackFileName(t *Track, cfg *TrackConfig) string {
	date := t.Date()
	if date.IsZero() {
		date = c.ReleaseDate
	}
	playlist := t.PlaylistName
	if playlist == "" {
		playlist = c.Title
	}

	fileName := cfg.FileNameFormat
	fileName = strings.ReplaceAll(fileName, "{year}", date.Format("2006"))
	fileName = strings.ReplaceAll(fileName, "{month}", date.Format("01"))
	fileName = strings.ReplaceAll(fileName, "{day}", date.Format("02"))
	fileName = strings.ReplaceAll(fileName, "{playlist}", playlist)
	fileName = strings.ReplaceAll(fileName, "{artist}", t.Artist)
	fileName = strings.ReplaceAll(fileName, "{title}", t.Title)
	fileName = strings.ReplaceAll(fileName, "{genre}", t.Genre)
	fileName = strings.ReplaceAll(fileName, "{id}", strconv.FormatInt(t.ID, 10))
	fileName = strings.ReplaceAll(fileName, "{tracknum}", fmt.Sprintf("%02d", t.Number))
	fileName = sanitizeFileName(fileName)
	if fileName == "" {
		fileName = strconv.FormatInt(t.ID, 10)
	}
	return fileName
}

func stripQuery(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}

var (
	invalidChars  = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots  = regexp.MustCompile(`\.+$`)
	repeatedSpace = regexp.MustCompile(`\s+`)
)

// sanitizeFileName removes or replaces characters that are invalid in file/folder names.
//
// Example:
//
//	sanitizeFileName("Song: Part 1/2") // Returns "Song_ Part 1_2"
func sanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = repeatedSpace.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}
