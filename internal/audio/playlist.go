package audio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/handiism/soundcloud-downloader/internal/model"
)

// Entry is one saved track of a collection.
type Entry struct {
	Track *model.Track
	Path  string
}

// PlaylistCreator generates playlist files in the formats listed by
// model.PlaylistFormat.
//
// Example:
//
//	creator := NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	content := creator.CreatePlaylist(collection, entries)
//	os.WriteFile(collection.PlaylistPath, []byte(content), 0644)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:180,Artist - Song Title
//	// 01 Artist - Song Title.mp3
type PlaylistCreator struct {
	format   model.PlaylistFormat
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewPlaylistCreator creates a new PlaylistCreator. extended only
// affects M3U output.
func NewPlaylistCreator(format model.PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// CreatePlaylist generates playlist content for the saved entries of c.
//
// Track paths in the playlist are relative (just the file name), the
// playlist file being written next to the tracks.
func (p *PlaylistCreator) CreatePlaylist(c *model.Collection, entries []Entry) string {
	switch p.format {
	case model.PlaylistFormatPLS:
		return p.createPLS(entries)
	case model.PlaylistFormatWPL:
		return p.createWPL(c, entries)
	case model.PlaylistFormatZPL:
		return p.createZPL(c, entries)
	default:
		return p.createM3U(entries)
	}
}

func seconds(t *model.Track) int {
	return int(t.Duration.Seconds())
}

// createM3U generates an M3U playlist, with #EXTINF lines when extended.
func (p *PlaylistCreator) createM3U(entries []Entry) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}
	for _, e := range entries {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s - %s\n", seconds(e.Track), e.Track.Artist, e.Track.Title)
		}
		sb.WriteString(filepath.Base(e.Path) + "\n")
	}
	return sb.String()
}

// createPLS generates an INI-style PLS playlist.
//
//	[playlist]
//	File1=filename1.mp3
//	Title1=Song Title
//	Length1=180
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")
	for i, e := range entries {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, filepath.Base(e.Path))
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, e.Track.Title)
		fmt.Fprintf(&sb, "Length%d=%d\n", idx, seconds(e.Track))
	}
	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(entries))
	sb.WriteString("Version=2\n")
	return sb.String()
}

// createWPL generates a Windows Media Player playlist.
func (p *PlaylistCreator) createWPL(c *model.Collection, entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(c.Title))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", escapeXML(filepath.Base(e.Path)))
	}
	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")
	return sb.String()
}

// createZPL generates a Zune playlist. It is WPL with per-track
// metadata attributes.
func (p *PlaylistCreator) createZPL(c *model.Collection, entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(c.Title))
	sb.WriteString("    <meta name=\"Generator\" content=\"scdl\"/>\n")
	fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(entries))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "      <media src=\"%s\" albumTitle=\"%s\" albumArtist=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\" duration=\"%d\"/>\n",
			escapeXML(filepath.Base(e.Path)),
			escapeXML(c.Title),
			escapeXML(c.Artist),
			escapeXML(e.Track.Title),
			escapeXML(e.Track.Artist),
			e.Track.Duration.Milliseconds())
	}
	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")
	return sb.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
