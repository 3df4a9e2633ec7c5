package audio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2"

	"github.com/handiism/soundcloud-downloader/internal/model"
)

// ErrUnsupportedFormat is returned by SaveTags for files that cannot
// carry ID3 tags.
var ErrUnsupportedFormat = errors.New("audio: only mp3 files can be tagged")

// TagEditAction defines how to handle individual ID3 tags.
type TagEditAction int

const (
	// TagEmpty clears the tag value.
	TagEmpty TagEditAction = iota

	// TagModify updates the tag with the value from SoundCloud.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field.
//
// Example:
//
//	cfg := &TagConfig{
//	    ModifyTags:  true,
//	    Artist:      TagModify,      // Publisher artist or uploader
//	    Album:       TagModify,      // Playlist title
//	    TrackTitle:  TagModify,
//	    Genre:       TagModify,
//	    Comments:    TagEmpty,       // Drop the track description
//	    AlbumArtist: TagDoNotModify, // Keep existing album artist
//	}
type TagConfig struct {
	// ModifyTags is a master switch. If false, no string tags are modified.
	ModifyTags bool

	// Artist controls the TPE1 (Lead artist) frame.
	Artist TagEditAction

	// AlbumArtist controls the TPE2 (Album artist) frame.
	AlbumArtist TagEditAction

	// Album controls the TALB (Album title) frame.
	Album TagEditAction

	// Year controls the TYER (Year) frame.
	Year TagEditAction

	// Date controls the TDRC (Recording time) frame.
	Date TagEditAction

	// TrackNumber controls the TRCK (Track number) frame.
	TrackNumber TagEditAction

	// TrackTitle controls the TIT2 (Title) frame.
	TrackTitle TagEditAction

	// Genre controls the TCON (Content type) frame.
	Genre TagEditAction

	// Comments controls the COMM frame, filled from the track description.
	Comments TagEditAction
}

// DefaultTagConfig returns the default tag configuration: every frame is
// updated except comments, which are cleared.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags:  true,
		Artist:      TagModify,
		AlbumArtist: TagModify,
		Album:       TagModify,
		Year:        TagModify,
		Date:        TagModify,
		TrackNumber: TagModify,
		TrackTitle:  TagModify,
		Genre:       TagModify,
		Comments:    TagEmpty,
	}
}

// Tagger writes ID3 tags to MP3 files.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//	err := tagger.SaveTags(path, track, collection, artworkBytes)
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes ID3 tags for track to the MP3 file at path. artwork
// holds JPEG bytes and may be nil.
func (t *Tagger) SaveTags(path string, track *model.Track, c *model.Collection, artwork []byte) error {
	if !strings.EqualFold(filepath.Ext(path), ".mp3") {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("opening tags: %w", err)
	}
	defer tag.Close()

	if t.config.ModifyTags {
		t.updateStringTags(tag, track, c)
	}
	if artwork != nil {
		updateArtwork(tag, artwork)
	}
	return tag.Save()
}

func (t *Tagger) updateStringTags(tag *id3v2.Tag, track *model.Track, c *model.Collection) {
	date := track.Date()
	if date.IsZero() {
		date = c.ReleaseDate
	}
	album := track.PlaylistName
	if album == "" {
		album = c.Title
	}

	switch t.config.Artist {
	case TagEmpty:
		tag.SetArtist("")
	case TagModify:
		tag.SetArtist(track.Artist)
	}

	switch t.config.Album {
	case TagEmpty:
		tag.SetAlbum("")
	case TagModify:
		tag.SetAlbum(album)
	}

	switch t.config.Year {
	case TagEmpty:
		tag.DeleteFrames("TYER")
	case TagModify:
		if !date.IsZero() {
			tag.AddTextFrame("TYER", id3v2.EncodingUTF8, date.Format("2006"))
		}
	}

	switch t.config.Date {
	case TagEmpty:
		tag.DeleteFrames("TDRC")
	case TagModify:
		if !date.IsZero() {
			tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, date.Format("2006-01-02"))
		}
	}

	switch t.config.TrackNumber {
	case TagEmpty:
		tag.DeleteFrames("TRCK")
	case TagModify:
		if track.Number > 0 {
			tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, strconv.Itoa(track.Number))
		}
	}

	switch t.config.TrackTitle {
	case TagEmpty:
		tag.SetTitle("")
	case TagModify:
		tag.SetTitle(track.Title)
	}

	switch t.config.AlbumArtist {
	case TagEmpty:
		tag.DeleteFrames("TPE2")
	case TagModify:
		tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, c.Artist)
	}

	switch t.config.Genre {
	case TagEmpty:
		tag.SetGenre("")
	case TagModify:
		tag.SetGenre(track.Genre)
	}

	switch t.config.Comments {
	case TagEmpty:
		tag.DeleteFrames(tag.CommonID("Comments"))
	case TagModify:
		if track.Description != "" {
			tag.DeleteFrames(tag.CommonID("Comments"))
			tag.AddCommentFrame(id3v2.CommentFrame{
				Encoding: id3v2.EncodingUTF8,
				Language: "eng",
				Text:     track.Description,
			})
		}
	}
}

// updateArtwork replaces any cover with artwork as the front cover.
func updateArtwork(tag *id3v2.Tag, artwork []byte) {
	tag.DeleteFrames(tag.CommonID("Attached picture"))
	tag.AddAttachedPicture(id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	})
}
