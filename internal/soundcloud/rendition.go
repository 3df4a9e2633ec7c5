package soundcloud

import (
	"strings"

	"github.com/handiism/soundcloud-downloader/internal/model"
)

// Preference is one acceptable (quality, container, protocol)
// combination. MimeType matches as a substring.
type Preference struct {
	Quality  string
	MimeType string
	Protocol string
}

// DefaultPreferences lists acceptable renditions from best to worst.
var DefaultPreferences = []Preference{
	{Quality: "hq", MimeType: "audio/mp4", Protocol: model.ProtocolProgressive},
	{Quality: "hq", MimeType: "audio/mp4", Protocol: model.ProtocolHLS},
	{Quality: "sq", MimeType: "audio/mpeg", Protocol: model.ProtocolProgressive},
	{Quality: "sq", MimeType: "ogg", Protocol: model.ProtocolHLS},
	{Quality: "sq", MimeType: "audio/mpeg", Protocol: model.ProtocolHLS},
}

func (p Preference) matches(r model.Rendition) bool {
	return strings.EqualFold(r.Quality, p.Quality) &&
		strings.Contains(strings.ToLower(r.MimeType), p.MimeType) &&
		strings.EqualFold(r.Protocol, p.Protocol)
}

// SelectRendition picks the best rendition by DefaultPreferences.
func SelectRendition(renditions []model.Rendition) (model.Rendition, error) {
	return SelectRenditionBy(DefaultPreferences, renditions)
}

// SelectRenditionBy returns the first rendition matching the earliest
// preference in prefs. Preview-only (snipped) renditions never match.
func SelectRenditionBy(prefs []Preference, renditions []model.Rendition) (model.Rendition, error) {
	for _, pref := range prefs {
		for _, r := range renditions {
			if !r.Snipped && r.URL != "" && pref.matches(r) {
				return r, nil
			}
		}
	}
	return model.Rendition{}, ErrNoRendition
}
