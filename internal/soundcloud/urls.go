package soundcloud

import (
	"net/url"
	"strings"
)

// URLKind is the resource shape of a URL, decided without any request.
type URLKind int

const (
	URLUnknown URLKind = iota
	URLTrack
	URLPlaylist
	URLUser
	URLShortLink
)

func (k URLKind) String() string {
	switch k {
	case URLTrack:
		return "track"
	case URLPlaylist:
		return "playlist"
	case URLUser:
		return "user"
	case URLShortLink:
		return "short link"
	default:
		return "unknown"
	}
}

// userTabs are second path segments that denote a user's page rather
// than a track.
var userTabs = map[string]bool{
	"tracks":         true,
	"sets":           true,
	"albums":         true,
	"popular-tracks": true,
	"reposts":        true,
	"likes":          true,
	"followers":      true,
	"following":      true,
}

// reservedPaths are first path segments that are site pages, not users.
var reservedPaths = map[string]bool{
	"discover": true,
	"search":   true,
	"stream":   true,
	"upload":   true,
	"you":      true,
	"charts":   true,
	"pages":    true,
	"settings": true,
}

// ClassifyURL reports the resource shape of rawURL.
func ClassifyURL(rawURL string) URLKind {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return URLUnknown
	}
	host := strings.ToLower(u.Hostname())
	if isShortLinkHost(host) {
		if len(pathSegments(u.Path)) > 0 {
			return URLShortLink
		}
		return URLUnknown
	}
	host = strings.TrimPrefix(host, "www.")
	host = strings.TrimPrefix(host, "m.")
	if host != "soundcloud.com" {
		return URLUnknown
	}

	segs := pathSegments(u.Path)
	switch {
	case len(segs) == 0 || reservedPaths[segs[0]]:
		return URLUnknown
	case len(segs) == 1:
		return URLUser
	case len(segs) == 2 && userTabs[segs[1]]:
		return URLUser
	case len(segs) == 2:
		return URLTrack
	case segs[1] == "sets":
		// /user/sets/name and /user/sets/name/s-secret
		return URLPlaylist
	case len(segs) == 3 && strings.HasPrefix(segs[2], "s-"):
		// /user/track/s-secret
		return URLTrack
	default:
		return URLUnknown
	}
}

func isShortLinkHost(host string) bool {
	return strings.HasPrefix(host, "on.soundcloud.")
}

// pathSegments splits a URL path into its non-empty segments.
func pathSegments(p string) []string {
	var segs []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// userPermalink trims user tab suffixes such as /tracks so the URL
// resolves to the user.
func userPermalink(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return rawURL
	}
	segs := pathSegments(u.Path)
	if len(segs) == 2 && userTabs[segs[1]] {
		u.Path = "/" + segs[0]
	}
	return u.String()
}

// withQuery returns base with params merged into its query string.
func withQuery(base string, params url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range params {
		q.Del(k)
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
