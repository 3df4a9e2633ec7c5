// Package soundcloud is a client for the SoundCloud v2 API.
//
// It resolves track, playlist and user URLs, enumerates paginated
// collections as deduplicated batches, searches, and downloads track
// audio.
//
// # Credentials
//
// The API requires a client id on every request. It is carried by an
// Auth value passed to each call rather than stored on the Client:
//
//	client := soundcloud.New(soundcloud.WithLogger(logger))
//	auth, err := client.FetchClientID(ctx)
//	if err != nil {
//	    auth = soundcloud.DefaultAuth()
//	}
//
// # Enumeration
//
// Collection methods return a *batch.Enumerator. Nothing is requested
// until the first call to Next:
//
//	tracks, err := client.PlaylistTracks(auth, url, 0, 50)
//	for b, err := range tracks.All(ctx) {
//	    ...
//	}
//
// # Downloading
//
// MediaURL picks a rendition with SelectRendition, asks the API for the
// media location and, for HLS renditions, reduces the playlist to a
// single URL. Download and DownloadFile stream the result.
//
// # Errors
//
// Errors can be matched with errors.Is against ErrInvalidResourceURL,
// ErrResourceUnavailable, ErrRateLimitExceeded, ErrTransport and
// ErrNotFound. Nothing in this package retries.
package soundcloud
