// Package download turns SoundCloud URLs into files on disk.
//
// # Manager
//
// The Manager coordinates the entire download process:
//
//  1. Parse input URLs, one per line
//  2. Resolve each into collections: a track, a playlist, or a user's
//     tracks, playlists or albums
//  3. Download cover art
//  4. Download tracks concurrently, skipping archived and existing files
//  5. Tag MP3 files with ID3 metadata
//  6. Generate playlists (optional) and record the archive
//
// # Basic Usage
//
//	manager := download.NewManager(settings, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	}, download.WithLogger(logger))
//	defer manager.Close()
//
//	if err := manager.Initialize(ctx, "https://soundcloud.com/artist/sets/name"); err != nil {
//	    log.Fatal(err)
//	}
//	if err := manager.StartDownloads(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
//   - MaxConcurrentPlaylistsDownload: collections downloaded in parallel
//   - MaxConcurrentTracksDownload: tracks downloaded at once across all
//     collections, adjustable at run time with SetMaxConcurrentTracks
//   - MaxConcurrentRequests: playlists populated in parallel
//   - RequestsPerSecond, RequestBurst: outbound request rate
//
// # Retry Logic
//
// Rate limiting and transport failures are retried with exponential
// backoff, configured by DownloadMaxRetries, DownloadRetryCooldown and
// DownloadRetryExponent. Other errors fail the track at once.
package download
