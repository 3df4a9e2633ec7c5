// Package model defines the core data structures used throughout
// the soundcloud-downloader application.
//
// # Resources
//
// Track, Playlist and User mirror the SoundCloud resources the API
// returns. Resource is a tagged union over the three. Every resource
// has a Key used to deduplicate paginated results.
//
// # Collection
//
// Collection is a group of tracks saved into one folder, with computed
// file paths:
//
//	c := model.NewCollection("Artist", "Mixtape", artworkURL, releaseDate, tracks, pathConfig)
//	fmt.Println(c.Path)                               // where to save files
//	fmt.Println(c.TrackPath(tracks[0], ".mp3", trackConfig))
//
// # Path Configuration
//
// PathConfig and TrackConfig control naming with placeholders:
// {artist}, {playlist}, {title}, {tracknum}, {genre}, {id}, {year},
// {month}, {day}.
package model
