// Package ioutils provides file system and image processing utilities
// used when saving tracks, cover art and playlists.
//
// # File Operations
//
//	// Write a playlist without exposing a partial file
//	err := ioutils.WriteFileAtomic("/music/Artist/Mix/Mix.m3u", content)
//
//	// Skip a track already on disk
//	if size, ok := ioutils.FileSize(path); ok && ioutils.SizeWithin(size, remote, 0.05) {
//	    ...
//	}
//
// # Image Processing
//
// Artwork URLs name a size that can be swapped for a larger one:
//
//	u := ioutils.ArtworkURL(track.ArtworkURL, ioutils.ArtworkT500)
//
// The ImageService handles cover art manipulation:
//
//	svc := ioutils.NewImageService(90)
//	resized, _ := svc.ResizeImage(ctx, imageData, 500, 500)
//	jpeg, _ := svc.ConvertToJPEG(ctx, pngData)
package ioutils
