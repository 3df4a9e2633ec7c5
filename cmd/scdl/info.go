package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/handiism/soundcloud-downloader/internal/model"
)

var (
	infoCmd = &cobra.Command{
		Use:   "info [url]",
		Short: "Show details about a track, playlist or profile",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}

	clientIDCmd = &cobra.Command{
		Use:   "client-id",
		Short: "Fetch a fresh client id from the SoundCloud web player",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			auth, err := newManager().Client().FetchClientID(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(auth.ClientID)
			return nil
		},
	}
)

func runInfo(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	manager := newManager()
	client := manager.Client()
	auth := manager.Auth(ctx)

	r, err := client.Resolve(ctx, auth, args[0])
	if err != nil {
		return err
	}

	switch r.Kind {
	case model.KindTrack:
		t := r.Track
		titleColor.Println(t.Title)
		fmt.Printf("  Artist:   %s\n", t.Artist)
		fmt.Printf("  Genre:    %s\n", t.Genre)
		fmt.Printf("  Duration: %s\n", t.Duration.Round(time.Second))
		fmt.Printf("  Date:     %s\n", formatDate(t.Date()))
		fmt.Printf("  Policy:   %s\n", t.Policy)
		for _, rd := range t.Renditions {
			fmt.Printf("  Format:   %s %s%s\n", rd.Protocol, rd.MimeType, snipped(rd))
		}

	case model.KindPlaylist:
		p := r.Playlist
		if err := client.Populate(ctx, auth, p); err != nil {
			return err
		}
		titleColor.Println(p.Title)
		fmt.Printf("  Artist: %s\n", p.Artist)
		fmt.Printf("  Type:   %s\n", playlistType(p))
		fmt.Printf("  Date:   %s\n", formatDate(p.Date()))
		fmt.Printf("  Tracks: %d\n", len(p.Tracks))
		for i, t := range p.Tracks {
			fmt.Printf("  %3d. %s - %s\n", i+1, t.Artist, t.Title)
		}

	case model.KindUser:
		u := r.User
		titleColor.Println(u.Username)
		if u.FullName != "" {
			fmt.Printf("  Name:      %s\n", u.FullName)
		}
		fmt.Printf("  Tracks:    %d\n", u.TrackCount)
		fmt.Printf("  Playlists: %d\n", u.PlaylistCount)
		fmt.Printf("  Followers: %d\n", u.Followers)
	}
	dimColor.Println(r.URL)
	return nil
}

func playlistType(p *model.Playlist) string {
	if p.IsAlbum {
		return "album"
	}
	if p.SetType != "" {
		return p.SetType
	}
	return "playlist"
}

func snipped(r model.Rendition) string {
	if r.Snipped {
		return " (preview)"
	}
	return ""
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
