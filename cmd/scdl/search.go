package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/handiism/soundcloud-downloader/internal/model"
	"github.com/handiism/soundcloud-downloader/internal/soundcloud"
)

var (
	searchFilter string
	searchLimit  int
	searchQuery  bool

	searchCmd = &cobra.Command{
		Use:   "search [query]",
		Short: "Search SoundCloud",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}
)

func init() {
	searchCmd.Flags().StringVarP(&searchFilter, "filter", "f", "", "Only show tracks, playlists, albums or users")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "Maximum number of results (1-200)")
	searchCmd.Flags().BoolVar(&searchQuery, "suggest", false, "Show query suggestions instead of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	query := strings.Join(args, " ")

	manager := newManager()
	client := manager.Client()
	auth := manager.Auth(ctx)

	if searchQuery {
		suggestions, err := client.SearchQueries(ctx, auth, query, 0, searchLimit)
		if err != nil {
			return err
		}
		for _, s := range suggestions {
			fmt.Println(s)
		}
		return nil
	}

	filter, err := soundcloud.ParseSearchFilter(searchFilter)
	if err != nil {
		return err
	}
	results, err := client.Search(auth, query, filter, 0, searchLimit)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tTITLE\tURL")
	shown := 0
	for b, err := range results.All(ctx) {
		if err != nil {
			w.Flush()
			return err
		}
		for r := range b.All() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", r.Kind, truncate(describeResource(r), 50), r.URL)
			if shown++; shown >= searchLimit {
				return w.Flush()
			}
		}
	}
	return w.Flush()
}

func describeResource(r model.Resource) string {
	switch r.Kind {
	case model.KindTrack:
		return r.Track.Artist + " - " + r.Track.Title
	case model.KindPlaylist:
		if r.Playlist.IsAlbum {
			return r.Playlist.Title + " (album)"
		}
		return r.Playlist.Title
	default:
		return r.Title
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
