package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dryRun         bool
	createPlaylist bool
	userContent    string
	parallel       int

	downloadCmd = &cobra.Command{
		Use:     "download [url...]",
		Aliases: []string{"dl"},
		Short:   "Download tracks, playlists or profiles",
		Args:    cobra.MinimumNArgs(1),
		RunE:    runDownload,
	}
)

func init() {
	downloadCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve URLs without downloading")
	downloadCmd.Flags().BoolVarP(&createPlaylist, "playlist", "p", false, "Create playlist file")
	downloadCmd.Flags().StringVarP(&userContent, "user-content", "u", "", "What to download from profiles: tracks, popular, playlists or albums")
	downloadCmd.Flags().IntVarP(&parallel, "parallel", "j", 0, "Concurrent track downloads (overrides config)")
}

func runDownload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if createPlaylist {
		settings.CreatePlaylist = true
	}
	if userContent != "" {
		settings.UserContent = userContent
	}
	if parallel > 0 {
		settings.MaxConcurrentTracksDownload = parallel
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	manager := newManager()
	defer func() {
		if err := manager.Close(); err != nil {
			log.Warn("closing manager", zap.Error(err))
		}
	}()

	titleColor.Println("☁ SoundCloud Downloader")
	fmt.Println(strings.Repeat("━", 40))
	fmt.Println()

	if err := manager.Initialize(ctx, strings.Join(args, "\n")); err != nil {
		return fmt.Errorf("initializing: %w", err)
	}
	if len(manager.Collections()) == 0 {
		return fmt.Errorf("nothing to download")
	}

	if dryRun {
		fmt.Println("\n[Dry run - not downloading]")
		return nil
	}

	fmt.Println("\nStarting downloads...")
	fmt.Println()

	if err := manager.StartDownloads(ctx); err != nil {
		return fmt.Errorf("downloading: %w", err)
	}

	received, total, filesReceived, filesTotal := manager.GetProgress()
	fmt.Println()
	fmt.Println(strings.Repeat("━", 40))
	fmt.Printf("Complete! Downloaded %d/%d files (%.2f MB)\n", filesReceived, filesTotal, float64(received)/1024/1024)
	if total > 0 && received < total {
		fmt.Printf("   (%.2f MB expected)\n", float64(total)/1024/1024)
	}
	if failed := manager.Failed(); failed > 0 {
		return fmt.Errorf("%d track(s) failed", failed)
	}
	return nil
}
