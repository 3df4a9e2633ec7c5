package download

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"time"

	"github.com/handiism/soundcloud-downloader/internal/archive"
	schttp "github.com/handiism/soundcloud-downloader/internal/http"
	ioutils "github.com/handiism/soundcloud-downloader/internal/io"
	"github.com/handiism/soundcloud-downloader/internal/model"
)

// downloadTrack saves t into c and returns the file path. Archived
// tracks are skipped.
func (m *Manager) downloadTrack(ctx context.Context, c *model.Collection, t *model.Track, artwork []byte) (string, error) {
	if m.archive != nil {
		entry, ok, err := m.archive.Lookup(ctx, t.ID)
		switch {
		case err != nil:
			m.progress(ProgressEvent{Message: fmt.Sprintf("Archive lookup failed for %s: %v", t.Title, err), Level: LevelWarning})
		case ok:
			m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping archived: %s", t.Title), Level: LevelVerbose})
			m.downloadedFiles.Add(1)
			return entry.Path, nil
		}
	}

	var (
		path    string
		skipped bool
	)
	err := m.retry(ctx, t.Title, func(ctx context.Context) error {
		var err error
		path, skipped, err = m.fetchTrack(ctx, c, t)
		return err
	})
	if err != nil {
		return "", err
	}
	m.downloadedFiles.Add(1)

	if !skipped && filepath.Ext(path) == ".mp3" && (m.settings.ModifyTags || artwork != nil) {
		if err := m.tagger.SaveTags(path, t, c, artwork); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error tagging %s: %v", t.Title, err), Level: LevelWarning})
		}
	}

	if m.archive != nil {
		err := m.archive.Record(ctx, archive.Entry{
			TrackID:      t.ID,
			PermalinkURL: t.PermalinkURL,
			Title:        t.Title,
			Path:         path,
			RunID:        m.runID,
		})
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error archiving %s: %v", t.Title, err), Level: LevelWarning})
		}
	}

	if !skipped {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded: %s", filepath.Base(path)), Level: LevelVerbose})
	}
	return path, nil
}

// fetchTrack makes one attempt at saving t. The media URL is looked up
// on every attempt since it is signed and short-lived.
func (m *Manager) fetchTrack(ctx context.Context, c *model.Collection, t *model.Track) (path string, skipped bool, err error) {
	media, r, err := m.client.MediaURL(ctx, m.Auth(ctx), t)
	if err != nil {
		return "", false, err
	}
	path = c.TrackPath(t, r.Extension(), m.trackCfg)

	if local, ok := ioutils.FileSize(path); ok {
		expected, err := m.httpClient.GetFileSize(ctx, media)
		if err == nil && ioutils.SizeWithin(local, expected, m.settings.AllowedFileSizeDifference) {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping existing: %s", filepath.Base(path)), Level: LevelVerbose})
			return path, true, nil
		}
	}

	var written, total int64
	err = m.httpClient.DownloadFile(ctx, media, path, func(p schttp.Progress) {
		m.receivedBytes.Add(p.Written - written)
		written = p.Written
		if total == 0 && p.Known() {
			total = p.Total
			m.totalBytes.Add(total)
		}
	})
	if err != nil {
		m.receivedBytes.Add(-written)
		m.totalBytes.Add(-total)
		return "", false, err
	}
	return path, false, nil
}

// retry runs fn up to settings.DownloadMaxRetries times, waiting an
// exponentially growing cooldown between attempts. Only rate limiting
// and transport failures are retried.
func (m *Manager) retry(ctx context.Context, what string, fn func(context.Context) error) error {
	tries := max(1, m.settings.DownloadMaxRetries)

	var err error
	for try := 0; try < tries; try++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if !schttp.IsRetryable(err) || try == tries-1 {
			break
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Retry %d/%d for %s: %v", try+1, tries-1, what, err), Level: LevelWarning})
		if werr := m.waitForRetry(ctx, try); werr != nil {
			return errors.Join(err, werr)
		}
	}
	return err
}

func (m *Manager) waitForRetry(ctx context.Context, try int) error {
	cooldown := m.settings.DownloadRetryCooldown * math.Pow(m.settings.DownloadRetryExponent, float64(try))
	timer := time.NewTimer(time.Duration(cooldown * float64(time.Second)))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
