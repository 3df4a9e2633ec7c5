// Package archive records which tracks were already downloaded so that
// later runs can skip them.
package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one downloaded track.
type Entry struct {
	TrackID      int64     `gorm:"primaryKey;autoIncrement:false"`
	PermalinkURL string    `gorm:"not null"`
	Title        string    `gorm:"not null"`
	Path         string    `gorm:"not null"`
	RunID        string    `gorm:"index"`
	DownloadedAt time.Time `gorm:"autoCreateTime"`
}

// Archive is a SQLite backed set of downloaded tracks. It is safe for
// concurrent use.
type Archive struct {
	db *gorm.DB
}

// Open opens or creates the archive database at path.
func Open(path string) (*Archive, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate archive: %w", err)
	}
	return &Archive{db: db}, nil
}

// Has reports whether the track was recorded by any run.
func (a *Archive) Has(ctx context.Context, trackID int64) (bool, error) {
	_, ok, err := a.Lookup(ctx, trackID)
	return ok, err
}

// Lookup returns the entry recorded for the track, if any.
func (a *Archive) Lookup(ctx context.Context, trackID int64) (Entry, bool, error) {
	var e Entry
	err := a.db.WithContext(ctx).First(&e, "track_id = ?", trackID).Error
	switch {
	case err == nil:
		return e, true, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Entry{}, false, nil
	default:
		return Entry{}, false, err
	}
}

// Record stores e, replacing any earlier entry for the same track.
func (a *Archive) Record(ctx context.Context, e Entry) error {
	if e.DownloadedAt.IsZero() {
		e.DownloadedAt = time.Now()
	}
	return a.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&e).Error
}

// Run returns the entries recorded by one run, oldest first.
func (a *Archive) Run(ctx context.Context, runID string) ([]Entry, error) {
	var entries []Entry
	err := a.db.WithContext(ctx).Where("run_id = ?", runID).
		Order("downloaded_at ASC, track_id ASC").
		Find(&entries).Error
	return entries, err
}

// Count returns the number of archived tracks.
func (a *Archive) Count(ctx context.Context) (int64, error) {
	var n int64
	err := a.db.WithContext(ctx).Model(&Entry{}).Count(&n).Error
	return n, err
}

// Close releases the database handle.
func (a *Archive) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
