package ioutils

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes data to a temporary file next to path and
// renames it into place, so that readers never observe a partial file.
// Missing parent directories are created.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".scdl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// EnsureDir creates a directory and all parent directories if they
// don't exist.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// FileSize returns the size of the regular file at path. ok is false
// when the file does not exist or is not a regular file.
func FileSize(path string) (size int64, ok bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0, false
	}
	return info.Size(), true
}

// SizeWithin reports whether local differs from expected by at most the
// given fraction of expected. An unknown expected size (<= 0) never
// matches.
//
//	SizeWithin(980, 1000, 0.05)  // true
//	SizeWithin(900, 1000, 0.05)  // false
func SizeWithin(local, expected int64, tolerance float64) bool {
	if expected <= 0 {
		return false
	}
	diff := math.Abs(float64(local - expected))
	return diff <= tolerance*float64(expected)
}
