// Package config provides configuration management for scdl.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Environment overrides through SCDL_* variables
//   - Validation of every setting
//   - Conversion to PathConfig, TrackConfig and logger.Config
//
// # Loading
//
//	settings, err := config.Load(config.DefaultPath())
//	// A missing file yields DefaultSettings()
//
// Nested keys use underscores in the environment:
//
//	SCDL_PAGE_SIZE=20 SCDL_LOG_LEVEL=debug scdl download ...
//
// # Saving Settings
//
//	settings.DownloadsPath = "/custom/path/{artist}/{playlist}"
//	err := settings.Save("/path/to/settings.json")
package config
