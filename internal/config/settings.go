package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/viper"

	"github.com/handiism/soundcloud-downloader/internal/logger"
	"github.com/handiism/soundcloud-downloader/internal/model"
)

// EnvPrefix prefixes environment overrides, e.g. SCDL_PAGE_SIZE or
// SCDL_LOG_LEVEL.
const EnvPrefix = "SCDL"

// Settings holds all configuration options.
type Settings struct {
	// Download settings
	DownloadsPath                  string  `json:"downloads_path" mapstructure:"downloads_path" validate:"required"`
	MaxConcurrentPlaylistsDownload int     `json:"max_concurrent_playlists" mapstructure:"max_concurrent_playlists" validate:"min=1"`
	MaxConcurrentTracksDownload    int     `json:"max_concurrent_tracks" mapstructure:"max_concurrent_tracks" validate:"min=1"`
	DownloadMaxRetries             int     `json:"download_max_retries" mapstructure:"download_max_retries" validate:"min=0"`
	DownloadRetryCooldown          float64 `json:"download_retry_cooldown" mapstructure:"download_retry_cooldown" validate:"gte=0"`
	DownloadRetryExponent          float64 `json:"download_retry_exponent" mapstructure:"download_retry_exponent" validate:"gte=1"`
	AllowedFileSizeDifference      float64 `json:"allowed_file_size_difference" mapstructure:"allowed_file_size_difference" validate:"gte=0,lte=1"`
	UserContent                    string  `json:"user_content" mapstructure:"user_content" validate:"oneof=tracks popular playlists albums"`
	ArchivePath                    string  `json:"archive_path" mapstructure:"archive_path"`

	// API settings
	ClientID              string  `json:"client_id" mapstructure:"client_id"`
	PageSize              int     `json:"page_size" mapstructure:"page_size" validate:"min=1,max=200"`
	MaxConcurrentRequests int     `json:"max_concurrent_requests" mapstructure:"max_concurrent_requests" validate:"min=1"`
	RequestsPerSecond     float64 `json:"requests_per_second" mapstructure:"requests_per_second" validate:"gt=0"`
	RequestBurst          int     `json:"request_burst" mapstructure:"request_burst" validate:"min=1"`

	// File naming
	FileNameFormat         string `json:"file_name_format" mapstructure:"file_name_format" validate:"required"`
	CoverArtFileNameFormat string `json:"cover_art_file_name_format" mapstructure:"cover_art_file_name_format"`
	PlaylistFileNameFormat string `json:"playlist_file_name_format" mapstructure:"playlist_file_name_format"`

	// Cover art settings
	SaveCoverArtInFolder    bool `json:"save_cover_art_in_folder" mapstructure:"save_cover_art_in_folder"`
	SaveCoverArtInTags      bool `json:"save_cover_art_in_tags" mapstructure:"save_cover_art_in_tags"`
	CoverArtInFolderResize  bool `json:"cover_art_in_folder_resize" mapstructure:"cover_art_in_folder_resize"`
	CoverArtInFolderMaxSize int  `json:"cover_art_in_folder_max_size" mapstructure:"cover_art_in_folder_max_size" validate:"min=1"`
	CoverArtInTagsResize    bool `json:"cover_art_in_tags_resize" mapstructure:"cover_art_in_tags_resize"`
	CoverArtInTagsMaxSize   int  `json:"cover_art_in_tags_max_size" mapstructure:"cover_art_in_tags_max_size" validate:"min=1"`
	ConvertCoverArtToJPG    bool `json:"convert_cover_art_to_jpg" mapstructure:"convert_cover_art_to_jpg"`

	// Playlist settings
	CreatePlaylist bool   `json:"create_playlist" mapstructure:"create_playlist"`
	PlaylistFormat string `json:"playlist_format" mapstructure:"playlist_format" validate:"oneof=m3u pls wpl zpl"`
	M3UExtended    bool   `json:"m3u_extended" mapstructure:"m3u_extended"`

	// Tag settings
	ModifyTags bool `json:"modify_tags" mapstructure:"modify_tags"`

	// Proxy settings
	ProxyType    string `json:"proxy_type" mapstructure:"proxy_type" validate:"oneof=none system manual"`
	ProxyAddress string `json:"proxy_address" mapstructure:"proxy_address" validate:"required_if=ProxyType manual"`
	ProxyPort    int    `json:"proxy_port" mapstructure:"proxy_port" validate:"min=0,max=65535"`

	Log LogSettings `json:"log" mapstructure:"log"`
}

// LogSettings configures the application logger.
type LogSettings struct {
	Level      string `json:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `json:"format" mapstructure:"format" validate:"oneof=json console"`
	OutputPath string `json:"output_path" mapstructure:"output_path"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		DownloadsPath:                  filepath.Join(homeDir, "Music", "SoundCloud", "{artist}", "{playlist}"),
		MaxConcurrentPlaylistsDownload: 1,
		MaxConcurrentTracksDownload:    4,
		DownloadMaxRetries:             7,
		DownloadRetryCooldown:          0.2,
		DownloadRetryExponent:          4.0,
		AllowedFileSizeDifference:      0.05,
		UserContent:                    "tracks",
		ArchivePath:                    filepath.Join(configDir(), "archive.db"),

		PageSize:              50,
		MaxConcurrentRequests: 8,
		RequestsPerSecond:     5,
		RequestBurst:          5,

		FileNameFormat:         "{tracknum} {artist} - {title}",
		CoverArtFileNameFormat: "{playlist}",
		PlaylistFileNameFormat: "{playlist}",

		SaveCoverArtInFolder:    false,
		SaveCoverArtInTags:      true,
		CoverArtInFolderResize:  false,
		CoverArtInFolderMaxSize: 1000,
		CoverArtInTagsResize:    true,
		CoverArtInTagsMaxSize:   1000,
		ConvertCoverArtToJPG:    true,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		ModifyTags: true,

		ProxyType: "system",

		Log: LogSettings{Level: "info", Format: "console", OutputPath: "stderr"},
	}
}

// DefaultPath is where settings are read from when no path is given.
func DefaultPath() string {
	return filepath.Join(configDir(), "settings.json")
}

// DefaultLogPath is where the command line tools write their log when
// the terminal is busy with progress output.
func DefaultLogPath() string {
	return filepath.Join(configDir(), "scdl.log")
}

func configDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "scdl")
}

// Load reads settings from a JSON file, then applies SCDL_* environment
// overrides. A missing file yields the defaults. The result is
// validated.
func Load(path string) (*Settings, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := setDefaults(v, DefaultSettings()); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return settings, nil
}

// setDefaults registers every field of s as a viper default so that
// environment variables can override keys absent from the file.
func setDefaults(v *viper.Viper, s *Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	setFlat(v, "", m)
	return nil
}

func setFlat(v *viper.Viper, prefix string, m map[string]any) {
	for k, val := range m {
		if nested, ok := val.(map[string]any); ok {
			setFlat(v, prefix+k+".", nested)
			continue
		}
		v.SetDefault(prefix+k, val)
	}
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ToPathConfig converts settings to PathConfig.
func (s *Settings) ToPathConfig() *model.PathConfig {
	pf, err := model.ParsePlaylistFormat(s.PlaylistFormat)
	if err != nil {
		pf = model.PlaylistFormatM3U
	}
	return &model.PathConfig{
		DownloadsPath:          s.DownloadsPath,
		CoverArtFileNameFormat: s.CoverArtFileNameFormat,
		PlaylistFileNameFormat: s.PlaylistFileNameFormat,
		PlaylistFormat:         pf,
	}
}

// ToTrackConfig converts settings to TrackConfig.
func (s *Settings) ToTrackConfig() *model.TrackConfig {
	return &model.TrackConfig{
		FileNameFormat: s.FileNameFormat,
	}
}

// ToLoggerConfig converts the log section to a logger.Config.
func (s *Settings) ToLoggerConfig() logger.Config {
	return logger.Config{
		Level:      s.Log.Level,
		Format:     s.Log.Format,
		OutputPath: s.Log.OutputPath,
	}
}
