package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/handiism/dmx/internal/model"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	// ErrUnknownKey is returned by Set for keys that are not settings.
	ErrUnknownKey = errors.New("unknown config key")

	// ErrInvalidValue is returned when a value fails validation.
	ErrInvalidValue = errors.New("invalid config value")
)

const (
	fileName  = "config.json"
	envPrefix = "DMX"

	minSearchLimit = 1
	maxSearchLimit = 100
)

// Settings holds all configuration options.
type Settings struct {
	// Account
	ARL string `mapstructure:"arl" json:"arl"`

	// Download settings
	Quality         string `mapstructure:"quality" json:"quality"` // 128, 320, FLAC
	Output          string `mapstructure:"output" json:"output"`
	DeemixPath      string `mapstructure:"deemix_path" json:"deemix_path"`
	DownloadDelayMs int    `mapstructure:"download_delay_ms" json:"download_delay_ms"`

	// Search settings
	SearchLimit int `mapstructure:"search_limit" json:"search_limit"`

	// Logging
	Debug    bool   `mapstructure:"debug" json:"debug"`
	LogLevel string `mapstructure:"log_level" json:"log_level"`

	// API client
	CacheEnabled       bool    `mapstructure:"cache_enabled" json:"cache_enabled"`
	CacheTTL           int     `mapstructure:"cache_ttl" json:"cache_ttl"` // seconds
	CacheMaxEntries    int     `mapstructure:"cache_max_entries" json:"cache_max_entries"`
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" json:"rate_limit_per_second"`
	RateLimitBurst     int     `mapstructure:"rate_limit_burst" json:"rate_limit_burst"`
	MaxRetries         int     `mapstructure:"max_retries" json:"max_retries"`

	// File naming
	FileNameFormat         string `mapstructure:"file_name_format" json:"file_name_format"`
	PlaylistFileNameFormat string `mapstructure:"playlist_file_name_format" json:"playlist_file_name_format"`

	// Tag settings
	ModifyTags         bool `mapstructure:"modify_tags" json:"modify_tags"`
	SaveCoverArtInTags bool `mapstructure:"save_cover_art_in_tags" json:"save_cover_art_in_tags"`
	CoverArtMaxSize    int  `mapstructure:"cover_art_max_size" json:"cover_art_max_size"`

	// Playlist settings
	CreatePlaylist bool   `mapstructure:"create_playlist" json:"create_playlist"`
	PlaylistFormat string `mapstructure:"playlist_format" json:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `mapstructure:"m3u_extended" json:"m3u_extended"`

	dir string
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	homeDir, _ := os.UserHomeDir()
	return &Settings{
		Quality:         "320",
		Output:          filepath.Join(homeDir, "Downloads", "Music"),
		DeemixPath:      "deemix",
		DownloadDelayMs: 500,

		SearchLimit: 20,

		LogLevel: "INFO",

		CacheEnabled:       true,
		CacheTTL:           3600,
		CacheMaxEntries:    1000,
		RateLimitPerSecond: 5,
		RateLimitBurst:     10,
		MaxRetries:         3,

		FileNameFormat:         "{artist} - {title}",
		PlaylistFileNameFormat: "{artist} - {album}",

		ModifyTags:         true,
		SaveCoverArtInTags: true,
		CoverArtMaxSize:    1000,

		CreatePlaylist: false,
		PlaylistFormat: "m3u",
		M3UExtended:    true,

		dir: DefaultDir(),
	}
}

// DefaultDir returns the default configuration directory (~/.config/dmx).
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "dmx")
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "dmx")
}

// Load reads settings from config.json inside dir, applying defaults for
// missing keys. An empty dir selects DefaultDir. A missing file is not an
// error.
//
// Values can be overridden from the environment with the DMX_ prefix
// (DMX_ARL, DMX_QUALITY, DMX_OUTPUT, ...). A .env file in the working
// directory or in dir is loaded first.
func Load(dir string) (*Settings, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	loadDotEnv(dir)

	v := newViper(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	settings := DefaultSettings()
	if err := v.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	settings.dir = dir
	settings.Output = expandHome(settings.Output)

	if err := settings.normalize(); err != nil {
		return nil, err
	}
	return settings, nil
}

// Save writes settings to config.json inside the settings directory.
func (s *Settings) Save() error {
	if err := os.MkdirAll(s.Dir(), 0755); err != nil {
		return err
	}

	v := viper.New()
	for key, value := range s.values() {
		v.Set(key, value)
	}
	return v.WriteConfigAs(s.Path())
}

// Set parses and validates value for key, updating the settings in memory.
// Call Save to persist.
func (s *Settings) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "output_dir" {
		key = "output"
	}

	switch key {
	case "arl":
		s.ARL = strings.TrimSpace(value)
	case "quality":
		q, err := model.ParseQuality(value)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		s.Quality = q.String()
	case "output":
		s.Output = expandHome(value)
	case "deemix_path":
		s.DeemixPath = value
	case "file_name_format":
		s.FileNameFormat = value
	case "playlist_file_name_format":
		s.PlaylistFileNameFormat = value
	case "log_level":
		s.LogLevel = strings.ToUpper(value)
	case "playlist_format":
		switch strings.ToLower(value) {
		case "m3u", "pls", "wpl", "zpl":
			s.PlaylistFormat = strings.ToLower(value)
		default:
			return fmt.Errorf("%w: playlist_format %q (supported: m3u, pls, wpl, zpl)", ErrInvalidValue, value)
		}
	case "search_limit":
		n, err := parseInt(key, value)
		if err != nil {
			return err
		}
		if n < minSearchLimit || n > maxSearchLimit {
			return fmt.Errorf("%w: search_limit must be between %d and %d", ErrInvalidValue, minSearchLimit, maxSearchLimit)
		}
		s.SearchLimit = n
	case "download_delay_ms", "cache_ttl", "cache_max_entries", "rate_limit_burst", "max_retries", "cover_art_max_size":
		n, err := parseInt(key, value)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidValue, key)
		}
		s.setInt(key, n)
	case "rate_limit_per_second":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("%w: rate_limit_per_second %q", ErrInvalidValue, value)
		}
		s.RateLimitPerSecond = f
	case "debug", "cache_enabled", "modify_tags", "save_cover_art_in_tags", "create_playlist", "m3u_extended":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%w: %s expects true or false", ErrInvalidValue, key)
		}
		s.setBool(key, b)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// Get returns the string form of a setting.
func (s *Settings) Get(key string) (string, error) {
	value, ok := s.values()[strings.ToLower(key)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return fmt.Sprint(value), nil
}

// Keys returns every setting name in sorted order.
func (s *Settings) Keys() []string {
	values := s.values()
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Dir returns the configuration directory.
func (s *Settings) Dir() string {
	if s.dir == "" {
		return DefaultDir()
	}
	return s.dir
}

// Path returns the full path of config.json.
func (s *Settings) Path() string {
	return filepath.Join(s.Dir(), fileName)
}

// LogPath returns the log file location inside the config directory.
func (s *Settings) LogPath() string {
	return filepath.Join(s.Dir(), "logs", "dmx.log")
}

// CachePath returns the response cache database location.
func (s *Settings) CachePath() string {
	return filepath.Join(s.Dir(), "cache.db")
}

// PreferredQuality returns the configured quality tier, defaulting to 320.
func (s *Settings) PreferredQuality() model.Quality {
	q, err := model.ParseQuality(s.Quality)
	if err != nil {
		return model.Quality320
	}
	return q
}

// Qualities returns the ordered quality fallback list.
func (s *Settings) Qualities() []model.Quality {
	return s.PreferredQuality().Fallback()
}

// DownloadDelay returns the pause between items of a batch download.
func (s *Settings) DownloadDelay() time.Duration {
	return time.Duration(s.DownloadDelayMs) * time.Millisecond
}

// CacheTTLDuration returns the cache entry lifetime.
func (s *Settings) CacheTTLDuration() time.Duration {
	return time.Duration(s.CacheTTL) * time.Second
}

// ToPathConfig converts settings to PathConfig.
func (s *Settings) ToPathConfig() *model.PathConfig {
	return &model.PathConfig{
		PlaylistFileNameFormat: s.PlaylistFileNameFormat,
		PlaylistFormat:         model.ParsePlaylistFormat(s.PlaylistFormat),
	}
}

// ToTrackConfig converts settings to TrackConfig.
func (s *Settings) ToTrackConfig() *model.TrackConfig {
	return &model.TrackConfig{
		FileNameFormat: s.FileNameFormat,
	}
}

// WithDir returns a copy of the settings bound to another directory.
func (s *Settings) WithDir(dir string) *Settings {
	c := *s
	c.dir = dir
	return &c
}

func (s *Settings) normalize() error {
	q, err := model.ParseQuality(s.Quality)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}
	s.Quality = q.String()

	if s.SearchLimit < minSearchLimit {
		s.SearchLimit = minSearchLimit
	}
	if s.SearchLimit > maxSearchLimit {
		s.SearchLimit = maxSearchLimit
	}
	if s.RateLimitPerSecond <= 0 {
		s.RateLimitPerSecond = DefaultSettings().RateLimitPerSecond
	}
	if s.RateLimitBurst < 1 {
		s.RateLimitBurst = 1
	}
	s.LogLevel = strings.ToUpper(s.LogLevel)
	return nil
}

func (s *Settings) values() map[string]any {
	return map[string]any{
		"arl":                       s.ARL,
		"quality":                   s.Quality,
		"output":                    s.Output,
		"deemix_path":               s.DeemixPath,
		"download_delay_ms":         s.DownloadDelayMs,
		"search_limit":              s.SearchLimit,
		"debug":                     s.Debug,
		"log_level":                 s.LogLevel,
		"cache_enabled":             s.CacheEnabled,
		"cache_ttl":                 s.CacheTTL,
		"cache_max_entries":         s.CacheMaxEntries,
		"rate_limit_per_second":     s.RateLimitPerSecond,
		"rate_limit_burst":          s.RateLimitBurst,
		"max_retries":               s.MaxRetries,
		"file_name_format":          s.FileNameFormat,
		"playlist_file_name_format": s.PlaylistFileNameFormat,
		"modify_tags":               s.ModifyTags,
		"save_cover_art_in_tags":    s.SaveCoverArtInTags,
		"cover_art_max_size":        s.CoverArtMaxSize,
		"create_playlist":           s.CreatePlaylist,
		"playlist_format":           s.PlaylistFormat,
		"m3u_extended":              s.M3UExtended,
	}
}

func (s *Settings) setInt(key string, n int) {
	switch key {
	case "download_delay_ms":
		s.DownloadDelayMs = n
	case "cache_ttl":
		s.CacheTTL = n
	case "cache_max_entries":
		s.CacheMaxEntries = n
	case "rate_limit_burst":
		s.RateLimitBurst = n
	case "max_retries":
		s.MaxRetries = n
	case "cover_art_max_size":
		s.CoverArtMaxSize = n
	}
}

func (s *Settings) setBool(key string, b bool) {
	switch key {
	case "debug":
		s.Debug = b
	case "cache_enabled":
		s.CacheEnabled = b
	case "modify_tags":
		s.ModifyTags = b
	case "save_cover_art_in_tags":
		s.SaveCoverArtInTags = b
	case "create_playlist":
		s.CreatePlaylist = b
	case "m3u_extended":
		s.M3UExtended = b
	}
}

func newViper(dir string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(filepath.Join(dir, fileName))
	v.SetConfigType("json")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	for key, value := range DefaultSettings().values() {
		v.SetDefault(key, value)
	}
	return v
}

// loadDotEnv loads .env files without overriding variables that are
// already set. Missing files are ignored.
func loadDotEnv(dir string) {
	for _, path := range []string{".env", filepath.Join(dir, ".env")} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
		}
	}
}

func parseInt(key, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s expects an integer", ErrInvalidValue, key)
	}
	return n, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
