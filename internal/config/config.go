package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// CacheConfig represents result cache configuration
type CacheConfig struct {
	// Path is the cache file (relative paths are resolved against the home directory)
	Path string `yaml:"path"`

	// Capacity is the maximum number of cached searches
	Capacity int `yaml:"capacity"`
}

// SearchConfig represents engine and walker limits
type SearchConfig struct {
	// MaxConcurrentScans bounds the directories listed at once
	MaxConcurrentScans int `yaml:"max_concurrent_scans"`

	// ChannelCapacity is the result buffer between walker and drain loop
	ChannelCapacity int `yaml:"channel_capacity"`

	// PollInterval is how often a run checks for cancellation
	PollInterval time.Duration `yaml:"poll_interval"`

	// YieldEvery is the number of entries between scheduler yields
	YieldEvery int `yaml:"yield_every"`

	// MaxContentBytes is the largest file read for content search
	MaxContentBytes int64 `yaml:"max_content_bytes"`
}

// HistoryConfig represents search history retention
type HistoryConfig struct {
	// Keep is the number of runs kept when the history is pruned (0 = keep all)
	Keep int `yaml:"keep"`
}

// Config represents filescout configuration options
type Config struct {
	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// LogDir is the directory where activity logs are written
	LogDir string `yaml:"log_dir"`

	// DBPath is the SQLite database holding settings slots and history
	DBPath string `yaml:"db_path"`

	// ThresholdsPath is the fuzzy matching thresholds file
	ThresholdsPath string `yaml:"thresholds_path"`

	// DevBuild skips the owner-lookup elevation request
	DevBuild bool `yaml:"dev_build"`

	Cache   CacheConfig   `yaml:"cache"`
	Search  SearchConfig  `yaml:"search"`
	History HistoryConfig `yaml:"history"`
}

// DefaultConfig returns a Config with sensible default values. Paths are
// relative to the home directory until ResolvePaths is called.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		LogDir:         "logs",
		DBPath:         "filescout.db",
		ThresholdsPath: "fuzzy_properties.yaml",
		DevBuild:       false,
		Cache: CacheConfig{
			Path:     filepath.Join("cache", "search_cache.json"),
			Capacity: 50,
		},
		Search: SearchConfig{
			MaxConcurrentScans: 16,
			ChannelCapacity:    100,
			PollInterval:       100 * time.Millisecond,
			YieldEvery:         64,
			MaxContentBytes:    10 << 20,
		},
		History: HistoryConfig{
			Keep: 1000,
		},
	}
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Keys missing from the file keep their defaults
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// LoadConfigFromHome loads config.yaml from the home directory and resolves
// its paths against it
func LoadConfigFromHome(home string) (*Config, error) {
	cfg, err := LoadConfig(ConfigPath(home))
	if err != nil {
		return nil, err
	}
	cfg.ResolvePaths(home)
	return cfg, nil
}

// ResolvePaths makes every relative path absolute under home
func (c *Config) ResolvePaths(home string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(home, p)
	}
	c.LogDir = resolve(c.LogDir)
	c.DBPath = resolve(c.DBPath)
	c.ThresholdsPath = resolve(c.ThresholdsPath)
	c.Cache.Path = resolve(c.Cache.Path)
}

// MergeWithFlags merges CLI flags into the configuration
// Non-nil flag values override configuration values
func (c *Config) MergeWithFlags(logLevel *string, maxConcurrentScans *int, cachePath *string, devBuild *bool) {
	if logLevel != nil {
		c.LogLevel = *logLevel
	}
	if maxConcurrentScans != nil {
		c.Search.MaxConcurrentScans = *maxConcurrentScans
	}
	if cachePath != nil {
		c.Cache.Path = *cachePath
	}
	if devBuild != nil {
		c.DevBuild = *devBuild
	}
}

// Validate validates the configuration values
// Returns an error if any values are invalid
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.Cache.Path == "" {
		return fmt.Errorf("cache.path cannot be empty")
	}
	if c.Cache.Capacity <= 0 {
		return fmt.Errorf("cache.capacity must be > 0, got %d", c.Cache.Capacity)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path cannot be empty")
	}
	if c.LogDir == "" {
		return fmt.Errorf("log_dir cannot be empty")
	}

	if c.Search.MaxConcurrentScans <= 0 {
		return fmt.Errorf("search.max_concurrent_scans must be > 0, got %d", c.Search.MaxConcurrentScans)
	}
	if c.Search.ChannelCapacity <= 0 {
		return fmt.Errorf("search.channel_capacity must be > 0, got %d", c.Search.ChannelCapacity)
	}
	if c.Search.PollInterval <= 0 {
		return fmt.Errorf("search.poll_interval must be > 0, got %v", c.Search.PollInterval)
	}
	if c.Search.YieldEvery <= 0 {
		return fmt.Errorf("search.yield_every must be > 0, got %d", c.Search.YieldEvery)
	}
	if c.Search.MaxContentBytes <= 0 {
		return fmt.Errorf("search.max_content_bytes must be > 0, got %d", c.Search.MaxContentBytes)
	}

	if c.History.Keep < 0 {
		return fmt.Errorf("history.keep must be >= 0, got %d", c.History.Keep)
	}

	return nil
}

// Level returns the configured slog level
func (c *Config) Level() slog.Level {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLevel converts a log_level value to a slog level
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error", s)
	}
}
