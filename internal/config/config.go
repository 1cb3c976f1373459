package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/recall/config.yaml"

// Config holds all recall configuration.
type Config struct {
	Search    SearchConfig    `yaml:"search"`
	Retention RetentionConfig `yaml:"retention"`
	Capture   CaptureConfig   `yaml:"capture"`
	Storage   StorageConfig   `yaml:"storage"`
	Server    ServerConfig    `yaml:"server"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SearchConfig tunes queries against the local store.
type SearchConfig struct {
	DefaultMaxResults int `yaml:"default_max_results"`
	MaxContextChars   int `yaml:"max_context_chars"`
	// LoadLimit caps how many stored visits, most recent first, are handed
	// to the ranker per query.
	LoadLimit int `yaml:"load_limit"`
}

type RetentionConfig struct {
	Days int `yaml:"days"`
}

// CaptureConfig holds user exclusions applied on top of the built-in
// denylist when visits are stored.
type CaptureConfig struct {
	DenylistDomains []string `yaml:"denylist_domains"`
	DenylistRegex   []string `yaml:"denylist_regex"`
}

type StorageConfig struct {
	Path              string `yaml:"path"`
	SQLiteFile        string `yaml:"sqlite_file"`
	SQLiteJournalMode string `yaml:"sqlite_journal_mode"`
}

type ServerConfig struct {
	Host                   string `yaml:"host"`
	Port                   int    `yaml:"port"`
	MaxRequestSize         int64  `yaml:"max_request_size"`
	RateLimitRequests      int    `yaml:"rate_limit_requests"`
	RateLimitWindowSeconds int    `yaml:"rate_limit_window_seconds"`
	// RedisURL switches rate limiting and the response cache to Redis.
	RedisURL string `yaml:"redis_url"`
}

type CacheConfig struct {
	Enabled    bool   `yaml:"enabled"`
	TTLSeconds int    `yaml:"ttl_seconds"`
	Prefix     string `yaml:"prefix"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// Load reads a YAML config file at path and merges it with defaults.
// Returns an error if the file cannot be read, contains invalid YAML or
// holds values that fail Validate.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config file: %w", err)
	}

	return cfg, nil
}

// Validate checks value ranges and that every denylist regex compiles.
// All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Search.DefaultMaxResults <= 0 {
		errs = append(errs, fmt.Errorf("search.default_max_results must be positive, got %d", c.Search.DefaultMaxResults))
	}
	if c.Search.MaxContextChars <= 0 {
		errs = append(errs, fmt.Errorf("search.max_context_chars must be positive, got %d", c.Search.MaxContextChars))
	}
	if c.Search.LoadLimit <= 0 {
		errs = append(errs, fmt.Errorf("search.load_limit must be positive, got %d", c.Search.LoadLimit))
	}
	if c.Retention.Days < 0 {
		errs = append(errs, fmt.Errorf("retention.days must not be negative, got %d", c.Retention.Days))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Server.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_request_size must be positive, got %d", c.Server.MaxRequestSize))
	}
	if c.Server.RateLimitRequests < 0 || c.Server.RateLimitWindowSeconds < 0 {
		errs = append(errs, errors.New("server rate limit values must not be negative"))
	}
	if c.Cache.TTLSeconds < 0 {
		errs = append(errs, fmt.Errorf("cache.ttl_seconds must not be negative, got %d", c.Cache.TTLSeconds))
	}
	for _, expr := range c.Capture.DenylistRegex {
		if _, err := regexp.Compile(expr); err != nil {
			errs = append(errs, fmt.Errorf("capture.denylist_regex %q: %w", expr, err))
		}
	}

	return errors.Join(errs...)
}

// DBPath returns the absolute path of the SQLite database file.
func (c *Config) DBPath() (string, error) {
	dir, err := expandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}

// ListenAddr returns host:port for the HTTP server.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// RateLimitWindow returns the rate limit window as a duration.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.Server.RateLimitWindowSeconds) * time.Second
}

// CacheTTL returns the response cache TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// ExpandPath is expandPath for callers outside the package, such as
// command-line flags that accept ~-relative paths.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}
