package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			DefaultMaxResults: 20,
			MaxContextChars:   8000,
			LoadLimit:         50000,
		},
		Retention: RetentionConfig{
			Days: 90,
		},
		Capture: CaptureConfig{
			DenylistDomains: []string{},
			DenylistRegex:   []string{},
		},
		Storage: StorageConfig{
			Path:              "~/.config/recall",
			SQLiteFile:        "recall.db",
			SQLiteJournalMode: "wal",
		},
		Server: ServerConfig{
			Host:                   "127.0.0.1",
			Port:                   8721,
			MaxRequestSize:         10 << 20,
			RateLimitRequests:      60,
			RateLimitWindowSeconds: 60,
			RedisURL:               "",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 300,
			Prefix:     "recall:",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "",
		},
	}
}
