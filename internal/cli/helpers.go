package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/runnerr0/recall/internal/config"
	"github.com/runnerr0/recall/internal/logger"
	"github.com/runnerr0/recall/internal/storage"
)

// session is what a command needs once config is loaded and the store is
// open.
type session struct {
	cfg    *config.Config
	store  *storage.SQLiteStore
	dbPath string
	log    logger.Logger
	now    func() time.Time
}

// openSession loads the config, opens the store and applies the user's
// exclusion rules to it.
func openSession(globals *GlobalFlags) (*session, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(globals, cfg)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	store, err := storage.Open(dbPath, cfg.Storage.SQLiteJournalMode)
	if err != nil {
		return nil, err
	}

	log := logger.Noop()
	if globals.Verbose {
		log, err = logger.New(os.Stderr, logger.LevelDebug, cfg.Logging.Format)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	if err := syncExclusions(context.Background(), store, cfg); err != nil {
		store.Close()
		return nil, err
	}

	log.Debug("store opened", "path", dbPath, "journal_mode", cfg.Storage.SQLiteJournalMode)
	return &session{cfg: cfg, store: store, dbPath: dbPath, log: log, now: time.Now}, nil
}

// Close releases the store.
func (s *session) Close() error {
	return s.store.Close()
}

func (s *session) nowMillis() float64 {
	return float64(s.now().UnixMilli())
}

// loadConfig reads --config when given, otherwise the default file,
// creating it on first use.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals.Config == "" {
		return config.LoadOrCreate()
	}
	path, err := config.ExpandPath(globals.Config)
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// resolveDBPath determines the SQLite database file path.
// Priority: --db-path flag > config file.
func resolveDBPath(globals *GlobalFlags, cfg *config.Config) (string, error) {
	if globals.DBPath != "" {
		return config.ExpandPath(globals.DBPath)
	}
	return cfg.DBPath()
}

// syncExclusions adds the config's denylist to the store's rules.
func syncExclusions(ctx context.Context, store storage.Store, cfg *config.Config) error {
	for _, d := range cfg.Capture.DenylistDomains {
		rule := storage.Exclusion{Type: storage.RuleDomain, Value: d, Reason: "config"}
		if err := store.AddExclusion(ctx, rule); err != nil {
			return fmt.Errorf("apply capture.denylist_domains: %w", err)
		}
	}
	for _, expr := range cfg.Capture.DenylistRegex {
		rule := storage.Exclusion{Type: storage.RuleRegex, Value: expr, Reason: "config"}
		if err := store.AddExclusion(ctx, rule); err != nil {
			return fmt.Errorf("apply capture.denylist_regex: %w", err)
		}
	}
	return nil
}

// parseAge turns a --since/--until value into an absolute time before now.
// An empty value yields the zero time.
func parseAge(flag, value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	d, err := config.ParseDuration(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s value %q: %w", flag, value, err)
	}
	return now.Add(-d), nil
}

func printJSON(v any) error {
	return writeJSON(os.Stdout, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// formatDurationHuman formats a duration into a human-readable string like "30 days".
func formatDurationHuman(d time.Duration) string {
	days := int(d.Hours() / 24)
	if days > 0 {
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
	hours := int(d.Hours())
	if hours > 0 {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return d.String()
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}

func plural(n int64, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
