package config

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// ParseDuration parses a human-friendly duration such as "30d", "2w",
// "24h", "15m" or "45s".
func ParseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty duration string")
	}
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative duration %q", s)
	}

	var unit time.Duration
	switch suffix {
	case 'w':
		unit = 7 * 24 * time.Hour
	case 'd':
		unit = 24 * time.Hour
	case 'h':
		unit = time.Hour
	case 'm':
		unit = time.Minute
	case 's':
		unit = time.Second
	default:
		return 0, fmt.Errorf("unknown duration suffix %q in %q", string(suffix), s)
	}

	if int64(n) > math.MaxInt64/int64(unit) {
		return 0, fmt.Errorf("duration too large %q", s)
	}
	return time.Duration(n) * unit, nil
}

// RetentionCutoff returns the instant before which visits expire, or the
// zero time when retention is disabled.
func (c *Config) RetentionCutoff(now time.Time) time.Time {
	if c.Retention.Days <= 0 {
		return time.Time{}
	}
	return now.AddDate(0, 0, -c.Retention.Days)
}
