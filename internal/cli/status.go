package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/runnerr0/recall/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string            `json:"version"`
	DatabasePath      string            `json:"database_path"`
	DatabaseSizeBytes int64             `json:"database_size_bytes"`
	StoredURLs        int64             `json:"stored_urls"`
	TotalVisits       int64             `json:"total_visits"`
	Domains           int64             `json:"domains"`
	OldestVisit       string            `json:"oldest_visit,omitempty"`
	NewestVisit       string            `json:"newest_visit,omitempty"`
	RetentionDays     int               `json:"retention_days"`
	Exclusions        int               `json:"exclusions"`
	TopDomains        []domainCountJSON `json:"top_domains"`
}

type domainCountJSON struct {
	Domain string `json:"domain"`
	Count  int64  `json:"count"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWith(sess)
}

// executeWith runs status against an open session (for testing).
func (c *StatusCommand) executeWith(sess *session) error {
	ctx := context.Background()

	stats, err := sess.store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}

	rules, err := sess.store.ListExclusions(ctx)
	if err != nil {
		return fmt.Errorf("list exclusions: %w", err)
	}

	dbSize := databaseSize(sess.dbPath, stats)

	if c.globals != nil && c.globals.JSON {
		return c.printStatusJSON(sess, stats, dbSize, len(rules))
	}
	return c.printStatusHuman(sess, stats, dbSize, len(rules))
}

func (c *StatusCommand) printStatusHuman(sess *session, stats *storage.Stats, dbSize int64, rules int) error {
	fmt.Println("Recall Status")
	fmt.Println("=============")
	fmt.Printf("Version:       %s\n", c.version)
	fmt.Printf("Database:      %s (%s)\n", sess.dbPath, formatBytes(dbSize))
	fmt.Printf("URLs:          %s\n", formatNumber(stats.TotalVisits))
	fmt.Printf("Visits:        %s\n", formatNumber(stats.VisitCount))
	fmt.Printf("Domains:       %s\n", formatNumber(stats.Domains))

	if stats.TotalVisits > 0 {
		fmt.Printf("Oldest:        %s\n", stats.OldestVisit.Local().Format("2006-01-02"))
		fmt.Printf("Newest:        %s\n", stats.NewestVisit.Local().Format("2006-01-02"))
	}

	if days := sess.cfg.Retention.Days; days > 0 {
		fmt.Printf("Retention:     %s\n", formatDurationHuman(time.Duration(days)*24*time.Hour))
	} else {
		fmt.Println("Retention:     keep forever")
	}
	fmt.Printf("Exclusions:    %d %s\n", rules, plural(int64(rules), "rule", "rules"))

	if len(stats.TopDomains) > 0 {
		fmt.Println()
		fmt.Println("Top Domains:")
		for _, d := range stats.TopDomains {
			fmt.Printf("  %-28s %s\n", d.Domain, formatNumber(d.Count))
		}
	}

	return nil
}

func (c *StatusCommand) printStatusJSON(sess *session, stats *storage.Stats, dbSize int64, rules int) error {
	out := statusJSON{
		Version:           c.version,
		DatabasePath:      sess.dbPath,
		DatabaseSizeBytes: dbSize,
		StoredURLs:        stats.TotalVisits,
		TotalVisits:       stats.VisitCount,
		Domains:           stats.Domains,
		RetentionDays:     sess.cfg.Retention.Days,
		Exclusions:        rules,
		TopDomains:        make([]domainCountJSON, len(stats.TopDomains)),
	}

	if stats.TotalVisits > 0 {
		out.OldestVisit = stats.OldestVisit.UTC().Format(time.RFC3339)
		out.NewestVisit = stats.NewestVisit.UTC().Format(time.RFC3339)
	}

	for i, d := range stats.TopDomains {
		out.TopDomains[i] = domainCountJSON{Domain: d.Domain, Count: d.Count}
	}

	return printJSON(out)
}

// databaseSize prefers the file size on disk and falls back to SQLite's
// page accounting for in-memory databases.
func databaseSize(dbPath string, stats *storage.Stats) int64 {
	if info, err := os.Stat(dbPath); err == nil {
		return info.Size()
	}
	return stats.SizeBytes
}
