package cli

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/runnerr0/recall/internal/history"
)

// Execute implements the go-flags Commander interface for AddCommand.
func (c *AddCommand) Execute(args []string) error {
	if c.URL == "" {
		return fmt.Errorf("--url is required for add command")
	}
	if c.Title == "" {
		return fmt.Errorf("--title is required for add command")
	}

	sess, err := openSession(c.globals)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sess.Close()

	return c.executeWith(sess)
}

// executeWith runs the add logic against an open session (used by tests).
func (c *AddCommand) executeWith(sess *session) error {
	parsed, err := url.ParseRequestURI(c.URL)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("invalid URL: %s", c.URL)
	}
	if sess.store.IsURLExcluded(c.URL) {
		return fmt.Errorf("%s is excluded by an exclusion rule", history.ExtractDomain(c.URL))
	}

	at, err := c.visitTime(sess.now())
	if err != nil {
		return err
	}

	rec := history.Record{
		URL:           c.URL,
		Title:         c.Title,
		VisitCount:    c.Visits,
		LastVisitTime: float64(at.UnixMilli()),
	}
	if rec.LastVisitTime <= 0 {
		return fmt.Errorf("visit time %s is not after the Unix epoch", at.UTC().Format(time.RFC3339))
	}
	if !history.IsValid(rec) {
		return errors.New("visit rejected: URL or title is too long")
	}

	ctx := context.Background()
	res, err := sess.store.UpsertVisits(ctx, []history.Record{rec})
	if err != nil {
		return fmt.Errorf("storing visit: %w", err)
	}

	visit, err := sess.store.GetVisit(ctx, c.URL)
	if err != nil {
		return fmt.Errorf("reading back visit: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{
			"inserted": res.Inserted > 0,
			"visit":    visitToJSON(visit, sess.nowMillis()),
		})
	}

	verb := "Updated"
	if res.Inserted > 0 {
		verb = "Added"
	}
	fmt.Printf("%s: %s (%s %s)\n", verb, visit.URL,
		formatNumber(int64(visit.VisitCount)), plural(int64(visit.VisitCount), "visit", "visits"))
	return nil
}

// visitTime resolves --at as an RFC 3339 timestamp or an age before now.
func (c *AddCommand) visitTime(now time.Time) (time.Time, error) {
	if c.At == "" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, c.At); err == nil {
		return t, nil
	}
	return parseAge("--at", c.At, now)
}
