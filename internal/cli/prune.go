package cli

import (
	"context"
	"fmt"
	"time"
)

// Execute implements the go-flags Commander interface for PruneCommand.
func (c *PruneCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWith(sess)
}

func (c *PruneCommand) executeWith(sess *session) error {
	ctx := context.Background()
	now := sess.now()

	var cutoff time.Time
	if c.OlderThan != "" {
		var err error
		if cutoff, err = parseAge("--older-than", c.OlderThan, now); err != nil {
			return err
		}
	} else {
		cutoff = sess.cfg.RetentionCutoff(now)
	}

	if cutoff.IsZero() {
		if c.globals != nil && c.globals.JSON {
			return printJSON(map[string]any{"pruned": 0, "dry_run": c.DryRun})
		}
		fmt.Println("Retention is disabled; nothing to prune.")
		return nil
	}

	var (
		n   int64
		err error
	)
	if c.DryRun {
		n, err = sess.store.CountExpired(ctx, cutoff)
	} else {
		n, err = sess.store.PruneExpired(ctx, cutoff)
	}
	if err != nil {
		return fmt.Errorf("prune failed: %w", err)
	}
	sess.log.Debug("prune finished", "cutoff", cutoff, "dry_run", c.DryRun, "visits", n)

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{
			"pruned":  n,
			"dry_run": c.DryRun,
			"cutoff":  cutoff.UTC().Format(time.RFC3339),
		})
	}

	age := formatDurationHuman(now.Sub(cutoff))
	if c.DryRun {
		fmt.Printf("Would prune %s %s older than %s.\n", formatNumber(n), plural(n, "visit", "visits"), age)
	} else {
		fmt.Printf("Pruned %s %s older than %s.\n", formatNumber(n), plural(n, "visit", "visits"), age)
	}
	return nil
}
