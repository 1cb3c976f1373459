package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/recall/internal/history"
	"github.com/runnerr0/recall/internal/storage"
)

// Execute implements the go-flags Commander interface for DomainsCommand.
func (c *DomainsCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWith(sess)
}

func (c *DomainsCommand) executeWith(sess *session) error {
	since, err := parseAge("--since", c.Since, sess.now())
	if err != nil {
		return err
	}

	records, err := sess.store.Records(context.Background(), storage.ListQuery{
		Since: since,
		Limit: sess.cfg.Search.LoadLimit,
	})
	if err != nil {
		return fmt.Errorf("load visits: %w", err)
	}

	domains := history.AnalyzeDomains(records)

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{
			"count":   len(domains),
			"domains": domains,
		})
	}

	if len(domains) == 0 {
		fmt.Println("No visits stored")
		return nil
	}

	fmt.Printf("  %-32s %8s %10s\n", "DOMAIN", "PAGES", "VISITS")
	for _, d := range domains {
		fmt.Printf("  %-32s %8s %10s\n", d.Domain,
			formatNumber(int64(d.EntryCount)), formatNumber(int64(d.TotalVisits)))
	}
	return nil
}
