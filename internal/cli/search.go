package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/recall/internal/history"
	"github.com/runnerr0/recall/internal/storage"
)

// Execute implements the go-flags Commander interface for SearchCommand.
func (c *SearchCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWith(sess, args)
}

// executeWith runs the search against an open session (used by tests).
func (c *SearchCommand) executeWith(sess *session, args []string) error {
	query := strings.Join(append(c.Args.Query, args...), " ")

	now := sess.now()
	since, err := parseAge("--since", c.Since, now)
	if err != nil {
		return err
	}
	until, err := parseAge("--until", c.Until, now)
	if err != nil {
		return err
	}

	limit := c.Limit
	if limit <= 0 {
		limit = sess.cfg.Search.DefaultMaxResults
	}

	records, err := sess.store.Records(context.Background(), storage.ListQuery{
		Since:  since,
		Until:  until,
		Domain: c.Domain,
		Limit:  sess.cfg.Search.LoadLimit,
	})
	if err != nil {
		return fmt.Errorf("load visits: %w", err)
	}

	res, err := history.Search(records, query, limit, sess.nowMillis())
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	sess.log.Debug("search completed",
		"mode", res.Stats.Mode,
		"received", res.Stats.Received,
		"valid", res.Stats.Valid,
		"candidates", res.Stats.Candidates,
		"matched", res.Stats.Matched,
		"returned", res.Stats.Returned,
	)

	if c.Context {
		maxChars := c.MaxChars
		if maxChars <= 0 {
			maxChars = sess.cfg.Search.MaxContextChars
		}
		fmt.Print(history.FormatForLLM(res.Records, maxChars, sess.nowMillis()))
		return nil
	}

	if c.globals != nil && c.globals.JSON {
		return c.printJSON(query, res, sess.nowMillis())
	}
	return c.printHuman(query, res, sess.nowMillis())
}

func (c *SearchCommand) printHuman(query string, res *history.Result, now float64) error {
	if len(res.Records) == 0 {
		if query != "" {
			fmt.Printf("No results found for %q\n", query)
		} else {
			fmt.Println("No visits stored")
		}
		return nil
	}

	n := int64(len(res.Records))
	if query != "" {
		fmt.Printf("Found %d %s for %q\n\n", n, plural(n, "result", "results"), query)
	} else {
		fmt.Printf("Top %d %s by popularity\n\n", n, plural(n, "visit", "visits"))
	}

	for i, r := range res.Records {
		title := r.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%d. %s (%s)\n", i+1, title, history.ExtractDomain(r.URL))
		fmt.Printf("   %s\n", r.URL)
		fmt.Printf("   %s %s · %s\n",
			formatNumber(int64(r.VisitCount)), plural(int64(r.VisitCount), "visit", "visits"),
			history.HumanizeAge(now, r.LastVisitTime))

		if i < len(res.Records)-1 {
			fmt.Println()
		}
	}

	return nil
}

type jsonResult struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	Domain     string `json:"domain"`
	VisitCount uint32 `json:"visit_count"`
	LastVisit  string `json:"last_visit"`
	Age        string `json:"age"`
}

type jsonSearchOutput struct {
	Count   int           `json:"count"`
	Query   string        `json:"query"`
	Stats   history.Stats `json:"stats"`
	Results []jsonResult  `json:"results"`
}

func (c *SearchCommand) printJSON(query string, res *history.Result, now float64) error {
	out := jsonSearchOutput{
		Count:   len(res.Records),
		Query:   query,
		Stats:   res.Stats,
		Results: make([]jsonResult, len(res.Records)),
	}

	for i, r := range res.Records {
		out.Results[i] = jsonResult{
			URL:        r.URL,
			Title:      r.Title,
			Domain:     history.ExtractDomain(r.URL),
			VisitCount: r.VisitCount,
			LastVisit:  time.UnixMilli(int64(r.LastVisitTime)).UTC().Format(time.RFC3339),
			Age:        history.HumanizeAge(now, r.LastVisitTime),
		}
	}

	return printJSON(out)
}
