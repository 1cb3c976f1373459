package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/runnerr0/recall/internal/history"
	"github.com/runnerr0/recall/internal/storage"
)

type visitJSON struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	Domain     string `json:"domain"`
	VisitCount uint32 `json:"visit_count"`
	LastVisit  string `json:"last_visit"`
	Age        string `json:"age"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

func visitToJSON(v *storage.Visit, now float64) visitJSON {
	return visitJSON{
		URL:        v.URL,
		Title:      v.Title,
		Domain:     v.Domain,
		VisitCount: v.VisitCount,
		LastVisit:  v.LastVisit().UTC().Format(time.RFC3339),
		Age:        history.HumanizeAge(now, v.LastVisitTime),
		CreatedAt:  v.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:  v.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// Execute implements the go-flags Commander interface for OpenCommand.
func (c *OpenCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWith(sess)
}

func (c *OpenCommand) executeWith(sess *session) error {
	visit, err := sess.store.GetVisit(context.Background(), c.Args.URL)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no stored visit for %s", c.Args.URL)
	}
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(visitToJSON(visit, sess.nowMillis()))
	}

	switch c.Format {
	case "url":
		fmt.Println(visit.URL)
	case "title":
		fmt.Println(visit.Title)
	case "full", "":
		fmt.Printf("Title:       %s\n", visit.Title)
		fmt.Printf("URL:         %s\n", visit.URL)
		fmt.Printf("Domain:      %s\n", visit.Domain)
		fmt.Printf("Visits:      %s\n", formatNumber(int64(visit.VisitCount)))
		fmt.Printf("Last visit:  %s (%s)\n", visit.LastVisit().Local().Format("2006-01-02 15:04:05"),
			history.HumanizeAge(sess.nowMillis(), visit.LastVisitTime))
		fmt.Printf("First seen:  %s\n", visit.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	default:
		return fmt.Errorf("unknown format %q (want full, url or title)", c.Format)
	}
	return nil
}
