package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/recall/internal/importer"
	"github.com/runnerr0/recall/internal/storage"
)

type importFileJSON struct {
	File        string `json:"file"`
	Compression string `json:"compression"`
	Records     int    `json:"records"`
	storage.ImportResult
}

// Execute implements the go-flags Commander interface for ImportCommand.
func (c *ImportCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWith(sess)
}

// executeWith imports every file in order. A file that fails to decode
// stops the run; files already imported stay imported.
func (c *ImportCommand) executeWith(sess *session) error {
	ctx := context.Background()

	var (
		files []importFileJSON
		total storage.ImportResult
	)
	for _, path := range c.Args.Files {
		res, err := importer.ReadFile(path)
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}

		counts, err := sess.store.UpsertVisits(ctx, res.Records)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		sess.log.Debug("file imported",
			"file", path,
			"compression", res.Compression,
			"bytes", res.Bytes,
			"records", len(res.Records),
		)

		files = append(files, importFileJSON{
			File:         path,
			Compression:  string(res.Compression),
			Records:      len(res.Records),
			ImportResult: counts,
		})
		total.Inserted += counts.Inserted
		total.Updated += counts.Updated
		total.Excluded += counts.Excluded
		total.Invalid += counts.Invalid
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{
			"files": files,
			"total": total,
		})
	}

	for _, f := range files {
		fmt.Printf("%s: %s %s (%s)\n", f.File, formatNumber(int64(f.Records)),
			plural(int64(f.Records), "record", "records"), f.Compression)
	}
	fmt.Printf("Imported: %s new, %s updated, %s excluded, %s invalid\n",
		formatNumber(int64(total.Inserted)), formatNumber(int64(total.Updated)),
		formatNumber(int64(total.Excluded)), formatNumber(int64(total.Invalid)))
	return nil
}
