package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// Execute implements the go-flags Commander interface for PurgeCommand.
func (c *PurgeCommand) Execute(args []string) error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
	}

	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWith(sess)
}

func (c *PurgeCommand) executeWith(sess *session) error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
	}

	// Confirmation prompt unless --force
	if !c.Force {
		fmt.Println("⚠ WARNING: This will permanently delete ALL stored visits.")
		fmt.Println("Exclusion rules are kept.")
		fmt.Println()
		fmt.Println("This action cannot be undone.")
		fmt.Println()
		fmt.Print(`Type "PURGE" to confirm: `)

		var in io.Reader = os.Stdin
		if c.stdin != nil {
			in = c.stdin
		}
		scanner := bufio.NewScanner(in)
		if !scanner.Scan() {
			return fmt.Errorf("aborted: no input received")
		}
		if strings.TrimSpace(scanner.Text()) != "PURGE" {
			return fmt.Errorf("aborted: confirmation text did not match")
		}
	}

	if err := sess.store.PurgeAll(context.Background()); err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}

	if c.globals != nil && c.globals.JSON {
		return printJSON(map[string]any{
			"purged":  true,
			"message": "all visits deleted",
		})
	}

	fmt.Println("Purged all visits. Recall is empty.")
	return nil
}
