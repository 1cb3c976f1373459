package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/runnerr0/recall/internal/storage"
)

// Execute implements the go-flags Commander interface for ForgetCommand.
func (c *ForgetCommand) Execute(args []string) error {
	sess, err := openSession(c.globals)
	if err != nil {
		return err
	}
	defer sess.Close()

	return c.executeWith(sess)
}

// executeWith deletes each URL. Unknown URLs are reported but do not stop
// the run; the command fails if none were deleted.
func (c *ForgetCommand) executeWith(sess *session) error {
	ctx := context.Background()

	deleted := []string{}
	missing := []string{}
	for _, u := range c.Args.URLs {
		err := sess.store.DeleteVisit(ctx, u)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			missing = append(missing, u)
		case err != nil:
			return err
		default:
			deleted = append(deleted, u)
		}
	}

	if c.globals != nil && c.globals.JSON {
		if err := printJSON(map[string]any{"deleted": deleted, "missing": missing}); err != nil {
			return err
		}
	} else {
		for _, u := range deleted {
			fmt.Printf("Forgot %s\n", u)
		}
		for _, u := range missing {
			fmt.Printf("Not stored: %s\n", u)
		}
	}

	if len(deleted) == 0 {
		return fmt.Errorf("none of the %d %s were stored", len(missing), plural(int64(len(missing)), "URL", "URLs"))
	}
	return nil
}
