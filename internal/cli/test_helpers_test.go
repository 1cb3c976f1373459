package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/runnerr0/recall/internal/config"
	"github.com/runnerr0/recall/internal/history"
	"github.com/runnerr0/recall/internal/logger"
	"github.com/runnerr0/recall/internal/storage"
)

// testNow is the fixed clock every CLI test runs at.
var testNow = time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		done <- buf.String()
	}()

	fn()

	w.Close()
	os.Stdout = old
	return <-done
}

// newTestSession returns a session over an in-memory store with default
// config and a fixed clock.
func newTestSession(t *testing.T) *session {
	t.Helper()
	store, err := storage.Open(":memory:", "memory")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &session{
		cfg:    config.DefaultConfig(),
		store:  store,
		dbPath: ":memory:",
		log:    logger.Noop(),
		now:    func() time.Time { return testNow },
	}
}

// visitAt builds a record last visited age before testNow.
func visitAt(url, title string, visits uint32, age time.Duration) history.Record {
	return history.Record{
		URL:           url,
		Title:         title,
		VisitCount:    visits,
		LastVisitTime: float64(testNow.Add(-age).UnixMilli()),
	}
}

// seed stores records in the session's store.
func seed(t *testing.T, sess *session, records ...history.Record) {
	t.Helper()
	_, err := sess.store.UpsertVisits(context.Background(), records)
	require.NoError(t, err)
}

const day = 24 * time.Hour

func seedDefault(t *testing.T, sess *session) {
	seed(t, sess,
		visitAt("https://go.dev/doc/effective_go", "Effective Go", 10, 12*time.Hour),
		visitAt("https://www.rust-lang.org/learn", "Learn Rust", 50, 3*day),
		visitAt("https://pkg.go.dev/std", "Standard library packages", 2, 40*day),
	)
}
