package cli

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/recall/internal/storage"
)

func TestForget(t *testing.T) {
	sess := newTestSession(t)
	seedDefault(t, sess)

	cmd := &ForgetCommand{globals: &GlobalFlags{}}
	cmd.Args.URLs = []string{"https://go.dev/doc/effective_go", "https://missing.example/"}

	out := captureOutput(t, func() { require.NoError(t, cmd.executeWith(sess)) })
	assert.Contains(t, out, "Forgot https://go.dev/doc/effective_go")
	assert.Contains(t, out, "Not stored: https://missing.example/")

	_, err := sess.store.GetVisit(context.Background(), "https://go.dev/doc/effective_go")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestForgetNothingStoredErrors(t *testing.T) {
	sess := newTestSession(t)

	cmd := &ForgetCommand{globals: &GlobalFlags{}}
	cmd.Args.URLs = []string{"https://missing.example/"}

	var err error
	captureOutput(t, func() { err = cmd.executeWith(sess) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none of the 1 URL were stored")
}

func TestExclusionsListAndAdd(t *testing.T) {
	sess := newTestSession(t)

	out := captureOutput(t, func() {
		require.NoError(t, (&ExclusionsCommand{globals: &GlobalFlags{}}).executeWith(sess))
	})
	assert.Contains(t, out, "chase.com")
	assert.Contains(t, out, "built-in")

	add := &ExclusionsCommand{globals: &GlobalFlags{}, AddDomain: "Intranet.Example", Reason: "work"}
	out = captureOutput(t, func() { require.NoError(t, add.executeWith(sess)) })
	assert.Equal(t, "Added domain rule: Intranet.Example\n", out)
	assert.True(t, sess.store.IsURLExcluded("https://wiki.intranet.example/page"))

	add = &ExclusionsCommand{globals: &GlobalFlags{}, AddRegex: `^bank\d+\.`, Reason: "user rule"}
	captureOutput(t, func() { require.NoError(t, add.executeWith(sess)) })
	assert.True(t, sess.store.IsURLExcluded("https://bank42.example.org/"))

	out = captureOutput(t, func() {
		require.NoError(t, (&ExclusionsCommand{globals: &GlobalFlags{JSON: true}}).executeWith(sess))
	})
	var got struct {
		Count      int             `json:"count"`
		Exclusions []exclusionJSON `json:"exclusions"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, len(got.Exclusions), got.Count)
	last := got.Exclusions[len(got.Exclusions)-1]
	assert.Equal(t, exclusionJSON{Type: "regex", Value: `^bank\d+\.`, Reason: "user rule"}, last)
}

func TestExclusionsRejectsBadInput(t *testing.T) {
	sess := newTestSession(t)

	err := (&ExclusionsCommand{globals: &GlobalFlags{}, AddDomain: "a.example", AddRegex: "b"}).executeWith(sess)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")

	err = (&ExclusionsCommand{globals: &GlobalFlags{}, AddRegex: "(unclosed"}).executeWith(sess)
	require.Error(t, err)
}

func TestDomains(t *testing.T) {
	sess := newTestSession(t)
	seedDefault(t, sess)
	seed(t, sess, visitAt("https://go.dev/blog/", "The Go Blog", 5, day))

	out := captureOutput(t, func() {
		require.NoError(t, (&DomainsCommand{globals: &GlobalFlags{}}).executeWith(sess))
	})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "DOMAIN")
	assert.Equal(t, []string{"www.rust-lang.org", "1", "50"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"go.dev", "2", "15"}, strings.Fields(lines[2]))
	assert.Equal(t, []string{"pkg.go.dev", "1", "2"}, strings.Fields(lines[3]))

	out = captureOutput(t, func() {
		require.NoError(t, (&DomainsCommand{globals: &GlobalFlags{JSON: true}, Since: "7d"}).executeWith(sess))
	})
	var got struct {
		Count   int `json:"count"`
		Domains []struct {
			Domain      string `json:"domain"`
			EntryCount  int    `json:"entry_count"`
			TotalVisits uint64 `json:"total_visits"`
		} `json:"domains"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, "www.rust-lang.org", got.Domains[0].Domain)
	assert.Equal(t, "go.dev", got.Domains[1].Domain)
	assert.Equal(t, 2, got.Domains[1].EntryCount)
	assert.Equal(t, uint64(15), got.Domains[1].TotalVisits)
}

func TestDomainsEmpty(t *testing.T) {
	sess := newTestSession(t)
	out := captureOutput(t, func() {
		require.NoError(t, (&DomainsCommand{globals: &GlobalFlags{}}).executeWith(sess))
	})
	assert.Equal(t, "No visits stored\n", out)
}
