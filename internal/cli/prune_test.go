package cli

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func visitTotal(t *testing.T, sess *session) int64 {
	t.Helper()
	stats, err := sess.store.GetStats(context.Background())
	require.NoError(t, err)
	return stats.TotalVisits
}

func TestPruneUsesRetention(t *testing.T) {
	sess := newTestSession(t)
	seedDefault(t, sess)
	sess.cfg.Retention.Days = 30

	cmd := &PruneCommand{globals: &GlobalFlags{}}
	out := captureOutput(t, func() { require.NoError(t, cmd.executeWith(sess)) })

	assert.Equal(t, "Pruned 1 visit older than 30 days.\n", out)
	assert.Equal(t, int64(2), visitTotal(t, sess))
}

func TestPruneOlderThanOverride(t *testing.T) {
	sess := newTestSession(t)
	seedDefault(t, sess)

	cmd := &PruneCommand{globals: &GlobalFlags{}, OlderThan: "1d"}
	out := captureOutput(t, func() { require.NoError(t, cmd.executeWith(sess)) })

	assert.Equal(t, "Pruned 2 visits older than 1 day.\n", out)
	assert.Equal(t, int64(1), visitTotal(t, sess))
}

func TestPruneDryRun(t *testing.T) {
	sess := newTestSession(t)
	seedDefault(t, sess)

	cmd := &PruneCommand{globals: &GlobalFlags{JSON: true}, OlderThan: "1d", DryRun: true}
	out := captureOutput(t, func() { require.NoError(t, cmd.executeWith(sess)) })

	var got struct {
		Pruned int64  `json:"pruned"`
		DryRun bool   `json:"dry_run"`
		Cutoff string `json:"cutoff"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, int64(2), got.Pruned)
	assert.True(t, got.DryRun)
	assert.Equal(t, "2025-03-30T12:00:00Z", got.Cutoff)
	assert.Equal(t, int64(3), visitTotal(t, sess))
}

func TestPruneRetentionDisabled(t *testing.T) {
	sess := newTestSession(t)
	seedDefault(t, sess)
	sess.cfg.Retention.Days = 0

	cmd := &PruneCommand{globals: &GlobalFlags{}}
	out := captureOutput(t, func() { require.NoError(t, cmd.executeWith(sess)) })

	assert.True(t, strings.HasPrefix(out, "Retention is disabled"))
	assert.Equal(t, int64(3), visitTotal(t, sess))
}

func TestPruneInvalidDuration(t *testing.T) {
	sess := newTestSession(t)

	err := (&PruneCommand{globals: &GlobalFlags{}, OlderThan: "-3d"}).executeWith(sess)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--older-than")
}

func TestPruneRejectsOverflowingDuration(t *testing.T) {
	sess := newTestSession(t)
	seedDefault(t, sess)

	for _, v := range []string{"20000w", "200000d"} {
		err := (&PruneCommand{globals: &GlobalFlags{}, OlderThan: v}).executeWith(sess)
		require.Error(t, err, v)
		assert.Contains(t, err.Error(), "too large")
	}
	assert.Equal(t, int64(3), visitTotal(t, sess))

	err := (&SearchCommand{globals: &GlobalFlags{}, Since: "20000w"}).executeWith(sess, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--since")
}
