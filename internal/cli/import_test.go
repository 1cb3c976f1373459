package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportJSONC = `{
  // exported by the browser extension
  "exported_at": "2025-03-31T11:00:00Z",
  "records": [
    {"url": "https://go.dev/doc/", "title": "Documentation", "visit_count": 4, "last_visit_time": 1743400000000},
    {"url": "https://www.chase.com/", "title": "Bank", "visit_count": 1, "last_visit_time": 1743400000000},
    {"url": "https://example.com/", "title": "Example", "visit_count": 1, "last_visit_time": 0},
  ],
}`

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestImportFiles(t *testing.T) {
	sess := newTestSession(t)

	plain := writeFile(t, "history.jsonc", []byte(exportJSONC))
	packed := writeFile(t, "history.json.gz", gzipBytes(t, []byte(
		`[{"url": "https://go.dev/doc/", "title": "Docs", "visit_count": 7, "last_visit_time": 1743300000000}]`)))

	cmd := &ImportCommand{globals: &GlobalFlags{}}
	cmd.Args.Files = []string{plain, packed}

	out := captureOutput(t, func() { require.NoError(t, cmd.executeWith(sess)) })
	assert.Contains(t, out, plain+": 3 records (none)")
	assert.Contains(t, out, packed+": 1 record (gzip)")
	assert.Contains(t, out, "Imported: 1 new, 1 updated, 1 excluded, 1 invalid")

	v, err := sess.store.GetVisit(context.Background(), "https://go.dev/doc/")
	require.NoError(t, err)
	assert.Equal(t, uint32(7), v.VisitCount)
	assert.Equal(t, float64(1743400000000), v.LastVisitTime)
	assert.Equal(t, "Documentation", v.Title)
}

func TestImportJSONOutput(t *testing.T) {
	sess := newTestSession(t)
	path := writeFile(t, "history.jsonc", []byte(exportJSONC))

	cmd := &ImportCommand{globals: &GlobalFlags{JSON: true}}
	cmd.Args.Files = []string{path}

	out := captureOutput(t, func() { require.NoError(t, cmd.executeWith(sess)) })

	var got struct {
		Files []importFileJSON `json:"files"`
		Total struct {
			Inserted int `json:"inserted"`
			Excluded int `json:"excluded"`
			Invalid  int `json:"invalid"`
		} `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Files, 1)
	assert.Equal(t, "none", got.Files[0].Compression)
	assert.Equal(t, 3, got.Files[0].Records)
	assert.Equal(t, 1, got.Total.Inserted)
	assert.Equal(t, 1, got.Total.Excluded)
	assert.Equal(t, 1, got.Total.Invalid)
}

func TestImportErrors(t *testing.T) {
	sess := newTestSession(t)

	cmd := &ImportCommand{globals: &GlobalFlags{}}
	cmd.Args.Files = []string{filepath.Join(t.TempDir(), "missing.json")}
	assert.Error(t, cmd.executeWith(sess))

	cmd.Args.Files = []string{writeFile(t, "bad.json", []byte(`{"records": "nope"}`))}
	err := cmd.executeWith(sess)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")
}
