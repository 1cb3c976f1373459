package storage

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/recall/internal/config"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationRunner_FreshDB(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run())

	for _, table := range []string{"visits", "exclusions", "schema_migrations"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrationRunner_IndexesCreated(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run())

	for _, idx := range []string{"idx_visits_last_visit", "idx_visits_domain"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx,
		).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrationRunner_DefaultExclusions(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run())

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM exclusions WHERE is_default = 1 AND rule_type = 'domain'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, len(config.DefaultDenylist()), count)

	var reason string
	err = db.QueryRow("SELECT reason FROM exclusions WHERE rule_value = 'bitwarden.com'").Scan(&reason)
	require.NoError(t, err)
	assert.Equal(t, "password manager", reason)
}

func TestMigrationRunner_Idempotent(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)

	require.NoError(t, runner.Run())
	require.NoError(t, runner.Run())

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)

	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM exclusions WHERE is_default = 1").Scan(&count))
	assert.Equal(t, len(config.DefaultDenylist()), count, "exclusions should not be duplicated on re-run")

	version, err := runner.Version()
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestMigrationRunner_SchemaMigrationsTracking(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run())

	var version int
	var name string
	err := db.QueryRow("SELECT version, name FROM schema_migrations WHERE version = 1").Scan(&version, &name)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.Equal(t, "initial_schema", name)
}

func TestMigrationRunner_WALModeOnFile(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "recall.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, NewMigrationRunner(db).Run())

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestMigrationRunner_JournalModeOverride(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "recall.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, NewMigrationRunner(db).WithJournalMode("DELETE").Run())

	var mode string
	require.NoError(t, db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "delete", mode)
}

func TestMigrationRunner_RejectsUnknownJournalMode(t *testing.T) {
	db := openTestDB(t)
	err := NewMigrationRunner(db).WithJournalMode("wal; DROP TABLE visits").Run()
	assert.ErrorContains(t, err, "unsupported journal mode")
}

func TestMigrationRunner_ForeignKeys(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run())

	var fk int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestMigrationRunner_VisitsConstraints(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run())

	_, err := db.Exec(`INSERT INTO visits (url, title, domain, visit_count, last_visit_time)
		VALUES ('https://a.com', 'A', 'a.com', -1, 1)`)
	assert.Error(t, err, "negative visit counts are rejected")

	_, err = db.Exec(`INSERT INTO visits (url, last_visit_time) VALUES ('https://a.com', 1)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO visits (url, last_visit_time) VALUES ('https://a.com', 2)`)
	assert.Error(t, err, "url is the primary key")

	_, err = db.Exec(`INSERT INTO exclusions (rule_type, rule_value) VALUES ('glob', '*.com')`)
	assert.Error(t, err, "rule_type is restricted")
}
