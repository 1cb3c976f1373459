package storage

import (
	"database/sql"
	"fmt"

	"github.com/runnerr0/recall/internal/config"
)

// migrateV001 creates the visits and exclusions tables and seeds the
// built-in denylist.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS visits (
			url             TEXT PRIMARY KEY,
			title           TEXT NOT NULL DEFAULT '',
			domain          TEXT NOT NULL DEFAULT '',
			visit_count     INTEGER NOT NULL DEFAULT 0 CHECK (visit_count >= 0),
			last_visit_time REAL NOT NULL,
			created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS exclusions (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			rule_type  TEXT NOT NULL CHECK (rule_type IN ('domain', 'regex')),
			rule_value TEXT NOT NULL,
			reason     TEXT NOT NULL DEFAULT '',
			is_default BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(rule_type, rule_value)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_visits_last_visit ON visits(last_visit_time)`,
		`CREATE INDEX IF NOT EXISTS idx_visits_domain     ON visits(domain)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	for _, rule := range config.DefaultDenylist() {
		if _, err := tx.Exec(
			`INSERT OR IGNORE INTO exclusions (rule_type, rule_value, reason, is_default)
			 VALUES ('domain', ?, ?, 1)`,
			rule.Domain, rule.Reason,
		); err != nil {
			return fmt.Errorf("seed exclusion %s: %w", rule.Domain, err)
		}
	}

	return nil
}
