package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/runnerr0/recall/internal/history"
)

// DefaultListLimit is the row cap ListVisits applies when none is given.
const DefaultListLimit = 50

// Store defines the interface for recall data operations.
type Store interface {
	UpsertVisits(ctx context.Context, records []history.Record) (ImportResult, error)
	ListVisits(ctx context.Context, q ListQuery) ([]Visit, error)
	GetVisit(ctx context.Context, rawURL string) (*Visit, error)
	DeleteVisit(ctx context.Context, rawURL string) error
	PruneExpired(ctx context.Context, olderThan time.Time) (int64, error)
	CountExpired(ctx context.Context, olderThan time.Time) (int64, error)
	PurgeAll(ctx context.Context) error
	GetStats(ctx context.Context) (*Stats, error)
	AddExclusion(ctx context.Context, rule Exclusion) error
	ListExclusions(ctx context.Context) ([]Exclusion, error)
	IsExcluded(domain string) bool
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db      *sql.DB
	ownsDB  bool
	topSize int

	upsertVisit *sql.Stmt
	visitExists *sql.Stmt
	getVisit    *sql.Stmt
	deleteVisit *sql.Stmt

	mu               sync.RWMutex
	domainExclusions []string
	regexExclusions  []*regexp.Regexp
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and
// migrated database. Closing the store leaves db open.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db, topSize: 10}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	if err := s.loadExclusions(); err != nil {
		s.Close()
		return nil, fmt.Errorf("load exclusions: %w", err)
	}

	return s, nil
}

// Open opens (creating if needed) the database at path, applies
// migrations with the given journal mode and returns a store that closes
// the database on Close. path may be ":memory:".
func Open(path, journalMode string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// every connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	if err := NewMigrationRunner(db).WithJournalMode(journalMode).Run(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s, err := NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}

// DB returns the underlying database handle.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	// The newer sighting decides the title; counts and times only grow.
	s.upsertVisit, err = s.db.Prepare(`
		INSERT INTO visits (url, title, domain, visit_count, last_visit_time)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = CASE WHEN excluded.last_visit_time >= visits.last_visit_time
			             THEN excluded.title ELSE visits.title END,
			visit_count     = MAX(visits.visit_count, excluded.visit_count),
			last_visit_time = MAX(visits.last_visit_time, excluded.last_visit_time),
			updated_at      = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return err
	}

	s.visitExists, err = s.db.Prepare(`SELECT COUNT(*) FROM visits WHERE url = ?`)
	if err != nil {
		return err
	}

	s.getVisit, err = s.db.Prepare(`
		SELECT url, title, domain, visit_count, last_visit_time, created_at, updated_at
		FROM visits WHERE url = ?
	`)
	if err != nil {
		return err
	}

	s.deleteVisit, err = s.db.Prepare(`DELETE FROM visits WHERE url = ?`)
	return err
}

// loadExclusions loads domain and regex exclusion rules from the database.
func (s *SQLiteStore) loadExclusions() error {
	rules, err := s.ListExclusions(context.Background())
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.domainExclusions = s.domainExclusions[:0]
	s.regexExclusions = s.regexExclusions[:0]
	for _, r := range rules {
		s.addRuleLocked(r)
	}
	return nil
}

func (s *SQLiteStore) addRuleLocked(r Exclusion) {
	switch r.Type {
	case RuleDomain:
		s.domainExclusions = append(s.domainExclusions, strings.ToLower(r.Value))
	case RuleRegex:
		re, err := regexp.Compile(r.Value)
		if err != nil {
			return // skip invalid regex
		}
		s.regexExclusions = append(s.regexExclusions, re)
	}
}

// IsExcluded reports whether a host is blocked. Domain rules also match
// their subdomains; regex rules are matched against the lower-cased host.
func (s *SQLiteStore) IsExcluded(domain string) bool {
	host := strings.ToLower(strings.TrimSuffix(domain, "."))
	if host == "" {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.domainExclusions {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	for _, re := range s.regexExclusions {
		if re.MatchString(host) {
			return true
		}
	}
	return false
}

// IsURLExcluded reports whether the host of rawURL is blocked.
func (s *SQLiteStore) IsURLExcluded(rawURL string) bool {
	return s.IsExcluded(hostOf(rawURL))
}

// hostOf returns the lower-cased host of rawURL without port or
// credentials. Unparseable input falls back to history.ExtractDomain.
func hostOf(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		return strings.ToLower(u.Hostname())
	}
	host := history.ExtractDomain(rawURL)
	if i := strings.LastIndexByte(host, '@'); i >= 0 {
		host = host[i+1:]
	}
	if i := strings.LastIndexByte(host, ':'); i >= 0 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	return strings.ToLower(host)
}

// AddExclusion stores a rule and applies it to subsequent writes. Adding
// an existing rule is a no-op.
func (s *SQLiteStore) AddExclusion(ctx context.Context, rule Exclusion) error {
	switch rule.Type {
	case RuleDomain:
		rule.Value = strings.ToLower(strings.TrimSpace(rule.Value))
		if rule.Value == "" {
			return errors.New("empty domain exclusion")
		}
	case RuleRegex:
		if _, err := regexp.Compile(rule.Value); err != nil {
			return fmt.Errorf("invalid exclusion regex %q: %w", rule.Value, err)
		}
	default:
		return fmt.Errorf("unknown exclusion type %q", rule.Type)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO exclusions (rule_type, rule_value, reason, is_default)
		 VALUES (?, ?, ?, ?)`,
		string(rule.Type), rule.Value, rule.Reason, rule.IsDefault,
	)
	if err != nil {
		return fmt.Errorf("insert exclusion: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}

	s.mu.Lock()
	s.addRuleLocked(rule)
	s.mu.Unlock()
	return nil
}

// ListExclusions returns every stored rule, built-in rules first.
func (s *SQLiteStore) ListExclusions(ctx context.Context) ([]Exclusion, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT rule_type, rule_value, reason, is_default FROM exclusions ORDER BY is_default DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("query exclusions: %w", err)
	}
	defer rows.Close()

	rules := []Exclusion{}
	for rows.Next() {
		var r Exclusion
		var ruleType string
		if err := rows.Scan(&ruleType, &r.Value, &r.Reason, &r.IsDefault); err != nil {
			return nil, fmt.Errorf("scan exclusion: %w", err)
		}
		r.Type = RuleType(ruleType)
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// UpsertVisits merges records into the store in a single transaction.
// Records are keyed by URL: the title of the most recent sighting wins,
// visit_count and last_visit_time keep their maxima. Invalid records and
// records on excluded hosts are skipped and counted.
func (s *SQLiteStore) UpsertVisits(ctx context.Context, records []history.Record) (ImportResult, error) {
	var res ImportResult

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	exists := tx.StmtContext(ctx, s.visitExists)
	upsert := tx.StmtContext(ctx, s.upsertVisit)

	for _, r := range records {
		if !history.IsValid(r) {
			res.Invalid++
			continue
		}
		if s.IsURLExcluded(r.URL) {
			res.Excluded++
			continue
		}

		var n int
		if err := exists.QueryRowContext(ctx, r.URL).Scan(&n); err != nil {
			return ImportResult{}, fmt.Errorf("lookup visit: %w", err)
		}

		if _, err := upsert.ExecContext(ctx,
			r.URL, r.Title, history.ExtractDomain(r.URL), int64(r.VisitCount), r.LastVisitTime,
		); err != nil {
			return ImportResult{}, fmt.Errorf("upsert visit: %w", err)
		}

		if n > 0 {
			res.Updated++
		} else {
			res.Inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportResult{}, fmt.Errorf("commit: %w", err)
	}
	return res, nil
}

// GetVisit retrieves a single visit by URL.
func (s *SQLiteStore) GetVisit(ctx context.Context, rawURL string) (*Visit, error) {
	v, err := scanVisit(s.getVisit.QueryRowContext(ctx, rawURL))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("visit %s: %w", rawURL, ErrNotFound)
		}
		return nil, fmt.Errorf("get visit: %w", err)
	}
	return v, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVisit(row rowScanner) (*Visit, error) {
	var v Visit
	var count int64
	if err := row.Scan(&v.URL, &v.Title, &v.Domain, &count, &v.LastVisitTime, &v.CreatedAt, &v.UpdatedAt); err != nil {
		return nil, err
	}
	v.VisitCount = uint32(min(max(count, 0), int64(^uint32(0))))
	return &v, nil
}

// ListVisits returns visits matching q, most recent first.
func (s *SQLiteStore) ListVisits(ctx context.Context, q ListQuery) ([]Visit, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultListLimit
	}

	var clauses []string
	var args []any

	if q.Domain != "" {
		clauses = append(clauses, "domain = ?")
		args = append(args, q.Domain)
	}
	if !q.Since.IsZero() {
		clauses = append(clauses, "last_visit_time >= ?")
		args = append(args, toMillis(q.Since))
	}
	if !q.Until.IsZero() {
		clauses = append(clauses, "last_visit_time <= ?")
		args = append(args, toMillis(q.Until))
	}

	query := `SELECT url, title, domain, visit_count, last_visit_time, created_at, updated_at FROM visits`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY last_visit_time DESC, url LIMIT ?"
	args = append(args, q.Limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query visits: %w", err)
	}
	defer rows.Close()

	visits := []Visit{}
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		visits = append(visits, *v)
	}
	return visits, rows.Err()
}

// Records is ListVisits converted for the ranking pipeline.
func (s *SQLiteStore) Records(ctx context.Context, q ListQuery) ([]history.Record, error) {
	visits, err := s.ListVisits(ctx, q)
	if err != nil {
		return nil, err
	}
	records := make([]history.Record, len(visits))
	for i, v := range visits {
		records[i] = v.Record()
	}
	return records, nil
}

// DeleteVisit removes a visit by URL.
func (s *SQLiteStore) DeleteVisit(ctx context.Context, rawURL string) error {
	res, err := s.deleteVisit.ExecContext(ctx, rawURL)
	if err != nil {
		return fmt.Errorf("delete visit: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("visit %s: %w", rawURL, ErrNotFound)
	}
	return nil
}

// PruneExpired deletes visits last seen before olderThan.
func (s *SQLiteStore) PruneExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM visits WHERE last_visit_time < ?", toMillis(olderThan))
	if err != nil {
		return 0, fmt.Errorf("prune visits: %w", err)
	}
	return res.RowsAffected()
}

// CountExpired reports how many visits PruneExpired would delete.
func (s *SQLiteStore) CountExpired(ctx context.Context, olderThan time.Time) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM visits WHERE last_visit_time < ?", toMillis(olderThan),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count expired: %w", err)
	}
	return n, nil
}

// PurgeAll deletes every stored visit. Exclusion rules are kept.
func (s *SQLiteStore) PurgeAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM visits"); err != nil {
		return fmt.Errorf("purge visits: %w", err)
	}
	return nil
}

// GetStats returns aggregate statistics about the database.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{TopDomains: []DomainCount{}}

	var oldest, newest sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(visit_count), 0), COUNT(DISTINCT domain),
		       MIN(last_visit_time), MAX(last_visit_time)
		FROM visits
	`).Scan(&stats.TotalVisits, &stats.VisitCount, &stats.Domains, &oldest, &newest)
	if err != nil {
		return nil, fmt.Errorf("visit totals: %w", err)
	}
	if oldest.Valid {
		stats.OldestVisit = time.UnixMilli(int64(oldest.Float64))
	}
	if newest.Valid {
		stats.NewestVisit = time.UnixMilli(int64(newest.Float64))
	}

	var pageCount, pageSize int64
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return nil, fmt.Errorf("page count: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return nil, fmt.Errorf("page size: %w", err)
	}
	stats.SizeBytes = pageCount * pageSize

	rows, err := s.db.QueryContext(ctx, `
		SELECT domain, SUM(visit_count) AS total FROM visits
		GROUP BY domain ORDER BY total DESC, MIN(rowid) LIMIT ?
	`, s.topSize)
	if err != nil {
		return nil, fmt.Errorf("top domains: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dc DomainCount
		if err := rows.Scan(&dc.Domain, &dc.Count); err != nil {
			return nil, err
		}
		stats.TopDomains = append(stats.TopDomains, dc)
	}

	return stats, rows.Err()
}

// Close releases all prepared statements. The underlying *sql.DB is only
// closed when the store was created by Open.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{s.upsertVisit, s.visitExists, s.getVisit, s.deleteVisit}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

func toMillis(t time.Time) float64 {
	return float64(t.UnixMilli())
}
