package storage

import (
	"errors"
	"time"

	"github.com/runnerr0/recall/internal/history"
)

// ErrNotFound is returned when a visit lookup or delete matches no row.
var ErrNotFound = errors.New("not found")

// Visit is one stored URL with its merged visit statistics.
// LastVisitTime is in milliseconds since the Unix epoch.
type Visit struct {
	URL           string
	Title         string
	Domain        string
	VisitCount    uint32
	LastVisitTime float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Record converts v into the form the ranking pipeline consumes.
func (v Visit) Record() history.Record {
	return history.Record{
		URL:           v.URL,
		Title:         v.Title,
		VisitCount:    v.VisitCount,
		LastVisitTime: v.LastVisitTime,
	}
}

// LastVisit returns LastVisitTime as a time.Time.
func (v Visit) LastVisit() time.Time {
	return time.UnixMilli(int64(v.LastVisitTime))
}

// ListQuery selects stored visits. Zero values mean "no constraint".
type ListQuery struct {
	Since  time.Time
	Until  time.Time
	Domain string
	Limit  int
}

// ImportResult counts what UpsertVisits did with each record.
type ImportResult struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Excluded int `json:"excluded"`
	Invalid  int `json:"invalid"`
}

// Stats holds aggregate statistics about the database.
type Stats struct {
	TotalVisits int64 // stored URLs
	VisitCount  int64 // sum of visit_count
	Domains     int64
	OldestVisit time.Time
	NewestVisit time.Time
	SizeBytes   int64
	TopDomains  []DomainCount
}

// DomainCount pairs a domain with its summed visit count.
type DomainCount struct {
	Domain string
	Count  int64
}

// RuleType names how an exclusion matches.
type RuleType string

const (
	RuleDomain RuleType = "domain"
	RuleRegex  RuleType = "regex"
)

// Exclusion is a rule that keeps matching hosts out of the store.
type Exclusion struct {
	Type      RuleType
	Value     string
	Reason    string
	IsDefault bool
}
