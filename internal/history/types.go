package history

import "errors"

// Bounds applied by the query pipeline. They keep the worst-case cost of a
// single call independent of how many records the caller hands in.
const (
	// MaxQueryLength is the longest query, in characters, FindRelevant accepts.
	MaxQueryLength = 1000

	// MaxFieldLength is the ceiling, in characters, for a record's URL and
	// title. Records at or above it are dropped as implausible.
	MaxFieldLength = 10000

	// MaxCandidates caps the number of valid records entering ranking. The
	// most recent ones are kept.
	MaxCandidates = 2000

	// MaxScored caps the number of keyword matches that get scored.
	MaxScored = 10000

	// MaxDomains is the number of entries AnalyzeDomains reports.
	MaxDomains = 20
)

const millisPerDay = 1000.0 * 60 * 60 * 24

// ErrQueryTooLong is returned when a query exceeds MaxQueryLength.
var ErrQueryTooLong = errors.New("query string too long")

// Record is a single browsing-history entry as handed in by the host.
// LastVisitTime is in milliseconds since the Unix epoch.
type Record struct {
	URL           string  `json:"url"`
	Title         string  `json:"title"`
	VisitCount    uint32  `json:"visit_count"`
	LastVisitTime float64 `json:"last_visit_time"`
}

// DomainStat aggregates the records that share a domain.
type DomainStat struct {
	Domain      string `json:"domain"`
	EntryCount  int    `json:"entry_count"`
	TotalVisits uint64 `json:"total_visits"`
}

// Mode names the ordering FindRelevant used.
type Mode string

const (
	// ModePopularity orders by visit count, then recency.
	ModePopularity Mode = "popularity"
	// ModeScored orders by keyword relevance score.
	ModeScored Mode = "scored"
)

// Stats describes how many records survived each pipeline stage.
type Stats struct {
	Received   int      `json:"received"`
	Valid      int      `json:"valid"`
	Candidates int      `json:"candidates"`
	Matched    int      `json:"matched"`
	Returned   int      `json:"returned"`
	Mode       Mode     `json:"mode"`
	Keywords   []string `json:"keywords"`
}

// Result is the output of Search.
type Result struct {
	Records []Record
	Stats   Stats
}
