package wire

import "github.com/runnerr0/recall/internal/history"

// RecordsResponse carries an ordered record list.
type RecordsResponse struct {
	Records []history.Record `json:"records"`
	Count   int              `json:"count"`
}

// SearchResponse carries search results with the pipeline counters.
type SearchResponse struct {
	Records []history.Record `json:"records"`
	Stats   history.Stats    `json:"stats"`
}

// DomainsResponse carries the top domains.
type DomainsResponse struct {
	Domains []history.DomainStat `json:"domains"`
}

// FormatResponse carries rendered prompt context.
type FormatResponse struct {
	Text  string `json:"text"`
	Chars int    `json:"chars"`
}

// KeywordsResponse carries extracted keywords.
type KeywordsResponse struct {
	Keywords []string `json:"keywords"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
}

// NewRecordsResponse wraps records, replacing nil with an empty list so
// the array is always present in JSON.
func NewRecordsResponse(records []history.Record) RecordsResponse {
	if records == nil {
		records = []history.Record{}
	}
	return RecordsResponse{Records: records, Count: len(records)}
}
