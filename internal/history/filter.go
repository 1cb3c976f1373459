package history

import (
	"math"
	"strings"
	"unicode/utf8"
)

// IsValid reports whether r is plausible enough to rank: a non-empty URL, a
// positive finite visit time, and URL and title shorter than MaxFieldLength.
func IsValid(r Record) bool {
	if r.URL == "" {
		return false
	}
	if r.LastVisitTime <= 0 || math.IsNaN(r.LastVisitTime) || math.IsInf(r.LastVisitTime, 0) {
		return false
	}
	if utf8.RuneCountInString(r.URL) >= MaxFieldLength || utf8.RuneCountInString(r.Title) >= MaxFieldLength {
		return false
	}
	return true
}

// Sanitize returns the valid records of records, in order. Invalid records
// are dropped without error.
func Sanitize(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if IsValid(r) {
			out = append(out, r)
		}
	}
	return out
}

// FilterByDateRange keeps records whose LastVisitTime lies in [start, end].
func FilterByDateRange(records []Record, start, end float64) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.LastVisitTime >= start && r.LastVisitTime <= end {
			out = append(out, r)
		}
	}
	return out
}

// FilterByKeywords keeps records whose lower-cased title or URL contains
// at least one of keywords. No keywords means no matches.
func FilterByKeywords(records []Record, keywords []string) []Record {
	return filterByKeywords(records, normalizeKeywords(keywords))
}

func filterByKeywords(records []Record, keywords []string) []Record {
	out := make([]Record, 0)
	for _, r := range records {
		if matchesAny(r, keywords) {
			out = append(out, r)
		}
	}
	return out
}

func matchesAny(r Record, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	title := strings.ToLower(r.Title)
	url := strings.ToLower(r.URL)
	for _, k := range keywords {
		if strings.Contains(title, k) || strings.Contains(url, k) {
			return true
		}
	}
	return false
}
