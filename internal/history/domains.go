package history

import (
	"cmp"
	"slices"
)

// AnalyzeDomains groups the valid records by ExtractDomain and returns the
// MaxDomains domains with the most total visits. Domains with equal totals
// keep the order in which they were first seen.
func AnalyzeDomains(records []Record) []DomainStat {
	index := make(map[string]int)
	stats := make([]DomainStat, 0)

	for _, r := range records {
		if !IsValid(r) {
			continue
		}
		domain := ExtractDomain(r.URL)
		i, ok := index[domain]
		if !ok {
			i = len(stats)
			index[domain] = i
			stats = append(stats, DomainStat{Domain: domain})
		}
		stats[i].EntryCount++
		stats[i].TotalVisits += uint64(r.VisitCount)
	}

	slices.SortStableFunc(stats, func(a, b DomainStat) int {
		return cmp.Compare(b.TotalVisits, a.TotalVisits)
	})

	if len(stats) > MaxDomains {
		stats = stats[:MaxDomains]
	}
	return stats
}
