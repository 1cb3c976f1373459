package history

import (
	"cmp"
	"slices"
)

// scoredRecord pairs a record with its score while ranking.
type scoredRecord struct {
	record Record
	score  float64
}

// SortByPopularity returns a copy of records ordered by visit count, then
// by last visit time, both descending. Remaining ties keep input order.
func SortByPopularity(records []Record) []Record {
	out := clone(records)
	slices.SortStableFunc(out, func(a, b Record) int {
		if c := cmp.Compare(b.VisitCount, a.VisitCount); c != 0 {
			return c
		}
		return descending(a.LastVisitTime, b.LastVisitTime)
	})
	return out
}

// SortByRecency returns a copy of records, most recently visited first.
func SortByRecency(records []Record) []Record {
	out := clone(records)
	slices.SortStableFunc(out, func(a, b Record) int {
		return descending(a.LastVisitTime, b.LastVisitTime)
	})
	return out
}

// SortByScore returns a copy of records ordered by Score against keywords
// and now, highest first. Equal or incomparable scores keep input order.
func SortByScore(records []Record, keywords []string, now float64) []Record {
	return sortByScore(records, normalizeKeywords(keywords), now)
}

func sortByScore(records []Record, keywords []string, now float64) []Record {
	scored := make([]scoredRecord, len(records))
	for i, r := range records {
		scored[i] = scoredRecord{record: r, score: score(r, keywords, now)}
	}

	slices.SortStableFunc(scored, func(a, b scoredRecord) int {
		return descending(a.score, b.score)
	})

	out := make([]Record, len(scored))
	for i, s := range scored {
		out[i] = s.record
	}
	return out
}

// Limit returns at most n leading records. Negative n is treated as zero.
func Limit(records []Record, n int) []Record {
	if n < 0 {
		n = 0
	}
	if len(records) > n {
		return records[:n]
	}
	return records
}

// descending orders larger values first. NaN compares equal to everything
// so it can never panic or loop a sort.
func descending(a, b float64) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

func clone(records []Record) []Record {
	return append(make([]Record, 0, len(records)), records...)
}
