package history

import (
	"fmt"
	"unicode/utf8"
)

// FindRelevant returns up to maxResults records from records that best
// answer query, relative to now (epoch milliseconds). See Search.
func FindRelevant(records []Record, query string, maxResults int, now float64) ([]Record, error) {
	res, err := Search(records, query, maxResults, now)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// Search runs the bounded query pipeline:
//
//  1. reject queries longer than MaxQueryLength
//  2. drop invalid records
//  3. keep the MaxCandidates most recent valid records
//  4. without keywords, order by popularity
//  5. with keywords, keep matching records (at most MaxScored, most recent
//     first) and order by Score
//
// and truncates to maxResults. An empty input yields an empty, non-nil
// result. records is never modified.
func Search(records []Record, query string, maxResults int, now float64) (*Result, error) {
	if n := utf8.RuneCountInString(query); n > MaxQueryLength {
		return nil, fmt.Errorf("%w: %d characters (max %d)", ErrQueryTooLong, n, MaxQueryLength)
	}

	res := &Result{Records: []Record{}}
	res.Stats.Received = len(records)

	candidates := Sanitize(records)
	res.Stats.Valid = len(candidates)

	if len(candidates) > MaxCandidates {
		candidates = SortByRecency(candidates)[:MaxCandidates]
	}
	res.Stats.Candidates = len(candidates)

	keywords := ExtractKeywords(query)
	res.Stats.Keywords = keywords

	if len(candidates) == 0 {
		res.Stats.Mode = modeFor(keywords)
		return res, nil
	}

	if len(keywords) == 0 {
		res.Stats.Mode = ModePopularity
		res.Stats.Matched = len(candidates)
		res.Records = Limit(SortByPopularity(candidates), maxResults)
		res.Stats.Returned = len(res.Records)
		return res, nil
	}

	normalized := normalizeKeywords(keywords)
	matched := filterByKeywords(candidates, normalized)
	if len(matched) > MaxScored {
		matched = SortByRecency(matched)[:MaxScored]
	}
	res.Stats.Mode = ModeScored
	res.Stats.Matched = len(matched)

	res.Records = Limit(sortByScore(matched, normalized, now), maxResults)
	res.Stats.Returned = len(res.Records)
	return res, nil
}

func modeFor(keywords []string) Mode {
	if len(keywords) == 0 {
		return ModePopularity
	}
	return ModeScored
}
