package history

import (
	"math"
	"strings"
)

const (
	titleMatchWeight = 3.0
	urlMatchWeight   = 2.0
	popularityWeight = 0.5
)

// Score computes the relevance of r for keywords relative to now (epoch
// milliseconds). It adds a bonus per keyword found in the title and in the
// URL, a logarithmic popularity term and a stepped recency bonus. Scores are
// only comparable between records scored against the same keywords and now.
func Score(r Record, keywords []string, now float64) float64 {
	return score(r, normalizeKeywords(keywords), now)
}

// score expects keywords already lower-cased and deduplicated.
func score(r Record, keywords []string, now float64) float64 {
	var s float64

	title := strings.ToLower(r.Title)
	url := strings.ToLower(r.URL)
	for _, k := range keywords {
		if strings.Contains(title, k) {
			s += titleMatchWeight
		}
		if strings.Contains(url, k) {
			s += urlMatchWeight
		}
	}

	s += popularity(r.VisitCount)
	s += recencyBonus(now - r.LastVisitTime)

	return s
}

// popularity is ln(visits)/2. Zero visits contribute nothing rather than
// -Inf.
func popularity(visits uint32) float64 {
	if visits == 0 {
		return 0
	}
	return math.Log(float64(visits)) * popularityWeight
}

// recencyBonus maps an age in milliseconds to a stepped bonus.
func recencyBonus(ageMillis float64) float64 {
	days := ageMillis / millisPerDay
	switch {
	case days < 1:
		return 2.0
	case days < 7:
		return 1.0
	case days < 30:
		return 0.5
	default:
		return 0
	}
}
