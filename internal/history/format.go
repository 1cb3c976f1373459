package history

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// FormatForLLM renders records as plain-text blocks for a language model
// prompt. Blocks are appended in order until the next one would push the
// output past maxChars characters; a block is never cut in half.
func FormatForLLM(records []Record, maxChars int, now float64) string {
	var b strings.Builder
	used := 0

	for _, r := range records {
		block := fmt.Sprintf("URL: %s\nTitle: %s\nVisits: %d\nLast Visit: %s\n\n",
			r.URL, r.Title, r.VisitCount, HumanizeAge(now, r.LastVisitTime))

		n := utf8.RuneCountInString(block)
		if used+n > maxChars {
			break
		}
		b.WriteString(block)
		used += n
	}

	return b.String()
}

// HumanizeAge describes how long before now (epoch milliseconds) then was:
// "Today", "Yesterday", "N days ago" within a week, "N weeks ago" after.
// Ages that are not finite numbers read "Unknown".
func HumanizeAge(now, then float64) string {
	days := (now - then) / millisPerDay
	switch {
	case math.IsNaN(days) || math.IsInf(days, 1):
		return "Unknown"
	case days < 1:
		return "Today"
	case days < 2:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", int(math.Floor(days)))
	default:
		return fmt.Sprintf("%d weeks ago", int(math.Floor(days/7)))
	}
}
