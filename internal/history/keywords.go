package history

import (
	"strings"
	"unicode"
)

// stopWords are common English function words excluded from keyword
// matching. Read-only after package init.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {},
	"of": {}, "with": {}, "by": {}, "from": {}, "up": {}, "about": {}, "into": {}, "through": {}, "during": {},
	"i": {}, "me": {}, "my": {}, "you": {}, "your": {}, "we": {}, "us": {}, "our": {}, "they": {}, "them": {}, "their": {},
	"is": {}, "am": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {}, "should": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "what": {}, "when": {}, "where": {}, "who": {}, "which": {}, "how": {},
}

// IsStopWord reports whether word (already lower-cased) is a stop word.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

// ExtractKeywords turns free text into normalized keywords: lower-cased,
// punctuation stripped, longer than two bytes and not a stop word. Order of
// first appearance is kept and duplicates are not removed.
func ExtractKeywords(text string) []string {
	words := strings.Fields(strings.ToLower(text))
	keywords := make([]string, 0, len(words))

	for _, w := range words {
		word := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, w)

		if len(word) <= 2 || IsStopWord(word) {
			continue
		}
		keywords = append(keywords, word)
	}

	return keywords
}

// normalizeKeywords lower-cases keywords and drops duplicates and empty
// strings, so each keyword contributes at most once per field.
func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(k)
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
