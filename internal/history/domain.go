package history

import "strings"

// ExtractDomain returns the host part of rawURL: everything between "://"
// and the next "/". Input without a scheme separator is returned unchanged.
// Ports and credentials are kept as-is.
func ExtractDomain(rawURL string) string {
	start := strings.Index(rawURL, "://")
	if start < 0 {
		return rawURL
	}
	rest := rawURL[start+3:]
	if end := strings.IndexByte(rest, '/'); end >= 0 {
		return rest[:end]
	}
	return rest
}
