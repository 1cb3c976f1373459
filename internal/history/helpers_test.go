package history

// testNow is a fixed reference clock (2023-11-14T22:13:20Z) in epoch millis.
const testNow = 1_700_000_000_000.0

// daysAgo returns the epoch-millis timestamp d days before testNow.
func daysAgo(d float64) float64 {
	return testNow - d*millisPerDay
}

func rec(url, title string, visits uint32, ageDays float64) Record {
	return Record{URL: url, Title: title, VisitCount: visits, LastVisitTime: daysAgo(ageDays)}
}

func urls(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.URL
	}
	return out
}
