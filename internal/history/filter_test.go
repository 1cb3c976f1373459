package history

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	long := "https://a.com/" + strings.Repeat("x", MaxFieldLength)

	tests := []struct {
		name  string
		r     Record
		valid bool
	}{
		{"ok", Record{URL: "https://a.com", Title: "A", LastVisitTime: 1}, true},
		{"empty url", Record{URL: "", Title: "A", LastVisitTime: 1}, false},
		{"zero time", Record{URL: "https://a.com", LastVisitTime: 0}, false},
		{"negative time", Record{URL: "https://a.com", LastVisitTime: -5}, false},
		{"nan time", Record{URL: "https://a.com", LastVisitTime: math.NaN()}, false},
		{"inf time", Record{URL: "https://a.com", LastVisitTime: math.Inf(1)}, false},
		{"long url", Record{URL: long, LastVisitTime: 1}, false},
		{"long title", Record{URL: "https://a.com", Title: strings.Repeat("t", MaxFieldLength), LastVisitTime: 1}, false},
		{"title just under limit", Record{URL: "https://a.com", Title: strings.Repeat("t", MaxFieldLength-1), LastVisitTime: 1}, true},
		{"empty title", Record{URL: "https://a.com", LastVisitTime: 1}, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, IsValid(tc.r))
		})
	}
}

func TestIsValid_CountsCharactersNotBytes(t *testing.T) {
	// 9999 two-byte runes: under the limit in characters, over it in bytes.
	title := strings.Repeat("é", MaxFieldLength-1)
	assert.True(t, IsValid(Record{URL: "https://a.com", Title: title, LastVisitTime: 1}))
}

func TestSanitize_KeepsOrderAndInput(t *testing.T) {
	in := []Record{
		rec("https://a.com", "A", 1, 1),
		{URL: "", LastVisitTime: 5},
		rec("https://b.com", "B", 1, 1),
		{URL: "https://c.com", LastVisitTime: 0},
	}
	snapshot := append([]Record(nil), in...)

	out := Sanitize(in)

	assert.Equal(t, []string{"https://a.com", "https://b.com"}, urls(out))
	assert.Equal(t, snapshot, in)
}

func TestFilterByDateRange_Inclusive(t *testing.T) {
	in := []Record{
		{URL: "https://a.com", LastVisitTime: 100},
		{URL: "https://b.com", LastVisitTime: 200},
		{URL: "https://c.com", LastVisitTime: 300},
	}

	assert.Equal(t, []string{"https://a.com", "https://b.com"}, urls(FilterByDateRange(in, 100, 200)))
	assert.Equal(t, []string{"https://c.com"}, urls(FilterByDateRange(in, 300, 300)))
	assert.Empty(t, FilterByDateRange(in, 301, 400))
	assert.Empty(t, FilterByDateRange(in, 200, 100))
}

func TestFilterByKeywords(t *testing.T) {
	in := []Record{
		rec("https://rust-lang.org", "Rust Language", 1, 1),
		rec("https://go.dev/doc", "Documentation", 1, 1),
		rec("https://python.org", "Python", 1, 1),
	}

	assert.Equal(t, []string{"https://rust-lang.org"}, urls(FilterByKeywords(in, []string{"RUST"})))
	assert.Equal(t, []string{"https://go.dev/doc"}, urls(FilterByKeywords(in, []string{"go.dev"})))
	assert.Equal(t, []string{"https://rust-lang.org", "https://python.org"},
		urls(FilterByKeywords(in, []string{"python", "language"})))
	assert.Empty(t, FilterByKeywords(in, nil))
	assert.Empty(t, FilterByKeywords(in, []string{"haskell"}))
}
