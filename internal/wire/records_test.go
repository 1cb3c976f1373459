package wire

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/recall/internal/history"
)

func TestDecodeRecords_Valid(t *testing.T) {
	data := []byte(`[
		{"url": "https://go.dev", "title": "Go", "visit_count": 12, "last_visit_time": 1700000000000.5},
		{"url": "https://a.com", "title": "", "visit_count": 0, "last_visit_time": 0, "favicon": "x.png"}
	]`)

	records, err := DecodeRecords(data)

	require.NoError(t, err)
	assert.Equal(t, []history.Record{
		{URL: "https://go.dev", Title: "Go", VisitCount: 12, LastVisitTime: 1700000000000.5},
		{URL: "https://a.com", Title: "", VisitCount: 0, LastVisitTime: 0},
	}, records)
}

func TestDecodeRecords_EmptyArray(t *testing.T) {
	records, err := DecodeRecords([]byte(` [] `))

	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestDecodeRecords_FieldViolations(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		field   string
		message string
	}{
		{
			name:    "missing title",
			payload: `[{"url": "https://a.com", "visit_count": 1, "last_visit_time": 1}]`,
			field:   "title",
			message: "records[0].title: required field missing",
		},
		{
			name:    "null url",
			payload: `[{"url": null, "title": "", "visit_count": 1, "last_visit_time": 1}]`,
			field:   "url",
			message: "records[0].url: expected a string",
		},
		{
			name:    "negative visit count",
			payload: `[{"url": "u", "title": "", "visit_count": -1, "last_visit_time": 1}]`,
			field:   "visit_count",
		},
		{
			name:    "fractional visit count",
			payload: `[{"url": "u", "title": "", "visit_count": 1.5, "last_visit_time": 1}]`,
			field:   "visit_count",
		},
		{
			name:    "overflowing visit count",
			payload: `[{"url": "u", "title": "", "visit_count": 4294967296, "last_visit_time": 1}]`,
			field:   "visit_count",
		},
		{
			name:    "string visit count",
			payload: `[{"url": "u", "title": "", "visit_count": "3", "last_visit_time": 1}]`,
			field:   "visit_count",
		},
		{
			name:    "string timestamp",
			payload: `[{"url": "u", "title": "", "visit_count": 3, "last_visit_time": "yesterday"}]`,
			field:   "last_visit_time",
		},
		{
			name:    "timestamp out of range",
			payload: `[{"url": "u", "title": "", "visit_count": 3, "last_visit_time": 1e400}]`,
			field:   "last_visit_time",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeRecords([]byte(tc.payload))

			var fe *FieldError
			require.True(t, errors.As(err, &fe), "expected FieldError, got %v", err)
			assert.Equal(t, 0, fe.Index)
			assert.Equal(t, tc.field, fe.Field)
			if tc.message != "" {
				assert.EqualError(t, err, tc.message)
			}
			assert.True(t, IsBadInput(err))
		})
	}
}

func TestDecodeRecords_ReportsIndex(t *testing.T) {
	data := []byte(`[
		{"url": "a", "title": "", "visit_count": 1, "last_visit_time": 1},
		{"url": "b", "title": "", "visit_count": 1, "last_visit_time": 1},
		{"url": "c", "title": "", "visit_count": 1.25, "last_visit_time": 1}
	]`)

	_, err := DecodeRecords(data)

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 2, fe.Index)
	assert.Equal(t, "visit_count", fe.Field)
}

func TestDecodeRecords_RejectsWrongShapes(t *testing.T) {
	for _, payload := range []string{``, `null`, `{}`, `"records"`, `[1, 2]`, `[null]`, `[{"url": "a",}]`} {
		_, err := DecodeRecords([]byte(payload))
		assert.Error(t, err, "payload %q", payload)
		assert.True(t, IsBadInput(err), "payload %q", payload)
	}
}

func TestFieldError_TopLevelFormat(t *testing.T) {
	err := &FieldError{Index: -1, Field: "query", Reason: "expected a string"}
	assert.Equal(t, "query: expected a string", err.Error())
}

func TestDecodeDocument(t *testing.T) {
	arr := `[{"url": "https://a.com", "title": "A", "visit_count": 1, "last_visit_time": 2}]`
	obj := `{"version": 2, "exported_at": "2026-01-01", "records": ` + arr + `}`

	fromArray, err := DecodeDocument([]byte(arr))
	require.NoError(t, err)
	fromObject, err := DecodeDocument([]byte(obj))
	require.NoError(t, err)
	assert.Equal(t, fromArray, fromObject)

	_, err = DecodeDocument([]byte(`{"items": []}`))
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "records", fe.Field)

	_, err = DecodeDocument([]byte(`42`))
	assert.ErrorIs(t, err, ErrMalformed)
}
