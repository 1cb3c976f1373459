package wire

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const oneRecord = `[{"url": "https://go.dev", "title": "Go", "visit_count": 2, "last_visit_time": 5}]`

func TestDecodeSearchRequest(t *testing.T) {
	req, err := DecodeSearchRequest([]byte(`{"records": ` + oneRecord + `, "query": "golang docs", "max_results": 5}`))

	require.NoError(t, err)
	assert.Len(t, req.Records, 1)
	assert.Equal(t, "golang docs", req.Query)
	assert.Equal(t, 5, req.MaxResults)
	assert.Nil(t, req.CurrentTime)
}

func TestDecodeSearchRequest_CurrentTime(t *testing.T) {
	req, err := DecodeSearchRequest([]byte(`{"records": [], "query": "", "max_results": 0, "current_time": 1700000000000}`))

	require.NoError(t, err)
	require.NotNil(t, req.CurrentTime)
	assert.Equal(t, 1700000000000.0, *req.CurrentTime)
}

func TestDecodeSearchRequest_Violations(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		field   string
	}{
		{"missing records", `{"query": "x", "max_results": 1}`, "records"},
		{"records not array", `{"records": {}, "query": "x", "max_results": 1}`, "records"},
		{"missing query", `{"records": [], "max_results": 1}`, "query"},
		{"numeric query", `{"records": [], "query": 7, "max_results": 1}`, "query"},
		{"missing max_results", `{"records": [], "query": "x"}`, "max_results"},
		{"negative max_results", `{"records": [], "query": "x", "max_results": -1}`, "max_results"},
		{"fractional max_results", `{"records": [], "query": "x", "max_results": 2.5}`, "max_results"},
		{"null current_time", `{"records": [], "query": "x", "max_results": 1, "current_time": null}`, "current_time"},
		{"unknown field", `{"records": [], "query": "x", "max_results": 1, "verbose": true}`, "verbose"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeSearchRequest([]byte(tc.payload))

			var fe *FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, -1, fe.Index)
			assert.Equal(t, tc.field, fe.Field)
		})
	}
}

func TestDecodeSearchRequest_Malformed(t *testing.T) {
	for _, payload := range []string{`[]`, `null`, `{"records": [`, `"text"`} {
		_, err := DecodeSearchRequest([]byte(payload))
		assert.True(t, errors.Is(err, ErrMalformed), "payload %q: %v", payload, err)
	}
}

func TestDecodeSearchRequest_RecordErrorsKeepIndex(t *testing.T) {
	payload := `{"records": [{"url": "a", "title": "t", "last_visit_time": 1}], "query": "x", "max_results": 1}`

	_, err := DecodeSearchRequest([]byte(payload))

	assert.EqualError(t, err, "records[0].visit_count: required field missing")
}

func TestDecodeFilterRequest(t *testing.T) {
	req, err := DecodeFilterRequest([]byte(`{"records": ` + oneRecord + `, "keywords": ["go", "docs"], "start_time": 1, "end_time": 10}`))

	require.NoError(t, err)
	assert.Equal(t, []string{"go", "docs"}, req.Keywords)
	require.NotNil(t, req.StartTime)
	require.NotNil(t, req.EndTime)
	assert.Equal(t, 1.0, *req.StartTime)
	assert.Equal(t, 10.0, *req.EndTime)
}

func TestDecodeFilterRequest_RangeNeedsBothEnds(t *testing.T) {
	_, err := DecodeFilterRequest([]byte(`{"records": [], "start_time": 1}`))

	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "start_time", fe.Field)
}

func TestDecodeFilterRequest_KeywordsMustBeStrings(t *testing.T) {
	_, err := DecodeFilterRequest([]byte(`{"records": [], "keywords": ["go", 3]}`))

	assert.EqualError(t, err, "keywords[1]: expected a string")
}

func TestDecodeSortRequest(t *testing.T) {
	req, err := DecodeSortRequest([]byte(`{"records": ` + oneRecord + `, "limit": 3}`))

	require.NoError(t, err)
	assert.Nil(t, req.Keywords)
	require.NotNil(t, req.Limit)
	assert.Equal(t, 3, *req.Limit)
}

func TestDecodeDomainsRequest(t *testing.T) {
	req, err := DecodeDomainsRequest([]byte(`{"records": ` + oneRecord + `}`))
	require.NoError(t, err)
	assert.Len(t, req.Records, 1)

	_, err = DecodeDomainsRequest([]byte(`{"records": [], "limit": 3}`))
	assert.True(t, IsBadInput(err))
}

func TestDecodeFormatRequest(t *testing.T) {
	req, err := DecodeFormatRequest([]byte(`{"records": ` + oneRecord + `, "max_chars": 4000}`))
	require.NoError(t, err)
	assert.Equal(t, 4000, req.MaxChars)

	_, err = DecodeFormatRequest([]byte(`{"records": []}`))
	var fe *FieldError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "max_chars", fe.Field)
}

func TestDecodeKeywordsRequest(t *testing.T) {
	req, err := DecodeKeywordsRequest([]byte(`{"text": "rust programming"}`))
	require.NoError(t, err)
	assert.Equal(t, "rust programming", req.Text)

	_, err = DecodeKeywordsRequest([]byte(`{"text": null}`))
	assert.EqualError(t, err, "text: expected a string")
}

func TestNewRecordsResponse_NeverNil(t *testing.T) {
	resp := NewRecordsResponse(nil)
	assert.NotNil(t, resp.Records)
	assert.Equal(t, 0, resp.Count)
}
