package wire

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/runnerr0/recall/internal/history"
)

// SearchRequest asks for the records most relevant to Query.
type SearchRequest struct {
	Records     []history.Record
	Query       string
	MaxResults  int
	CurrentTime *float64
}

// FilterRequest keeps records within a time range and/or matching
// keywords. A nil range or keyword list skips that filter.
type FilterRequest struct {
	Records   []history.Record
	Keywords  []string
	StartTime *float64
	EndTime   *float64
}

// SortRequest orders records by popularity, or by score when keywords are
// given, and optionally truncates.
type SortRequest struct {
	Records     []history.Record
	Keywords    []string
	Limit       *int
	CurrentTime *float64
}

// DomainsRequest asks for the top domains of Records.
type DomainsRequest struct {
	Records []history.Record
}

// FormatRequest renders Records as prompt context of at most MaxChars
// characters.
type FormatRequest struct {
	Records     []history.Record
	MaxChars    int
	CurrentTime *float64
}

// KeywordsRequest asks for the keywords of Text.
type KeywordsRequest struct {
	Text string
}

// DecodeSearchRequest decodes {"records", "query", "max_results", "current_time"?}.
func DecodeSearchRequest(data []byte) (*SearchRequest, error) {
	fields, err := decodeObject(data, "records", "query", "max_results", "current_time")
	if err != nil {
		return nil, err
	}

	req := &SearchRequest{}
	if req.Records, err = requireRecords(fields); err != nil {
		return nil, err
	}
	if req.Query, err = requireString(fields, -1, "query"); err != nil {
		return nil, err
	}
	raw, ok := fields["max_results"]
	if !ok {
		return nil, fieldErr(-1, "max_results", "required field missing")
	}
	if req.MaxResults, err = parseCount(raw, "max_results"); err != nil {
		return nil, err
	}
	if req.CurrentTime, err = optionalNumber(fields, "current_time"); err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeFilterRequest decodes {"records", "keywords"?, "start_time"?, "end_time"?}.
// start_time and end_time must be given together.
func DecodeFilterRequest(data []byte) (*FilterRequest, error) {
	fields, err := decodeObject(data, "records", "keywords", "start_time", "end_time")
	if err != nil {
		return nil, err
	}

	req := &FilterRequest{}
	if req.Records, err = requireRecords(fields); err != nil {
		return nil, err
	}
	if req.Keywords, err = optionalStrings(fields, "keywords"); err != nil {
		return nil, err
	}
	if req.StartTime, err = optionalNumber(fields, "start_time"); err != nil {
		return nil, err
	}
	if req.EndTime, err = optionalNumber(fields, "end_time"); err != nil {
		return nil, err
	}
	if (req.StartTime == nil) != (req.EndTime == nil) {
		return nil, fieldErr(-1, "start_time", "start_time and end_time must be given together")
	}
	return req, nil
}

// DecodeSortRequest decodes {"records", "keywords"?, "limit"?, "current_time"?}.
func DecodeSortRequest(data []byte) (*SortRequest, error) {
	fields, err := decodeObject(data, "records", "keywords", "limit", "current_time")
	if err != nil {
		return nil, err
	}

	req := &SortRequest{}
	if req.Records, err = requireRecords(fields); err != nil {
		return nil, err
	}
	if req.Keywords, err = optionalStrings(fields, "keywords"); err != nil {
		return nil, err
	}
	if raw, ok := fields["limit"]; ok {
		n, err := parseCount(raw, "limit")
		if err != nil {
			return nil, err
		}
		req.Limit = &n
	}
	if req.CurrentTime, err = optionalNumber(fields, "current_time"); err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeDomainsRequest decodes {"records"}.
func DecodeDomainsRequest(data []byte) (*DomainsRequest, error) {
	fields, err := decodeObject(data, "records")
	if err != nil {
		return nil, err
	}

	records, err := requireRecords(fields)
	if err != nil {
		return nil, err
	}
	return &DomainsRequest{Records: records}, nil
}

// DecodeFormatRequest decodes {"records", "max_chars", "current_time"?}.
func DecodeFormatRequest(data []byte) (*FormatRequest, error) {
	fields, err := decodeObject(data, "records", "max_chars", "current_time")
	if err != nil {
		return nil, err
	}

	req := &FormatRequest{}
	if req.Records, err = requireRecords(fields); err != nil {
		return nil, err
	}
	raw, ok := fields["max_chars"]
	if !ok {
		return nil, fieldErr(-1, "max_chars", "required field missing")
	}
	if req.MaxChars, err = parseCount(raw, "max_chars"); err != nil {
		return nil, err
	}
	if req.CurrentTime, err = optionalNumber(fields, "current_time"); err != nil {
		return nil, err
	}
	return req, nil
}

// DecodeKeywordsRequest decodes {"text"}.
func DecodeKeywordsRequest(data []byte) (*KeywordsRequest, error) {
	fields, err := decodeObject(data, "text")
	if err != nil {
		return nil, err
	}

	text, err := requireString(fields, -1, "text")
	if err != nil {
		return nil, err
	}
	return &KeywordsRequest{Text: text}, nil
}

// decodeObject decodes a top-level JSON object and rejects any field not in
// allowed. Unknown fields are reported in sorted order so errors are stable.
func decodeObject(data []byte, allowed ...string) (map[string]json.RawMessage, error) {
	if firstByte(data) != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformed)
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	known := make(map[string]struct{}, len(allowed))
	for _, name := range allowed {
		known[name] = struct{}{}
	}
	var unknown []string
	for name := range fields {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, fieldErr(-1, unknown[0], "unknown field")
	}
	return fields, nil
}

func requireRecords(fields map[string]json.RawMessage) ([]history.Record, error) {
	raw, ok := fields["records"]
	if !ok {
		return nil, fieldErr(-1, "records", "required field missing")
	}
	if firstByte(raw) != '[' {
		return nil, fieldErr(-1, "records", "expected an array")
	}
	return decodeRecordArray(raw)
}

func optionalNumber(fields map[string]json.RawMessage, name string) (*float64, error) {
	raw, ok := fields[name]
	if !ok {
		return nil, nil
	}
	f, err := parseNumber(raw, -1, name)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func optionalStrings(fields map[string]json.RawMessage, name string) ([]string, error) {
	raw, ok := fields[name]
	if !ok {
		return nil, nil
	}
	if firstByte(raw) != '[' {
		return nil, fieldErr(-1, name, "expected an array of strings")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fieldErr(-1, name, "expected an array of strings")
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, err := parseString(item, -1, fmt.Sprintf("%s[%d]", name, i))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
