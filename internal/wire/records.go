// Package wire defines the JSON boundary schema for browsing-history
// records and the requests built from them. Decoding is strict: every
// record field must be present with its exact JSON type, and nothing is
// default-filled. Data-quality problems such as a zero timestamp are left
// for the history package to drop.
package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/runnerr0/recall/internal/history"
)

// Record field names as they appear on the wire.
const (
	fieldURL           = "url"
	fieldTitle         = "title"
	fieldVisitCount    = "visit_count"
	fieldLastVisitTime = "last_visit_time"
)

// DecodeRecords decodes a JSON array of history records.
func DecodeRecords(data []byte) ([]history.Record, error) {
	if firstByte(data) != '[' {
		return nil, fmt.Errorf("%w: expected an array of records", ErrMalformed)
	}
	return decodeRecordArray(data)
}

// DecodeDocument decodes a history file: either a bare record array or an
// object with a "records" array. Other top-level keys of the object, such
// as export metadata, are ignored.
func DecodeDocument(data []byte) ([]history.Record, error) {
	switch firstByte(data) {
	case '[':
		return decodeRecordArray(data)
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		return requireRecords(fields)
	default:
		return nil, fmt.Errorf("%w: expected an array of records or an object with \"records\"", ErrMalformed)
	}
}

func decodeRecordArray(data []byte) ([]history.Record, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	records := make([]history.Record, 0, len(raws))
	for i, raw := range raws {
		r, err := decodeRecord(raw, i)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func decodeRecord(raw json.RawMessage, index int) (history.Record, error) {
	var r history.Record

	if firstByte(raw) != '{' {
		return r, fieldErr(index, "", "expected an object")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return r, fieldErr(index, "", err.Error())
	}

	var err error
	if r.URL, err = requireString(fields, index, fieldURL); err != nil {
		return r, err
	}
	if r.Title, err = requireString(fields, index, fieldTitle); err != nil {
		return r, err
	}
	if r.VisitCount, err = requireVisitCount(fields, index); err != nil {
		return r, err
	}
	if r.LastVisitTime, err = requireNumber(fields, index, fieldLastVisitTime); err != nil {
		return r, err
	}
	return r, nil
}

func requireString(fields map[string]json.RawMessage, index int, name string) (string, error) {
	raw, ok := fields[name]
	if !ok {
		return "", fieldErr(index, name, "required field missing")
	}
	return parseString(raw, index, name)
}

func parseString(raw json.RawMessage, index int, name string) (string, error) {
	if firstByte(raw) != '"' {
		return "", fieldErr(index, name, "expected a string")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fieldErr(index, name, "expected a string")
	}
	return s, nil
}

func requireNumber(fields map[string]json.RawMessage, index int, name string) (float64, error) {
	raw, ok := fields[name]
	if !ok {
		return 0, fieldErr(index, name, "required field missing")
	}
	return parseNumber(raw, index, name)
}

func parseNumber(raw json.RawMessage, index int, name string) (float64, error) {
	c := firstByte(raw)
	if c != '-' && (c < '0' || c > '9') {
		return 0, fieldErr(index, name, "expected a number")
	}
	f, err := strconv.ParseFloat(string(bytes.TrimSpace(raw)), 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, fieldErr(index, name, "number out of range")
	}
	return f, nil
}

func requireVisitCount(fields map[string]json.RawMessage, index int) (uint32, error) {
	raw, ok := fields[fieldVisitCount]
	if !ok {
		return 0, fieldErr(index, fieldVisitCount, "required field missing")
	}
	n, err := strconv.ParseUint(string(bytes.TrimSpace(raw)), 10, 32)
	if err != nil {
		return 0, fieldErr(index, fieldVisitCount, "expected a non-negative integer below 2^32")
	}
	return uint32(n), nil
}

// parseCount decodes a non-negative integer such as max_results.
func parseCount(raw json.RawMessage, name string) (int, error) {
	n, err := strconv.ParseInt(string(bytes.TrimSpace(raw)), 10, 64)
	if err != nil || n < 0 || n > math.MaxInt32 {
		return 0, fieldErr(-1, name, "expected a non-negative integer")
	}
	return int(n), nil
}

func firstByte(data []byte) byte {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	return data[0]
}
