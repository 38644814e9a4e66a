package parser

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sievedata/sieve/core"
)

// Row is the open-schema representation of one raw input row.
// Keys are column names; values are whatever the source format produced
// (strings from CSV, arbitrary JSON values from API payloads).
type Row map[string]any

// DecodePayload parses a raw ingestion payload into rows.
// CSV payloads must carry a header row; JSON payloads may be a single
// object or an array of objects. Non-object JSON array elements are
// skipped rather than failing the payload.
func DecodePayload(kind core.SourceKind, payload string) ([]Row, error) {
	switch kind {
	case core.SourceKindCSV:
		return decodeCSV(payload)
	case core.SourceKindAPI:
		return decodeJSON(payload)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownSourceKind, kind)
	}
}

func decodeCSV(payload string) ([]Row, error) {
	reader := csv.NewReader(strings.NewReader(payload))
	reader.TrimLeadingSpace = true
	// Ragged rows are common in hand-edited exports; tolerate them and let
	// the per-row heuristics sort out what is usable.
	reader.FieldsPerRecord = -1

	lines, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if len(lines) == 0 {
		return nil, nil
	}

	header := lines[0]
	for i, name := range header {
		header[i] = strings.TrimSpace(name)
	}

	rows := make([]Row, 0, len(lines)-1)
	for _, line := range lines[1:] {
		row := Row{}
		for i, value := range line {
			if i >= len(header) || header[i] == "" {
				continue
			}
			row[header[i]] = value
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func decodeJSON(payload string) ([]Row, error) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var raw []any
		if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
		rows := make([]Row, 0, len(raw))
		for _, item := range raw {
			if obj, ok := item.(map[string]any); ok {
				rows = append(rows, Row(obj))
			}
		}
		return rows, nil
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return []Row{Row(obj)}, nil
}

// stringValue converts a row value to its string form.
// Returns "" for values with no sensible scalar representation.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	default:
		return ""
	}
}

// floatValue extracts a numeric value from a row value if possible.
func floatValue(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// firstString returns the first non-empty string value among the named
// fields, in order.
func firstString(row Row, fields ...string) string {
	for _, field := range fields {
		if v, ok := row[field]; ok {
			if s := strings.TrimSpace(stringValue(v)); s != "" {
				return s
			}
		}
	}
	return ""
}

// flatten converts the open row into the opaque string-keyed metadata blob
// stored on the record. Nested values are JSON-encoded.
func flatten(row Row) map[string]string {
	meta := make(map[string]string, len(row))
	for key, value := range row {
		if s := stringValue(value); s != "" || value == nil {
			meta[key] = s
			continue
		}
		if encoded, err := json.Marshal(value); err == nil {
			meta[key] = string(encoded)
		}
	}
	return meta
}
