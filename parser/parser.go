// Copyright 2025 Sieve Data
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package parser

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/sievedata/sieve/core"
)

// minContentLength is the threshold below which a known content field is
// considered unpopulated and the next extraction rule applies.
const minContentLength = 10

// DefaultEnvironment is used when neither the row nor the job names one.
const DefaultEnvironment = "default"

// contentFields is the prioritized list of known content column names.
var contentFields = []string{
	"prompt",
	"feedback_content",
	"feedback",
	"content",
	"body",
	"task_content",
	"text",
	"message",
	"instruction",
	"response",
}

// environmentFields is the prioritized list of per-row environment overrides.
var environmentFields = []string{"env_key", "environment_name", "environment", "env"}

// dedupIDFields is the prioritized list of external-identity columns.
var dedupIDFields = []string{"task_id", "id", "uuid", "record_id"}

// createdAtFields is the prioritized list of original-timestamp columns.
var createdAtFields = []string{"created_at", "createdAt", "timestamp", "date_created"}

// timestampLayouts are tried in order when parsing row timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006",
}

// Defaults carries the job-level configuration applied when a row has no
// per-row override.
type Defaults struct {
	Environment    string
	Type           core.RecordType
	Source         string
	FilterKeywords []string
}

// ParseRow turns one raw row into a canonical data record.
// It never returns an error: malformed rows degrade to a JSON serialization
// of the whole row. The only way a row is rejected is the keyword filter,
// reported via the skip reason.
func ParseRow(row Row, defaults Defaults) (record *core.DataRecord, skipReason string) {
	content := ExtractContent(row)

	if len(defaults.FilterKeywords) > 0 && !matchesKeywords(content, defaults.FilterKeywords) {
		return nil, ReasonKeywordMismatch
	}

	record = &core.DataRecord{
		Environment:    DetectEnvironment(row, defaults.Environment),
		Type:           DetectType(row, defaults.Type),
		Category:       Classify(row),
		Source:         defaults.Source,
		Contents:       content,
		DedupID:        firstString(row, dedupIDFields...),
		DedupKey:       firstString(row, "task_key"),
		Metadata:       flatten(row),
		CreatedById:    firstString(row, "created_by_id", "creator_id", "user_id"),
		CreatedByName:  firstString(row, "created_by_name", "creator", "author"),
		CreatedByEmail: firstString(row, "created_by_email", "creator_email", "email"),
		RecordedAt:     extractTimestamp(row),
	}
	return record, ""
}

// DetectType resolves a row's record type.
// An explicit type column wins; anything unrecognized falls back to the
// job-level default.
func DetectType(row Row, fallback core.RecordType) core.RecordType {
	switch strings.ToLower(firstString(row, "type")) {
	case "feedback":
		return core.RecordTypeFeedback
	case "prompt", "task":
		return core.RecordTypeTask
	}
	if fallback == core.RecordTypeTask || fallback == core.RecordTypeFeedback {
		return fallback
	}
	return core.RecordTypeTask
}

// DetectEnvironment resolves a row's environment, preferring per-row
// overrides over the job-level default over "default".
func DetectEnvironment(row Row, fallback string) string {
	if env := firstString(row, environmentFields...); env != "" {
		return env
	}
	if fallback != "" {
		return fallback
	}
	return DefaultEnvironment
}

// ExtractContent extracts the record content from a row.
// Rules, in order:
//  1. first known content field populated with at least 10 characters
//  2. the longest string-valued field in the row
//  3. the whole row serialized as JSON
//
// The result is never empty for a non-empty row.
func ExtractContent(row Row) string {
	for _, field := range contentFields {
		if v, ok := row[field]; ok {
			if s := strings.TrimSpace(stringValue(v)); len(s) >= minContentLength {
				return s
			}
		}
	}

	longest := ""
	for _, value := range row {
		if s, ok := value.(string); ok {
			if trimmed := strings.TrimSpace(s); len(trimmed) > len(longest) {
				longest = trimmed
			}
		}
	}
	if longest != "" {
		return longest
	}

	if encoded, err := json.Marshal(row); err == nil && len(encoded) > 0 {
		return string(encoded)
	}
	return "{}"
}

// matchesKeywords reports whether content contains at least one of the
// keywords, case-insensitively.
func matchesKeywords(content string, keywords []string) bool {
	lowered := strings.ToLower(content)
	for _, keyword := range keywords {
		keyword = strings.TrimSpace(strings.ToLower(keyword))
		if keyword == "" {
			continue
		}
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}

// extractTimestamp opportunistically parses the row's original timestamp.
// Unparseable values are discarded rather than stored.
func extractTimestamp(row Row) time.Time {
	raw := firstString(row, createdAtFields...)
	if raw == "" {
		return time.Time{}
	}

	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC()
		}
	}

	// Numeric epochs show up in API exports; accept seconds and millis.
	if f, ok := floatValue(raw); ok && f > 0 {
		secs := int64(f)
		if secs > 1e12 {
			return time.UnixMilli(secs).UTC()
		}
		return time.Unix(secs, 0).UTC()
	}
	return time.Time{}
}
