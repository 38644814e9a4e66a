package parser

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sievedata/sieve/core"
)

func TestDecodePayloadCSV(t *testing.T) {
	payload := "task_id,prompt,quality_rating\n" +
		"t-1,Summarize the quarterly report in three bullet points,4\n" +
		"t-2,Draft a polite decline for the vendor meeting,2\n"

	rows, err := DecodePayload(core.SourceKindCSV, payload)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "t-1", rows[0]["task_id"])
	assert.Equal(t, "Summarize the quarterly report in three bullet points", rows[0]["prompt"])
	assert.Equal(t, "2", rows[1]["quality_rating"])
}

func TestDecodePayloadCSVRaggedRows(t *testing.T) {
	payload := "id,content\n" +
		"r-1,short row\n" +
		"r-2,long row with an extra trailing field,unexpected\n"

	rows, err := DecodePayload(core.SourceKindCSV, payload)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Extra fields without a header column are dropped.
	assert.Equal(t, "long row with an extra trailing field", rows[1]["content"])
	assert.Len(t, rows[1], 2)
}

func TestDecodePayloadCSVEmpty(t *testing.T) {
	rows, err := DecodePayload(core.SourceKindCSV, "")
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = DecodePayload(core.SourceKindCSV, "id,content\n")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDecodePayloadJSONArray(t *testing.T) {
	payload := `[
		{"id": "a-1", "feedback": "The answer missed the deadline constraint entirely"},
		"not an object",
		{"id": "a-2", "feedback": "Good structure, correct citations throughout"}
	]`

	rows, err := DecodePayload(core.SourceKindAPI, payload)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "a-1", rows[0]["id"])
	assert.Equal(t, "a-2", rows[1]["id"])
}

func TestDecodePayloadJSONObject(t *testing.T) {
	rows, err := DecodePayload(core.SourceKindAPI, `{"id": "solo", "content": "a single object payload"}`)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "solo", rows[0]["id"])
}

func TestDecodePayloadJSONMalformed(t *testing.T) {
	_, err := DecodePayload(core.SourceKindAPI, `{"id": "broken`)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestDecodePayloadUnknownKind(t *testing.T) {
	_, err := DecodePayload(core.SourceKind(99), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownSourceKind)
}

func TestParseRowKnownContentField(t *testing.T) {
	row := Row{
		"task_id": "t-42",
		"prompt":  "Write a release announcement for the new API",
		"author":  "dana",
	}

	record, reason := ParseRow(row, Defaults{Environment: "staging", Type: core.RecordTypeTask, Source: "export.csv"})
	require.Empty(t, reason)
	require.NotNil(t, record)

	assert.Equal(t, "Write a release announcement for the new API", record.Contents)
	assert.Equal(t, "staging", record.Environment)
	assert.Equal(t, core.RecordTypeTask, record.Type)
	assert.Equal(t, "export.csv", record.Source)
	assert.Equal(t, "t-42", record.DedupID)
	assert.Equal(t, "dana", record.CreatedByName)
	assert.Equal(t, "t-42", record.Metadata["task_id"])
}

func TestParseRowContentFieldPriority(t *testing.T) {
	row := Row{
		"content": "generic content long enough to qualify",
		"prompt":  "the prompt field wins over content",
	}

	record, _ := ParseRow(row, Defaults{})
	require.NotNil(t, record)
	assert.Equal(t, "the prompt field wins over content", record.Contents)
}

func TestParseRowShortKnownFieldFallsThrough(t *testing.T) {
	row := Row{
		"prompt": "tiny",
		"notes":  "this longer free-form column carries the real content",
	}

	record, _ := ParseRow(row, Defaults{})
	require.NotNil(t, record)
	assert.Equal(t, "this longer free-form column carries the real content", record.Contents)
}

func TestParseRowJSONFallback(t *testing.T) {
	row := Row{"count": 3, "flag": true}

	record, _ := ParseRow(row, Defaults{})
	require.NotNil(t, record)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(record.Contents), &decoded))
	assert.Equal(t, true, decoded["flag"])
}

func TestParseRowKeywordFilter(t *testing.T) {
	defaults := Defaults{FilterKeywords: []string{"billing", "invoice"}}

	record, reason := ParseRow(Row{"content": "a question about the weekly standup"}, defaults)
	assert.Nil(t, record)
	assert.Equal(t, ReasonKeywordMismatch, reason)

	record, reason = ParseRow(Row{"content": "please resend the INVOICE from March"}, defaults)
	require.NotNil(t, record)
	assert.Empty(t, reason)
}

func TestParseRowTimestamp(t *testing.T) {
	record, _ := ParseRow(Row{
		"content":    "content long enough for extraction",
		"created_at": "2024-06-15T10:30:00Z",
	}, Defaults{})
	require.NotNil(t, record)
	assert.Equal(t, time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC), record.RecordedAt)

	// Unparseable timestamps are dropped, not fatal.
	record, _ = ParseRow(Row{
		"content":    "content long enough for extraction",
		"created_at": "sometime last week",
	}, Defaults{})
	require.NotNil(t, record)
	assert.True(t, record.RecordedAt.IsZero())
}

func TestParseRowEpochTimestamp(t *testing.T) {
	record, _ := ParseRow(Row{
		"content":   "content long enough for extraction",
		"timestamp": "1718447400",
	}, Defaults{})
	require.NotNil(t, record)
	assert.Equal(t, int64(1718447400), record.RecordedAt.Unix())
}

func TestDetectType(t *testing.T) {
	assert.Equal(t, core.RecordTypeFeedback, DetectType(Row{"type": "feedback"}, core.RecordTypeTask))
	assert.Equal(t, core.RecordTypeTask, DetectType(Row{"type": "prompt"}, core.RecordTypeFeedback))
	assert.Equal(t, core.RecordTypeTask, DetectType(Row{"type": "Task"}, core.RecordTypeFeedback))
	assert.Equal(t, core.RecordTypeFeedback, DetectType(Row{"type": "unknown"}, core.RecordTypeFeedback))
	assert.Equal(t, core.RecordTypeTask, DetectType(Row{}, 0))
}

func TestDetectEnvironment(t *testing.T) {
	assert.Equal(t, "prod", DetectEnvironment(Row{"env_key": "prod"}, "staging"))
	assert.Equal(t, "qa", DetectEnvironment(Row{"environment": "qa"}, ""))
	assert.Equal(t, "staging", DetectEnvironment(Row{}, "staging"))
	assert.Equal(t, DefaultEnvironment, DetectEnvironment(Row{}, ""))
}
