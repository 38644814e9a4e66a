package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sievedata/sieve/core"
)

func TestIngestJobRoundTrip(t *testing.T) {
	job := &core.IngestJob{
		Id:           42,
		Environment:  "prod",
		Type:         core.RecordTypeFeedback,
		Status:       core.JobStatusQueuedForVec,
		TotalRecords: 100,
		SavedCount:   95,
		SkippedCount: 5,
		SkippedDetails: map[string]uint64{
			"Duplicate ID":     3,
			"Keyword Mismatch": 2,
		},
		Payload: "",
		Options: core.IngestOptions{
			Source:             "export.csv",
			Kind:               core.SourceKindCSV,
			Type:               core.RecordTypeFeedback,
			Environment:        "prod",
			FilterKeywords:     []string{"billing", "invoice"},
			GenerateEmbeddings: true,
		},
		CreatedAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 3, 1, 9, 5, 0, 0, time.UTC),
	}

	decoded, err := UnmarshalIngestJob(MarshalIngestJob(job))
	require.NoError(t, err)

	assert.Equal(t, job.Id, decoded.Id)
	assert.Equal(t, job.Environment, decoded.Environment)
	assert.Equal(t, job.Type, decoded.Type)
	assert.Equal(t, job.Status, decoded.Status)
	assert.Equal(t, job.TotalRecords, decoded.TotalRecords)
	assert.Equal(t, job.SavedCount, decoded.SavedCount)
	assert.Equal(t, job.SkippedCount, decoded.SkippedCount)
	assert.Equal(t, job.SkippedDetails, decoded.SkippedDetails)
	assert.Equal(t, job.Payload, decoded.Payload)
	assert.Equal(t, job.Options, decoded.Options)
	assert.True(t, job.CreatedAt.Equal(decoded.CreatedAt))
	assert.True(t, job.UpdatedAt.Equal(decoded.UpdatedAt))
}

func TestDataRecordRoundTrip(t *testing.T) {
	record := &core.DataRecord{
		Id:          7,
		JobId:       42,
		Environment: "staging",
		Type:        core.RecordTypeTask,
		Category:    core.CategoryTop10,
		Source:      "upload.csv",
		Contents:    "Summarize the incident report for leadership",
		DedupID:     "t-99",
		DedupKey:    "TK-99",
		Metadata: map[string]string{
			"task_id":        "t-99",
			"quality_rating": "5",
		},
		Vector:         []float32{0.1, -0.5, 0.9},
		CreatedById:    "u-1",
		CreatedByName:  "dana",
		CreatedByEmail: "dana@example.com",
		RecordedAt:     time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC),
		InsertedAt:     time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2025, 3, 1, 9, 0, 1, 0, time.UTC),
	}

	decoded, err := UnmarshalDataRecord(MarshalDataRecord(record))
	require.NoError(t, err)

	assert.Equal(t, record.Id, decoded.Id)
	assert.Equal(t, record.JobId, decoded.JobId)
	assert.Equal(t, record.Environment, decoded.Environment)
	assert.Equal(t, record.Type, decoded.Type)
	assert.Equal(t, record.Category, decoded.Category)
	assert.Equal(t, record.Source, decoded.Source)
	assert.Equal(t, record.Contents, decoded.Contents)
	assert.Equal(t, record.DedupID, decoded.DedupID)
	assert.Equal(t, record.DedupKey, decoded.DedupKey)
	assert.Equal(t, record.Metadata, decoded.Metadata)
	assert.Equal(t, record.Vector, decoded.Vector)
	assert.Equal(t, record.CreatedByEmail, decoded.CreatedByEmail)
	assert.True(t, record.RecordedAt.Equal(decoded.RecordedAt))
	assert.True(t, record.InsertedAt.Equal(decoded.InsertedAt))
	assert.True(t, record.UpdatedAt.Equal(decoded.UpdatedAt))
}

func TestIDRoundTrip(t *testing.T) {
	id := core.ID(1 << 40)
	decoded, err := UnmarshalID(MarshalID(id))
	require.NoError(t, err)
	assert.Equal(t, id, decoded)
}

func TestUnmarshalTruncatedData(t *testing.T) {
	data := MarshalIngestJob(&core.IngestJob{Id: 1, Environment: "prod"})
	_, err := UnmarshalIngestJob(data[:2])
	assert.Error(t, err)
}
