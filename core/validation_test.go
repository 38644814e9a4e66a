package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() *DataRecord {
	return &DataRecord{
		Environment: "prod",
		Type:        RecordTypeTask,
		Category:    CategoryStandard,
		Contents:    "a perfectly reasonable record",
	}
}

func TestValidateDataRecord(t *testing.T) {
	require.NoError(t, ValidateDataRecord(validRecord()))

	t.Run("nil record", func(t *testing.T) {
		assert.ErrorIs(t, ValidateDataRecord(nil), ErrInvalidDataRecord)
	})

	t.Run("empty contents", func(t *testing.T) {
		record := validRecord()
		record.Contents = ""
		assert.ErrorIs(t, ValidateDataRecord(record), ErrEmptyContent)
	})

	t.Run("empty environment", func(t *testing.T) {
		record := validRecord()
		record.Environment = ""
		assert.ErrorIs(t, ValidateDataRecord(record), ErrEmptyEnvironment)
	})

	t.Run("invalid type", func(t *testing.T) {
		record := validRecord()
		record.Type = RecordType(9)
		assert.ErrorIs(t, ValidateDataRecord(record), ErrInvalidRecordType)
	})

	t.Run("invalid category", func(t *testing.T) {
		record := validRecord()
		record.Category = Category(9)
		assert.ErrorIs(t, ValidateDataRecord(record), ErrInvalidCategory)
	})

	t.Run("empty vector is valid", func(t *testing.T) {
		record := validRecord()
		record.Vector = nil
		assert.NoError(t, ValidateDataRecord(record))
	})
}

func TestValidateIngestJob(t *testing.T) {
	job := &IngestJob{
		Environment: "prod",
		Type:        RecordTypeFeedback,
		Status:      JobStatusPending,
	}
	require.NoError(t, ValidateIngestJob(job))

	assert.ErrorIs(t, ValidateIngestJob(nil), ErrInvalidIngestJob)

	job.Environment = ""
	assert.ErrorIs(t, ValidateIngestJob(job), ErrEmptyEnvironment)

	job.Environment = "prod"
	job.Status = JobStatus(99)
	assert.ErrorIs(t, ValidateIngestJob(job), ErrInvalidJobStatus)
}

func TestValidateTransition(t *testing.T) {
	allowed := []struct{ from, to JobStatus }{
		{JobStatusPending, JobStatusProcessing},
		{JobStatusProcessing, JobStatusQueuedForVec},
		{JobStatusProcessing, JobStatusCompleted},
		{JobStatusQueuedForVec, JobStatusVectorizing},
		{JobStatusVectorizing, JobStatusCompleted},
		{JobStatusPending, JobStatusCancelled},
		{JobStatusProcessing, JobStatusFailed},
		{JobStatusVectorizing, JobStatusCancelled},
	}
	for _, tt := range allowed {
		assert.NoError(t, ValidateTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}

	forbidden := []struct{ from, to JobStatus }{
		{JobStatusPending, JobStatusCompleted},
		{JobStatusPending, JobStatusQueuedForVec},
		{JobStatusProcessing, JobStatusVectorizing},
		{JobStatusQueuedForVec, JobStatusCompleted},
		{JobStatusCompleted, JobStatusPending},
		{JobStatusCancelled, JobStatusProcessing},
		{JobStatusFailed, JobStatusFailed},
	}
	for _, tt := range forbidden {
		assert.ErrorIs(t, ValidateTransition(tt.from, tt.to), ErrInvalidTransition, "%s -> %s", tt.from, tt.to)
	}
}
