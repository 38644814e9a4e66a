package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFromContentDeterministic(t *testing.T) {
	a := IDFromContent("task-12345")
	b := IDFromContent("task-12345")
	assert.Equal(t, a, b, "same content must produce the same ID")

	c := IDFromContent("task-12346")
	assert.NotEqual(t, a, c, "different content must produce different IDs")
}

func TestIDFromContentEmptyString(t *testing.T) {
	// Empty input still hashes to a stable value.
	assert.Equal(t, IDFromContent(""), IDFromContent(""))
}

func TestRecordTypeString(t *testing.T) {
	assert.Equal(t, "TASK", RecordTypeTask.String())
	assert.Equal(t, "FEEDBACK", RecordTypeFeedback.String())
	assert.Equal(t, "UNKNOWN", RecordType(0).String())
	assert.Equal(t, "UNKNOWN", RecordType(42).String())
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "STANDARD", CategoryStandard.String())
	assert.Equal(t, "TOP_10", CategoryTop10.String())
	assert.Equal(t, "BOTTOM_10", CategoryBottom10.String())
	assert.Equal(t, "UNKNOWN", Category(0).String())
}

func TestJobStatusString(t *testing.T) {
	tests := []struct {
		status JobStatus
		want   string
	}{
		{JobStatusPending, "PENDING"},
		{JobStatusProcessing, "PROCESSING"},
		{JobStatusQueuedForVec, "QUEUED_FOR_VEC"},
		{JobStatusVectorizing, "VECTORIZING"},
		{JobStatusCompleted, "COMPLETED"},
		{JobStatusFailed, "FAILED"},
		{JobStatusCancelled, "CANCELLED"},
		{JobStatus(0), "UNKNOWN"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.String())
	}
}

func TestJobStatusIsTerminal(t *testing.T) {
	terminal := []JobStatus{JobStatusCompleted, JobStatusFailed, JobStatusCancelled}
	active := []JobStatus{JobStatusPending, JobStatusProcessing, JobStatusQueuedForVec, JobStatusVectorizing}

	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), "%s should be terminal", s)
		assert.False(t, s.IsActive(), "%s should not be active", s)
	}
	for _, s := range active {
		assert.False(t, s.IsTerminal(), "%s should not be terminal", s)
		assert.True(t, s.IsActive(), "%s should be active", s)
	}
}
