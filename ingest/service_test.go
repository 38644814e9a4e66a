package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sievedata/sieve/ai/mock"
	"github.com/sievedata/sieve/core"
	"github.com/sievedata/sieve/parser"
	"github.com/sievedata/sieve/storage"
	"github.com/sievedata/sieve/storage/badger"
	"github.com/sievedata/sieve/vectorize"
)

type testEnv struct {
	service  *Service
	jobs     storage.JobRepository
	records  storage.RecordRepository
	embedder *mock.MockEmbedder
}

func setupService(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	jobRepo, recordRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		jobRepo.Close()
		recordRepo.Close()
		backend.Close()
	})

	embedder := mock.NewMockEmbedder()
	worker := vectorize.NewWorker(recordRepo, embedder, &vectorize.Config{
		BatchSize:      50,
		MaxAttempts:    2,
		FailureBackoff: 5 * time.Millisecond,
		EmbedTimeout:   5 * time.Second,
	})

	service, err := NewService(jobRepo, recordRepo, worker, opts...)
	require.NoError(t, err)
	t.Cleanup(service.Release)

	return &testEnv{
		service:  service,
		jobs:     jobRepo,
		records:  recordRepo,
		embedder: embedder,
	}
}

// waitForTerminal polls until the job reaches a terminal state, driving the
// dispatcher the way a status-polling client would.
func waitForTerminal(t *testing.T, env *testEnv, id core.ID) *core.IngestJob {
	t.Helper()

	var job *core.IngestJob
	require.Eventually(t, func() bool {
		var err error
		job, err = env.service.GetIngestStatus(context.Background(), id)
		require.NoError(t, err)
		return job.Status.IsTerminal()
	}, 10*time.Second, 10*time.Millisecond)
	return job
}

const sampleCSV = "task_id,prompt,quality_rating\n" +
	"t-1,Summarize the incident report for leadership,5\n" +
	"t-2,Draft onboarding checklist for new analysts,3\n" +
	"t-1,Summarize the incident report for leadership again,4\n"

func TestStartBackgroundIngestCompletes(t *testing.T) {
	env := setupService(t)

	id, err := env.service.StartBackgroundIngest(context.Background(), core.SourceKindCSV, sampleCSV, core.IngestOptions{
		Source: "sample.csv",
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	job := waitForTerminal(t, env, id)
	assert.Equal(t, core.JobStatusCompleted, job.Status)
	assert.Equal(t, uint64(3), job.TotalRecords)
	assert.Equal(t, uint64(2), job.SavedCount)
	assert.Equal(t, uint64(1), job.SkippedCount)
	assert.Equal(t, uint64(1), job.SkippedDetails["Duplicate ID"])
	assert.Empty(t, job.Payload, "payload cleared on terminal state")
}

func TestStartBackgroundIngestEmptyPayload(t *testing.T) {
	env := setupService(t)

	_, err := env.service.StartBackgroundIngest(context.Background(), core.SourceKindCSV, "   ", core.IngestOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestStartBackgroundIngestPayloadTooLarge(t *testing.T) {
	env := setupService(t)

	oversized := "prompt\n" + strings.Repeat("x", maxPayloadBytes)
	_, err := env.service.StartBackgroundIngest(context.Background(), core.SourceKindCSV, oversized, core.IngestOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
}

func TestStartBackgroundIngestSanitizesEncoding(t *testing.T) {
	env := setupService(t)

	payload := "task_id,prompt\nt-1,Review the \xff\xfequarterly billing export\n"
	id, err := env.service.StartBackgroundIngest(context.Background(), core.SourceKindCSV, payload, core.IngestOptions{})
	require.NoError(t, err)

	job := waitForTerminal(t, env, id)
	require.Equal(t, core.JobStatusCompleted, job.Status)
	assert.Equal(t, uint64(1), job.SavedCount)

	saved, err := env.records.ScanMissingEmbeddings(context.Background(), "default", 10, nil)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "Review the quarterly billing export", saved[0].Contents)
}

func TestStartBackgroundIngestInfersDefaults(t *testing.T) {
	env := setupService(t)

	payload := `[{"env_key": "staging", "type": "feedback", "feedback": "The summary missed the key regression"}]`
	id, err := env.service.StartBackgroundIngest(context.Background(), core.SourceKindAPI, payload, core.IngestOptions{})
	require.NoError(t, err)

	job := waitForTerminal(t, env, id)
	assert.Equal(t, "staging", job.Environment)
	assert.Equal(t, core.RecordTypeFeedback, job.Type)
	assert.Equal(t, core.JobStatusCompleted, job.Status)
}

func TestIngestCategorizesRecords(t *testing.T) {
	env := setupService(t)

	id, err := env.service.StartBackgroundIngest(context.Background(), core.SourceKindCSV, sampleCSV, core.IngestOptions{})
	require.NoError(t, err)
	waitForTerminal(t, env, id)

	saved, err := env.records.ScanMissingEmbeddings(context.Background(), "default", 10, nil)
	require.NoError(t, err)
	require.Len(t, saved, 2)

	categories := map[string]core.Category{}
	for _, record := range saved {
		categories[record.DedupID] = record.Category
	}
	assert.Equal(t, core.CategoryTop10, categories["t-1"], "rating 5 maps to top decile")
	assert.Equal(t, core.CategoryStandard, categories["t-2"], "rating 3 stays standard")
}

func TestTypeScopedDedup(t *testing.T) {
	env := setupService(t)

	taskPayload := `[{"id": "shared-1", "content": "the task side of a shared identifier"}]`
	id1, err := env.service.StartBackgroundIngest(context.Background(), core.SourceKindAPI, taskPayload, core.IngestOptions{
		Type: core.RecordTypeTask, Environment: "prod",
	})
	require.NoError(t, err)
	first := waitForTerminal(t, env, id1)
	assert.Equal(t, uint64(1), first.SavedCount)

	feedbackPayload := `[{"id": "shared-1", "feedback": "the feedback side of a shared identifier"}]`
	id2, err := env.service.StartBackgroundIngest(context.Background(), core.SourceKindAPI, feedbackPayload, core.IngestOptions{
		Type: core.RecordTypeFeedback, Environment: "prod",
	})
	require.NoError(t, err)
	second := waitForTerminal(t, env, id2)

	assert.Equal(t, uint64(1), second.SavedCount, "same id under a different type is not a duplicate")
	assert.Equal(t, uint64(0), second.SkippedCount)

	// Re-ingesting the same type IS a duplicate.
	id3, err := env.service.StartBackgroundIngest(context.Background(), core.SourceKindAPI, taskPayload, core.IngestOptions{
		Type: core.RecordTypeTask, Environment: "prod",
	})
	require.NoError(t, err)
	third := waitForTerminal(t, env, id3)
	assert.Equal(t, uint64(0), third.SavedCount)
	assert.Equal(t, uint64(1), third.SkippedDetails["Duplicate ID"])
}

func TestKeywordFilter(t *testing.T) {
	env := setupService(t)

	payload := `[
		{"id": "k-1", "content": "question about the billing cycle for enterprise plans"},
		{"id": "k-2", "content": "a note about the office plants"}
	]`
	id, err := env.service.StartBackgroundIngest(context.Background(), core.SourceKindAPI, payload, core.IngestOptions{
		Environment:    "prod",
		Type:           core.RecordTypeTask,
		FilterKeywords: []string{"billing"},
	})
	require.NoError(t, err)

	job := waitForTerminal(t, env, id)
	assert.Equal(t, uint64(1), job.SavedCount)
	assert.Equal(t, uint64(1), job.SkippedDetails["Keyword Mismatch"])
}

func TestMalformedPayloadFailsJob(t *testing.T) {
	env := setupService(t)

	id, err := env.service.StartBackgroundIngest(context.Background(), core.SourceKindAPI, `{"broken`, core.IngestOptions{
		Environment: "prod",
		Type:        core.RecordTypeTask,
	})
	require.NoError(t, err, "undecodable payloads fail during processing, not submission")

	job := waitForTerminal(t, env, id)
	assert.Equal(t, core.JobStatusFailed, job.Status)
	assert.NotEmpty(t, job.Error)
	assert.Empty(t, job.Payload)
}

func TestFullPipelineWithEmbeddings(t *testing.T) {
	env := setupService(t)

	payload := `[
		{"id": "v-1", "content": "first record that should receive a vector"},
		{"id": "v-2", "content": "second record that should receive a vector"}
	]`
	id, err := env.service.StartBackgroundIngest(context.Background(), core.SourceKindAPI, payload, core.IngestOptions{
		Environment:        "prod",
		Type:               core.RecordTypeTask,
		GenerateEmbeddings: true,
	})
	require.NoError(t, err)

	job := waitForTerminal(t, env, id)
	assert.Equal(t, core.JobStatusCompleted, job.Status)
	assert.Equal(t, uint64(2), job.SavedCount)

	missing, err := env.records.ScanMissingEmbeddings(context.Background(), "prod", 10, nil)
	require.NoError(t, err)
	assert.Empty(t, missing, "all records embedded")
}

func TestEmbeddingOutageStillCompletesJob(t *testing.T) {
	env := setupService(t)
	env.embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("401 unauthorized")
	}

	payload := `[{"id": "o-1", "content": "record facing a broken embedding service"}]`
	id, err := env.service.StartBackgroundIngest(context.Background(), core.SourceKindAPI, payload, core.IngestOptions{
		Environment:        "prod",
		Type:               core.RecordTypeTask,
		GenerateEmbeddings: true,
	})
	require.NoError(t, err)

	job := waitForTerminal(t, env, id)
	assert.Equal(t, core.JobStatusCompleted, job.Status,
		"embedding failures degrade records, never the job")

	records, err := env.records.ScanMissingEmbeddings(context.Background(), "prod", 10, nil)
	require.NoError(t, err)
	assert.Empty(t, records, "permanently marked records leave the scan")
}

func TestProcessAndStoreAccounting(t *testing.T) {
	env := setupService(t, WithChunkSize(2))

	payload := "task_id,prompt\n"
	for i := 0; i < 7; i++ {
		payload += fmt.Sprintf("acc-%d,accounting row number %d with enough text\n", i, i)
	}
	payload += "acc-0,a duplicate of the first accounting row\n"

	id, err := env.service.StartBackgroundIngest(context.Background(), core.SourceKindCSV, payload, core.IngestOptions{
		Environment: "prod",
	})
	require.NoError(t, err)

	job := waitForTerminal(t, env, id)
	assert.Equal(t, uint64(8), job.TotalRecords)
	assert.Equal(t, job.TotalRecords, job.SavedCount+job.SkippedCount)
	assert.Equal(t, uint64(7), job.SavedCount)
}

func TestCancelledJobStopsAtChunkBoundary(t *testing.T) {
	env := setupService(t, WithChunkSize(1))

	job, err := env.jobs.AddJob(context.Background(), &core.IngestJob{
		Environment: "prod",
		Type:        core.RecordTypeTask,
		Status:      core.JobStatusPending,
		Payload:     "unused",
	})
	require.NoError(t, err)

	_, err = env.service.CancelIngest(context.Background(), job.Id)
	require.NoError(t, err)

	rows, err := parser.DecodePayload(core.SourceKindAPI, `[
		{"id": "c-1", "content": "row behind a cancelled job"},
		{"id": "c-2", "content": "another row behind a cancelled job"}
	]`)
	require.NoError(t, err)

	result, err := env.service.ProcessAndStore(context.Background(), rows, core.IngestOptions{
		Environment: "prod", Type: core.RecordTypeTask,
	}, job.Id)
	require.NoError(t, err)
	assert.True(t, result.Cancelled)
	assert.Zero(t, result.SavedCount)
}

func TestCancelIngest(t *testing.T) {
	env := setupService(t)

	job, err := env.jobs.AddJob(context.Background(), &core.IngestJob{
		Environment: "prod",
		Type:        core.RecordTypeTask,
		Status:      core.JobStatusPending,
		Payload:     "raw payload",
	})
	require.NoError(t, err)

	cancelled, err := env.service.CancelIngest(context.Background(), job.Id)
	require.NoError(t, err)
	assert.Equal(t, core.JobStatusCancelled, cancelled.Status)
	assert.Empty(t, cancelled.Payload)
}

func TestCancelTerminalJobIsNoOp(t *testing.T) {
	env := setupService(t)

	id, err := env.service.StartBackgroundIngest(context.Background(), core.SourceKindCSV, sampleCSV, core.IngestOptions{})
	require.NoError(t, err)
	waitForTerminal(t, env, id)

	job, err := env.service.CancelIngest(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, core.JobStatusCompleted, job.Status, "terminal jobs are never overwritten")
}

func TestProcessQueuedJobsIdempotent(t *testing.T) {
	env := setupService(t)

	id, err := env.service.StartBackgroundIngest(context.Background(), core.SourceKindCSV, sampleCSV, core.IngestOptions{})
	require.NoError(t, err)
	first := waitForTerminal(t, env, id)

	// Re-running the dispatcher with everything terminal changes nothing.
	require.NoError(t, env.service.ProcessQueuedJobs(context.Background(), ""))

	again, err := env.jobs.GetJob(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, first.Status, again.Status)
	assert.Equal(t, first.SavedCount, again.SavedCount)
	assert.True(t, first.UpdatedAt.Equal(again.UpdatedAt))
}

func TestProcessQueuedJobsDrainsBacklog(t *testing.T) {
	env := setupService(t)

	var ids []core.ID
	for i := 0; i < 3; i++ {
		payload := fmt.Sprintf(`[{"id": "b-%d", "content": "backlog payload number %d"}]`, i, i)
		job, err := env.jobs.AddJob(context.Background(), &core.IngestJob{
			Environment: "prod",
			Type:        core.RecordTypeTask,
			Status:      core.JobStatusPending,
			Payload:     payload,
			Options: core.IngestOptions{
				Kind:        core.SourceKindAPI,
				Environment: "prod",
				Type:        core.RecordTypeTask,
			},
		})
		require.NoError(t, err)
		ids = append(ids, job.Id)
	}

	require.NoError(t, env.service.ProcessQueuedJobs(context.Background(), "prod"))

	for _, id := range ids {
		job, err := env.jobs.GetJob(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, core.JobStatusCompleted, job.Status)
	}
}

func TestDeleteIngestedData(t *testing.T) {
	env := setupService(t)

	payload := `[
		{"id": "d-1", "content": "record to be deleted with its job"},
		{"id": "d-2", "content": "second record to be deleted with its job"}
	]`
	id, err := env.service.StartBackgroundIngest(context.Background(), core.SourceKindAPI, payload, core.IngestOptions{
		Environment: "prod", Type: core.RecordTypeTask,
	})
	require.NoError(t, err)
	waitForTerminal(t, env, id)

	deleted, err := env.service.DeleteIngestedData(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	remaining, err := env.records.ScanMissingEmbeddings(context.Background(), "prod", 10, nil)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	// Deleting again finds nothing.
	deleted, err = env.service.DeleteIngestedData(context.Background(), id)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestDeleteIngestedDataUnknownJob(t *testing.T) {
	env := setupService(t)

	_, err := env.service.DeleteIngestedData(context.Background(), 99999)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestNewServiceValidation(t *testing.T) {
	env := setupService(t)

	_, err := NewService(nil, env.records, vectorize.NewWorker(env.records, env.embedder, nil))
	assert.ErrorIs(t, err, ErrJobRepositoryRequired)

	_, err = NewService(env.jobs, nil, vectorize.NewWorker(env.records, env.embedder, nil))
	assert.ErrorIs(t, err, ErrRecordRepositoryRequired)

	_, err = NewService(env.jobs, env.records, nil)
	assert.ErrorIs(t, err, ErrWorkerRequired)
}
