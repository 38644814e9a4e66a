package storage

import (
	"context"

	"github.com/sievedata/sieve/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// JobRepository provides operations for managing ingest jobs.
// Jobs double as the durable work queue: the host process may die between
// invocations, so all queue state lives here rather than in memory.
type JobRepository interface {
	Repository

	// AddJob persists a new ingest job.
	// Generates an ID from sequence and sets CreatedAt/UpdatedAt.
	// Returns the job with generated ID and timestamps populated.
	AddJob(ctx context.Context, job *core.IngestJob) (*core.IngestJob, error)

	// GetJob retrieves a single job by ID.
	// Returns ErrNotFound if the job doesn't exist.
	GetJob(ctx context.Context, id core.ID) (*core.IngestJob, error)

	// ListJobs retrieves all jobs for an environment, oldest first.
	// An empty environment returns jobs across all environments.
	ListJobs(ctx context.Context, environment string) ([]*core.IngestJob, error)

	// ClaimOldestJob atomically transitions the oldest (createdAt-ascending)
	// job with status `from` in the environment to status `to`, within a
	// single read-write transaction. The claim itself is the concurrency
	// guard: two concurrent dispatcher invocations cannot both claim the
	// same job. Returns nil, nil when no job is waiting.
	ClaimOldestJob(ctx context.Context, environment string, from, to core.JobStatus) (*core.IngestJob, error)

	// HasJobWithStatus reports whether any job in the environment has the
	// given status.
	HasJobWithStatus(ctx context.Context, environment string, status core.JobStatus) (bool, error)

	// ActiveEnvironments returns the environments that currently have at
	// least one non-terminal job.
	ActiveEnvironments(ctx context.Context) ([]string, error)

	// SetStatus transitions a job to the given status, recording errMsg for
	// failures. The payload is cleared whenever the new status no longer
	// needs it (QUEUED_FOR_VEC and all terminal states).
	// Returns ErrNotFound if the job doesn't exist.
	SetStatus(ctx context.Context, id core.ID, status core.JobStatus, errMsg string) (*core.IngestJob, error)

	// SetTotalRecords records the parsed row count for a job.
	SetTotalRecords(ctx context.Context, id core.ID, total uint64) error

	// AddJobCounts atomically increments the job's saved/skipped counters and
	// merges the skip-reason histogram. Safe under concurrent chunk
	// completions from overlapping dispatcher invocations.
	AddJobCounts(ctx context.Context, id core.ID, saved, skipped uint64, reasons map[string]uint64) error
}

// RecordRepository provides operations for managing ingested data records.
type RecordRepository interface {
	Repository

	// AddRecords adds one or more data records to storage.
	// Generates IDs from sequence and sets InsertedAt/UpdatedAt.
	// Returns the records with generated IDs and timestamps populated.
	AddRecords(ctx context.Context, records ...*core.DataRecord) ([]*core.DataRecord, error)

	// GetRecord retrieves a single record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetRecord(ctx context.Context, id core.ID) (*core.DataRecord, error)

	// GetRecords retrieves multiple records by their IDs.
	// Returns only the records that exist (no error for missing records).
	GetRecords(ctx context.Context, ids ...core.ID) ([]*core.DataRecord, error)

	// FindDupes reports which of the given external ids and keys already
	// exist for the (environment, type) pair. Duplicate detection is
	// type-scoped: a TASK and a FEEDBACK may legitimately share an id.
	// One lookup per batch, not per record.
	FindDupes(ctx context.Context, environment string, typ core.RecordType, ids, keys []string) (map[string]bool, map[string]bool, error)

	// SetEmbedding writes a record's embedding vector. The vector width is
	// checked against the store's established dimensionality; a mismatch
	// returns ErrDimensionMismatch and must not be retried.
	SetEmbedding(ctx context.Context, id core.ID, vector []float32) error

	// SetRecordMeta sets a single metadata key on a record.
	// Used for the permanent embedding-error annotation.
	SetRecordMeta(ctx context.Context, id core.ID, key, value string) error

	// ScanMissingEmbeddings returns up to limit records in the environment
	// that have no embedding and no permanent embedding-error marker,
	// ordered by id ascending. IDs in exclude are skipped.
	ScanMissingEmbeddings(ctx context.Context, environment string, limit int, exclude map[core.ID]bool) ([]*core.DataRecord, error)

	// DeleteRecordsByJob removes all records ingested by the given job.
	// Returns the number of records deleted.
	DeleteRecordsByJob(ctx context.Context, jobID core.ID) (int, error)
}
