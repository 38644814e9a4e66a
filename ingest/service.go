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


package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/panjf2000/ants/v2"

	"github.com/sievedata/sieve/core"
	"github.com/sievedata/sieve/parser"
	"github.com/sievedata/sieve/storage"
	"github.com/sievedata/sieve/vectorize"
)

// defaultChunkSize is the number of rows persisted per storage batch.
const defaultChunkSize = 100

// maxPayloadBytes caps the raw payload stored on a single job. The payload
// lives in the job record until parsing finishes, so an unbounded upload
// would sit in the value log whole.
const maxPayloadBytes = 32 << 20

// Service orchestrates the ingestion pipeline.
type Service struct {
	jobs      storage.JobRepository
	records   storage.RecordRepository
	worker    *vectorize.Worker
	pool      *ants.Pool
	chunkSize int
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithChunkSize sets the number of rows persisted per storage batch.
// Default is 100.
func WithChunkSize(size int) Option {
	return func(s *Service) error {
		if size < 1 {
			size = 1
		}
		s.chunkSize = size
		return nil
	}
}

// WithPoolSize sets the worker pool size for background kicks.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Service) error {
		if size < 1 {
			size = 1
		}

		if s.pool != nil {
			s.pool.Release()
		}

		pool, err := ants.NewPool(size, ants.WithNonblocking(true))
		if err != nil {
			return err
		}
		s.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewService creates a new ingestion service.
func NewService(
	jobs storage.JobRepository,
	records storage.RecordRepository,
	worker *vectorize.Worker,
	opts ...Option,
) (*Service, error) {
	if jobs == nil {
		return nil, ErrJobRepositoryRequired
	}
	if records == nil {
		return nil, ErrRecordRepositoryRequired
	}
	if worker == nil {
		return nil, ErrWorkerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	// Nonblocking: a kick is best effort, a saturated pool drops it rather
	// than stalling the caller. Status polls re-kick later.
	pool, err := ants.NewPool(poolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}

	s := &Service{
		jobs:      jobs,
		records:   records,
		worker:    worker,
		pool:      pool,
		chunkSize: defaultChunkSize,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(s); optErr != nil {
			s.Release()
			return nil, optErr
		}
	}

	return s, nil
}

// StartBackgroundIngest persists a raw payload as a PENDING job and kicks the
// dispatcher. It returns the job ID immediately; parsing and storing happen
// in the background.
//
// When the options omit the environment or type, both are inferred from the
// first parsed row, falling back to "default" and TASK. A payload whose
// envelope cannot be decoded still produces a job; the persist phase fails it
// with the decode error.
func (s *Service) StartBackgroundIngest(ctx context.Context, kind core.SourceKind, payload string, opts core.IngestOptions) (core.ID, error) {
	if strings.TrimSpace(payload) == "" {
		return 0, ErrEmptyPayload
	}
	if len(payload) > maxPayloadBytes {
		return 0, fmt.Errorf("%w: %d bytes, limit %d", ErrPayloadTooLarge, len(payload), maxPayloadBytes)
	}

	// Hand-edited exports occasionally carry broken encodings. Dropping the
	// invalid bytes up front keeps every later stage on clean UTF-8.
	payload = strings.ToValidUTF8(payload, "")

	opts.Kind = kind
	s.inferDefaults(kind, payload, &opts)

	job := &core.IngestJob{
		Environment: opts.Environment,
		Type:        opts.Type,
		Status:      core.JobStatusPending,
		Payload:     payload,
		Options:     opts,
	}

	added, err := s.jobs.AddJob(ctx, job)
	if err != nil {
		return 0, fmt.Errorf("persisting ingest job: %w", err)
	}

	s.logger.Info("ingest job queued", "job", added.Id,
		"environment", added.Environment, "type", added.Type.String())

	s.kick(added.Environment)
	return added.Id, nil
}

// GetIngestStatus returns the current state of a job.
// Every poll of an active job re-kicks the dispatcher, so a crashed
// background invocation never strands a job: the next status check
// resumes it.
func (s *Service) GetIngestStatus(ctx context.Context, id core.ID) (*core.IngestJob, error) {
	job, err := s.jobs.GetJob(ctx, id)
	if err != nil {
		return nil, err
	}

	if job.Status.IsActive() {
		s.kick(job.Environment)
	}
	return job, nil
}

// CancelIngest requests cancellation of a job. Running phases observe the
// new status cooperatively at their next chunk or scan boundary. Cancelling
// a job that already reached a terminal state is a no-op and returns the job
// unchanged.
func (s *Service) CancelIngest(ctx context.Context, id core.ID) (*core.IngestJob, error) {
	job, err := s.jobs.SetStatus(ctx, id, core.JobStatusCancelled, "")
	if err != nil {
		return nil, err
	}

	s.logger.Info("ingest job cancelled", "job", id, "status", job.Status.String())
	return job, nil
}

// DeleteIngestedData removes every record that the given job ingested.
// Returns the number of records deleted.
func (s *Service) DeleteIngestedData(ctx context.Context, jobID core.ID) (int, error) {
	if _, err := s.jobs.GetJob(ctx, jobID); err != nil {
		return 0, err
	}

	deleted, err := s.records.DeleteRecordsByJob(ctx, jobID)
	if err != nil {
		return 0, fmt.Errorf("deleting records for job %d: %w", jobID, err)
	}

	s.logger.Info("ingested data deleted", "job", jobID, "records", deleted)
	return deleted, nil
}

// Release releases the background worker pool.
// The service should not be used after calling Release.
func (s *Service) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// inferDefaults fills in a missing environment or record type from the first
// parsed row. Decode failures leave the fallbacks in place; the persist
// phase will surface them on the job.
func (s *Service) inferDefaults(kind core.SourceKind, payload string, opts *core.IngestOptions) {
	needEnv := opts.Environment == ""
	needType := opts.Type != core.RecordTypeTask && opts.Type != core.RecordTypeFeedback

	var first parser.Row
	if needEnv || needType {
		if rows, err := parser.DecodePayload(kind, payload); err == nil && len(rows) > 0 {
			first = rows[0]
		}
	}

	if needEnv {
		opts.Environment = parser.DetectEnvironment(first, "")
	}
	if needType {
		opts.Type = parser.DetectType(first, 0)
	}
}

// kick submits a background dispatcher run for the environment.
// Best effort: a saturated pool drops the kick.
func (s *Service) kick(environment string) {
	err := s.pool.Submit(func() {
		if err := s.ProcessQueuedJobs(context.Background(), environment); err != nil {
			s.logger.Error("background processing failed", "environment", environment, "err", err)
		}
	})
	if err != nil {
		s.logger.Debug("dispatcher kick dropped", "environment", environment, "err", err)
	}
}
