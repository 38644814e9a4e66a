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
	"errors"
	"fmt"
	"sync"

	"github.com/sievedata/sieve/core"
	"github.com/sievedata/sieve/parser"
)

// ProcessQueuedJobs advances queued jobs through both pipeline phases.
// An empty environment fans out to every environment with active jobs.
//
// The call is idempotent and re-entrant: phases are gated so at most one job
// per environment occupies each phase, and the atomic claim means concurrent
// invocations never double-process a job. Invoking it with nothing to do is
// a cheap no-op, which is what makes the poll-driven re-kick model safe.
func (s *Service) ProcessQueuedJobs(ctx context.Context, environment string) error {
	environments := []string{environment}
	if environment == "" {
		var err error
		environments, err = s.jobs.ActiveEnvironments(ctx)
		if err != nil {
			return fmt.Errorf("listing active environments: %w", err)
		}
	}

	var (
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)

	for _, env := range environments {
		// The two phases are independent: while one job parses, an earlier
		// job can vectorize.
		for _, advance := range []func(context.Context, string) error{
			s.advancePersistPhase,
			s.advanceVectorPhase,
		} {
			wg.Add(1)
			go func(fn func(context.Context, string) error, env string) {
				defer wg.Done()
				if err := fn(ctx, env); err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
			}(advance, env)
		}
	}

	wg.Wait()
	return errors.Join(errs...)
}

// advancePersistPhase drains PENDING jobs for the environment, one at a time.
// Returns early when another invocation already holds the phase.
//
// Job-level failures (undecodable payload, storage errors while persisting)
// are recorded on the job as FAILED and do not stop the drain. Only errors
// that make the queue itself unreadable are returned.
func (s *Service) advancePersistPhase(ctx context.Context, environment string) error {
	for {
		busy, err := s.jobs.HasJobWithStatus(ctx, environment, core.JobStatusProcessing)
		if err != nil {
			return fmt.Errorf("checking persist phase in %q: %w", environment, err)
		}
		if busy {
			return nil
		}

		job, err := s.jobs.ClaimOldestJob(ctx, environment, core.JobStatusPending, core.JobStatusProcessing)
		if err != nil {
			return fmt.Errorf("claiming pending job in %q: %w", environment, err)
		}
		if job == nil {
			return nil
		}

		s.runPersistJob(ctx, job)
	}
}

// runPersistJob parses one claimed job's payload and stores its records.
func (s *Service) runPersistJob(ctx context.Context, job *core.IngestJob) {
	logger := s.logger.With("job", job.Id, "environment", job.Environment)
	logger.Info("persist phase started")

	rows, err := parser.DecodePayload(job.Options.Kind, job.Payload)
	if err != nil {
		logger.Error("payload decode failed", "err", err)
		s.failJob(ctx, job.Id, err)
		return
	}

	if err := s.jobs.SetTotalRecords(ctx, job.Id, uint64(len(rows))); err != nil {
		logger.Error("recording total failed", "err", err)
		s.failJob(ctx, job.Id, err)
		return
	}

	result, err := s.ProcessAndStore(ctx, rows, job.Options, job.Id)
	if err != nil {
		logger.Error("persist phase failed", "err", err)
		s.failJob(ctx, job.Id, err)
		return
	}

	if result.Cancelled {
		logger.Info("persist phase stopped by cancellation", "saved", result.SavedCount)
		return
	}

	next := core.JobStatusCompleted
	if job.Options.GenerateEmbeddings && result.SavedCount > 0 {
		next = core.JobStatusQueuedForVec
	}

	// SetStatus leaves terminal jobs untouched, so a cancellation that races
	// the final transition wins.
	if _, err := s.jobs.SetStatus(ctx, job.Id, next, ""); err != nil {
		logger.Error("persist phase transition failed", "err", err)
		return
	}

	logger.Info("persist phase finished", "status", next.String(),
		"saved", result.SavedCount, "skipped", result.SkippedCount)
}

// advanceVectorPhase drains QUEUED_FOR_VEC jobs for the environment.
// Mirrors the persist phase gating on VECTORIZING.
func (s *Service) advanceVectorPhase(ctx context.Context, environment string) error {
	for {
		busy, err := s.jobs.HasJobWithStatus(ctx, environment, core.JobStatusVectorizing)
		if err != nil {
			return fmt.Errorf("checking vector phase in %q: %w", environment, err)
		}
		if busy {
			return nil
		}

		job, err := s.jobs.ClaimOldestJob(ctx, environment, core.JobStatusQueuedForVec, core.JobStatusVectorizing)
		if err != nil {
			return fmt.Errorf("claiming queued job in %q: %w", environment, err)
		}
		if job == nil {
			return nil
		}

		s.runVectorJob(ctx, job)
	}
}

// runVectorJob backfills embeddings for one claimed job's environment.
// Individual embedding failures never fail the job: the worker annotates
// stubborn records and the job still completes. Only the worker's fatal
// errors (storage, dimension mismatch) mark the job FAILED.
func (s *Service) runVectorJob(ctx context.Context, job *core.IngestJob) {
	logger := s.logger.With("job", job.Id, "environment", job.Environment)
	logger.Info("vectorization phase started")

	stop := func(ctx context.Context) (bool, error) {
		current, err := s.jobs.GetJob(ctx, job.Id)
		if err != nil {
			return false, err
		}
		return current.Status == core.JobStatusCancelled, nil
	}

	stats, err := s.worker.Run(ctx, job.Environment, stop)
	if err != nil {
		logger.Error("vectorization phase failed", "err", err)
		s.failJob(ctx, job.Id, err)
		return
	}

	if stats.Stopped {
		logger.Info("vectorization phase stopped by cancellation", "embedded", stats.Embedded)
		return
	}

	if _, err := s.jobs.SetStatus(ctx, job.Id, core.JobStatusCompleted, ""); err != nil {
		logger.Error("vectorization phase transition failed", "err", err)
		return
	}

	logger.Info("vectorization phase finished",
		"embedded", stats.Embedded, "marked", stats.Marked)
}

// failJob marks a job FAILED with the error message.
// A job already terminal (raced by cancellation) stays as it is.
func (s *Service) failJob(ctx context.Context, id core.ID, cause error) {
	if _, err := s.jobs.SetStatus(ctx, id, core.JobStatusFailed, cause.Error()); err != nil {
		s.logger.Error("failed to mark job failed", "job", id, "err", err)
	}
}
