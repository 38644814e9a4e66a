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


package badger

import (
	"context"
	"errors"
	"slices"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sievedata/sieve/core"
	"github.com/sievedata/sieve/storage"
)

// countRetries bounds the commit-conflict retry loop for counter updates.
const countRetries = 5

// JobRepository implements storage.JobRepository for BadgerDB.
type JobRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.JobRepository = (*JobRepository)(nil)

// NewJobRepository creates a new JobRepository.
func NewJobRepository(backend *Backend) (*JobRepository, error) {
	idSeq, err := backend.GetSequence(ingestJobIDSeq)
	if err != nil {
		return nil, err
	}

	return &JobRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *JobRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *JobRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddJob persists a new ingest job.
func (r *JobRepository) AddJob(ctx context.Context, job *core.IngestJob) (*core.IngestJob, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		nextID, err := r.idSeq.Next()
		if err != nil {
			return err
		}
		// BadgerDB sequences can return 0 on first call, so we skip it
		if nextID == 0 {
			nextID, err = r.idSeq.Next()
			if err != nil {
				return err
			}
		}
		job.Id = core.ID(nextID)

		job.CreatedAt = time.Now().UTC()
		job.UpdatedAt = job.CreatedAt
		if job.SkippedDetails == nil {
			job.SkippedDetails = map[string]uint64{}
		}

		if err := core.ValidateIngestJob(job); err != nil {
			return err
		}

		key := makeJobKey(job.Id)
		value := storage.MarshalIngestJob(job)
		if err := tx.Set(key, value); err != nil {
			return err
		}

		// Index into the waiting line for its environment
		if job.Status.IsActive() {
			qKey := makeJobQueueKey(job.Environment, job.Status, job.CreatedAt, job.Id)
			if err := tx.Set(qKey, storage.MarshalID(job.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return job, err
}

// GetJob retrieves a single job by ID.
func (r *JobRepository) GetJob(ctx context.Context, id core.ID) (*core.IngestJob, error) {
	var result *core.IngestJob
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readJob(tx, makeJobKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListJobs retrieves jobs for an environment, oldest first.
func (r *JobRepository) ListJobs(ctx context.Context, environment string) ([]*core.IngestJob, error) {
	var results []*core.IngestJob
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(ingestJobPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var job *core.IngestJob
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				job, err = storage.UnmarshalIngestJob(val)
				return err
			}); err != nil {
				return err
			}
			if environment == "" || job.Environment == environment {
				results = append(results, job)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})
	return results, nil
}

// ClaimOldestJob atomically moves the oldest waiting job from one status to
// another. The whole claim runs in a single read-write transaction; if a
// concurrent dispatcher invocation claims first, the commit conflicts and
// this invocation simply reports no job.
func (r *JobRepository) ClaimOldestJob(ctx context.Context, environment string, from, to core.JobStatus) (*core.IngestJob, error) {
	var claimed *core.IngestJob
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		id, ok, err := r.firstQueuedID(tx, environment, from)
		if err != nil || !ok {
			return err
		}

		job, err := r.readJob(tx, makeJobKey(id))
		if err != nil {
			return err
		}
		if job == nil || job.Status != from {
			// Stale index entry; another invocation already moved the job.
			return nil
		}

		if err := r.applyStatus(tx, job, to, ""); err != nil {
			return err
		}
		claimed = job
		return tx.Commit()
	}, true)

	if errors.Is(err, badger.ErrConflict) {
		// Lost the claim race; not an error.
		return nil, nil
	}
	return claimed, err
}

// HasJobWithStatus reports whether the (environment, status) line is non-empty.
func (r *JobRepository) HasJobWithStatus(ctx context.Context, environment string, status core.JobStatus) (bool, error) {
	var found bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		_, ok, err := r.firstQueuedID(tx, environment, status)
		found = ok
		return err
	}, false)
	return found, err
}

// ActiveEnvironments returns environments with at least one non-terminal job.
func (r *JobRepository) ActiveEnvironments(ctx context.Context) ([]string, error) {
	seen := map[string]bool{}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(ingestJobQPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}
			// The queue index only holds active jobs; the environment name
			// lives on the job record, the key carries only its hash.
			job, err := r.readJob(tx, makeJobKey(id))
			if err != nil {
				return err
			}
			if job != nil && job.Status.IsActive() {
				seen[job.Environment] = true
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	envs := make([]string, 0, len(seen))
	for env := range seen {
		envs = append(envs, env)
	}
	slices.Sort(envs)
	return envs, nil
}

// SetStatus transitions a job to the given status.
// Terminal jobs are left untouched, which makes repeated cancellation and
// dispatcher re-entry idempotent.
func (r *JobRepository) SetStatus(ctx context.Context, id core.ID, status core.JobStatus, errMsg string) (*core.IngestJob, error) {
	var result *core.IngestJob
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		job, err := r.readJob(tx, makeJobKey(id))
		if err != nil {
			return err
		}
		if job == nil {
			return storage.ErrNotFound
		}
		if job.Status.IsTerminal() {
			result = job
			return nil
		}

		if err := r.applyStatus(tx, job, status, errMsg); err != nil {
			return err
		}
		result = job
		return tx.Commit()
	}, true)
	return result, err
}

// SetTotalRecords records the parsed row count for a job.
func (r *JobRepository) SetTotalRecords(ctx context.Context, id core.ID, total uint64) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		job, err := r.readJob(tx, makeJobKey(id))
		if err != nil {
			return err
		}
		if job == nil {
			return storage.ErrNotFound
		}
		job.TotalRecords = total
		job.UpdatedAt = time.Now().UTC()
		if err := tx.Set(makeJobKey(job.Id), storage.MarshalIngestJob(job)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// AddJobCounts atomically increments the job's counters and merges the
// skip-reason histogram. Commit conflicts from overlapping invocations are
// retried so no increment is lost.
func (r *JobRepository) AddJobCounts(ctx context.Context, id core.ID, saved, skipped uint64, reasons map[string]uint64) error {
	var err error
	for attempt := 0; attempt < countRetries; attempt++ {
		err = r.backend.WithTx(func(tx *badger.Txn) error {
			job, readErr := r.readJob(tx, makeJobKey(id))
			if readErr != nil {
				return readErr
			}
			if job == nil {
				return storage.ErrNotFound
			}

			job.SavedCount += saved
			job.SkippedCount += skipped
			if job.SkippedDetails == nil {
				job.SkippedDetails = map[string]uint64{}
			}
			for reason, count := range reasons {
				job.SkippedDetails[reason] += count
			}
			job.UpdatedAt = time.Now().UTC()

			if setErr := tx.Set(makeJobKey(job.Id), storage.MarshalIngestJob(job)); setErr != nil {
				return setErr
			}
			return tx.Commit()
		}, true)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// applyStatus mutates the job's status in place, maintains the queue index,
// and clears the payload once it is no longer needed. Must be called within
// a write transaction; does not commit.
func (r *JobRepository) applyStatus(tx *badger.Txn, job *core.IngestJob, status core.JobStatus, errMsg string) error {
	if job.Status.IsActive() {
		oldKey := makeJobQueueKey(job.Environment, job.Status, job.CreatedAt, job.Id)
		if err := tx.Delete(oldKey); err != nil {
			return err
		}
	}

	job.Status = status
	job.UpdatedAt = time.Now().UTC()
	if status == core.JobStatusFailed {
		job.Error = errMsg
	}
	// Raw payload is only needed while the persist phase still has rows to
	// parse. Drop it as soon as the job leaves that stage.
	if status == core.JobStatusQueuedForVec || status.IsTerminal() {
		job.Payload = ""
	}

	if err := tx.Set(makeJobKey(job.Id), storage.MarshalIngestJob(job)); err != nil {
		return err
	}

	if status.IsActive() {
		newKey := makeJobQueueKey(job.Environment, status, job.CreatedAt, job.Id)
		if err := tx.Set(newKey, storage.MarshalID(job.Id)); err != nil {
			return err
		}
	}
	return nil
}

// firstQueuedID returns the ID at the head of one (environment, status) line.
func (r *JobRepository) firstQueuedID(tx *badger.Txn, environment string, status core.JobStatus) (core.ID, bool, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makeJobQueuePrefix(environment, status)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	iter.Rewind()
	if !iter.Valid() {
		return 0, false, nil
	}

	var id core.ID
	err := iter.Item().Value(func(val []byte) error {
		var err error
		id, err = storage.UnmarshalID(val)
		return err
	})
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// readJob reads and unmarshals a job, returning nil if the key is absent.
func (r *JobRepository) readJob(tx *badger.Txn, key []byte) (*core.IngestJob, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var job *core.IngestJob
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		job, unmarshalErr = storage.UnmarshalIngestJob(val)
		return unmarshalErr
	})
	return job, err
}
