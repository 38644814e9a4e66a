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


package vectorize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/sievedata/sieve/ai"
	"github.com/sievedata/sieve/core"
	"github.com/sievedata/sieve/storage"
)

// StopCheck reports whether a run should halt early.
// Checked once per scan, before each batch is fetched.
type StopCheck func(ctx context.Context) (bool, error)

// Stats summarizes the outcome of one backfill run.
type Stats struct {
	// Embedded is the number of records that received a vector.
	Embedded int

	// Marked is the number of records permanently annotated after exhausting
	// their embed attempts.
	Marked int

	// Stopped is true when the run halted early via the stop check.
	Stopped bool
}

// Worker backfills embeddings for records missing them.
// A worker holds no per-run state and is safe to reuse across runs.
type Worker struct {
	records  storage.RecordRepository
	embedder ai.Embedder
	config   *Config
	progress io.Writer
	logger   *slog.Logger
}

// Option is a functional option for configuring a Worker.
type Option func(*Worker)

// WithProgress sets the writer for progress output.
func WithProgress(w io.Writer) Option {
	return func(worker *Worker) {
		worker.progress = w
	}
}

// WithLogger sets the worker's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(worker *Worker) {
		worker.logger = logger
	}
}

// NewWorker creates a backfill worker.
// A nil config uses DefaultConfig.
func NewWorker(records storage.RecordRepository, embedder ai.Embedder, config *Config, opts ...Option) *Worker {
	if config == nil {
		config = DefaultConfig()
	}

	worker := &Worker{
		records:  records,
		embedder: embedder,
		config:   config,
		progress: io.Discard,
		logger:   slog.Default().With("component", "vectorize-worker"),
	}
	for _, opt := range opts {
		opt(worker)
	}
	return worker
}

// Run backfills embeddings for every record in the environment that lacks
// one, until the scan comes back empty. Each record gets up to
// Config.MaxAttempts embed attempts; records still failing after that are
// annotated with a permanent error marker and dropped from the scan, so the
// run always terminates.
//
// Individual embedding failures are not errors: the run reports them in
// Stats and keeps going. Only storage failures and a vector dimension
// mismatch abort the run. stop may be nil.
func (w *Worker) Run(ctx context.Context, environment string, stop StopCheck) (*Stats, error) {
	stats := &Stats{}
	attempts := make(map[core.ID]int)
	exclude := make(map[core.ID]bool)

	tracker := NewProgressTracker(w.progress, w.config.BatchSize)
	tracker.Start()
	defer tracker.Finish()

	for {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		if stop != nil {
			halt, err := stop(ctx)
			if err != nil {
				return stats, fmt.Errorf("stop check failed: %w", err)
			}
			if halt {
				stats.Stopped = true
				w.logger.Info("backfill stopped early", "environment", environment, "embedded", stats.Embedded)
				return stats, nil
			}
		}

		batch, err := w.records.ScanMissingEmbeddings(ctx, environment, w.config.BatchSize, exclude)
		if err != nil {
			return stats, fmt.Errorf("scanning for missing embeddings: %w", err)
		}
		if len(batch) == 0 {
			w.logger.Info("backfill complete", "environment", environment,
				"embedded", stats.Embedded, "marked", stats.Marked)
			return stats, nil
		}

		vectors, embedErr := w.embedBatch(ctx, batch)

		anySucceeded := false
		for i, record := range batch {
			if len(vectors) <= i || len(vectors[i]) == 0 {
				if err := w.recordFailure(ctx, record, embedErr, attempts, exclude, stats); err != nil {
					return stats, err
				}
				continue
			}

			err := w.records.SetEmbedding(ctx, record.Id, NormalizeVector(vectors[i]))
			if err != nil {
				if errors.Is(err, storage.ErrDimensionMismatch) {
					// Wrong-width vectors mean a model misconfiguration;
					// retrying would poison every record the same way.
					return stats, fmt.Errorf("embedding record %d: %w", record.Id, err)
				}
				return stats, fmt.Errorf("writing embedding for record %d: %w", record.Id, err)
			}

			anySucceeded = true
			stats.Embedded++
			delete(attempts, record.Id)
			tracker.Increment(1)
		}

		if !anySucceeded {
			if err := w.pause(ctx); err != nil {
				return stats, err
			}
		}
	}
}

// embedBatch embeds the batch contents in a single bounded API call.
// A failed or misshapen response degrades to no vectors rather than an
// error; per-record attempt accounting decides what happens next.
func (w *Worker) embedBatch(ctx context.Context, batch []*core.DataRecord) ([][]float32, error) {
	texts := make([]string, len(batch))
	for i, record := range batch {
		texts[i] = record.Contents
	}

	embedCtx, cancel := context.WithTimeout(ctx, w.config.EmbedTimeout)
	defer cancel()

	vectors, err := w.embedder.EmbedTexts(embedCtx, texts)
	if err != nil {
		w.logger.Warn("embedding batch failed", "count", len(batch), "err", err)
		return nil, err
	}
	if len(vectors) != len(batch) {
		w.logger.Warn("embedder returned wrong vector count",
			"expected", len(batch), "got", len(vectors))
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(vectors))
	}
	return vectors, nil
}

// recordFailure charges one attempt against the record and, once the ceiling
// is hit, writes the permanent error marker so future scans skip it.
func (w *Worker) recordFailure(ctx context.Context, record *core.DataRecord, cause error, attempts map[core.ID]int, exclude map[core.ID]bool, stats *Stats) error {
	attempts[record.Id]++
	if attempts[record.Id] < w.config.MaxAttempts {
		return nil
	}

	reason := "embedding unavailable"
	if cause != nil {
		reason = cause.Error()
	}
	msg := fmt.Sprintf("no embedding after %d attempts: %s", w.config.MaxAttempts, reason)

	if err := w.records.SetRecordMeta(ctx, record.Id, core.MetaEmbeddingError, msg); err != nil {
		return fmt.Errorf("marking record %d: %w", record.Id, err)
	}

	w.logger.Warn("record permanently skipped", "record", record.Id, "reason", reason)
	exclude[record.Id] = true
	delete(attempts, record.Id)
	stats.Marked++
	return nil
}

// pause waits out the failure backoff, honoring cancellation.
func (w *Worker) pause(ctx context.Context) error {
	timer := time.NewTimer(w.config.FailureBackoff)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
