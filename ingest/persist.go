package ingest

import (
	"context"
	"fmt"

	"github.com/sievedata/sieve/core"
	"github.com/sievedata/sieve/parser"
)

// Result summarizes one persist-phase run.
type Result struct {
	SavedCount     uint64
	SkippedCount   uint64
	SkippedDetails map[string]uint64

	// Cancelled is true when the run stopped at a chunk boundary because the
	// job was cancelled. Counts cover the chunks persisted before that.
	Cancelled bool
}

// dupeGroup keys duplicate detection. Deduplication is scoped to the
// (environment, type) pair: a TASK and a FEEDBACK may share an external id.
type dupeGroup struct {
	environment string
	typ         core.RecordType
}

// ProcessAndStore parses rows and persists them in chunks, with batched
// duplicate detection and per-chunk counter updates against the job.
//
// Cancellation is cooperative: the job status is checked once per chunk, so
// a cancel lands at the next chunk boundary with all previously persisted
// chunks intact. For non-cancelled runs, SavedCount+SkippedCount equals the
// number of rows submitted.
func (s *Service) ProcessAndStore(ctx context.Context, rows []parser.Row, opts core.IngestOptions, jobID core.ID) (*Result, error) {
	result := &Result{SkippedDetails: make(map[string]uint64)}

	defaults := parser.Defaults{
		Environment:    opts.Environment,
		Type:           opts.Type,
		Source:         opts.Source,
		FilterKeywords: opts.FilterKeywords,
	}

	for start := 0; start < len(rows); start += s.chunkSize {
		end := start + s.chunkSize
		if end > len(rows) {
			end = len(rows)
		}

		if jobID != 0 {
			job, err := s.jobs.GetJob(ctx, jobID)
			if err != nil {
				return result, fmt.Errorf("checking job %d: %w", jobID, err)
			}
			if job.Status == core.JobStatusCancelled {
				result.Cancelled = true
				return result, nil
			}
		}

		saved, skipped, reasons, err := s.storeChunk(ctx, rows[start:end], defaults, jobID)
		if err != nil {
			return result, err
		}

		result.SavedCount += saved
		result.SkippedCount += skipped
		for reason, count := range reasons {
			result.SkippedDetails[reason] += count
		}

		if jobID != 0 {
			if err := s.jobs.AddJobCounts(ctx, jobID, saved, skipped, reasons); err != nil {
				return result, fmt.Errorf("updating counts for job %d: %w", jobID, err)
			}
		}
	}

	return result, nil
}

// storeChunk parses and persists one chunk of rows.
func (s *Service) storeChunk(ctx context.Context, rows []parser.Row, defaults parser.Defaults, jobID core.ID) (saved, skipped uint64, reasons map[string]uint64, err error) {
	reasons = make(map[string]uint64)

	parsed := make([]*core.DataRecord, 0, len(rows))
	for _, row := range rows {
		record, reason := parser.ParseRow(row, defaults)
		if reason != "" {
			skipped++
			reasons[reason]++
			continue
		}
		record.JobId = jobID
		parsed = append(parsed, record)
	}

	dupIDs, dupKeys, err := s.findChunkDupes(ctx, parsed)
	if err != nil {
		return 0, 0, nil, err
	}

	// Also catch duplicates within the chunk itself; earlier chunks are
	// already in the store and covered by the lookup above.
	seenIDs := make(map[dupeGroup]map[string]bool)
	seenKeys := make(map[dupeGroup]map[string]bool)

	toSave := make([]*core.DataRecord, 0, len(parsed))
	for _, record := range parsed {
		group := dupeGroup{record.Environment, record.Type}

		if isDupe(record.DedupID, dupIDs[group], seenIDs[group]) ||
			isDupe(record.DedupKey, dupKeys[group], seenKeys[group]) {
			skipped++
			reasons[parser.ReasonDuplicateID]++
			continue
		}

		if record.DedupID != "" {
			if seenIDs[group] == nil {
				seenIDs[group] = make(map[string]bool)
			}
			seenIDs[group][record.DedupID] = true
		}
		if record.DedupKey != "" {
			if seenKeys[group] == nil {
				seenKeys[group] = make(map[string]bool)
			}
			seenKeys[group][record.DedupKey] = true
		}

		toSave = append(toSave, record)
	}

	if len(toSave) > 0 {
		if _, err := s.records.AddRecords(ctx, toSave...); err != nil {
			return 0, 0, nil, fmt.Errorf("storing records: %w", err)
		}
	}

	return uint64(len(toSave)), skipped, reasons, nil
}

// findChunkDupes runs one batched duplicate lookup per (environment, type)
// group present in the chunk.
func (s *Service) findChunkDupes(ctx context.Context, parsed []*core.DataRecord) (map[dupeGroup]map[string]bool, map[dupeGroup]map[string]bool, error) {
	ids := make(map[dupeGroup][]string)
	keys := make(map[dupeGroup][]string)
	for _, record := range parsed {
		group := dupeGroup{record.Environment, record.Type}
		if record.DedupID != "" {
			ids[group] = append(ids[group], record.DedupID)
		}
		if record.DedupKey != "" {
			keys[group] = append(keys[group], record.DedupKey)
		}
	}

	groups := make(map[dupeGroup]bool)
	for group := range ids {
		groups[group] = true
	}
	for group := range keys {
		groups[group] = true
	}

	dupIDs := make(map[dupeGroup]map[string]bool, len(groups))
	dupKeys := make(map[dupeGroup]map[string]bool, len(groups))
	for group := range groups {
		existingIDs, existingKeys, err := s.records.FindDupes(ctx, group.environment, group.typ, ids[group], keys[group])
		if err != nil {
			return nil, nil, fmt.Errorf("duplicate lookup in %q: %w", group.environment, err)
		}
		dupIDs[group] = existingIDs
		dupKeys[group] = existingKeys
	}
	return dupIDs, dupKeys, nil
}

func isDupe(value string, existing, seen map[string]bool) bool {
	if value == "" {
		return false
	}
	return existing[value] || seen[value]
}
