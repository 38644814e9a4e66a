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


package core

import "fmt"

// ValidateDataRecord validates a DataRecord according to domain rules.
//
// Validation rules:
//   - Contents must not be empty (the parser guarantees a JSON fallback)
//   - Environment must not be empty
//   - Type and Category must be valid
//
// NOT validated (populated later):
//   - Vector (empty until the vectorization worker runs)
//   - ID (0 is valid from database sequences)
func ValidateDataRecord(record *DataRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidDataRecord)
	}

	if record.Contents == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDataRecord, ErrEmptyContent)
	}

	if record.Environment == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDataRecord, ErrEmptyEnvironment)
	}

	if err := ValidateRecordType(record.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataRecord, err)
	}

	if err := ValidateCategory(record.Category); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataRecord, err)
	}

	return nil
}

// ValidateIngestJob validates an IngestJob according to domain rules.
//
// Validation rules:
//   - Environment must not be empty
//   - Type and Status must be valid
func ValidateIngestJob(job *IngestJob) error {
	if job == nil {
		return fmt.Errorf("%w: job is nil", ErrInvalidIngestJob)
	}

	if job.Environment == "" {
		return fmt.Errorf("%w: %w", ErrInvalidIngestJob, ErrEmptyEnvironment)
	}

	if err := ValidateRecordType(job.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidIngestJob, err)
	}

	if err := ValidateJobStatus(job.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidIngestJob, err)
	}

	return nil
}

// ValidateRecordType validates that a RecordType has a valid value.
func ValidateRecordType(t RecordType) error {
	if t != RecordTypeTask && t != RecordTypeFeedback {
		return fmt.Errorf("%w: value %d", ErrInvalidRecordType, t)
	}
	return nil
}

// ValidateCategory validates that a Category has a valid value.
func ValidateCategory(c Category) error {
	if c != CategoryStandard && c != CategoryTop10 && c != CategoryBottom10 {
		return fmt.Errorf("%w: value %d", ErrInvalidCategory, c)
	}
	return nil
}

// ValidateJobStatus validates that a JobStatus has a valid value.
func ValidateJobStatus(s JobStatus) error {
	if s < JobStatusPending || s > JobStatusCancelled {
		return fmt.Errorf("%w: value %d", ErrInvalidJobStatus, s)
	}
	return nil
}

// ValidateTransition checks that a job status transition is allowed.
// PENDING -> PROCESSING -> (QUEUED_FOR_VEC -> VECTORIZING ->) COMPLETED;
// any active state may transition to FAILED or CANCELLED.
func ValidateTransition(from, to JobStatus) error {
	if err := ValidateJobStatus(from); err != nil {
		return err
	}
	if err := ValidateJobStatus(to); err != nil {
		return err
	}

	if from.IsTerminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	if to == JobStatusFailed || to == JobStatusCancelled {
		return nil
	}

	allowed := map[JobStatus][]JobStatus{
		JobStatusPending:      {JobStatusProcessing},
		JobStatusProcessing:   {JobStatusQueuedForVec, JobStatusCompleted},
		JobStatusQueuedForVec: {JobStatusVectorizing},
		JobStatusVectorizing:  {JobStatusCompleted},
	}
	for _, next := range allowed[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
