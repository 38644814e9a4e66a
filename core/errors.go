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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDataRecord indicates a DataRecord failed validation.
	ErrInvalidDataRecord = errors.New("invalid data record")

	// ErrInvalidIngestJob indicates an IngestJob failed validation.
	ErrInvalidIngestJob = errors.New("invalid ingest job")

	// ErrEmptyContent indicates the Contents field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrEmptyEnvironment indicates the Environment field is empty.
	ErrEmptyEnvironment = errors.New("environment cannot be empty")

	// ErrInvalidRecordType indicates an invalid RecordType value.
	ErrInvalidRecordType = errors.New("invalid record type")

	// ErrInvalidCategory indicates an invalid Category value.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrInvalidJobStatus indicates an invalid JobStatus value.
	ErrInvalidJobStatus = errors.New("invalid job status")

	// ErrInvalidTransition indicates a disallowed job status transition.
	ErrInvalidTransition = errors.New("invalid status transition")
)
