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


// Package storage provides the storage abstraction layer for sieve.
//
// This package defines repository interfaces that decouple storage
// implementation from pipeline logic. It allows for different storage
// backends (BadgerDB, in-memory, etc.) to be used interchangeably.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return these interfaces rather
// than concrete types:
//
//	jobs, err := badger.NewJobRepository(backend)  // storage.JobRepository
//
// This keeps pipeline code decoupled from BadgerDB specifics and lets tests
// substitute in-memory implementations without modification.
//
// # Architecture
//
// The storage layer follows the Repository pattern:
//
//   - JobRepository: the durable job queue (ingest jobs and their counters)
//   - RecordRepository: ingested data records and their embeddings
//
// The job table is deliberately the queue itself: the execution environment
// is assumed stateless between invocations, so no in-memory job map exists
// anywhere in the system.
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines. Counter updates and job claims are
// transactional so overlapping dispatcher invocations stay correct.
//
// # Context Support
//
// All repository methods accept context.Context for cancellation and timeout
// support.
package storage
