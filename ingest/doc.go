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


// Package ingest orchestrates the two-phase ingestion pipeline.
//
// The Service type manages the ingestion workflow:
//   - accepting raw CSV/JSON payloads as durable PENDING jobs
//   - advancing jobs through the persist phase (parse, dedup, store)
//   - advancing jobs through the vectorization phase
//
// All queue state lives in storage, never in memory: the host process may
// die between invocations, and a fresh call to ProcessQueuedJobs resumes
// from whatever the job statuses say. Per environment at most one job
// occupies each phase at a time; the atomic claim in the job repository
// makes concurrent invocations safe.
//
// Entry points hand work to a worker pool and return immediately. Errors
// during background processing are logged and recorded on the failed job,
// never propagated to the caller that kicked the pool.
package ingest
