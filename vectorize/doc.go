// Package vectorize backfills embedding vectors for ingested records.
//
// The worker scans an environment for records without embeddings, embeds
// them in batches, and writes the vectors back. It tolerates crashes at any
// point: no queue state lives in memory, so a fresh run resumes from
// whatever the scan finds. Records that keep failing are annotated with a
// permanent error marker so the scan converges instead of spinning on them.
package vectorize
