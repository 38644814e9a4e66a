package ingest

import "errors"

var (
	// ErrJobRepositoryRequired is returned when a job repository is not provided.
	ErrJobRepositoryRequired = errors.New("job repository required")

	// ErrRecordRepositoryRequired is returned when a record repository is not provided.
	ErrRecordRepositoryRequired = errors.New("record repository required")

	// ErrWorkerRequired is returned when a vectorization worker is not provided.
	ErrWorkerRequired = errors.New("vectorization worker required")

	// ErrEmptyPayload is returned when an ingestion is started with no payload.
	ErrEmptyPayload = errors.New("empty payload")

	// ErrPayloadTooLarge is returned when a payload exceeds the size limit for
	// a single ingest job.
	ErrPayloadTooLarge = errors.New("payload too large")
)
