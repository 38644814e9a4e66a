package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing or database sequences.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs. It is used to derive
// fixed-width index keys from external record identifiers of arbitrary length.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// RecordType identifies the kind of ingested unit.
type RecordType int

const (
	// RecordTypeTask represents a labeling/QA task record.
	RecordTypeTask RecordType = iota + 1
	// RecordTypeFeedback represents a feedback record about a task.
	RecordTypeFeedback
)

// String returns the canonical name of the record type.
func (t RecordType) String() string {
	switch t {
	case RecordTypeTask:
		return "TASK"
	case RecordTypeFeedback:
		return "FEEDBACK"
	default:
		return "UNKNOWN"
	}
}

// Category classifies a record by its quality rating.
type Category int

const (
	// CategoryStandard is the default for records without a recognizable rating.
	CategoryStandard Category = iota + 1
	// CategoryTop10 marks records rated in the top decile.
	CategoryTop10
	// CategoryBottom10 marks records rated in the bottom decile.
	CategoryBottom10
)

// String returns the canonical name of the category.
func (c Category) String() string {
	switch c {
	case CategoryStandard:
		return "STANDARD"
	case CategoryTop10:
		return "TOP_10"
	case CategoryBottom10:
		return "BOTTOM_10"
	default:
		return "UNKNOWN"
	}
}

// SourceKind identifies the format of an ingestion payload.
type SourceKind int

const (
	// SourceKindCSV indicates a CSV payload with a header row.
	SourceKindCSV SourceKind = iota + 1
	// SourceKindAPI indicates a JSON payload (object or array of objects).
	SourceKindAPI
)

// JobStatus is the lifecycle state of an ingest job.
type JobStatus int

const (
	// JobStatusPending means the job is waiting for the persist phase.
	JobStatusPending JobStatus = iota + 1
	// JobStatusProcessing means the persist phase is running.
	JobStatusProcessing
	// JobStatusQueuedForVec means the job is waiting for the vector phase.
	JobStatusQueuedForVec
	// JobStatusVectorizing means the vector phase is running.
	JobStatusVectorizing
	// JobStatusCompleted is terminal success.
	JobStatusCompleted
	// JobStatusFailed is terminal failure; the job's Error field holds the cause.
	JobStatusFailed
	// JobStatusCancelled is terminal user-initiated cancellation.
	JobStatusCancelled
)

// String returns the canonical name of the status.
func (s JobStatus) String() string {
	switch s {
	case JobStatusPending:
		return "PENDING"
	case JobStatusProcessing:
		return "PROCESSING"
	case JobStatusQueuedForVec:
		return "QUEUED_FOR_VEC"
	case JobStatusVectorizing:
		return "VECTORIZING"
	case JobStatusCompleted:
		return "COMPLETED"
	case JobStatusFailed:
		return "FAILED"
	case JobStatusCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal reports whether the status is a final state.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed || s == JobStatusCancelled
}

// IsActive reports whether the job still needs dispatcher attention.
func (s JobStatus) IsActive() bool {
	switch s {
	case JobStatusPending, JobStatusProcessing, JobStatusQueuedForVec, JobStatusVectorizing:
		return true
	}
	return false
}

// IngestOptions is the serialized ingestion configuration carried by a job.
type IngestOptions struct {
	Source             string     // Origin label stamped on every record (file name, API endpoint)
	Kind               SourceKind // Payload format, needed again at processing time
	Type               RecordType // Job-level default; may be overridden per row
	Environment        string
	FilterKeywords     []string // Rows whose content matches none of these are skipped
	GenerateEmbeddings bool
}

// IngestJob is one ingestion request moving through the two-phase queue.
// The Payload field holds the raw CSV/JSON text until the persist phase has
// consumed it; it is cleared on any terminal transition so raw content is
// never retained longer than needed.
type IngestJob struct {
	Id             ID
	Environment    string
	Type           RecordType
	Status         JobStatus
	TotalRecords   uint64
	SavedCount     uint64
	SkippedCount   uint64
	SkippedDetails map[string]uint64 // Skip reason -> count
	Error          string
	Payload        string
	Options        IngestOptions
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DataRecord is one ingested task/feedback unit.
// Vector is populated by the vectorization worker and owned exclusively by it.
type DataRecord struct {
	Id             ID
	JobId          ID // Job that ingested this record, for bulk delete
	Environment    string
	Type           RecordType
	Category       Category
	Source         string
	Contents       string
	DedupID        string            // External task_id/id/uuid/record_id, if present
	DedupKey       string            // External task_key, if present
	Metadata       map[string]string // Opaque flattened copy of the original row
	Vector         []float32
	CreatedById    string
	CreatedByName  string
	CreatedByEmail string
	RecordedAt     time.Time // Original row timestamp, zero if absent or unparseable
	InsertedAt     time.Time
	UpdatedAt      time.Time
}

// MetaEmbeddingError is the metadata key marking a record whose embedding
// permanently failed. Records carrying it are excluded from vectorization scans.
const MetaEmbeddingError = "embedding_error"
