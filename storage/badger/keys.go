package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/sievedata/sieve/core"
)

// Key prefixes for different data types
const (
	ingestJobPrefix   = "ingjob"
	ingestJobQPrefix  = "ingjobq"
	ingestJobIDSeq    = "ingjobseq"
	dataRecordPrefix  = "datrec"
	dataRecordEnvPfx  = "datrece"
	dataRecordDupPfx  = "datrecd"
	dataRecordJobPfx  = "datrecj"
	dataRecordIDSeq   = "datrecseq"
	vectorDimMetaKey  = "datrecdim"
)

// Dedup index discriminators for the two logical-identity kinds.
const (
	dupKindID  = byte('i')
	dupKindKey = byte('k')
)

// makeJobKey generates a key for an ingest job by ID.
func makeJobKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", ingestJobPrefix, id))
}

// makeJobQueueKey generates a composite key for the per-environment queue
// index. Format: prefix:envHash:status:createdAt:id, with fixed-width
// BigEndian fields so lexicographic order equals createdAt order within one
// (environment, status) line. Only active-status jobs are indexed.
func makeJobQueueKey(environment string, status core.JobStatus, createdAt time.Time, id core.ID) []byte {
	prefix := ingestJobQPrefix + ":"
	prefixBytes := []byte(prefix)
	totalSize := len(prefixBytes) + 8 + 1 + 8 + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(environment)))
	offset += 8
	buf[offset] = byte(status)
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(createdAt.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeJobQueuePrefix generates the scan prefix for one (environment, status)
// waiting line.
func makeJobQueuePrefix(environment string, status core.JobStatus) []byte {
	prefix := ingestJobQPrefix + ":"
	prefixBytes := []byte(prefix)
	totalSize := len(prefixBytes) + 8 + 1
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(environment)))
	offset += 8
	buf[offset] = byte(status)
	return buf
}

// makeRecordKey generates a key for a data record by ID.
func makeRecordKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", dataRecordPrefix, id))
}

// makeRecordEnvKey generates a composite key for the environment index.
// Format: prefix:envHash:id, BigEndian so scans return ids ascending.
func makeRecordEnvKey(environment string, id core.ID) []byte {
	prefix := dataRecordEnvPfx + ":"
	prefixBytes := []byte(prefix)
	totalSize := len(prefixBytes) + 16
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(environment)))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeRecordEnvPrefix generates the scan prefix for one environment.
func makeRecordEnvPrefix(environment string) []byte {
	prefix := dataRecordEnvPfx + ":"
	prefixBytes := []byte(prefix)
	totalSize := len(prefixBytes) + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(environment)))
	return buf
}

// makeRecordDupKey generates a key for the type-scoped dedup index.
// Format: prefix:envHash:type:kind:valueHash. External ids and keys have
// arbitrary length and character sets, so they are content-hashed to a
// fixed width rather than embedded raw.
func makeRecordDupKey(environment string, typ core.RecordType, kind byte, value string) []byte {
	prefix := dataRecordDupPfx + ":"
	prefixBytes := []byte(prefix)
	totalSize := len(prefixBytes) + 8 + 1 + 1 + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(environment)))
	offset += 8
	buf[offset] = byte(typ)
	offset++
	buf[offset] = kind
	offset++
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(value)))
	return buf
}

// makeRecordJobKey generates a composite key for the job-association index.
// Format: prefix:jobID:recordID.
func makeRecordJobKey(jobID, recordID core.ID) []byte {
	prefix := dataRecordJobPfx + ":"
	prefixBytes := []byte(prefix)
	totalSize := len(prefixBytes) + 16
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(jobID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(recordID))
	return buf
}

// makeRecordJobPrefix generates the scan prefix for one job's records.
func makeRecordJobPrefix(jobID core.ID) []byte {
	prefix := dataRecordJobPfx + ":"
	prefixBytes := []byte(prefix)
	totalSize := len(prefixBytes) + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(jobID))
	return buf
}
