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


package storage

import (
	"github.com/sievedata/sieve/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	var id core.ID
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalIngestJob serializes an IngestJob to bytes.
func MarshalIngestJob(job *core.IngestJob) []byte {
	buf := make([]byte, core.IngestJobMUS.Size(*job))
	core.IngestJobMUS.Marshal(*job, buf)
	return buf
}

// UnmarshalIngestJob deserializes an IngestJob from bytes.
func UnmarshalIngestJob(data []byte) (*core.IngestJob, error) {
	job, _, err := core.IngestJobMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// MarshalDataRecord serializes a DataRecord to bytes.
func MarshalDataRecord(record *core.DataRecord) []byte {
	buf := make([]byte, core.DataRecordMUS.Size(*record))
	core.DataRecordMUS.Marshal(*record, buf)
	return buf
}

// UnmarshalDataRecord deserializes a DataRecord from bytes.
func UnmarshalDataRecord(data []byte) (*core.DataRecord, error) {
	record, _, err := core.DataRecordMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &record, nil
}
