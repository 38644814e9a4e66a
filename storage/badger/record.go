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


package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/sievedata/sieve/core"
	"github.com/sievedata/sieve/storage"
)

// RecordRepository implements storage.RecordRepository for BadgerDB.
type RecordRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.RecordRepository = (*RecordRepository)(nil)

// NewRecordRepository creates a new RecordRepository.
func NewRecordRepository(backend *Backend) (*RecordRepository, error) {
	idSeq, err := backend.GetSequence(dataRecordIDSeq)
	if err != nil {
		return nil, err
	}

	return &RecordRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *RecordRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *RecordRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddRecords adds one or more data records to storage.
func (r *RecordRepository) AddRecords(ctx context.Context, records ...*core.DataRecord) ([]*core.DataRecord, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			record.Id = core.ID(nextID)

			record.InsertedAt = time.Now().UTC()
			record.UpdatedAt = record.InsertedAt

			if err := core.ValidateDataRecord(record); err != nil {
				return err
			}

			// Primary record
			key := makeRecordKey(record.Id)
			value := storage.MarshalDataRecord(record)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Environment index for ascending-id embedding scans
			envKey := makeRecordEnvKey(record.Environment, record.Id)
			if err := tx.Set(envKey, storage.MarshalID(record.Id)); err != nil {
				return err
			}

			// Type-scoped dedup index over external identities
			if record.DedupID != "" {
				dupKey := makeRecordDupKey(record.Environment, record.Type, dupKindID, record.DedupID)
				if err := tx.Set(dupKey, storage.MarshalID(record.Id)); err != nil {
					return err
				}
			}
			if record.DedupKey != "" {
				dupKey := makeRecordDupKey(record.Environment, record.Type, dupKindKey, record.DedupKey)
				if err := tx.Set(dupKey, storage.MarshalID(record.Id)); err != nil {
					return err
				}
			}

			// Job association for bulk delete
			if record.JobId != 0 {
				jobKey := makeRecordJobKey(record.JobId, record.Id)
				if err := tx.Set(jobKey, storage.MarshalID(record.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return records, err
}

// GetRecord retrieves a single record by ID.
func (r *RecordRepository) GetRecord(ctx context.Context, id core.ID) (*core.DataRecord, error) {
	var result *core.DataRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readRecord(tx, makeRecordKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetRecords retrieves multiple records by their IDs.
func (r *RecordRepository) GetRecords(ctx context.Context, ids ...core.ID) ([]*core.DataRecord, error) {
	var result []*core.DataRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			record, err := r.readRecord(tx, makeRecordKey(id))
			if err != nil {
				return err
			}
			if record != nil {
				result = append(result, record)
			}
		}
		return nil
	}, false)
	return result, err
}

// FindDupes reports which of the given external ids and keys already exist
// for the (environment, type) pair. One read transaction serves the whole
// batch; each candidate is a point lookup on the dedup index.
func (r *RecordRepository) FindDupes(ctx context.Context, environment string, typ core.RecordType, ids, keys []string) (map[string]bool, map[string]bool, error) {
	foundIDs := map[string]bool{}
	foundKeys := map[string]bool{}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			ok, err := keyExists(tx, makeRecordDupKey(environment, typ, dupKindID, id))
			if err != nil {
				return err
			}
			if ok {
				foundIDs[id] = true
			}
		}
		for _, key := range keys {
			ok, err := keyExists(tx, makeRecordDupKey(environment, typ, dupKindKey, key))
			if err != nil {
				return err
			}
			if ok {
				foundKeys[key] = true
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, nil, err
	}
	return foundIDs, foundKeys, nil
}

// SetEmbedding writes a record's embedding vector.
// The first successful write establishes the store's vector width; later
// writes must match it or fail with ErrDimensionMismatch.
func (r *RecordRepository) SetEmbedding(ctx context.Context, id core.ID, vector []float32) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		record, err := r.readRecord(tx, makeRecordKey(id))
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}

		expected, err := r.vectorDim(tx)
		if err != nil {
			return err
		}
		if expected == 0 {
			if err := tx.Set([]byte(vectorDimMetaKey), storage.MarshalID(core.ID(len(vector)))); err != nil {
				return err
			}
		} else if expected != len(vector) {
			return fmt.Errorf("%w: expected %d, got %d", storage.ErrDimensionMismatch, expected, len(vector))
		}

		record.Vector = vector
		record.UpdatedAt = time.Now().UTC()
		if err := tx.Set(makeRecordKey(record.Id), storage.MarshalDataRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// SetRecordMeta sets a single metadata key on a record.
func (r *RecordRepository) SetRecordMeta(ctx context.Context, id core.ID, key, value string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		record, err := r.readRecord(tx, makeRecordKey(id))
		if err != nil {
			return err
		}
		if record == nil {
			return storage.ErrNotFound
		}

		if record.Metadata == nil {
			record.Metadata = map[string]string{}
		}
		record.Metadata[key] = value
		record.UpdatedAt = time.Now().UTC()

		if err := tx.Set(makeRecordKey(record.Id), storage.MarshalDataRecord(record)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ScanMissingEmbeddings returns up to limit records in the environment that
// still need an embedding, ordered by id ascending.
func (r *RecordRepository) ScanMissingEmbeddings(ctx context.Context, environment string, limit int, exclude map[core.ID]bool) ([]*core.DataRecord, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.DataRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeRecordEnvPrefix(environment)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid() && len(results) < limit; iter.Next() {
			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}
			if exclude[id] {
				continue
			}

			record, err := r.readRecord(tx, makeRecordKey(id))
			if err != nil {
				return err
			}
			if record == nil || len(record.Vector) > 0 {
				continue
			}
			if _, failed := record.Metadata[core.MetaEmbeddingError]; failed {
				continue
			}
			results = append(results, record)
		}
		return nil
	}, false)

	return results, err
}

// DeleteRecordsByJob removes all records ingested by the given job, along
// with their index entries.
func (r *RecordRepository) DeleteRecordsByJob(ctx context.Context, jobID core.ID) (int, error) {
	deleted := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeRecordJobPrefix(jobID)
		iter := tx.NewIterator(opts)

		var ids []core.ID
		for iter.Rewind(); iter.Valid(); iter.Next() {
			var id core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				iter.Close()
				return err
			}
			ids = append(ids, id)
		}
		iter.Close()

		for _, id := range ids {
			record, err := r.readRecord(tx, makeRecordKey(id))
			if err != nil {
				return err
			}
			if record == nil {
				continue
			}

			if err := tx.Delete(makeRecordEnvKey(record.Environment, record.Id)); err != nil {
				return err
			}
			if record.DedupID != "" {
				if err := tx.Delete(makeRecordDupKey(record.Environment, record.Type, dupKindID, record.DedupID)); err != nil {
					return err
				}
			}
			if record.DedupKey != "" {
				if err := tx.Delete(makeRecordDupKey(record.Environment, record.Type, dupKindKey, record.DedupKey)); err != nil {
					return err
				}
			}
			if err := tx.Delete(makeRecordJobKey(jobID, record.Id)); err != nil {
				return err
			}
			if err := tx.Delete(makeRecordKey(record.Id)); err != nil {
				return err
			}
			deleted++
		}
		return tx.Commit()
	}, true)

	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// vectorDim reads the established embedding width, 0 if none yet.
func (r *RecordRepository) vectorDim(tx *badger.Txn) (int, error) {
	item, err := tx.Get([]byte(vectorDimMetaKey))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}

	var dim core.ID
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		dim, unmarshalErr = storage.UnmarshalID(val)
		return unmarshalErr
	})
	return int(dim), err
}

// readRecord reads and unmarshals a record, returning nil if the key is absent.
func (r *RecordRepository) readRecord(tx *badger.Txn, key []byte) (*core.DataRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var record *core.DataRecord
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		record, unmarshalErr = storage.UnmarshalDataRecord(val)
		return unmarshalErr
	})
	return record, err
}

// keyExists reports whether a key is present without reading its value.
func keyExists(tx *badger.Txn, key []byte) (bool, error) {
	_, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
