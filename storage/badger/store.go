// Copyright 2025 Poiesic Systems
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

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/lexidex/core"
	"github.com/poiesic/lexidex/storage"
)

// Store implements storage.Store for BadgerDB. Documents, chunks and
// index entries share one database so a document's records commit and
// roll back together.
type Store struct {
	backend *Backend
}

var _ storage.Store = (*Store)(nil)

// NewStore opens a BadgerDB-backed store at the given path, creating the
// directory if needed.
//
// Returns storage.Store interface to enforce abstraction.
func NewStore(path string) (storage.Store, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return &Store{backend: backend}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.backend.Close()
}

// WithTransaction delegates to the backend.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.backend.WithTransaction(ctx, fn)
}

// Size reports the on-disk footprint in bytes.
func (s *Store) Size() int64 {
	return s.backend.Size()
}

// AddDocument persists the document record, its chunks and their index
// entries in a single transaction.
func (s *Store) AddDocument(ctx context.Context, document *core.Document, chunks []*core.Chunk, entries []*core.IndexEntry) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := putDocument(tx, document); err != nil {
			return err
		}
		if err := putChunks(tx, chunks); err != nil {
			return err
		}
		if err := putEntries(tx, entries); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// RemoveDocument deletes the document record, all of its chunks and all
// of their index entries in a single transaction.
func (s *Store) RemoveDocument(ctx context.Context, documentID core.ID) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := readDocument(tx, documentID); err != nil {
			return err
		}

		chunkIDs, err := deleteDocumentChunks(tx, documentID)
		if err != nil {
			return err
		}
		for _, chunkID := range chunkIDs {
			if err := tx.Delete(makeIndexEntryKey(chunkID)); err != nil {
				return err
			}
		}
		if err := tx.Delete(makeDocumentKey(documentID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// countPrefix counts the keys under a prefix without prefetching values.
func (s *Store) countPrefix(prefix string) (int, error) {
	count := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix + ":")
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}
