package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/lexidex/core"
	"github.com/poiesic/lexidex/storage"
)

// putEntries writes index entries inside tx.
func putEntries(tx *badger.Txn, entries []*core.IndexEntry) error {
	for _, entry := range entries {
		if err := tx.Set(makeIndexEntryKey(entry.ChunkId), storage.MarshalIndexEntry(entry)); err != nil {
			return err
		}
	}
	return nil
}

// PutEntries stores index entries, replacing existing ones.
func (s *Store) PutEntries(ctx context.Context, entries ...*core.IndexEntry) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := putEntries(tx, entries); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetEntry retrieves the index entry for a chunk.
func (s *Store) GetEntry(ctx context.Context, chunkID core.ID) (*core.IndexEntry, error) {
	var entry *core.IndexEntry
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeIndexEntryKey(chunkID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			entry, err = storage.UnmarshalIndexEntry(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ForEachEntry calls fn for every stored index entry.
func (s *Store) ForEachEntry(ctx context.Context, fn func(entry *core.IndexEntry) error) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(indexEntryPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				entry, err := storage.UnmarshalIndexEntry(val)
				if err != nil {
					return err
				}
				return fn(entry)
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// CountEntries returns the number of stored index entries.
func (s *Store) CountEntries(ctx context.Context) (int, error) {
	return s.countPrefix(indexEntryPrefix)
}
