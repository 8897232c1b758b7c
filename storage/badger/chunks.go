package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/lexidex/core"
	"github.com/poiesic/lexidex/storage"
)

// putChunks writes chunk records and their ordinal index keys inside tx.
func putChunks(tx *badger.Txn, chunks []*core.Chunk) error {
	for _, chunk := range chunks {
		if err := tx.Set(makeChunkKey(chunk.Id), storage.MarshalChunk(chunk)); err != nil {
			return err
		}
		ordKey := makeChunkOrdinalKey(chunk.DocumentId, chunk.Ordinal)
		if err := tx.Set(ordKey, storage.MarshalID(chunk.Id)); err != nil {
			return err
		}
	}
	return nil
}

// readChunk reads a chunk record inside tx.
// Returns storage.ErrNotFound if the record doesn't exist.
func readChunk(tx *badger.Txn, id core.ID) (*core.Chunk, error) {
	item, err := tx.Get(makeChunkKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var err error
		chunk, err = storage.UnmarshalChunk(val)
		return err
	})
	return chunk, err
}

// documentChunkIDs collects the chunk IDs of one document in ordinal
// order inside tx.
func documentChunkIDs(tx *badger.Txn, documentID core.ID) ([]core.ID, error) {
	var ids []core.ID
	opts := badger.DefaultIteratorOptions
	opts.Prefix = makePartialChunkOrdinalKey(documentID)
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		err := iter.Item().Value(func(val []byte) error {
			id, err := storage.UnmarshalID(val)
			if err != nil {
				return err
			}
			ids = append(ids, id)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// deleteDocumentChunks removes all chunk records and ordinal keys of one
// document inside tx, returning the deleted chunk IDs.
func deleteDocumentChunks(tx *badger.Txn, documentID core.ID) ([]core.ID, error) {
	ids, err := documentChunkIDs(tx, documentID)
	if err != nil {
		return nil, err
	}
	for ordinal, id := range ids {
		if err := tx.Delete(makeChunkKey(id)); err != nil {
			return nil, err
		}
		if err := tx.Delete(makeChunkOrdinalKey(documentID, ordinal)); err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// GetChunk retrieves a single chunk by ID.
func (s *Store) GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error) {
	var chunk *core.Chunk
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		chunk, err = readChunk(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// GetChunks retrieves multiple chunks by their IDs.
// Missing chunks are skipped, not errors.
func (s *Store) GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error) {
	chunks := make([]*core.Chunk, 0, len(ids))
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			chunk, err := readChunk(tx, id)
			if errors.Is(err, storage.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			chunks = append(chunks, chunk)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// GetDocumentChunks retrieves all chunks of a document in ordinal order.
func (s *Store) GetDocumentChunks(ctx context.Context, documentID core.ID) ([]*core.Chunk, error) {
	var chunks []*core.Chunk
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		ids, err := documentChunkIDs(tx, documentID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			chunk, err := readChunk(tx, id)
			if err != nil {
				return err
			}
			chunks = append(chunks, chunk)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// ForEachChunk calls fn for every stored chunk.
func (s *Store) ForEachChunk(ctx context.Context, fn func(chunk *core.Chunk) error) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := iter.Item().Value(func(val []byte) error {
				chunk, err := storage.UnmarshalChunk(val)
				if err != nil {
					return err
				}
				return fn(chunk)
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// CountChunks returns the number of stored chunks.
func (s *Store) CountChunks(ctx context.Context) (int, error) {
	return s.countPrefix(chunkRecordPrefix)
}
