package badger

import (
	"context"
	"errors"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/lexidex/core"
	"github.com/poiesic/lexidex/storage"
)

// putDocument writes a document record inside tx.
func putDocument(tx *badger.Txn, document *core.Document) error {
	return tx.Set(makeDocumentKey(document.Id), storage.MarshalDocument(document))
}

// readDocument reads a document record inside tx.
// Returns storage.ErrNotFound if the record doesn't exist.
func readDocument(tx *badger.Txn, id core.ID) (*core.Document, error) {
	item, err := tx.Get(makeDocumentKey(id))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	var document *core.Document
	err = item.Value(func(val []byte) error {
		var err error
		document, err = storage.UnmarshalDocument(val)
		return err
	})
	return document, err
}

// PutDocument stores a document record, replacing any existing record.
func (s *Store) PutDocument(ctx context.Context, document *core.Document) error {
	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := putDocument(tx, document); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetDocument retrieves a document record by ID.
func (s *Store) GetDocument(ctx context.Context, id core.ID) (*core.Document, error) {
	var document *core.Document
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		document, err = readDocument(tx, id)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return document, nil
}

// ListDocuments retrieves all document records, ordered by ID.
func (s *Store) ListDocuments(ctx context.Context) ([]*core.Document, error) {
	var documents []*core.Document
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				document, err := storage.UnmarshalDocument(val)
				if err != nil {
					return err
				}
				documents = append(documents, document)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Keys sort as decimal strings, not numerically; order by ID here.
	slices.SortFunc(documents, func(a, b *core.Document) int {
		switch {
		case a.Id < b.Id:
			return -1
		case a.Id > b.Id:
			return 1
		default:
			return 0
		}
	})
	return documents, nil
}

// CountDocuments returns the number of stored documents.
func (s *Store) CountDocuments(ctx context.Context) (int, error) {
	return s.countPrefix(documentRecordPrefix)
}
