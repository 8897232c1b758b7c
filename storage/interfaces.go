package storage

import (
	"context"

	"github.com/poiesic/lexidex/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// DocumentRepository provides operations for managing document records.
type DocumentRepository interface {
	Repository

	// PutDocument stores a document record, replacing any existing record
	// with the same ID.
	PutDocument(ctx context.Context, document *core.Document) error

	// GetDocument retrieves a document record by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// ListDocuments retrieves all document records, ordered by ID.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// CountDocuments returns the number of stored documents.
	CountDocuments(ctx context.Context) (int, error)
}

// ChunkRepository provides operations for managing chunk records.
type ChunkRepository interface {
	Repository

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunks retrieves multiple chunks by their IDs.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)

	// GetDocumentChunks retrieves all chunks of a document in ordinal order.
	GetDocumentChunks(ctx context.Context, documentID core.ID) ([]*core.Chunk, error)

	// ForEachChunk calls fn for every stored chunk. Iteration stops on the
	// first error, which is returned.
	ForEachChunk(ctx context.Context, fn func(chunk *core.Chunk) error) error

	// CountChunks returns the number of stored chunks.
	CountChunks(ctx context.Context) (int, error)
}

// IndexRepository provides operations for managing per-chunk index entries
// (embedding vector plus term statistics).
type IndexRepository interface {
	Repository

	// PutEntries stores index entries, replacing existing ones.
	PutEntries(ctx context.Context, entries ...*core.IndexEntry) error

	// GetEntry retrieves the index entry for a chunk.
	// Returns ErrNotFound if no entry exists.
	GetEntry(ctx context.Context, chunkID core.ID) (*core.IndexEntry, error)

	// ForEachEntry calls fn for every stored index entry. Iteration stops
	// on the first error, which is returned.
	ForEachEntry(ctx context.Context, fn func(entry *core.IndexEntry) error) error

	// CountEntries returns the number of stored index entries.
	CountEntries(ctx context.Context) (int, error)
}

// Store aggregates the repositories over one backend and adds
// document-granular atomic writes. Go permits the overlapping embedded
// Repository methods; all of them resolve to the same backend.
type Store interface {
	DocumentRepository
	ChunkRepository
	IndexRepository

	// AddDocument persists the document record, its chunks and their index
	// entries in a single transaction. Either everything becomes visible
	// or nothing does.
	AddDocument(ctx context.Context, document *core.Document, chunks []*core.Chunk, entries []*core.IndexEntry) error

	// RemoveDocument deletes the document record, all of its chunks and
	// all of their index entries in a single transaction.
	// Returns ErrNotFound if the document doesn't exist.
	RemoveDocument(ctx context.Context, documentID core.ID) error

	// Size reports the on-disk footprint of the store in bytes.
	// In-memory stores report 0.
	Size() int64
}
