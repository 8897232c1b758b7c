package badger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lexidex/core"
	"github.com/poiesic/lexidex/storage"
)

func newTestStore(t *testing.T) storage.Store {
	t.Helper()
	store, err := NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testDocument(content string, chunkTexts ...string) (*core.Document, []*core.Chunk, []*core.IndexEntry) {
	docID := core.IDFromContent(content)
	document := &core.Document{
		Id:         docID,
		SourcePath: "/data/" + content,
		PageCount:  1,
		CreatedAt:  time.Now().UTC().Truncate(time.Microsecond),
		Pages:      []core.PageSummary{{Number: 1, Extractor: "ocr", Confidence: 0.9}},
	}

	var chunks []*core.Chunk
	var entries []*core.IndexEntry
	for i, text := range chunkTexts {
		chunkID := core.ChunkID(docID, i)
		chunks = append(chunks, &core.Chunk{
			Id:         chunkID,
			DocumentId: docID,
			Text:       text,
			Ordinal:    i,
			CharCount:  len(text),
			WordCount:  i + 1,
			Scripts:    core.ScriptLatin,
		})
		entries = append(entries, &core.IndexEntry{
			ChunkId:   chunkID,
			Vector:    []float32{float32(i), 1, 0},
			TermFreqs: map[string]uint32{"bail": uint32(i + 1)},
			TermCount: uint32(i + 1),
		})
	}
	return document, chunks, entries
}

func TestStore_AddAndGetDocument(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	document, chunks, entries := testDocument("order.png", "first chunk", "second chunk", "third chunk")
	require.NoError(t, store.AddDocument(ctx, document, chunks, entries))

	got, err := store.GetDocument(ctx, document.Id)
	require.NoError(t, err)
	assert.Equal(t, document, got)

	gotChunks, err := store.GetDocumentChunks(ctx, document.Id)
	require.NoError(t, err)
	require.Len(t, gotChunks, 3)
	for i, chunk := range gotChunks {
		assert.Equal(t, i, chunk.Ordinal, "chunks must come back in reading order")
		assert.Equal(t, chunks[i], chunk)
	}

	entry, err := store.GetEntry(ctx, chunks[1].Id)
	require.NoError(t, err)
	assert.Equal(t, entries[1], entry)
}

func TestStore_GetDocument_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetDocument(context.Background(), core.ID(12345))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_RemoveDocument_Complete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	keep, keepChunks, keepEntries := testDocument("keep.png", "kept chunk one", "kept chunk two")
	drop, dropChunks, dropEntries := testDocument("drop.png", "dropped chunk one", "dropped chunk two")
	require.NoError(t, store.AddDocument(ctx, keep, keepChunks, keepEntries))
	require.NoError(t, store.AddDocument(ctx, drop, dropChunks, dropEntries))

	require.NoError(t, store.RemoveDocument(ctx, drop.Id))

	_, err := store.GetDocument(ctx, drop.Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	for _, chunk := range dropChunks {
		_, err := store.GetChunk(ctx, chunk.Id)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		_, err = store.GetEntry(ctx, chunk.Id)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	}

	// The surviving document is untouched.
	gotChunks, err := store.GetDocumentChunks(ctx, keep.Id)
	require.NoError(t, err)
	assert.Len(t, gotChunks, 2)

	chunkCount, err := store.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, chunkCount)
	entryCount, err := store.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, entryCount)
}

func TestStore_RemoveDocument_NotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.RemoveDocument(context.Background(), core.ID(999))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_ListDocuments_Ordered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		document, chunks, entries := testDocument(fmt.Sprintf("doc-%d.png", i), "a single chunk of text")
		require.NoError(t, store.AddDocument(ctx, document, chunks, entries))
	}

	documents, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	require.Len(t, documents, 5)
	for i := 1; i < len(documents); i++ {
		assert.Less(t, documents[i-1].Id, documents[i].Id)
	}

	count, err := store.CountDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestStore_GetChunks_SkipsMissing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	document, chunks, entries := testDocument("doc.png", "only chunk")
	require.NoError(t, store.AddDocument(ctx, document, chunks, entries))

	got, err := store.GetChunks(ctx, chunks[0].Id, core.ID(424242))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, chunks[0].Id, got[0].Id)
}

func TestStore_ForEachChunk(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	document, chunks, entries := testDocument("doc.png", "chunk a", "chunk b", "chunk c")
	require.NoError(t, store.AddDocument(ctx, document, chunks, entries))

	seen := map[core.ID]bool{}
	err := store.ForEachChunk(ctx, func(chunk *core.Chunk) error {
		seen[chunk.Id] = true
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 3)
}

func TestStore_ForEachEntry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	document, chunks, entries := testDocument("doc.png", "chunk a", "chunk b")
	require.NoError(t, store.AddDocument(ctx, document, chunks, entries))

	count := 0
	err := store.ForEachEntry(ctx, func(entry *core.IndexEntry) error {
		count++
		assert.NotEmpty(t, entry.Vector)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestStore_PutEntries_Replaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	document, chunks, entries := testDocument("doc.png", "a chunk")
	require.NoError(t, store.AddDocument(ctx, document, chunks, entries))

	updated := &core.IndexEntry{
		ChunkId:   chunks[0].Id,
		Vector:    []float32{9, 9, 9},
		TermFreqs: map[string]uint32{"rewritten": 1},
		TermCount: 1,
	}
	require.NoError(t, store.PutEntries(ctx, updated))

	got, err := store.GetEntry(ctx, chunks[0].Id)
	require.NoError(t, err)
	assert.Equal(t, updated, got)

	count, err := store.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_PutDocument_Overwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	document, chunks, entries := testDocument("doc.png", "a chunk")
	require.NoError(t, store.AddDocument(ctx, document, chunks, entries))

	document.Pages[0].Confidence = 0.42
	require.NoError(t, store.PutDocument(ctx, document))

	got, err := store.GetDocument(ctx, document.Id)
	require.NoError(t, err)
	assert.InDelta(t, 0.42, got.Pages[0].Confidence, 1e-9)
}
