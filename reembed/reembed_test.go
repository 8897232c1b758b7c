package reembed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lexidex/ai/mock"
	"github.com/poiesic/lexidex/core"
	"github.com/poiesic/lexidex/index"
	"github.com/poiesic/lexidex/storage"
	"github.com/poiesic/lexidex/storage/badger"
)

func seedStore(t *testing.T, store storage.Store, chunkTexts ...string) []*core.Chunk {
	t.Helper()
	docID := core.IDFromContent("seed document")
	document := &core.Document{
		Id:         docID,
		SourcePath: "/data/seed",
		PageCount:  1,
		CreatedAt:  time.Now().UTC(),
	}
	var chunks []*core.Chunk
	var entries []*core.IndexEntry
	for i, text := range chunkTexts {
		chunk := &core.Chunk{
			Id:         core.ChunkID(docID, i),
			DocumentId: docID,
			Text:       text,
			Ordinal:    i,
			CharCount:  len(text),
			WordCount:  len(strings.Fields(text)),
		}
		chunks = append(chunks, chunk)
		freqs, count := index.TermStats(text)
		entries = append(entries, &core.IndexEntry{
			ChunkId:   chunk.Id,
			Vector:    []float32{1, 0, 0}, // stale model's vector
			TermFreqs: freqs,
			TermCount: count,
		})
	}
	require.NoError(t, store.AddDocument(context.Background(), document, chunks, entries))
	return chunks
}

func chunkTexts(n int) []string {
	texts := make([]string, n)
	for i := range texts {
		texts[i] = fmt.Sprintf("Section %d of the enactment sets out one more substantive provision for testing.", i+1)
	}
	return texts
}

func TestReembedder_Run(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	seedStore(t, store, chunkTexts(5)...)

	embedder := mock.NewMockEmbedder()
	idx, err := index.Open(ctx, store, embedder)
	require.NoError(t, err)

	var progress bytes.Buffer
	config := DefaultConfig()
	config.BatchSize = 2
	reembedder := NewReembedder(store, idx, embedder, config, &progress)

	require.NoError(t, reembedder.Run(ctx))
	assert.Contains(t, progress.String(), "Reembedding complete")

	// Every entry now carries the new model's 384-dim vector.
	count := 0
	err = store.ForEachEntry(ctx, func(entry *core.IndexEntry) error {
		count++
		assert.Len(t, entry.Vector, 384)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestReembedder_Run_Empty(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	embedder := mock.NewMockEmbedder()
	idx, err := index.Open(ctx, store, embedder)
	require.NoError(t, err)

	var progress bytes.Buffer
	reembedder := NewReembedder(store, idx, embedder, nil, &progress)

	require.NoError(t, reembedder.Run(ctx))
	assert.Contains(t, progress.String(), "No chunks found")
}

func TestBatchProcessor_RetriesThenSucceeds(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	chunks := seedStore(t, store, chunkTexts(2)...)

	embedder := mock.NewMockEmbedder()
	idx, err := index.Open(ctx, store, embedder)
	require.NoError(t, err)

	attempts := 0
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("transient embedding failure")
		}
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = []float32{0, 1, 0}
		}
		return vectors, nil
	}

	processor := NewBatchProcessor(idx, embedder, 3, time.Millisecond)
	require.NoError(t, processor.Process(ctx, chunks))
	assert.Equal(t, 3, attempts)
}

func TestBatchProcessor_ExhaustsRetries(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	chunks := seedStore(t, store, chunkTexts(1)...)

	embedder := mock.NewMockEmbedder()
	idx, err := index.Open(ctx, store, embedder)
	require.NoError(t, err)

	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding host down")
	}

	processor := NewBatchProcessor(idx, embedder, 2, time.Millisecond)
	err = processor.Process(ctx, chunks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestChunkIterator_Batches(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	seedStore(t, store, chunkTexts(7)...)

	iterator := NewChunkIterator(store, 3)
	var sizes []int
	err = iterator.ForEach(ctx, func(batch []*core.Chunk) error {
		sizes = append(sizes, len(batch))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 1}, sizes)
}

func TestChunkIterator_StopsOnError(t *testing.T) {
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	seedStore(t, store, chunkTexts(4)...)

	iterator := NewChunkIterator(store, 2)
	calls := 0
	err = iterator.ForEach(ctx, func(batch []*core.Chunk) error {
		calls++
		return errors.New("stop")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()

	attempts := 0
	err := RetryWithBackoff(ctx, func() error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	}, 3, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)

	err = RetryWithBackoff(ctx, func() error { return nil }, 0, time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err = RetryWithBackoff(cancelled, func() error { return nil }, 3, time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProgressTracker(t *testing.T) {
	var out bytes.Buffer
	tracker := NewProgressTracker(&out, 10, 5)
	tracker.Start()
	tracker.Update(5)
	tracker.Finish()

	assert.Contains(t, out.String(), "5/10")
	assert.Contains(t, out.String(), "10/10")
}
