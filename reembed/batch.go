package reembed

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/lexidex/ai"
	"github.com/poiesic/lexidex/core"
	"github.com/poiesic/lexidex/index"
)

// EntryApplier applies refreshed index entries. *index.Hybrid satisfies
// this; it republishes its snapshot so searches never observe a mix of
// old and new vectors within one batch.
type EntryApplier interface {
	UpdateEntries(ctx context.Context, entries ...*core.IndexEntry) error
}

// BatchProcessor embeds batches of chunks and applies their refreshed
// index entries.
type BatchProcessor struct {
	applier        EntryApplier
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(applier EntryApplier, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		applier:        applier,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process embeds one batch of chunks and applies the resulting entries.
// The embedding call is retried with exponential backoff; term statistics
// are recomputed alongside so entries stay self-consistent.
func (bp *BatchProcessor) Process(ctx context.Context, chunks []*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	var vectors [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		vectors, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(vectors))
	}

	entries := make([]*core.IndexEntry, len(chunks))
	for i, chunk := range chunks {
		freqs, count := index.TermStats(chunk.Text)
		entries[i] = &core.IndexEntry{
			ChunkId:   chunk.Id,
			Vector:    vectors[i],
			TermFreqs: freqs,
			TermCount: count,
		}
	}

	if err := bp.applier.UpdateEntries(ctx, entries...); err != nil {
		return fmt.Errorf("failed to apply index entries: %w", err)
	}
	return nil
}
