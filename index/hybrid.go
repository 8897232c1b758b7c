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


package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/poiesic/lexidex/ai"
	"github.com/poiesic/lexidex/core"
	"github.com/poiesic/lexidex/normalize"
	"github.com/poiesic/lexidex/storage"
)

// Hybrid is the dense+sparse retrieval index. Writers are serialized by
// a mutex and publish immutable snapshots; readers load the current
// snapshot atomically and never block.
type Hybrid struct {
	store         storage.Store
	embedder      ai.Embedder
	denseWeight   float64
	sparseWeight  float64
	verbatimBoost float64
	overfetch     int
	monitor       SearchMonitor
	logger        *slog.Logger

	mu      sync.Mutex // guards chunks, entries and snapshot rebuilds
	chunks  map[core.ID]*core.Chunk
	entries map[core.ID]*core.IndexEntry
	snap    atomic.Pointer[snapshot]
}

// Option configures a Hybrid index.
type Option func(*Hybrid) error

// WithWeights sets the dense and sparse fusion weights.
// Defaults are 0.6 dense, 0.4 sparse.
func WithWeights(dense, sparse float64) Option {
	return func(h *Hybrid) error {
		if dense < 0 || sparse < 0 || dense+sparse == 0 {
			return errors.New("fusion weights must be non-negative and not both zero")
		}
		h.denseWeight = dense
		h.sparseWeight = sparse
		return nil
	}
}

// WithVerbatimBoost sets the score bonus for chunks containing every
// query term. Default is 0.3.
func WithVerbatimBoost(boost float64) Option {
	return func(h *Hybrid) error {
		if boost < 0 {
			boost = 0
		}
		h.verbatimBoost = boost
		return nil
	}
}

// WithOverfetch sets the per-signal candidate multiplier: each signal
// contributes overfetch×k candidates before fusion. Default is 2.
func WithOverfetch(factor int) Option {
	return func(h *Hybrid) error {
		if factor < 1 {
			return errors.New("overfetch factor must be positive")
		}
		h.overfetch = factor
		return nil
	}
}

// WithMonitor sets the search monitor. Default is a no-op.
func WithMonitor(monitor SearchMonitor) Option {
	return func(h *Hybrid) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		h.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hybrid) error {
		if logger == nil {
			logger = slog.Default()
		}
		h.logger = logger
		return nil
	}
}

// Open loads the index from the store, reconciles it against the chunk
// records, and publishes the first snapshot. Stale index entries whose
// chunk is gone are dropped; chunks missing their entry are re-indexed
// per document. Reconciliation problems are logged, never fatal.
func Open(ctx context.Context, store storage.Store, embedder ai.Embedder, opts ...Option) (*Hybrid, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	h := &Hybrid{
		store:         store,
		embedder:      embedder,
		denseWeight:   0.6,
		sparseWeight:  0.4,
		verbatimBoost: 0.3,
		overfetch:     2,
		monitor:       &noopMonitor{},
		logger:        slog.Default(),
		chunks:        make(map[core.ID]*core.Chunk),
		entries:       make(map[core.ID]*core.IndexEntry),
	}
	for _, opt := range opts {
		if err := opt(h); err != nil {
			return nil, err
		}
	}

	err := store.ForEachChunk(ctx, func(chunk *core.Chunk) error {
		h.chunks[chunk.Id] = chunk
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	err = store.ForEachEntry(ctx, func(entry *core.IndexEntry) error {
		h.entries[entry.ChunkId] = entry
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load index entries: %w", err)
	}

	h.reconcile(ctx)
	h.publish()
	return h, nil
}

// reconcile repairs drift between chunk records and index entries.
func (h *Hybrid) reconcile(ctx context.Context) {
	for id := range h.entries {
		if _, ok := h.chunks[id]; !ok {
			h.logger.Warn("dropping stale index entry", "chunk", id)
			delete(h.entries, id)
		}
	}

	// Group unindexed chunks by document and rebuild their entries.
	missing := make(map[core.ID][]*core.Chunk)
	for id, chunk := range h.chunks {
		if _, ok := h.entries[id]; !ok {
			missing[chunk.DocumentId] = append(missing[chunk.DocumentId], chunk)
		}
	}
	for documentID, chunks := range missing {
		h.logger.Warn("rebuilding index entries for document",
			"document", documentID, "chunks", len(chunks))
		entries, err := h.buildEntries(ctx, chunks)
		if err != nil {
			h.logger.Error("failed to rebuild index entries; document stays unindexed",
				"document", documentID, "err", err)
			continue
		}
		if err := h.store.PutEntries(ctx, entries...); err != nil {
			h.logger.Error("failed to persist rebuilt index entries",
				"document", documentID, "err", err)
			continue
		}
		for _, entry := range entries {
			h.entries[entry.ChunkId] = entry
		}
	}
}

// buildEntries embeds the chunks in one batch and assembles their index
// entries.
func (h *Hybrid) buildEntries(ctx context.Context, chunks []*core.Chunk) ([]*core.IndexEntry, error) {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	vectors, err := h.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	entries := make([]*core.IndexEntry, len(chunks))
	for i, chunk := range chunks {
		freqs, count := TermStats(chunk.Text)
		entries[i] = &core.IndexEntry{
			ChunkId:   chunk.Id,
			Vector:    vectors[i],
			TermFreqs: freqs,
			TermCount: count,
		}
	}
	return entries, nil
}

// publish rebuilds the snapshot from the mirrors and swaps it in.
// Callers must hold mu, except during Open before the index is shared.
func (h *Hybrid) publish() {
	h.snap.Store(buildSnapshot(h.chunks, h.entries))
}

// Add indexes a document: embeds its chunks, persists the document
// record, chunks and index entries in one transaction, then publishes a
// new snapshot. Either the whole document becomes searchable or none of
// it does.
func (h *Hybrid) Add(ctx context.Context, document *core.Document, chunks []*core.Chunk) error {
	if err := core.ValidateDocument(document); err != nil {
		return err
	}
	for _, chunk := range chunks {
		if err := core.ValidateChunk(chunk); err != nil {
			return err
		}
		if chunk.DocumentId != document.Id {
			return fmt.Errorf("%w: chunk %d belongs to another document", core.ErrInvalidChunk, chunk.Ordinal)
		}
	}

	entries, err := h.buildEntries(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embed document %d: %w", document.Id, err)
	}

	if err := h.store.AddDocument(ctx, document, chunks, entries); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for i, chunk := range chunks {
		h.chunks[chunk.Id] = chunk
		h.entries[chunk.Id] = entries[i]
	}
	h.publish()

	h.logger.Info("indexed document", "document", document.Id, "chunks", len(chunks))
	return nil
}

// Remove deletes a document's chunks and index entries in one
// transaction and publishes a snapshot without them.
// Returns storage.ErrNotFound if the document doesn't exist.
func (h *Hybrid) Remove(ctx context.Context, documentID core.ID) error {
	if err := h.store.RemoveDocument(ctx, documentID); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, chunk := range h.chunks {
		if chunk.DocumentId == documentID {
			delete(h.chunks, id)
			delete(h.entries, id)
		}
	}
	h.publish()

	h.logger.Info("removed document from index", "document", documentID)
	return nil
}

// UpdateEntries replaces index entries (after re-embedding) and
// publishes a new snapshot. Entries for unknown chunks are rejected.
func (h *Hybrid) UpdateEntries(ctx context.Context, entries ...*core.IndexEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, entry := range entries {
		if _, ok := h.chunks[entry.ChunkId]; !ok {
			return fmt.Errorf("%w: no chunk %d", storage.ErrNotFound, entry.ChunkId)
		}
	}
	if err := h.store.PutEntries(ctx, entries...); err != nil {
		return err
	}
	for _, entry := range entries {
		h.entries[entry.ChunkId] = entry
	}
	h.publish()
	return nil
}

// Search runs the hybrid query and returns the top limit chunks by fused
// score. Mixed-script queries are split per script and merged by maximum
// score. Results order deterministically: score descending, chunk ID
// ascending on ties.
func (h *Hybrid) Search(ctx context.Context, query string, limit int) ([]*core.ScoredChunk, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	snap := h.snap.Load()
	if snap == nil || len(snap.chunks) == 0 {
		return []*core.ScoredChunk{}, nil
	}

	h.monitor.Start(query)

	cleaned := normalize.Normalize(query)
	subQueries := h.splitQuery(cleaned)
	if len(subQueries) == 0 {
		return []*core.ScoredChunk{}, nil
	}
	h.monitor.AfterSubQuerySplit(subQueries)

	vectors, err := h.embedder.EmbedTexts(ctx, subQueries)
	if err != nil {
		h.logger.Error("query embedding failed", "err", err)
		return nil, unavailable("dense", err)
	}
	if len(vectors) != len(subQueries) {
		return nil, unavailable("dense", fmt.Errorf("%d vectors for %d sub-queries", len(vectors), len(subQueries)))
	}

	fetch := h.overfetch * limit
	best := make(map[core.ID]*core.ScoredChunk)
	for i, sub := range subQueries {
		dense := snap.denseTopK(vectors[i], fetch)
		h.monitor.AfterDenseSearch(sub, idsOf(dense))
		sparse := snap.sparseTopK(sub, fetch)
		h.monitor.AfterSparseSearch(sub, idsOf(sparse))

		fused := h.fuse(snap, sub, dense, sparse)
		h.monitor.AfterFusion(sub, len(fused))

		// Max-score merge across sub-queries.
		for _, candidate := range fused {
			current, ok := best[candidate.Chunk.Id]
			if !ok || candidate.Score > current.Score {
				best[candidate.Chunk.Id] = candidate
			}
		}
	}

	results := make([]*core.ScoredChunk, 0, len(best))
	for _, candidate := range best {
		results = append(results, candidate)
	}
	sort.Slice(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return results[a].Chunk.Id < results[b].Chunk.Id
	})
	if len(results) > limit {
		results = results[:limit]
	}

	h.monitor.Finish(results)
	return results, nil
}

// splitQuery decomposes a mixed-script query into per-script sub-queries.
func (h *Hybrid) splitQuery(query string) []string {
	if !normalize.IsMixedScript(query) {
		if query == "" {
			return nil
		}
		return []string{query}
	}
	var subs []string
	for _, segment := range normalize.SplitByScript(query) {
		if segment.Text != "" {
			subs = append(subs, segment.Text)
		}
	}
	return subs
}

// fuse combines dense and sparse candidates for one sub-query: missing
// signals contribute 0, then the verbatim boost rewards chunks holding
// every query term.
func (h *Hybrid) fuse(snap *snapshot, subQuery string, dense, sparse []scoredID) []*core.ScoredChunk {
	denseScores := make(map[core.ID]float64, len(dense))
	for _, c := range dense {
		denseScores[c.id] = c.score
	}
	sparseScores := make(map[core.ID]float64, len(sparse))
	for _, c := range sparse {
		sparseScores[c.id] = c.score
	}

	seen := make(map[core.ID]bool, len(dense)+len(sparse))
	var fused []*core.ScoredChunk
	add := func(id core.ID) {
		if seen[id] {
			return
		}
		seen[id] = true
		chunk, ok := snap.chunks[id]
		if !ok {
			return
		}

		d := denseScores[id]
		s := sparseScores[id]
		score := d*h.denseWeight + s*h.sparseWeight
		if containsAllQueryWords(chunk.Text, subQuery) {
			score += h.verbatimBoost
			h.monitor.VerbatimHit(chunk)
		}
		fused = append(fused, &core.ScoredChunk{
			Chunk:       chunk,
			DenseScore:  d,
			SparseScore: s,
			Score:       score,
		})
	}
	for _, c := range dense {
		add(c.id)
	}
	for _, c := range sparse {
		add(c.id)
	}
	return fused
}

func idsOf(candidates []scoredID) []uint64 {
	ids := make([]uint64, len(candidates))
	for i, c := range candidates {
		ids[i] = uint64(c.id)
	}
	return ids
}
