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


package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/poiesic/lexidex/chunk"
	"github.com/poiesic/lexidex/core"
	"github.com/poiesic/lexidex/extract"
	"github.com/poiesic/lexidex/index"
	"github.com/poiesic/lexidex/normalize"
	"github.com/poiesic/lexidex/render"
	"github.com/poiesic/lexidex/storage"
)

// Ingestor drives documents through rasterization, extraction, chunking
// and indexing.
type Ingestor struct {
	store     storage.Store
	extractor *extract.Pipeline
	index     *index.Hybrid
	chunker   *chunk.Chunker
	dpi       int
	logger    *slog.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor) error

// WithChunker sets the chunker. Default is chunk.New() with its defaults.
func WithChunker(chunker *chunk.Chunker) Option {
	return func(i *Ingestor) error {
		if chunker == nil {
			return errors.New("chunker cannot be nil")
		}
		i.chunker = chunker
		return nil
	}
}

// WithDPI sets the rasterization density for sources that honor it.
// Default is render.DefaultDPI.
func WithDPI(dpi int) Option {
	return func(i *Ingestor) error {
		if dpi < 1 {
			return errors.New("dpi must be positive")
		}
		i.dpi = dpi
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Ingestor) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger
		return nil
	}
}

// New creates an Ingestor over the given store, extraction pipeline and
// index.
func New(store storage.Store, extractor *extract.Pipeline, idx *index.Hybrid, opts ...Option) (*Ingestor, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if idx == nil {
		return nil, ErrIndexRequired
	}

	chunker, err := chunk.New()
	if err != nil {
		return nil, err
	}

	i := &Ingestor{
		store:     store,
		extractor: extractor,
		index:     idx,
		chunker:   chunker,
		dpi:       render.DefaultDPI,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}
	return i, nil
}

// Ingest processes the document at path end to end and returns its ID.
// The document becomes searchable atomically: either every chunk is
// committed and indexed, or nothing is persisted.
//
// Re-ingesting content already in the store is a no-op that returns the
// existing document's ID.
func (i *Ingestor) Ingest(ctx context.Context, path string) (core.ID, error) {
	source, err := render.Open(path, render.WithDPI(i.dpi))
	if err != nil {
		return 0, err
	}
	defer source.Close()

	documentID := source.Fingerprint()
	if _, err := i.store.GetDocument(ctx, documentID); err == nil {
		i.logger.Info("document already ingested", "document", documentID, "path", path)
		return documentID, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return 0, err
	}

	pageCount := source.PageCount()
	pages := make([]*core.Page, pageCount)
	for n := 1; n <= pageCount; n++ {
		page, err := source.Render(ctx, n)
		if err != nil {
			return 0, fmt.Errorf("render page %d: %w", n, err)
		}
		page.DocumentId = documentID
		pages[n-1] = page
	}

	results, err := i.extractor.ExtractBatch(ctx, pages)
	if err != nil {
		return 0, err
	}

	texts := make([]string, len(results))
	summaries := make([]core.PageSummary, len(results))
	for idx, pr := range results {
		if pr.Result.Empty() {
			// The page stays visible in reading order; its failure is
			// attributed in the document record, never silently dropped.
			texts[idx] = fmt.Sprintf("[[page %d failed]]", pr.PageNumber)
			i.logger.Warn("page yielded no text",
				"document", documentID, "page", pr.PageNumber,
				"failures", len(pr.Result.Failures))
		} else {
			texts[idx] = pr.Result.Text
		}
		summaries[idx] = core.PageSummary{
			Number:     pr.PageNumber,
			Extractor:  pr.Result.Extractor,
			Confidence: pr.Result.Confidence,
			Failures:   pr.Result.Failures,
		}
	}

	normalized := normalize.Normalize(strings.Join(texts, "\n\n"))
	chunks, err := i.chunker.Split(documentID, normalized)
	if err != nil {
		return 0, fmt.Errorf("chunk document %d: %w", documentID, err)
	}
	if len(chunks) == 0 {
		i.logger.Warn("document produced no retrievable chunks",
			"document", documentID, "path", path)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	document := &core.Document{
		Id:         documentID,
		SourcePath: absPath,
		PageCount:  pageCount,
		CreatedAt:  time.Now().UTC(),
		Pages:      summaries,
	}

	if err := i.index.Add(ctx, document, chunks); err != nil {
		return 0, err
	}

	i.logger.Info("ingested document",
		"document", documentID, "path", path,
		"pages", pageCount, "chunks", len(chunks))
	return documentID, nil
}

// Remove deletes the document and everything derived from it.
func (i *Ingestor) Remove(ctx context.Context, documentID core.ID) error {
	return i.index.Remove(ctx, documentID)
}

// DocumentText reassembles the document's normalized text from its
// chunks, removing the overlap seeded between consecutive chunks.
func (i *Ingestor) DocumentText(ctx context.Context, documentID core.ID) (string, error) {
	if _, err := i.store.GetDocument(ctx, documentID); err != nil {
		return "", err
	}
	chunks, err := i.store.GetDocumentChunks(ctx, documentID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, c := range chunks {
		text := c.Text
		if b.Len() > 0 {
			text = stripOverlap(b.String(), text)
			if text == "" {
				continue
			}
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// stripOverlap drops the leading paragraphs of current that were seeded
// from the tail of the text assembled so far. Paragraphs are only dropped
// on a whole-paragraph suffix match, so genuine repetition inside a
// paragraph is preserved.
func stripOverlap(previous, current string) string {
	paragraphs := strings.Split(current, "\n\n")
	for len(paragraphs) > 0 {
		p := paragraphs[0]
		if previous != p && !strings.HasSuffix(previous, "\n\n"+p) {
			break
		}
		paragraphs = paragraphs[1:]
	}
	return strings.Join(paragraphs, "\n\n")
}

// Status reports corpus-level counters.
type Status struct {
	DocumentCount int
	ChunkCount    int
	IndexSize     int64 // on-disk bytes, 0 for in-memory stores
}

// Status returns document and chunk counts plus the store's size on disk.
func (i *Ingestor) Status(ctx context.Context) (*Status, error) {
	documents, err := i.store.CountDocuments(ctx)
	if err != nil {
		return nil, err
	}
	chunks, err := i.store.CountChunks(ctx)
	if err != nil {
		return nil, err
	}
	return &Status{
		DocumentCount: documents,
		ChunkCount:    chunks,
		IndexSize:     i.store.Size(),
	}, nil
}
