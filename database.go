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


// Package lexidex assembles the legal-document retrieval system: badger
// storage, the extraction chain, the hybrid dense+sparse index, and the
// ingestion orchestrator, behind one Database facade.
package lexidex

import (
	"context"
	"io"
	"log/slog"

	"github.com/poiesic/lexidex/ai"
	"github.com/poiesic/lexidex/ai/openai"
	"github.com/poiesic/lexidex/core"
	"github.com/poiesic/lexidex/extract"
	"github.com/poiesic/lexidex/index"
	"github.com/poiesic/lexidex/ingest"
	"github.com/poiesic/lexidex/reembed"
	"github.com/poiesic/lexidex/storage"
	"github.com/poiesic/lexidex/storage/badger"
)

// DefaultBackendChain is the extraction fallback order: OCR first for
// clean scans, vision transcription when OCR is unavailable or reads
// below the confidence floor.
const DefaultBackendChain = extract.OCRBackendName + "," + extract.VisionBackendName

type Database struct {
	store     storage.Store
	provider  ai.Provider
	extractor *extract.Pipeline
	index     *index.Hybrid
	ingestor  *ingest.Ingestor
	logger    *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig      *ai.Config
	provider      ai.Provider
	backendChain  string
	ocrLanguages  string
	minConfidence float64
}

// WithAIConfig sets the AI service configuration.
// Default is ai.DefaultConfig().
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider injects an AI provider directly, bypassing the OpenAI
// client construction. Intended for tests with ai/mock.
func WithProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithBackendChain sets the comma-separated extraction fallback order.
// Default is DefaultBackendChain.
func WithBackendChain(chain string) DatabaseOption {
	return func(o *databaseOptions) {
		if chain != "" {
			o.backendChain = chain
		}
	}
}

// WithOCRLanguages sets the tesseract language list, e.g. "eng+hin".
// Default is "eng".
func WithOCRLanguages(languages string) DatabaseOption {
	return func(o *databaseOptions) {
		if languages != "" {
			o.ocrLanguages = languages
		}
	}
}

// WithMinConfidence sets the extraction confidence floor.
// Default is extract.DefaultMinConfidence.
func WithMinConfidence(confidence float64) DatabaseOption {
	return func(o *databaseOptions) {
		o.minConfidence = confidence
	}
}

// NewDatabase opens (or creates) a document database at filePath and
// wires up the full ingestion and retrieval stack.
func NewDatabase(ctx context.Context, filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig:      ai.DefaultConfig(),
		backendChain:  DefaultBackendChain,
		ocrLanguages:  "eng",
		minConfidence: extract.DefaultMinConfidence,
	}
	for _, opt := range opts {
		opt(options)
	}

	store, err := badger.NewStore(filePath)
	if err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	registry := extract.NewRegistry()
	registry.Register(extract.NewOCRBackend(options.ocrLanguages))
	registry.Register(extract.NewVisionBackend(provider.Vision()))
	backends, err := registry.FromNames(options.backendChain)
	if err != nil {
		provider.Close()
		store.Close()
		return nil, err
	}

	extractor, err := extract.NewPipeline(backends, extract.WithMinConfidence(options.minConfidence))
	if err != nil {
		provider.Close()
		store.Close()
		return nil, err
	}

	idx, err := index.Open(ctx, store, provider.Embedder())
	if err != nil {
		extractor.Release()
		provider.Close()
		store.Close()
		return nil, err
	}

	ingestor, err := ingest.New(store, extractor, idx)
	if err != nil {
		extractor.Release()
		provider.Close()
		store.Close()
		return nil, err
	}

	return &Database{
		store:     store,
		provider:  provider,
		extractor: extractor,
		index:     idx,
		ingestor:  ingestor,
		logger:    slog.Default(),
	}, nil
}

func (db *Database) Close() error {
	db.extractor.Release()

	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.store.Close(); err != nil {
		db.logger.Error("error closing storage", "err", err)
		return err
	}
	return nil
}

// Ingest processes the document at path and returns its ID. Re-ingesting
// unchanged content returns the existing ID without touching the store.
func (db *Database) Ingest(ctx context.Context, path string) (core.ID, error) {
	return db.ingestor.Ingest(ctx, path)
}

// Remove deletes the document, its chunks and its index entries.
func (db *Database) Remove(ctx context.Context, documentID core.ID) error {
	return db.ingestor.Remove(ctx, documentID)
}

// Search runs a hybrid query over the indexed corpus.
func (db *Database) Search(ctx context.Context, query string, limit int) ([]*core.ScoredChunk, error) {
	return db.index.Search(ctx, query, limit)
}

// DocumentText reassembles a document's normalized text from its chunks.
func (db *Database) DocumentText(ctx context.Context, documentID core.ID) (string, error) {
	return db.ingestor.DocumentText(ctx, documentID)
}

// Documents lists every ingested document, ordered by ID.
func (db *Database) Documents(ctx context.Context) ([]*core.Document, error) {
	return db.store.ListDocuments(ctx)
}

// Status reports corpus-level counters.
func (db *Database) Status(ctx context.Context) (*ingest.Status, error) {
	return db.ingestor.Status(ctx)
}

// NewReembedder builds a reembedder over this database's store and index.
func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	return reembed.NewReembedder(db.store, db.index, db.provider.Embedder(), config, progress)
}

// Store exposes the underlying repositories.
func (db *Database) Store() storage.Store {
	return db.store
}

// Index exposes the hybrid index.
func (db *Database) Index() *index.Hybrid {
	return db.index
}
