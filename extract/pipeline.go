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


package extract

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/lexidex/core"
)

// ErrNoBackends is returned when a pipeline is built without any backends.
var ErrNoBackends = errors.New("extraction pipeline requires at least one backend")

// DefaultMinConfidence is the confidence floor below which the pipeline
// keeps falling through to lower-priority backends.
const DefaultMinConfidence = 0.5

// Pipeline runs pages through an ordered backend chain with fallback.
type Pipeline struct {
	backends       []Backend
	minConfidence  float64
	backendTimeout time.Duration
	pool           *ants.Pool
	logger         *slog.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline) error

// WithMinConfidence sets the confidence floor for accepting a backend's
// result without falling through. Default is DefaultMinConfidence.
func WithMinConfidence(min float64) PipelineOption {
	return func(p *Pipeline) error {
		if min < 0 || min > 1 {
			return errors.New("min confidence must be in [0, 1]")
		}
		p.minConfidence = min
		return nil
	}
}

// WithBackendTimeout bounds a single backend attempt on a single page.
// A timed-out attempt is recorded as a failure and the pipeline falls
// through. Default is 2 minutes; zero disables the bound.
func WithBackendTimeout(timeout time.Duration) PipelineOption {
	return func(p *Pipeline) error {
		if timeout < 0 {
			timeout = 0
		}
		p.backendTimeout = timeout
		return nil
	}
}

// WithMaxWorkers sets the worker pool size for batch extraction.
// Default is 2×NumCPU, capped at 16.
func WithMaxWorkers(workers int) PipelineOption {
	return func(p *Pipeline) error {
		if workers < 1 {
			workers = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(workers)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithPipelineLogger sets a custom logger. Default is slog.Default().
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an extraction pipeline over the given backend
// chain, ordered from most to least preferred.
func NewPipeline(backends []Backend, opts ...PipelineOption) (*Pipeline, error) {
	if len(backends) == 0 {
		return nil, ErrNoBackends
	}

	workers := 2 * runtime.NumCPU()
	if workers < 1 {
		workers = 4
	}
	if workers > 16 {
		workers = 16
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		backends:       backends,
		minConfidence:  DefaultMinConfidence,
		backendTimeout: 2 * time.Minute,
		pool:           pool,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	return p, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Extract runs one page through the backend chain. The first non-empty
// result at or above the confidence floor wins outright; otherwise the
// highest-confidence non-empty result does. When every backend comes up
// empty the result is an empty extraction with confidence 0 carrying the
// accumulated failure records. Extract itself only errors when the
// caller's context is done.
func (p *Pipeline) Extract(ctx context.Context, page *core.Page) (*core.ExtractionResult, error) {
	var failures []core.ExtractionFailure
	var best *core.ExtractionResult

	for _, backend := range p.backends {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !backend.Available() {
			p.logger.Debug("skipping unavailable backend",
				"backend", backend.Name(), "page", page.Number)
			continue
		}

		result, err := p.attempt(ctx, backend, page)
		if err != nil {
			p.logger.Warn("extraction attempt failed",
				"backend", backend.Name(), "page", page.Number, "err", err)
			failures = append(failures, core.ExtractionFailure{
				Extractor: backend.Name(),
				Reason:    err.Error(),
			})
			continue
		}
		if result.Empty() {
			failures = append(failures, core.ExtractionFailure{
				Extractor: backend.Name(),
				Reason:    "no text recognized",
			})
			continue
		}

		if result.Confidence >= p.minConfidence {
			result.Failures = failures
			return result, nil
		}

		p.logger.Debug("low-confidence result, falling through",
			"backend", backend.Name(), "page", page.Number,
			"confidence", result.Confidence)
		if best == nil || result.Confidence > best.Confidence {
			best = result
		}
	}

	if best != nil {
		best.Failures = failures
		return best, nil
	}

	return &core.ExtractionResult{Failures: failures}, nil
}

// attempt runs one backend on one page under the per-attempt timeout.
func (p *Pipeline) attempt(ctx context.Context, backend Backend, page *core.Page) (*core.ExtractionResult, error) {
	if p.backendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.backendTimeout)
		defer cancel()
	}
	return backend.Extract(ctx, page)
}

// PageResult pairs an extraction result with its page number.
type PageResult struct {
	PageNumber int
	Result     *core.ExtractionResult
}

// ExtractBatch extracts all pages concurrently through the worker pool
// and returns results sorted by page number. A failed page yields an
// empty result with its failure records; it never aborts its siblings.
func (p *Pipeline) ExtractBatch(ctx context.Context, pages []*core.Page) ([]PageResult, error) {
	results := make([]PageResult, len(pages))

	var wg sync.WaitGroup
	for i, page := range pages {
		i, page := i, page
		wg.Add(1)
		if err := p.pool.Submit(func() {
			defer wg.Done()
			result, err := p.Extract(ctx, page)
			if err != nil {
				// Context cancellation; surface it as a page failure so
				// the batch still returns a complete, ordered slice.
				result = &core.ExtractionResult{Failures: []core.ExtractionFailure{
					{Extractor: "pipeline", Reason: err.Error()},
				}}
			}
			results[i] = PageResult{PageNumber: page.Number, Result: result}
		}); err != nil {
			wg.Done()
			return nil, err
		}
	}
	wg.Wait()

	sort.Slice(results, func(a, b int) bool {
		return results[a].PageNumber < results[b].PageNumber
	})
	return results, nil
}
