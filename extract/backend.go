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
	"fmt"
	"strings"

	"github.com/poiesic/lexidex/core"
)

// Backend extracts text from one rendered page.
// Implementations must be safe for concurrent Extract calls.
type Backend interface {
	// Name identifies the backend in configuration and failure records.
	Name() string

	// Available reports whether the backend can serve requests right now.
	// Unavailable backends are skipped by the pipeline, not treated as
	// failures.
	Available() bool

	// Extract returns the recognized text of the page together with a
	// confidence score in [0, 1]. An error means this attempt failed;
	// the pipeline records it and falls through to the next backend.
	Extract(ctx context.Context, page *core.Page) (*core.ExtractionResult, error)
}

// Registry holds the known backends keyed by name.
type Registry struct {
	backends map[string]Backend
}

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return &Registry{backends: make(map[string]Backend)}
}

// Register adds a backend under its own name. Registering a second
// backend with the same name replaces the first.
func (r *Registry) Register(backend Backend) {
	r.backends[backend.Name()] = backend
}

// Get returns the backend registered under name, or nil.
func (r *Registry) Get(name string) Backend {
	return r.backends[name]
}

// FromNames resolves a comma-separated priority list ("vision,ocr") into
// an ordered backend chain. Unknown names are an error: a silently
// shrunken chain would change fallback behavior without warning.
func (r *Registry) FromNames(names string) ([]Backend, error) {
	var chain []Backend
	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		backend := r.backends[name]
		if backend == nil {
			return nil, fmt.Errorf("unknown extraction backend %q", name)
		}
		chain = append(chain, backend)
	}
	if len(chain) == 0 {
		return nil, fmt.Errorf("no extraction backends in %q", names)
	}
	return chain, nil
}
