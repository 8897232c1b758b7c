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


// Package render rasterizes paginated source documents into fixed-DPI
// grayscale bitmaps for the extraction pipeline.
//
// Two paginated layouts are supported: a directory of per-page scan
// images (the shape scanning pipelines emit), and a single image file as
// a one-page document. PNG, JPEG and TIFF page images are recognized.
// Further layouts plug in behind the Source interface; the contract is
// page-addressable byte access.
package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/poiesic/lexidex/core"
)

var (
	// ErrUnsupportedFormat indicates the input is not a recognized
	// paginated document format.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrPageOutOfRange indicates a page number outside [1, PageCount].
	ErrPageOutOfRange = errors.New("page number out of range")

	// ErrNoPages indicates a document directory with no page images.
	ErrNoPages = errors.New("document has no pages")
)

// DefaultDPI is the fixed rasterization density for extraction input.
const DefaultDPI = 300

// Source supplies rasterized pages of one document.
// Implementations are safe for concurrent Render calls on distinct pages.
type Source interface {
	// PageCount returns the number of pages.
	PageCount() int

	// Render rasterizes the given 1-based page into a grayscale bitmap at
	// the source's fixed DPI.
	Render(ctx context.Context, pageNumber int) (*core.Page, error)

	// Fingerprint is the content-derived identity of the whole document.
	// Identical source bytes always produce an identical fingerprint.
	Fingerprint() core.ID

	// Close releases underlying resources.
	Close() error
}

// Option configures Open.
type Option func(*openOptions)

type openOptions struct {
	dpi int
}

// WithDPI overrides the target rasterization density. Default is DefaultDPI.
func WithDPI(dpi int) Option {
	return func(o *openOptions) {
		if dpi > 0 {
			o.dpi = dpi
		}
	}
}

// pageExtensions are the recognized page image suffixes, lowercased.
var pageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
}

// Open opens a paginated document at path. A directory is treated as an
// ordered set of page scans (sorted by file name); a single recognized
// image file is a one-page document. Unreadable or unrecognized input
// fails immediately: invalid documents are the caller's problem, never
// silently skipped.
func Open(path string, opts ...Option) (Source, error) {
	options := &openOptions{dpi: DefaultDPI}
	for _, opt := range opts {
		opt(options)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}

	if info.IsDir() {
		return openDirectory(path, options.dpi)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !pageExtensions[ext] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	return openPages(path, []string{path}, options.dpi)
}

func openDirectory(path string, dpi int) (Source, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read document directory: %w", err)
	}

	var pages []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if pageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			pages = append(pages, filepath.Join(path, entry.Name()))
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPages, path)
	}
	sort.Strings(pages)

	return openPages(path, pages, dpi)
}
