//go:build ocr

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
	"sync"

	"github.com/otiai10/gosseract/v2"

	"github.com/poiesic/lexidex/core"
)

// OCRBackendName identifies the Tesseract backend in priority lists.
const OCRBackendName = "ocr"

// OCRBackend extracts page text with Tesseract via gosseract. It is
// compiled in with the "ocr" build tag and requires Tesseract installed
// on the system (apt-get install tesseract-ocr, brew install tesseract).
type OCRBackend struct {
	languages string

	mu     sync.Mutex
	client *gosseract.Client
	broken bool
}

// NewOCRBackend creates a Tesseract backend recognizing the given
// languages ("+"-separated, e.g. "eng+hin+ara"). Empty means "eng".
// The underlying client is created lazily on first use.
func NewOCRBackend(languages string) *OCRBackend {
	if languages == "" {
		languages = "eng"
	}
	return &OCRBackend{languages: languages}
}

// Name returns "ocr".
func (b *OCRBackend) Name() string { return OCRBackendName }

// Available reports whether the Tesseract client can be used.
func (b *OCRBackend) Available() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.broken
}

// Extract recognizes the page text and scores it with ScoreText;
// Tesseract's own confidence reporting is not exposed by the bytes API.
// The client is not safe for concurrent use, so extraction serializes
// on an internal mutex.
func (b *OCRBackend) Extract(ctx context.Context, page *core.Page) (*core.ExtractionResult, error) {
	data, err := encodePage(page)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client == nil {
		client := gosseract.NewClient()
		if err := client.SetLanguage(b.languages); err != nil {
			client.Close()
			b.broken = true
			return nil, fmt.Errorf("set OCR language %q: %w", b.languages, err)
		}
		b.client = client
	}

	if err := b.client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("set OCR image: %w", err)
	}
	text, err := b.client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR page %d: %w", page.Number, err)
	}
	text = strings.TrimSpace(text)

	return &core.ExtractionResult{
		Extractor:  OCRBackendName,
		Text:       text,
		Confidence: ScoreText(text),
		Metadata:   map[string]string{"languages": b.languages},
	}, nil
}

// Close releases the Tesseract client.
func (b *OCRBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client != nil {
		err := b.client.Close()
		b.client = nil
		return err
	}
	return nil
}
