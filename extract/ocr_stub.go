//go:build !ocr

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

	"github.com/poiesic/lexidex/core"
)

// OCRBackendName identifies the Tesseract backend in priority lists.
const OCRBackendName = "ocr"

// ErrOCRNotEnabled is returned when OCR extraction is attempted but OCR
// support was not compiled in. Rebuild with -tags ocr to enable it.
var ErrOCRNotEnabled = errors.New("OCR support not enabled; rebuild with -tags ocr")

// OCRBackend is the stub used when the "ocr" build tag is not set.
// It reports itself unavailable, so the pipeline skips it.
type OCRBackend struct{}

// NewOCRBackend returns a stub OCR backend.
func NewOCRBackend(languages string) *OCRBackend {
	return &OCRBackend{}
}

// Name returns "ocr".
func (b *OCRBackend) Name() string { return OCRBackendName }

// Available always reports false for the stub.
func (b *OCRBackend) Available() bool { return false }

// Extract returns ErrOCRNotEnabled.
func (b *OCRBackend) Extract(ctx context.Context, page *core.Page) (*core.ExtractionResult, error) {
	return nil, ErrOCRNotEnabled
}

// Close is a no-op for the stub backend.
func (b *OCRBackend) Close() error { return nil }
