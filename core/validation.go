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


package core

import "fmt"

// MinChunkChars is the minimum character count for a persisted chunk.
// Shorter fragments are page-break artifacts, not retrieval units.
const MinChunkChars = 40

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Id must be non-zero (content-derived)
//   - SourcePath must not be empty
//   - PageCount must be positive
//   - Every PageSummary number must be 1-based and within PageCount
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Id == 0 {
		return fmt.Errorf("%w: zero id", ErrInvalidDocument)
	}

	if doc.SourcePath == "" {
		return fmt.Errorf("%w: empty source path", ErrInvalidDocument)
	}

	if doc.PageCount < 1 {
		return fmt.Errorf("%w: page count %d", ErrInvalidDocument, doc.PageCount)
	}

	for _, page := range doc.Pages {
		if page.Number < 1 || page.Number > doc.PageCount {
			return fmt.Errorf("%w: %w: page %d of %d", ErrInvalidDocument, ErrInvalidPageNumber, page.Number, doc.PageCount)
		}
		if err := ValidateConfidence(page.Confidence); err != nil {
			return fmt.Errorf("%w: page %d: %w", ErrInvalidDocument, page.Number, err)
		}
	}

	return nil
}

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - Text must not be empty
//   - CharCount must be at least MinChunkChars and match the text
//   - Ordinal must not be negative
//   - Id must equal ChunkID(DocumentId, Ordinal)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}

	if chunk.Ordinal < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrInvalidOrdinal)
	}

	if chunk.CharCount < MinChunkChars {
		return fmt.Errorf("%w: %w: %d < %d", ErrInvalidChunk, ErrChunkTooShort, chunk.CharCount, MinChunkChars)
	}

	if chunk.Id != ChunkID(chunk.DocumentId, chunk.Ordinal) {
		return fmt.Errorf("%w: id does not derive from (document, ordinal)", ErrInvalidChunk)
	}

	return nil
}

// ValidateConfidence checks that a confidence value is within [0,1].
func ValidateConfidence(confidence float64) error {
	if confidence < 0 || confidence > 1 {
		return fmt.Errorf("%w: %f", ErrInvalidConfidence, confidence)
	}
	return nil
}

// ValidatePage validates a transient Page before extraction.
func ValidatePage(page *Page) error {
	if page == nil {
		return fmt.Errorf("%w: page is nil", ErrInvalidPage)
	}
	if page.Number < 1 {
		return fmt.Errorf("%w: %w", ErrInvalidPage, ErrInvalidPageNumber)
	}
	if page.Bitmap == nil || page.Bitmap.Bounds().Empty() {
		return fmt.Errorf("%w: empty bitmap", ErrInvalidPage)
	}
	return nil
}
