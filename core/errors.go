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

import "errors"

// Domain validation errors
var (
	// ErrInvalidDocument indicates a Document failed validation.
	ErrInvalidDocument = errors.New("invalid document")

	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidPage indicates a Page failed validation.
	ErrInvalidPage = errors.New("invalid page")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrChunkTooShort indicates a chunk is below the minimum persisted size.
	ErrChunkTooShort = errors.New("chunk below minimum size")

	// ErrInvalidConfidence indicates a confidence value outside [0,1].
	ErrInvalidConfidence = errors.New("confidence must be in [0,1]")

	// ErrInvalidPageNumber indicates a page number below 1.
	ErrInvalidPageNumber = errors.New("page numbers are 1-based")

	// ErrInvalidOrdinal indicates a negative chunk ordinal.
	ErrInvalidOrdinal = errors.New("ordinal cannot be negative")
)
