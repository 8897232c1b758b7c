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
	"errors"
	"fmt"
)

var (
	// ErrStoreRequired is returned when a store is not provided.
	ErrStoreRequired = errors.New("store required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrIndexUnavailable indicates one of the index signals cannot serve
	// the query. The wrapped message names the signal (dense or sparse);
	// it is distinct from a query that simply matches nothing.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrInvalidLimit indicates a non-positive result limit.
	ErrInvalidLimit = errors.New("result limit must be positive")
)

// unavailable wraps err as an ErrIndexUnavailable naming the failed signal.
func unavailable(signal string, err error) error {
	return fmt.Errorf("%w: %s signal: %v", ErrIndexUnavailable, signal, err)
}
