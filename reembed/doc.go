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


// Package reembed rebuilds the index entries of every stored chunk.
//
// It is the recovery path after an embedding model change: stored
// vectors from the old model are incomparable with queries embedded by
// the new one, so every chunk must be embedded again. Chunks stream out
// of the store in batches, each batch is embedded with retry and
// exponential backoff, and the refreshed entries are applied through the
// index so readers always see a consistent snapshot.
package reembed
