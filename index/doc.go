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


// Package index maintains the hybrid retrieval index over document chunks.
//
// Hybrid combines two signals: dense cosine similarity over embedding
// vectors and sparse TF-IDF similarity over term statistics. Both live in
// an immutable in-memory snapshot rebuilt on every write and published
// through an atomic pointer, so searches never block behind writers and
// never observe partial state. The durable copy of every chunk and index
// entry lives in the storage layer; a document's records are written in
// one transaction, so a crash can never leave a chunk without its entry.
//
// Mixed-script queries are decomposed into per-script sub-queries and the
// result sets merged by maximum score, so a Hindi-English query matches
// chunks written in either script.
package index
