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


// Package ingest orchestrates the document ingestion flow: rasterize the
// source, extract text page by page, normalize, chunk, and commit the
// document to the hybrid index.
//
// Ingestion is all-or-nothing at document granularity. Document identity
// is derived from source content, so re-ingesting an unchanged file is a
// no-op that reports the existing document ID.
package ingest
