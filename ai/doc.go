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


// Package ai provides abstractions for the AI services used in Lexidex.
//
// Two interfaces carry all model access: Embedder turns chunk text into
// dense vectors for semantic search, and VisionModel transcribes page
// images when conventional OCR falls below the confidence floor. Provider
// aggregates both behind one lifecycle so callers share configuration and
// shutdown.
//
// Public constructors (openai.NewProvider, openai.NewEmbedder, ...) return
// interface types to enforce abstraction. Test utility constructors in
// ai/mock return concrete types so tests can inject behavior and assert
// call counts.
//
//	config := ai.DefaultConfig()
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "anticipatory bail")
//	text, err := provider.Vision().TranscribePage(ctx, pageBytes, "image/png")
package ai
