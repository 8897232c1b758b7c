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


// Package extract runs page bitmaps through an ordered chain of text
// extraction backends with confidence-based fallback.
//
// Each backend implements the Backend interface and reports a confidence
// score with its output. The Pipeline tries backends in priority order and
// accepts the first result at or above the confidence floor; when every
// backend falls short, the best low-confidence result wins. Backend
// failures are recorded per page and never abort the document.
//
// Two production backends ship with the package: "ocr" wraps Tesseract
// via gosseract (compiled in with the "ocr" build tag, a stub otherwise)
// and "vision" sends page images to a multimodal model. The "mock"
// backend supports tests.
package extract
