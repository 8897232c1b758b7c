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

	"github.com/poiesic/lexidex/ai"
	"github.com/poiesic/lexidex/core"
)

// VisionBackendName identifies the multimodal backend in priority lists.
const VisionBackendName = "vision"

// VisionBackend transcribes pages with a multimodal model. It is the
// expensive backend: typically placed last in the chain so it only sees
// pages conventional OCR could not read.
type VisionBackend struct {
	model ai.VisionModel
}

// NewVisionBackend wraps a vision model as an extraction backend.
// A nil model produces a backend that reports itself unavailable.
func NewVisionBackend(model ai.VisionModel) *VisionBackend {
	return &VisionBackend{model: model}
}

// Name returns "vision".
func (b *VisionBackend) Name() string { return VisionBackendName }

// Available reports whether a vision model is configured.
func (b *VisionBackend) Available() bool { return b.model != nil }

// Extract sends the page image to the vision model and scores the
// transcription with ScoreText.
func (b *VisionBackend) Extract(ctx context.Context, page *core.Page) (*core.ExtractionResult, error) {
	data, err := encodePage(page)
	if err != nil {
		return nil, err
	}

	text, err := b.model.TranscribePage(ctx, data, "image/png")
	if err != nil {
		return nil, err
	}

	return &core.ExtractionResult{
		Extractor:  VisionBackendName,
		Text:       text,
		Confidence: ScoreText(text),
	}, nil
}
