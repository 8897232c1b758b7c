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


package openai

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/lexidex/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

const transcriptionPrompt = `Transcribe ALL text visible in this scanned document page.

Rules:
- Output the text exactly as printed, preserving reading order, line breaks
  between paragraphs, and section numbering.
- Preserve the original language and script of the text. Do not translate.
- Do not describe the page, do not summarize, and do not add commentary.
- If a word is illegible, write it as best you can; never invent sentences
  that are not on the page.
- If the page contains no readable text, output nothing.`

// Vision implements ai.VisionModel using OpenAI-compatible multimodal chat APIs.
type Vision struct {
	client llms.Model
	logger *slog.Logger
}

// newVision is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newVision(config *ai.Config) (*Vision, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.VisionHost),
		openai.WithToken("none"),
		openai.WithModel(config.VisionModel),
	)
	if err != nil {
		return nil, err
	}

	return &Vision{
		client: client,
		logger: slog.Default().With("component", "openai-vision"),
	}, nil
}

// NewVision creates a new page transcriber using the provided configuration.
//
// Returns ai.VisionModel interface to enforce abstraction.
func NewVision(config *ai.Config) (ai.VisionModel, error) {
	return newVision(config)
}

// TranscribePage sends the page image to the multimodal model and returns
// the transcribed text. Temperature is pinned to zero; transcription is a
// copying task, not a generation task.
func (v *Vision) TranscribePage(ctx context.Context, image []byte, mimeType string) (string, error) {
	v.logger.Debug("transcribing page image", "bytes", len(image), "mime", mimeType)

	content := []llms.MessageContent{
		{
			Role: schema.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(transcriptionPrompt),
				llms.BinaryPart(mimeType, image),
			},
		},
	}

	response, err := v.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		v.logger.Error("failed to transcribe page", "err", err)
		return "", err
	}

	if len(response.Choices) < 1 {
		v.logger.Debug("no choices returned from model")
		return "", nil
	}

	return strings.TrimSpace(response.Choices[0].Content), nil
}
