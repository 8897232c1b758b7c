// Package mock provides test double implementations of AI service interfaces.
//
// This package contains mock implementations of ai.Embedder, ai.VisionModel,
// and ai.Provider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	vector, err := mockProvider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	mockVision := mock.NewMockVision()
//	mockVision.TranscribePageFunc = func(ctx context.Context, image []byte, mimeType string) (string, error) {
//	    return "Section 437. When bail may be taken.", nil
//	}
//
//	// Check call counts
//	count := mockVision.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockEmbedder: Returns deterministic vectors based on text hash
//   - MockVision: Returns a deterministic placeholder transcription
//   - MockProvider: Aggregates mock embedder and vision model
package mock
