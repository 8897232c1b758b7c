package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// VisionModel transcribes page images into text using a multimodal model.
// It is the extraction backend of last resort for pages where conventional
// OCR produces low-confidence output.
// Implementations must be thread-safe for concurrent use.
type VisionModel interface {
	// TranscribePage returns the full text visible in the given page image.
	// The image is an encoded bitmap (PNG); mimeType names its format.
	// An empty string with a nil error means the page holds no readable text.
	TranscribePage(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Provider aggregates AI services for convenient initialization and lifecycle
// management. A provider creates and manages Embedder and VisionModel
// instances, ensuring they share configuration and resources appropriately.
type Provider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Vision returns the page transcription service.
	// The returned VisionModel is safe for concurrent use.
	Vision() VisionModel

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
