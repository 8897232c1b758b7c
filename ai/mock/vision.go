package mock

import (
	"context"
	"fmt"
)

// MockVision is a test double for ai.VisionModel.
// It allows custom behavior injection via function fields.
type MockVision struct {
	// TranscribePageFunc is called by TranscribePage if set.
	// If nil, uses default deterministic behavior.
	TranscribePageFunc func(ctx context.Context, image []byte, mimeType string) (string, error)

	callCount int
}

// NewMockVision creates a mock vision model with default deterministic behavior.
// Note: Returns concrete type to allow test assertions via GetMockVision().
func NewMockVision() *MockVision {
	return &MockVision{}
}

// TranscribePage returns a deterministic transcription derived from the
// image payload size, so tests can distinguish pages without a real model.
func (m *MockVision) TranscribePage(ctx context.Context, image []byte, mimeType string) (string, error) {
	m.callCount++

	if m.TranscribePageFunc != nil {
		return m.TranscribePageFunc(ctx, image, mimeType)
	}

	if len(image) == 0 {
		return "", nil
	}
	return fmt.Sprintf("mock transcription of %d %s bytes", len(image), mimeType), nil
}

// CallCount returns the number of times TranscribePage was called.
func (m *MockVision) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockVision) Reset() {
	m.callCount = 0
	m.TranscribePageFunc = nil
}
