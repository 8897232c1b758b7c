package extract

import (
	"context"
	"sync/atomic"

	"github.com/poiesic/lexidex/core"
)

// MockBackend is a test double for Backend.
// It allows custom behavior injection via function fields.
type MockBackend struct {
	// BackendName is the name reported by Name. Defaults to "mock".
	BackendName string

	// Unavailable makes Available report false.
	Unavailable bool

	// ExtractFunc is called by Extract if set.
	// If nil, uses default deterministic behavior.
	ExtractFunc func(ctx context.Context, page *core.Page) (*core.ExtractionResult, error)

	callCount atomic.Int64
}

// NewMockBackend creates a mock backend with default deterministic behavior.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Name returns the configured backend name.
func (m *MockBackend) Name() string {
	if m.BackendName == "" {
		return "mock"
	}
	return m.BackendName
}

// Available reports the configured availability.
func (m *MockBackend) Available() bool { return !m.Unavailable }

// Extract returns a fixed transcription scored with ScoreText.
func (m *MockBackend) Extract(ctx context.Context, page *core.Page) (*core.ExtractionResult, error) {
	m.callCount.Add(1)

	if m.ExtractFunc != nil {
		return m.ExtractFunc(ctx, page)
	}

	text := "This is a mock extraction of a page with enough ordinary prose to score as readable text."
	return &core.ExtractionResult{
		Extractor:  m.Name(),
		Text:       text,
		Confidence: ScoreText(text),
	}, nil
}

// CallCount returns the number of times Extract was called.
func (m *MockBackend) CallCount() int {
	return int(m.callCount.Load())
}
