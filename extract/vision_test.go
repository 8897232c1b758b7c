package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lexidex/ai/mock"
)

func TestVisionBackend_Extract(t *testing.T) {
	vision := mock.NewMockVision()
	vision.TranscribePageFunc = func(ctx context.Context, image []byte, mimeType string) (string, error) {
		assert.Equal(t, "image/png", mimeType)
		assert.NotEmpty(t, image)
		return "The appeal is dismissed with costs.", nil
	}

	b := NewVisionBackend(vision)
	require.True(t, b.Available())

	result, err := b.Extract(context.Background(), testPage(1))
	require.NoError(t, err)

	assert.Equal(t, VisionBackendName, result.Extractor)
	assert.Equal(t, "The appeal is dismissed with costs.", result.Text)
	assert.Greater(t, result.Confidence, 0.0)
	assert.Equal(t, 1, vision.CallCount())
}

func TestVisionBackend_NilModelUnavailable(t *testing.T) {
	b := NewVisionBackend(nil)
	assert.False(t, b.Available())
}
