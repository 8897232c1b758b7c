package ingest

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lexidex/ai/mock"
	"github.com/poiesic/lexidex/core"
	"github.com/poiesic/lexidex/extract"
	"github.com/poiesic/lexidex/index"
	"github.com/poiesic/lexidex/storage"
	"github.com/poiesic/lexidex/storage/badger"
)

func writePage(t *testing.T, path string, shade uint8) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 200, 280))
	for y := 0; y < 280; y++ {
		for x := 0; x < 200; x++ {
			img.Set(x, y, color.RGBA{R: shade, G: shade, B: shade, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func writeDocument(t *testing.T, dir, name string, pages int) string {
	t.Helper()
	docDir := filepath.Join(dir, name)
	require.NoError(t, os.Mkdir(docDir, 0o755))
	for i := 0; i < pages; i++ {
		writePage(t, filepath.Join(docDir, fmt.Sprintf("page-%02d.png", i+1)), uint8(40*i+20))
	}
	return docDir
}

// pageTextBackend extracts scripted text keyed by page number. Pages
// without a script fail.
func pageTextBackend(texts map[int]string) *extract.MockBackend {
	return &extract.MockBackend{
		BackendName: "scripted",
		ExtractFunc: func(ctx context.Context, page *core.Page) (*core.ExtractionResult, error) {
			text, ok := texts[page.Number]
			if !ok {
				return nil, fmt.Errorf("no text for page %d", page.Number)
			}
			return &core.ExtractionResult{
				Extractor:  "scripted",
				Text:       text,
				Confidence: extract.ScoreText(text),
			}, nil
		},
	}
}

func newTestIngestor(t *testing.T, backend extract.Backend) (*Ingestor, storage.Store) {
	t.Helper()
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	pipeline, err := extract.NewPipeline([]extract.Backend{backend})
	require.NoError(t, err)
	t.Cleanup(pipeline.Release)

	idx, err := index.Open(context.Background(), store, mock.NewMockEmbedder())
	require.NoError(t, err)

	ingestor, err := New(store, pipeline, idx)
	require.NoError(t, err)
	return ingestor, store
}

const (
	page1Text = "Section 1 defines the short title and the territorial extent of this enactment for every state."
	page2Text = "Section 2 sets out definitions of the terms used throughout the enactment, including court and decree."
	page3Text = "Section 3 empowers the state government to appoint officers for the administration of this enactment."
)

func TestIngest_EndToEnd(t *testing.T) {
	ingestor, store := newTestIngestor(t, pageTextBackend(map[int]string{
		1: page1Text, 2: page2Text, 3: page3Text,
	}))
	ctx := context.Background()
	docDir := writeDocument(t, t.TempDir(), "act", 3)

	id, err := ingestor.Ingest(ctx, docDir)
	require.NoError(t, err)
	require.NotZero(t, id)

	document, err := store.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, document.PageCount)
	require.Len(t, document.Pages, 3)
	for i, summary := range document.Pages {
		assert.Equal(t, i+1, summary.Number)
		assert.Equal(t, "scripted", summary.Extractor)
		assert.Greater(t, summary.Confidence, 0.0)
		assert.Empty(t, summary.Failures)
	}

	text, err := ingestor.DocumentText(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, text, "short title")
	assert.Contains(t, text, "definitions of the terms")
	assert.Contains(t, text, "appoint officers")

	status, err := ingestor.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.DocumentCount)
	assert.Greater(t, status.ChunkCount, 0)
}

func TestIngest_Idempotent(t *testing.T) {
	backend := pageTextBackend(map[int]string{1: page1Text})
	ingestor, _ := newTestIngestor(t, backend)
	ctx := context.Background()
	docDir := writeDocument(t, t.TempDir(), "act", 1)

	first, err := ingestor.Ingest(ctx, docDir)
	require.NoError(t, err)
	extractions := backend.CallCount()

	second, err := ingestor.Ingest(ctx, docDir)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	// The short-circuit happens before extraction even starts.
	assert.Equal(t, extractions, backend.CallCount())

	status, err := ingestor.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, status.DocumentCount)
}

func TestIngest_FailedPageAttributed(t *testing.T) {
	// Page 2 has no scripted text, so every backend attempt fails.
	ingestor, store := newTestIngestor(t, pageTextBackend(map[int]string{
		1: page1Text, 3: page3Text,
	}))
	ctx := context.Background()
	docDir := writeDocument(t, t.TempDir(), "act", 3)

	id, err := ingestor.Ingest(ctx, docDir)
	require.NoError(t, err)

	document, err := store.GetDocument(ctx, id)
	require.NoError(t, err)
	require.Len(t, document.Pages, 3)

	failed := document.Pages[1]
	assert.Equal(t, 2, failed.Number)
	assert.Zero(t, failed.Confidence)
	require.NotEmpty(t, failed.Failures)
	assert.Equal(t, "scripted", failed.Failures[0].Extractor)

	// Surviving pages stay in reading order around the failure marker.
	text, err := ingestor.DocumentText(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, text, "short title")
	assert.Contains(t, text, "appoint officers")
	assert.Less(t, strings.Index(text, "short title"), strings.Index(text, "appoint officers"))
}

func TestIngest_Remove(t *testing.T) {
	ingestor, _ := newTestIngestor(t, pageTextBackend(map[int]string{1: page1Text}))
	ctx := context.Background()
	docDir := writeDocument(t, t.TempDir(), "act", 1)

	id, err := ingestor.Ingest(ctx, docDir)
	require.NoError(t, err)

	require.NoError(t, ingestor.Remove(ctx, id))

	status, err := ingestor.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, status.DocumentCount)
	assert.Equal(t, 0, status.ChunkCount)

	_, err = ingestor.DocumentText(ctx, id)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestIngest_UnsupportedInput(t *testing.T) {
	ingestor, _ := newTestIngestor(t, extract.NewMockBackend())

	_, err := ingestor.Ingest(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestStripOverlap(t *testing.T) {
	previous := "First paragraph.\n\nSecond paragraph."

	// Seeded overlap is removed on a whole-paragraph boundary match.
	assert.Equal(t, "Third paragraph.",
		stripOverlap(previous, "Second paragraph.\n\nThird paragraph."))

	// Non-overlapping text passes through untouched.
	assert.Equal(t, "Third paragraph.\n\nFourth paragraph.",
		stripOverlap(previous, "Third paragraph.\n\nFourth paragraph."))

	// A partial-paragraph match is not treated as overlap.
	assert.Equal(t, "paragraph.\n\nThird paragraph.",
		stripOverlap(previous, "paragraph.\n\nThird paragraph."))
}
