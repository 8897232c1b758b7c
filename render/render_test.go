package render

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePage(t *testing.T, path string, width, height int, shade uint8) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: shade, G: shade, B: shade, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func writeDocument(t *testing.T, dir string, pages int) string {
	t.Helper()
	docDir := filepath.Join(dir, "doc")
	require.NoError(t, os.Mkdir(docDir, 0o755))
	for i := 0; i < pages; i++ {
		writePage(t, filepath.Join(docDir, "page-"+string(rune('a'+i))+".png"), 200, 280, uint8(40*i+20))
	}
	return docDir
}

func TestOpen_Directory(t *testing.T) {
	docDir := writeDocument(t, t.TempDir(), 3)

	src, err := Open(docDir)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 3, src.PageCount())
	assert.NotZero(t, src.Fingerprint())

	page, err := src.Render(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Number)
	assert.Equal(t, DefaultDPI, page.DPI)
	require.NotNil(t, page.Bitmap)
	assert.False(t, page.Bitmap.Bounds().Empty())
}

func TestOpen_SingleImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.png")
	writePage(t, path, 120, 160, 128)

	src, err := Open(path)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 1, src.PageCount())
	page, err := src.Render(context.Background(), 1)
	require.NoError(t, err)
	// Small scans keep native resolution.
	assert.Equal(t, 120, page.Bitmap.Bounds().Dx())
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Open(filepath.Join(dir, "missing"))
	assert.Error(t, err)

	unknown := filepath.Join(dir, "file.xyz")
	require.NoError(t, os.WriteFile(unknown, []byte("not a page"), 0o644))
	_, err = Open(unknown)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.Mkdir(empty, 0o755))
	_, err = Open(empty)
	assert.ErrorIs(t, err, ErrNoPages)
}

func TestRender_PageOutOfRange(t *testing.T) {
	docDir := writeDocument(t, t.TempDir(), 2)

	src, err := Open(docDir)
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Render(context.Background(), 0)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
	_, err = src.Render(context.Background(), 3)
	assert.ErrorIs(t, err, ErrPageOutOfRange)
}

func TestRender_CorruptPage(t *testing.T) {
	dir := t.TempDir()
	docDir := filepath.Join(dir, "doc")
	require.NoError(t, os.Mkdir(docDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(docDir, "page-a.png"), []byte("garbage"), 0o644))

	src, err := Open(docDir)
	require.NoError(t, err)
	defer src.Close()

	_, err = src.Render(context.Background(), 1)
	assert.Error(t, err)
}

func TestFingerprint_Stable(t *testing.T) {
	docDir := writeDocument(t, t.TempDir(), 2)

	first, err := Open(docDir)
	require.NoError(t, err)
	defer first.Close()
	second, err := Open(docDir)
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, first.Fingerprint(), second.Fingerprint())

	// Changing any page changes the fingerprint.
	writePage(t, filepath.Join(docDir, "page-a.png"), 200, 280, 99)
	third, err := Open(docDir)
	require.NoError(t, err)
	defer third.Close()
	assert.NotEqual(t, first.Fingerprint(), third.Fingerprint())
}

func TestToFixedDPIGray_DownscalesWideScans(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 6000, 8000))
	gray := toFixedDPIGray(img, DefaultDPI)

	assert.Equal(t, int(a4WidthInches*DefaultDPI), gray.Bounds().Dx())
	assert.Less(t, gray.Bounds().Dy(), 8000)
}
