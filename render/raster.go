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


package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"

	"github.com/poiesic/lexidex/core"
)

// pageSource renders an ordered list of page image files.
type pageSource struct {
	paths       []string
	dpi         int
	fingerprint core.ID
}

// openPages hashes every page's bytes up front so the fingerprint reflects
// full document content, then decodes pages lazily on Render.
func openPages(docPath string, pagePaths []string, dpi int) (Source, error) {
	var content []byte
	for _, p := range pagePaths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read page %s: %w", p, err)
		}
		content = append(content, data...)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPages, docPath)
	}

	return &pageSource{
		paths:       pagePaths,
		dpi:         dpi,
		fingerprint: core.IDFromBytes(content),
	}, nil
}

func (s *pageSource) PageCount() int { return len(s.paths) }

func (s *pageSource) Fingerprint() core.ID { return s.fingerprint }

func (s *pageSource) Close() error { return nil }

func (s *pageSource) Render(ctx context.Context, pageNumber int) (*core.Page, error) {
	if pageNumber < 1 || pageNumber > len(s.paths) {
		return nil, fmt.Errorf("%w: %d of %d", ErrPageOutOfRange, pageNumber, len(s.paths))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.paths[pageNumber-1])
	if err != nil {
		return nil, fmt.Errorf("read page %d: %w", pageNumber, err)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: page %d (%s): %v", ErrUnsupportedFormat, pageNumber, format, err)
	}

	return &core.Page{
		Number: pageNumber,
		Bitmap: toFixedDPIGray(img, s.dpi),
		DPI:    s.dpi,
	}, nil
}

// a4WidthInches is the assumed physical page width for DPI fitting.
const a4WidthInches = 8.27

// toFixedDPIGray converts a decoded page to grayscale and downscales it so
// its width matches an A4 page at the target DPI. Smaller scans are left
// at native resolution: upscaling invents no detail for OCR.
func toFixedDPIGray(img image.Image, dpi int) *image.Gray {
	bounds := img.Bounds()
	maxWidth := int(a4WidthInches * float64(dpi))

	width := bounds.Dx()
	height := bounds.Dy()
	if width > maxWidth {
		height = height * maxWidth / width
		width = maxWidth
	}

	gray := image.NewGray(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(gray, gray.Bounds(), img, bounds, draw.Src, nil)
	return gray
}
