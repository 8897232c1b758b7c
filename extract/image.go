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
	"bytes"
	"fmt"
	"image/png"

	"github.com/poiesic/lexidex/core"
)

// encodePage encodes a page bitmap as PNG for backends that consume
// image bytes rather than pixels.
func encodePage(page *core.Page) ([]byte, error) {
	if page.Bitmap == nil {
		return nil, fmt.Errorf("page %d has no bitmap", page.Number)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, page.Bitmap); err != nil {
		return nil, fmt.Errorf("encode page %d: %w", page.Number, err)
	}
	return buf.Bytes(), nil
}
