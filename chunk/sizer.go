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


package chunk

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Sizer measures text against the chunk size budget. The budget is
// abstract (tokens or words); the chunker only compares sizes.
type Sizer func(text string) int

// WordSizer counts whitespace-separated words. It is the default sizer:
// deterministic, offline, and close enough to token counts for sizing.
func WordSizer(text string) int {
	return len(strings.Fields(text))
}

// TokenSizer counts tokens with a tiktoken BPE encoding, for callers whose
// downstream generation model enforces an exact token contract.
// The encoding is loaded once and shared; Sizer calls are thread-safe.
func TokenSizer(encoding string) (Sizer, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, err
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}, nil
}
