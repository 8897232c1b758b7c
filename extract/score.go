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

import "unicode"

// Weights of the confidence blend. Density carries the most signal:
// OCR noise shows up first as punctuation soup and stray symbols.
const (
	lengthWeight    = 0.3
	diversityWeight = 0.3
	densityWeight   = 0.4

	// fullLengthRunes is the text length at which the length component
	// saturates. A typical typed page carries well over 1500 runes.
	fullLengthRunes = 600
)

// ScoreText estimates extraction confidence for backends that do not
// report a calibrated score of their own. The result is a blend of
// normalized length, character diversity and alphanumeric density,
// squashed into [0, 1]. Empty text scores 0.
func ScoreText(text string) float64 {
	if text == "" {
		return 0
	}

	seen := make(map[rune]struct{})
	total, alnum := 0, 0
	for _, r := range text {
		total++
		seen[r] = struct{}{}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}

	length := float64(total) / fullLengthRunes
	if length > 1 {
		length = 1
	}

	// Real prose uses a few dozen distinct characters; garbage output
	// tends to be either a handful of repeated symbols or pure noise.
	diversity := float64(len(seen)) / 40.0
	if diversity > 1 {
		diversity = 1
	}

	density := float64(alnum) / float64(total)

	return lengthWeight*length + diversityWeight*diversity + densityWeight*density
}
