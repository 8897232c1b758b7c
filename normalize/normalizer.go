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


// Package normalize canonicalizes extracted text so segmentation and
// indexing behave the same regardless of origin script or extraction
// backend artifacts.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// ocrSubstitutions maps known OCR marker glyphs to canonical words.
// Substituted words are spaced apart from adjacent alphanumerics so
// tokens never merge.
var ocrSubstitutions = map[rune]string{
	'§': "section",
	'¶': "paragraph",
	'№': "number",
}

// glyphSubstitutions maps typographic glyphs to plain equivalents.
var glyphSubstitutions = map[rune]string{
	'ﬁ': "fi",
	'ﬂ': "fl",
	'ﬀ': "ff",
	'ﬃ': "ffi",
	'ﬄ': "ffl",
	'’': "'",
	'‘': "'",
	'“': `"`,
	'”': `"`,
	'–': "-",
	'—': "-",
	'…': "...",
}

// Normalize canonicalizes text for segmentation and indexing.
//
// Operations run in a fixed order, each assuming the previous has run:
// Unicode NFC composition, removal of invisible and control code points,
// whitespace collapsing, OCR artifact substitution, and insertion of a
// boundary space between directly adjacent runs of different scripts.
//
// Normalize is pure and idempotent: Normalize(Normalize(x)) == Normalize(x).
// Malformed byte sequences are stripped rather than failing.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ToValidUTF8(text, "")
	text = norm.NFC.String(text)
	text = stripInvisible(text)
	text = collapseWhitespace(text)
	text = substituteArtifacts(text)
	text = spaceScriptBoundaries(text)
	return text
}

// stripInvisible removes control and format code points. Newlines and tabs
// survive for the whitespace pass; everything else in Cc/Cf goes, including
// zero-width joiners, BOMs and directional marks.
func stripInvisible(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || r == '\r' {
			b.WriteRune(r)
			continue
		}
		if unicode.Is(unicode.Cc, r) || unicode.Is(unicode.Cf, r) || r == utf8.RuneError {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// collapseWhitespace folds runs of horizontal whitespace to one space and
// runs of three or more newlines to exactly two. Spaces adjacent to
// newlines are dropped, and the result is trimmed.
func collapseWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var b strings.Builder
	b.Grow(len(text))
	spaces := 0
	newlines := 0
	flush := func() {
		if newlines > 0 {
			if newlines > 2 {
				newlines = 2
			}
			for i := 0; i < newlines; i++ {
				b.WriteByte('\n')
			}
		} else if spaces > 0 {
			b.WriteByte(' ')
		}
		spaces, newlines = 0, 0
	}
	for _, r := range text {
		switch {
		case r == '\n':
			newlines++
		case unicode.IsSpace(r):
			spaces++
		default:
			flush()
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// substituteArtifacts replaces OCR marker glyphs with canonical words and
// typographic glyphs with plain equivalents.
func substituteArtifacts(text string) string {
	runes := []rune(text)
	var b strings.Builder
	b.Grow(len(text))
	for i, r := range runes {
		if word, ok := ocrSubstitutions[r]; ok {
			if i > 0 && isAlnum(runes[i-1]) {
				b.WriteByte(' ')
			}
			b.WriteString(word)
			if i+1 < len(runes) && isAlnum(runes[i+1]) {
				b.WriteByte(' ')
			}
			continue
		}
		if glyph, ok := glyphSubstitutions[r]; ok {
			b.WriteString(glyph)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// spaceScriptBoundaries inserts a space between directly adjacent letters
// of different scripts so downstream tokenization does not merge them.
// Digits and punctuation are neutral: they neither trigger a boundary nor
// clear the current script run.
func spaceScriptBoundaries(text string) string {
	var b strings.Builder
	b.Grow(len(text) + 8)
	prev := scriptNone
	for _, r := range text {
		s := scriptOf(r)
		if s != scriptNone && prev != scriptNone && s != prev {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		switch {
		case s != scriptNone:
			prev = s
		case !unicode.IsDigit(r):
			prev = scriptNone
		}
	}
	return b.String()
}
