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


package normalize

import (
	"strings"
	"unicode"

	"github.com/poiesic/lexidex/core"
)

// script is the internal per-rune script class used while scanning.
type script int

const (
	scriptNone script = iota
	scriptLatin
	scriptDevanagari
	scriptArabic
	scriptOther
)

func scriptOf(r rune) script {
	if !unicode.IsLetter(r) {
		return scriptNone
	}
	switch {
	case unicode.Is(unicode.Latin, r):
		return scriptLatin
	case unicode.Is(unicode.Devanagari, r):
		return scriptDevanagari
	case unicode.Is(unicode.Arabic, r):
		return scriptArabic
	default:
		return scriptOther
	}
}

func (s script) flag() core.ScriptFlags {
	switch s {
	case scriptLatin:
		return core.ScriptLatin
	case scriptDevanagari:
		return core.ScriptDevanagari
	case scriptArabic:
		return core.ScriptArabic
	case scriptOther:
		return core.ScriptOther
	default:
		return 0
	}
}

// ScriptFlags reports every writing system observed in the text.
func ScriptFlags(text string) core.ScriptFlags {
	var flags core.ScriptFlags
	for _, r := range text {
		if unicode.IsDigit(r) {
			flags |= core.ScriptDigit
			continue
		}
		flags |= scriptOf(r).flag()
	}
	return flags
}

// IsMixedScript reports whether the text contains letters from more than
// one writing system.
func IsMixedScript(text string) bool {
	return ScriptFlags(text).Mixed()
}

// Segment is a maximal same-script run of text.
type Segment struct {
	Text   string
	Script core.ScriptFlags
}

// SplitByScript decomposes text into same-script segments. Digits,
// punctuation and whitespace attach to the segment of the surrounding
// letters. Single-script text returns one segment.
//
// The retriever uses this to decompose a multi-script query into
// sub-queries that single-script search stages handle independently.
func SplitByScript(text string) []Segment {
	var segments []Segment
	var current strings.Builder
	active := scriptNone

	flush := func() {
		trimmed := strings.TrimSpace(current.String())
		if trimmed != "" {
			segments = append(segments, Segment{Text: trimmed, Script: active.flag()})
		}
		current.Reset()
	}

	for _, r := range text {
		s := scriptOf(r)
		if s != scriptNone && active != scriptNone && s != active {
			flush()
			active = s
		} else if s != scriptNone && active == scriptNone {
			active = s
		}
		current.WriteRune(r)
	}
	flush()

	if len(segments) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []Segment{{Text: trimmed, Script: 0}}
	}
	return segments
}
