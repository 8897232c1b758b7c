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
	"regexp"
	"strings"
)

// DocType is the structural class of a document. It selects which
// boundary-detection rules the chunker applies.
type DocType int

const (
	// DocTypeGeneric splits at paragraph boundaries.
	DocTypeGeneric DocType = iota
	// DocTypeStatute splits preferentially at enumerated-section headers.
	DocTypeStatute
	// DocTypeDecision splits at canonical narrative sections of a judgment.
	DocTypeDecision
)

func (t DocType) String() string {
	switch t {
	case DocTypeStatute:
		return "statute"
	case DocTypeDecision:
		return "decision"
	default:
		return "generic"
	}
}

var (
	// sectionHeaderRe matches enumerated-section headers at line start:
	// "Section 438.", "438A.", "section 12 of ...".
	sectionHeaderRe = regexp.MustCompile(`(?mi)^(section\s+\d+[a-z]?\b|\d+[a-z]?\.\s+\p{Lu})`)

	// narrativeHeaderRe matches the canonical sections of a decision.
	narrativeHeaderRe = regexp.MustCompile(`(?mi)^(facts|background|issues?|arguments?|submissions?|analysis|reasoning|held|holding|conclusion|order|relief|judgment)\b[:\s]*$`)

	// partyRe matches party-versus-party cause titles.
	partyRe = regexp.MustCompile(`(?i)\b\p{L}[\p{L}.&' ]*\s+v(?:s?\.)\s+\p{L}`)

	statuteVocab = []string{
		"shall", "sub-section", "provided that", "notwithstanding",
		"hereinafter", "amendment", "clause", "be it enacted",
	}

	proceduralVocab = []string{
		"petitioner", "respondent", "appellant", "accused", "counsel",
		"learned", "impugned", "bench", "writ", "decree", "plaintiff",
		"defendant",
	}
)

// Classify assigns a structural type using keyword-density heuristics over
// section markers, party-versus-party patterns and procedural vocabulary.
// Density is measured per 1000 words so short and long documents compare
// on the same scale.
func Classify(text string) DocType {
	words := len(strings.Fields(text))
	if words == 0 {
		return DocTypeGeneric
	}
	scale := 1000.0 / float64(words)

	lower := strings.ToLower(text)

	statuteScore := float64(len(sectionHeaderRe.FindAllString(text, -1))) * 3
	for _, kw := range statuteVocab {
		statuteScore += float64(strings.Count(lower, kw))
	}
	statuteScore *= scale

	decisionScore := float64(len(partyRe.FindAllString(text, -1))) * 5
	decisionScore += float64(len(narrativeHeaderRe.FindAllString(text, -1))) * 3
	for _, kw := range proceduralVocab {
		decisionScore += float64(strings.Count(lower, kw)) * 2
	}
	decisionScore *= scale

	const minDensity = 4.0
	switch {
	case statuteScore < minDensity && decisionScore < minDensity:
		return DocTypeGeneric
	case statuteScore >= decisionScore:
		return DocTypeStatute
	default:
		return DocTypeDecision
	}
}
