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


// Package chunk splits normalized document text into overlapping,
// bounded-size segments using document-type-aware boundaries.
package chunk

import (
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"github.com/poiesic/lexidex/core"
	"github.com/poiesic/lexidex/normalize"
)

var (
	// ErrEmptyDocument is returned when the input text has no content.
	ErrEmptyDocument = errors.New("document text is empty")
)

// sentenceRe splits on sentence-final punctuation, including the
// Devanagari danda.
var sentenceRe = regexp.MustCompile(`[^.!?।]+[.!?।]*\s*`)

// Chunker builds retrieval-ready chunks out of normalized document text.
type Chunker struct {
	maxSize      int     // size budget per chunk, in sizer units
	overlapUnits int     // trailing units seeded into the next chunk
	minChars     int     // reject chunks shorter than this
	minDensity   float64 // reject chunks with lower alphanumeric density
	sizer        Sizer
	logger       *slog.Logger
}

// Option configures a Chunker.
type Option func(*Chunker) error

// WithMaxChunkSize sets the per-chunk size budget in sizer units.
// Default is 350.
func WithMaxChunkSize(size int) Option {
	return func(c *Chunker) error {
		if size < 1 {
			return errors.New("max chunk size must be positive")
		}
		c.maxSize = size
		return nil
	}
}

// WithOverlap sets how many trailing units of a closed chunk seed the next
// one. Default is 1.
func WithOverlap(units int) Option {
	return func(c *Chunker) error {
		if units < 0 {
			units = 0
		}
		c.overlapUnits = units
		return nil
	}
}

// WithMinChunkChars sets the minimum character count below which a
// would-be chunk is dropped. Default is core.MinChunkChars.
func WithMinChunkChars(chars int) Option {
	return func(c *Chunker) error {
		c.minChars = chars
		return nil
	}
}

// WithMinAlnumDensity sets the alphanumeric density floor that guards
// against page-break artifacts. Default is 0.3.
func WithMinAlnumDensity(density float64) Option {
	return func(c *Chunker) error {
		c.minDensity = density
		return nil
	}
}

// WithSizer sets the size measure. Default is WordSizer.
func WithSizer(sizer Sizer) Option {
	return func(c *Chunker) error {
		if sizer == nil {
			return errors.New("sizer cannot be nil")
		}
		c.sizer = sizer
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Chunker) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// New creates a Chunker with the given options applied over defaults.
func New(opts ...Option) (*Chunker, error) {
	c := &Chunker{
		maxSize:      350,
		overlapUnits: 1,
		minChars:     core.MinChunkChars,
		minDensity:   0.3,
		sizer:        WordSizer,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// unit is one walkable segment of the document: a header or a paragraph,
// or a forced sub-split of either.
type unit struct {
	text  string
	label string // section label activated by this unit, if any
}

// Split segments normalized document text into chunks for the given
// document. Output ordering matches reading order; ordinals are assigned
// sequentially from 0 after rejected fragments are dropped.
func (c *Chunker) Split(documentID core.ID, text string) ([]*core.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	docType := Classify(text)
	units := c.segment(text, docType)
	units = c.expandOversized(units)

	c.logger.Debug("segmenting document",
		"document", documentID, "type", docType.String(), "units", len(units))

	var chunks []*core.Chunk
	var cur []unit
	curSize := 0
	seeded := 0
	activeLabel := ""
	chunkLabel := ""

	emit := func() {
		text := joinUnits(cur)
		if !c.accept(text) {
			c.logger.Debug("dropping rejected fragment", "chars", len(text))
			return
		}
		ordinal := len(chunks)
		chunks = append(chunks, &core.Chunk{
			Id:           core.ChunkID(documentID, ordinal),
			DocumentId:   documentID,
			Text:         text,
			Ordinal:      ordinal,
			SectionLabel: chunkLabel,
			CharCount:    len(text),
			WordCount:    WordSizer(text),
			Scripts:      normalize.ScriptFlags(text),
		})
	}

	for _, u := range units {
		if u.label != "" {
			activeLabel = u.label
		}
		if len(cur) == 0 {
			chunkLabel = activeLabel
		}

		usize := c.sizer(u.text)
		// Close when the budget would overflow, but never before the chunk
		// holds at least one unit beyond its overlap seed.
		if curSize+usize > c.maxSize && len(cur) > seeded {
			emit()
			cur, curSize = c.seedOverlap(cur)
			seeded = len(cur)
			chunkLabel = activeLabel
		}
		cur = append(cur, u)
		curSize += usize
	}
	if len(cur) > seeded {
		emit()
	}

	return chunks, nil
}

// segment walks the document with the boundary rules selected by its type.
func (c *Chunker) segment(text string, docType DocType) []unit {
	paragraphs := strings.Split(text, "\n\n")
	units := make([]unit, 0, len(paragraphs))
	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		u := unit{text: para}
		switch docType {
		case DocTypeStatute:
			if m := sectionHeaderRe.FindString(para); m != "" {
				u.label = strings.TrimSpace(firstLine(para))
			}
		case DocTypeDecision:
			if narrativeHeaderRe.MatchString(firstLine(para)) {
				u.label = strings.TrimSpace(firstLine(para))
			}
		}
		units = append(units, u)
	}
	return units
}

// expandOversized force-splits any unit that alone exceeds the budget:
// first at sentence boundaries, then at word boundaries when a single
// sentence is still too large.
func (c *Chunker) expandOversized(units []unit) []unit {
	out := make([]unit, 0, len(units))
	for _, u := range units {
		if c.sizer(u.text) <= c.maxSize {
			out = append(out, u)
			continue
		}
		label := u.label
		for _, piece := range c.splitUnit(u.text) {
			out = append(out, unit{text: piece, label: label})
			label = "" // only the first piece activates the label
		}
	}
	return out
}

func (c *Chunker) splitUnit(text string) []string {
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{text}
	}
	for i := range sentences {
		sentences[i] = strings.TrimSpace(sentences[i])
	}

	var pieces []string
	var cur []string
	curSize := 0
	flush := func() {
		if len(cur) > 0 {
			pieces = append(pieces, strings.Join(cur, " "))
			cur, curSize = nil, 0
		}
	}
	for _, sentence := range sentences {
		size := c.sizer(sentence)
		if size > c.maxSize {
			flush()
			pieces = append(pieces, c.splitWords(sentence)...)
			continue
		}
		if curSize+size > c.maxSize {
			flush()
		}
		cur = append(cur, sentence)
		curSize += size
	}
	flush()
	return pieces
}

// splitWords is the last resort for a sentence with no internal boundaries.
func (c *Chunker) splitWords(text string) []string {
	words := strings.Fields(text)
	var pieces []string
	for start := 0; start < len(words); {
		end := start
		size := 0
		for end < len(words) {
			s := c.sizer(words[end])
			if size+s > c.maxSize && end > start {
				break
			}
			size += s
			end++
		}
		pieces = append(pieces, strings.Join(words[start:end], " "))
		start = end
	}
	return pieces
}

// seedOverlap returns the trailing overlap units of a just-closed chunk.
// The seed is abandoned when it alone would fill the budget, since a chunk
// must always have room for new content.
func (c *Chunker) seedOverlap(cur []unit) ([]unit, int) {
	if c.overlapUnits == 0 || len(cur) == 0 {
		return nil, 0
	}
	n := c.overlapUnits
	if n > len(cur) {
		n = len(cur)
	}
	seed := make([]unit, n)
	copy(seed, cur[len(cur)-n:])
	size := 0
	for _, u := range seed {
		size += c.sizer(u.text)
	}
	if size >= c.maxSize {
		return nil, 0
	}
	return seed, size
}

func (c *Chunker) accept(text string) bool {
	if len(text) < c.minChars {
		return false
	}
	return alnumDensity(text) >= c.minDensity
}

func joinUnits(units []unit) string {
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = u.text
	}
	return strings.Join(parts, "\n\n")
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}

func alnumDensity(text string) float64 {
	if text == "" {
		return 0
	}
	total, alnum := 0, 0
	for _, r := range text {
		total++
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	return float64(alnum) / float64(total)
}
