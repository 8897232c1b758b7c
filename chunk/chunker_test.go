package chunk

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lexidex/core"
)

const statuteSample = `Section 437. When bail may be taken in case of non-bailable offence.

When any person accused of a non-bailable offence is arrested, he may be released on bail, but he shall not be so released if there appear reasonable grounds. Provided that the court may direct otherwise under this sub-section.

Section 438. Direction for grant of bail to person apprehending arrest.

Where any person has reason to believe that he may be arrested on accusation of having committed a non-bailable offence, he may apply to the High Court. The court shall consider the nature of the accusation, and notwithstanding anything in this clause, may impose conditions.`

const decisionSample = `Arnab Kumar v. State of Haryana

Facts

The petitioner seeks anticipatory bail. Learned counsel for the petitioner submits that the accusation is motivated. The respondent State opposes the application.

Held

The court held that the petitioner shall be released on bail subject to conditions. The impugned order of the learned Sessions Judge is set aside.`

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want DocType
	}{
		{name: "statute", text: statuteSample, want: DocTypeStatute},
		{name: "decision", text: decisionSample, want: DocTypeDecision},
		{name: "generic prose", text: strings.Repeat("The quick brown fox jumps over the lazy dog near the river bank today. ", 30), want: DocTypeGeneric},
		{name: "empty", text: "", want: DocTypeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text), "type: %s", Classify(tt.text))
		})
	}
}

func TestChunker_Split_OrdinalsAndIDs(t *testing.T) {
	c, err := New(WithMaxChunkSize(60), WithOverlap(0))
	require.NoError(t, err)

	docID := core.IDFromContent("statute")
	chunks, err := c.Split(docID, statuteSample)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Ordinal)
		assert.Equal(t, core.ChunkID(docID, i), chunk.Id)
		assert.Equal(t, docID, chunk.DocumentId)
		assert.Equal(t, len(chunk.Text), chunk.CharCount)
		assert.NotZero(t, chunk.WordCount)
		require.NoError(t, core.ValidateChunk(chunk))
	}
}

func TestChunker_Split_SectionLabels(t *testing.T) {
	c, err := New(WithMaxChunkSize(60), WithOverlap(0))
	require.NoError(t, err)

	chunks, err := c.Split(core.IDFromContent("statute"), statuteSample)
	require.NoError(t, err)

	var labels []string
	for _, chunk := range chunks {
		labels = append(labels, chunk.SectionLabel)
	}
	assert.Contains(t, strings.Join(labels, "|"), "Section 437")
	assert.Contains(t, strings.Join(labels, "|"), "Section 438")
}

func TestChunker_Split_CoverageRoundTrip(t *testing.T) {
	// With overlap disabled, concatenating chunks in ordinal order must
	// reproduce the input exactly.
	var paragraphs []string
	for i := 0; i < 12; i++ {
		paragraphs = append(paragraphs, fmt.Sprintf(
			"Paragraph %d discusses the procedural history of the matter in considerable detail for the record.", i))
	}
	text := strings.Join(paragraphs, "\n\n")

	c, err := New(WithMaxChunkSize(45), WithOverlap(0))
	require.NoError(t, err)

	chunks, err := c.Split(core.IDFromContent("doc"), text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	var parts []string
	for _, chunk := range chunks {
		parts = append(parts, chunk.Text)
	}
	assert.Equal(t, text, strings.Join(parts, "\n\n"))
}

func TestChunker_Split_OverlapSeedsNextChunk(t *testing.T) {
	var paragraphs []string
	for i := 0; i < 8; i++ {
		paragraphs = append(paragraphs, fmt.Sprintf(
			"Paragraph %d carries enough words to matter when the budget is small and tight.", i))
	}
	text := strings.Join(paragraphs, "\n\n")

	c, err := New(WithMaxChunkSize(45), WithOverlap(1))
	require.NoError(t, err)

	chunks, err := c.Split(core.IDFromContent("doc"), text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prevUnits := strings.Split(chunks[i-1].Text, "\n\n")
		lastUnit := prevUnits[len(prevUnits)-1]
		assert.True(t, strings.HasPrefix(chunks[i].Text, lastUnit),
			"chunk %d does not start with the trailing unit of chunk %d", i, i-1)
	}
}

func TestChunker_Split_ForceSplitsOversizedUnit(t *testing.T) {
	// One gigantic paragraph with no sentence punctuation at all.
	giant := strings.TrimSpace(strings.Repeat("word ", 300))

	c, err := New(WithMaxChunkSize(50), WithOverlap(0), WithMinChunkChars(10))
	require.NoError(t, err)

	chunks, err := c.Split(core.IDFromContent("doc"), giant)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, chunk.WordCount, 50)
	}
}

func TestChunker_Split_ForceSplitsAtSentences(t *testing.T) {
	var sentences []string
	for i := 0; i < 40; i++ {
		sentences = append(sentences, fmt.Sprintf("Sentence number %d states one more fact about the case.", i))
	}
	giant := strings.Join(sentences, " ")

	c, err := New(WithMaxChunkSize(50), WithOverlap(0))
	require.NoError(t, err)

	chunks, err := c.Split(core.IDFromContent("doc"), giant)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		// Sentence-boundary splits: every chunk ends on sentence punctuation.
		assert.True(t, strings.HasSuffix(chunk.Text, "."), "chunk %q not sentence-aligned", chunk.Text)
	}
}

func TestChunker_Split_DropsArtifacts(t *testing.T) {
	text := strings.Join([]string{
		"This opening paragraph is a perfectly ordinary piece of prose with plenty of substance to keep.",
		"--- ~~~ === ... ___ ///",
		"ok.",
		"This closing paragraph is also a perfectly ordinary piece of prose with plenty of substance to keep.",
	}, "\n\n")

	c, err := New(WithMaxChunkSize(20), WithOverlap(0))
	require.NoError(t, err)

	chunks, err := c.Split(core.IDFromContent("doc"), text)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	for _, chunk := range chunks {
		assert.NotContains(t, chunk.Text, "---")
		assert.Equal(t, chunk.Ordinal, chunk.Ordinal) // ordinals re-assigned 0..n-1
	}
	assert.Equal(t, 0, chunks[0].Ordinal)
	assert.Equal(t, 1, chunks[1].Ordinal)
}

func TestChunker_Split_Deterministic(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	docID := core.IDFromContent("decision")
	first, err := c.Split(docID, decisionSample)
	require.NoError(t, err)
	second, err := c.Split(docID, decisionSample)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Id, second[i].Id)
		assert.Equal(t, first[i].Text, second[i].Text)
	}
}

func TestChunker_Split_Empty(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	_, err = c.Split(core.IDFromContent("doc"), "   ")
	assert.ErrorIs(t, err, ErrEmptyDocument)
}
