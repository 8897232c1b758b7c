package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lexidex/core"
)

func TestMarshalUnmarshalID(t *testing.T) {
	tests := []struct {
		name string
		id   core.ID
	}{
		{"zero ID", core.ID(0)},
		{"small ID", core.ID(42)},
		{"large ID", core.ID(18446744073709551615)}, // max uint64
		{"content-based ID", core.IDFromContent("test content")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalID(tt.id)
			require.NotEmpty(t, data)

			decoded, err := UnmarshalID(data)
			require.NoError(t, err)
			assert.Equal(t, tt.id, decoded)
		})
	}
}

func TestUnmarshalID_Empty(t *testing.T) {
	_, err := UnmarshalID([]byte{})
	assert.Error(t, err)
}

func TestMarshalUnmarshalDocument(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	document := &core.Document{
		Id:         core.IDFromContent("judgment.tiff"),
		SourcePath: "/data/judgments/judgment.tiff",
		PageCount:  2,
		CreatedAt:  now,
		Pages: []core.PageSummary{
			{Number: 1, Extractor: "ocr", Confidence: 0.91},
			{Number: 2, Extractor: "vision", Confidence: 0.64, Failures: []core.ExtractionFailure{
				{Extractor: "ocr", Reason: "no text recognized"},
			}},
		},
	}

	decoded, err := UnmarshalDocument(MarshalDocument(document))
	require.NoError(t, err)
	assert.Equal(t, document, decoded)
}

func TestMarshalUnmarshalChunk(t *testing.T) {
	docID := core.IDFromContent("statute")
	chunk := &core.Chunk{
		Id:           core.ChunkID(docID, 3),
		DocumentId:   docID,
		Text:         "Section 437. When bail may be taken in case of non-bailable offence.",
		Ordinal:      3,
		SectionLabel: "Section 437",
		CharCount:    69,
		WordCount:    12,
		Scripts:      core.ScriptLatin | core.ScriptDigit,
	}

	decoded, err := UnmarshalChunk(MarshalChunk(chunk))
	require.NoError(t, err)
	assert.Equal(t, chunk, decoded)
}

func TestMarshalUnmarshalIndexEntry(t *testing.T) {
	entry := &core.IndexEntry{
		ChunkId:   core.IDFromContent("chunk"),
		Vector:    []float32{0.25, -0.5, 0.75},
		TermFreqs: map[string]uint32{"bail": 2, "court": 1, "section": 3},
		TermCount: 6,
	}

	decoded, err := UnmarshalIndexEntry(MarshalIndexEntry(entry))
	require.NoError(t, err)
	assert.Equal(t, entry, decoded)
}

func TestUnmarshalChunk_Truncated(t *testing.T) {
	chunk := &core.Chunk{
		Id:         core.ChunkID(1, 0),
		DocumentId: 1,
		Text:       "some chunk text long enough to truncate meaningfully",
		CharCount:  52,
		WordCount:  9,
	}
	data := MarshalChunk(chunk)

	_, err := UnmarshalChunk(data[:len(data)/2])
	assert.Error(t, err)
}
