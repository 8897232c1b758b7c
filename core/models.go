package core

import (
	"encoding/binary"
	"image"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing so that identical inputs
// always map to identical IDs.
type ID uint64

// IDFromBytes generates a deterministic ID from raw content using BLAKE2b hashing.
func IDFromBytes(data []byte) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// IDFromContent generates a deterministic ID from text content.
func IDFromContent(text string) ID {
	return IDFromBytes([]byte(text))
}

// ChunkID derives the identifier of a chunk from its owning document and
// its ordinal. The derivation is stable, so re-ingesting an unchanged
// document reproduces the same chunk ID set.
func ChunkID(documentID ID, ordinal int) ID {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf, uint64(documentID))
	binary.LittleEndian.PutUint64(buf[8:], uint64(ordinal))
	return IDFromBytes(buf)
}

// ScriptFlags is a bitmask of writing systems observed in a piece of text.
type ScriptFlags uint8

const (
	// ScriptLatin marks Latin letters.
	ScriptLatin ScriptFlags = 1 << iota
	// ScriptDevanagari marks Devanagari letters.
	ScriptDevanagari
	// ScriptArabic marks Arabic letters.
	ScriptArabic
	// ScriptDigit marks decimal digits of any script.
	ScriptDigit
	// ScriptOther marks letters outside the recognized scripts.
	ScriptOther
)

// Mixed reports whether the flags cover more than one letter script.
// Digits are ignored: they attach to whichever script surrounds them.
func (f ScriptFlags) Mixed() bool {
	letters := f &^ ScriptDigit
	return letters&(letters-1) != 0
}

// Document describes an ingested source file. Immutable once ingested,
// except for deletion.
type Document struct {
	Id         ID
	SourcePath string
	PageCount  int
	CreatedAt  time.Time
	Pages      []PageSummary // Per-page extraction attribution
}

// PageSummary records which extractor produced a page's authoritative text
// and which backends failed along the way.
type PageSummary struct {
	Number     int // 1-based
	Extractor  string
	Confidence float64
	Failures   []ExtractionFailure
}

// Page is a rasterized document page. Pages are transient: they exist only
// during ingestion and are never persisted after extraction.
type Page struct {
	DocumentId ID
	Number     int // 1-based
	Bitmap     *image.Gray
	DPI        int
}

// ExtractionFailure records one backend's failure on one page.
// Failures are values, not control flow: the pipeline collects them and
// keeps trying the next backend.
type ExtractionFailure struct {
	Extractor string
	Reason    string
}

// ExtractionResult is the outcome of extracting text from a single page.
// Confidence is in [0,1]; higher is better. A zero-confidence result is
// never selected as authoritative while any alternative exists.
type ExtractionResult struct {
	Extractor  string
	Text       string
	Confidence float64
	Metadata   map[string]string
	Failures   []ExtractionFailure // Backends that failed before this result
}

// Empty reports whether the result carries no usable text.
func (r *ExtractionResult) Empty() bool {
	return r.Text == ""
}

// Chunk is a bounded, overlap-seeded segment of normalized document text:
// the unit of indexing and retrieval. Chunks are created once per ingestion
// pass and are immutable; they are deleted only with their owning document.
type Chunk struct {
	Id           ID
	DocumentId   ID
	Text         string
	Ordinal      int
	SectionLabel string
	CharCount    int
	WordCount    int
	Scripts      ScriptFlags
}

// IndexEntry holds the derived retrieval state for one chunk. Entries are
// owned exclusively by the hybrid index and are rebuilt whenever the chunk
// is added or removed.
type IndexEntry struct {
	ChunkId   ID
	Vector    []float32
	TermFreqs map[string]uint32
	TermCount uint32
}

// ScoredChunk is a search hit with its per-signal and fused scores.
type ScoredChunk struct {
	Chunk       *Chunk
	DenseScore  float64
	SparseScore float64
	Score       float64
}
