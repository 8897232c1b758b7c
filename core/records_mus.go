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


package core

import (
	"math"
	"sort"
	"time"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for every persisted record. Timestamps are encoded as
// Unix microseconds, float32 values as their IEEE-754 bit patterns.
// Map keys are written in sorted order so encoding is deterministic.
var (
	IDMUS         = idMUS{}
	DocumentMUS   = documentMUS{}
	ChunkMUS      = chunkMUS{}
	IndexEntryMUS = indexEntryMUS{}
)

var (
	_ mus.Serializer[ID]         = IDMUS
	_ mus.Serializer[Document]   = DocumentMUS
	_ mus.Serializer[Chunk]      = ChunkMUS
	_ mus.Serializer[IndexEntry] = IndexEntryMUS
)

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int { return varint.Uint64.Marshal(uint64(id), bs) }

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int { return varint.Uint64.Size(uint64(id)) }

func (idMUS) Skip(bs []byte) (int, error) { return varint.Uint64.Skip(bs) }

type documentMUS struct{}

func (documentMUS) Marshal(doc Document, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(doc.Id), bs)
	n += ord.String.Marshal(doc.SourcePath, bs[n:])
	n += varint.Int.Marshal(doc.PageCount, bs[n:])
	n += varint.Int64.Marshal(doc.CreatedAt.UnixMicro(), bs[n:])
	n += varint.Int.Marshal(len(doc.Pages), bs[n:])
	for _, page := range doc.Pages {
		n += marshalPageSummary(page, bs[n:])
	}
	return n
}

func (documentMUS) Unmarshal(bs []byte) (doc Document, n int, err error) {
	var (
		id    uint64
		micro int64
		count int
		n1    int
	)
	if id, n, err = varint.Uint64.Unmarshal(bs); err != nil {
		return
	}
	doc.Id = ID(id)
	if doc.SourcePath, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return doc, n + n1, err
	}
	n += n1
	if doc.PageCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return doc, n + n1, err
	}
	n += n1
	if micro, n1, err = varint.Int64.Unmarshal(bs[n:]); err != nil {
		return doc, n + n1, err
	}
	n += n1
	doc.CreatedAt = time.UnixMicro(micro).UTC()
	if count, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return doc, n + n1, err
	}
	n += n1
	if count > 0 {
		doc.Pages = make([]PageSummary, count)
		for i := 0; i < count; i++ {
			if doc.Pages[i], n1, err = unmarshalPageSummary(bs[n:]); err != nil {
				return doc, n + n1, err
			}
			n += n1
		}
	}
	return doc, n, nil
}

func (documentMUS) Size(doc Document) (size int) {
	size = varint.Uint64.Size(uint64(doc.Id))
	size += ord.String.Size(doc.SourcePath)
	size += varint.Int.Size(doc.PageCount)
	size += varint.Int64.Size(doc.CreatedAt.UnixMicro())
	size += varint.Int.Size(len(doc.Pages))
	for _, page := range doc.Pages {
		size += sizePageSummary(page)
	}
	return size
}

func (s documentMUS) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

func marshalPageSummary(page PageSummary, bs []byte) (n int) {
	n = varint.Int.Marshal(page.Number, bs)
	n += ord.String.Marshal(page.Extractor, bs[n:])
	n += varint.Uint64.Marshal(math.Float64bits(page.Confidence), bs[n:])
	n += varint.Int.Marshal(len(page.Failures), bs[n:])
	for _, failure := range page.Failures {
		n += ord.String.Marshal(failure.Extractor, bs[n:])
		n += ord.String.Marshal(failure.Reason, bs[n:])
	}
	return n
}

func unmarshalPageSummary(bs []byte) (page PageSummary, n int, err error) {
	var (
		bits  uint64
		count int
		n1    int
	)
	if page.Number, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	if page.Extractor, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return page, n + n1, err
	}
	n += n1
	if bits, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return page, n + n1, err
	}
	n += n1
	page.Confidence = math.Float64frombits(bits)
	if count, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return page, n + n1, err
	}
	n += n1
	if count > 0 {
		page.Failures = make([]ExtractionFailure, count)
		for i := 0; i < count; i++ {
			if page.Failures[i].Extractor, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
				return page, n + n1, err
			}
			n += n1
			if page.Failures[i].Reason, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
				return page, n + n1, err
			}
			n += n1
		}
	}
	return page, n, nil
}

func sizePageSummary(page PageSummary) (size int) {
	size = varint.Int.Size(page.Number)
	size += ord.String.Size(page.Extractor)
	size += varint.Uint64.Size(math.Float64bits(page.Confidence))
	size += varint.Int.Size(len(page.Failures))
	for _, failure := range page.Failures {
		size += ord.String.Size(failure.Extractor)
		size += ord.String.Size(failure.Reason)
	}
	return size
}

type chunkMUS struct{}

func (chunkMUS) Marshal(chunk Chunk, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(chunk.Id), bs)
	n += varint.Uint64.Marshal(uint64(chunk.DocumentId), bs[n:])
	n += ord.String.Marshal(chunk.Text, bs[n:])
	n += varint.Int.Marshal(chunk.Ordinal, bs[n:])
	n += ord.String.Marshal(chunk.SectionLabel, bs[n:])
	n += varint.Int.Marshal(chunk.CharCount, bs[n:])
	n += varint.Int.Marshal(chunk.WordCount, bs[n:])
	n += varint.Uint32.Marshal(uint32(chunk.Scripts), bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (chunk Chunk, n int, err error) {
	var (
		v       uint64
		scripts uint32
		n1      int
	)
	if v, n, err = varint.Uint64.Unmarshal(bs); err != nil {
		return
	}
	chunk.Id = ID(v)
	if v, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return chunk, n + n1, err
	}
	n += n1
	chunk.DocumentId = ID(v)
	if chunk.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return chunk, n + n1, err
	}
	n += n1
	if chunk.Ordinal, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return chunk, n + n1, err
	}
	n += n1
	if chunk.SectionLabel, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return chunk, n + n1, err
	}
	n += n1
	if chunk.CharCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return chunk, n + n1, err
	}
	n += n1
	if chunk.WordCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return chunk, n + n1, err
	}
	n += n1
	if scripts, n1, err = varint.Uint32.Unmarshal(bs[n:]); err != nil {
		return chunk, n + n1, err
	}
	n += n1
	chunk.Scripts = ScriptFlags(scripts)
	return chunk, n, nil
}

func (chunkMUS) Size(chunk Chunk) (size int) {
	size = varint.Uint64.Size(uint64(chunk.Id))
	size += varint.Uint64.Size(uint64(chunk.DocumentId))
	size += ord.String.Size(chunk.Text)
	size += varint.Int.Size(chunk.Ordinal)
	size += ord.String.Size(chunk.SectionLabel)
	size += varint.Int.Size(chunk.CharCount)
	size += varint.Int.Size(chunk.WordCount)
	size += varint.Uint32.Size(uint32(chunk.Scripts))
	return size
}

func (s chunkMUS) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}

type indexEntryMUS struct{}

func (indexEntryMUS) Marshal(entry IndexEntry, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(entry.ChunkId), bs)
	n += varint.Int.Marshal(len(entry.Vector), bs[n:])
	for _, v := range entry.Vector {
		n += varint.Uint32.Marshal(math.Float32bits(v), bs[n:])
	}
	terms := make([]string, 0, len(entry.TermFreqs))
	for term := range entry.TermFreqs {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	n += varint.Int.Marshal(len(terms), bs[n:])
	for _, term := range terms {
		n += ord.String.Marshal(term, bs[n:])
		n += varint.Uint32.Marshal(entry.TermFreqs[term], bs[n:])
	}
	n += varint.Uint32.Marshal(entry.TermCount, bs[n:])
	return n
}

func (indexEntryMUS) Unmarshal(bs []byte) (entry IndexEntry, n int, err error) {
	var (
		v     uint64
		bits  uint32
		count int
		n1    int
	)
	if v, n, err = varint.Uint64.Unmarshal(bs); err != nil {
		return
	}
	entry.ChunkId = ID(v)
	if count, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return entry, n + n1, err
	}
	n += n1
	if count > 0 {
		entry.Vector = make([]float32, count)
		for i := 0; i < count; i++ {
			if bits, n1, err = varint.Uint32.Unmarshal(bs[n:]); err != nil {
				return entry, n + n1, err
			}
			n += n1
			entry.Vector[i] = math.Float32frombits(bits)
		}
	}
	if count, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return entry, n + n1, err
	}
	n += n1
	entry.TermFreqs = make(map[string]uint32, count)
	for i := 0; i < count; i++ {
		var term string
		var freq uint32
		if term, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return entry, n + n1, err
		}
		n += n1
		if freq, n1, err = varint.Uint32.Unmarshal(bs[n:]); err != nil {
			return entry, n + n1, err
		}
		n += n1
		entry.TermFreqs[term] = freq
	}
	if entry.TermCount, n1, err = varint.Uint32.Unmarshal(bs[n:]); err != nil {
		return entry, n + n1, err
	}
	n += n1
	return entry, n, nil
}

func (indexEntryMUS) Size(entry IndexEntry) (size int) {
	size = varint.Uint64.Size(uint64(entry.ChunkId))
	size += varint.Int.Size(len(entry.Vector))
	for _, v := range entry.Vector {
		size += varint.Uint32.Size(math.Float32bits(v))
	}
	size += varint.Int.Size(len(entry.TermFreqs))
	for term, freq := range entry.TermFreqs {
		size += ord.String.Size(term)
		size += varint.Uint32.Size(freq)
	}
	size += varint.Uint32.Size(entry.TermCount)
	return size
}

func (s indexEntryMUS) Skip(bs []byte) (int, error) {
	_, n, err := s.Unmarshal(bs)
	return n, err
}
