package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/lexidex/core"
)

// Key prefixes for different data types
const (
	documentRecordPrefix = "docrec"
	chunkRecordPrefix    = "chkrec"
	chunkOrdinalPrefix   = "chkord"
	indexEntryPrefix     = "idxent"
)

// makeDocumentKey generates a key for a document record by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentRecordPrefix, id))
}

// makeChunkKey generates a key for a chunk record by chunk ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makeChunkOrdinalKey generates a composite key for the per-document
// ordinal index. Format: prefix:documentID:ordinal, both BigEndian so
// lexicographic iteration yields reading order.
func makeChunkOrdinalKey(documentID core.ID, ordinal int) []byte {
	prefix := chunkOrdinalPrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(ordinal))
	return buf
}

// makePartialChunkOrdinalKey generates a prefix covering every ordinal
// key of one document.
func makePartialChunkOrdinalKey(documentID core.ID) []byte {
	prefix := chunkOrdinalPrefix + ":"
	prefixBytes := []byte(prefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}

// makeIndexEntryKey generates a key for an index entry by chunk ID.
func makeIndexEntryKey(chunkID core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", indexEntryPrefix, chunkID))
}
