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


package index

import (
	"math"
	"sort"

	"github.com/poiesic/lexidex/core"
)

// scoredID pairs a chunk ID with one signal's score.
type scoredID struct {
	id    core.ID
	score float64
}

// idfFunc scores a term's inverse document frequency.
type idfFunc func(term string) float64

// snapshot is the immutable in-memory search structure. Once published it
// is never mutated; writers build a fresh one and swap the pointer.
type snapshot struct {
	chunks map[core.ID]*core.Chunk

	// Dense: L2-normalized embedding vectors in a flat list.
	denseIDs []core.ID
	vectors  [][]float32

	// Sparse: per-chunk TF-IDF weights and norms, inverted postings.
	weights  map[core.ID]map[string]float64
	norms    map[core.ID]float64
	postings map[string][]core.ID
	queryIDF idfFunc
}

// buildSnapshot computes the search structures from the raw chunk and
// entry records. Entries without a matching chunk are skipped; callers
// reconcile those against the store before building.
func buildSnapshot(chunks map[core.ID]*core.Chunk, entries map[core.ID]*core.IndexEntry) *snapshot {
	s := &snapshot{
		chunks:   make(map[core.ID]*core.Chunk, len(chunks)),
		weights:  make(map[core.ID]map[string]float64, len(entries)),
		norms:    make(map[core.ID]float64, len(entries)),
		postings: make(map[string][]core.ID),
	}
	for id, chunk := range chunks {
		s.chunks[id] = chunk
	}

	// Document frequencies over chunks that have entries.
	docFreq := make(map[string]int)
	ids := make([]core.ID, 0, len(entries))
	for id, entry := range entries {
		if _, ok := chunks[id]; !ok {
			continue
		}
		ids = append(ids, id)
		for term := range entry.TermFreqs {
			docFreq[term]++
		}
	}
	// Deterministic iteration order for the dense list and postings.
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })

	total := len(ids)
	idf := func(term string) float64 {
		// Smoothed IDF; stays positive for terms present in every chunk.
		return math.Log(float64(1+total)/float64(1+docFreq[term])) + 1
	}

	for _, id := range ids {
		entry := entries[id]

		if len(entry.Vector) > 0 {
			s.denseIDs = append(s.denseIDs, id)
			s.vectors = append(s.vectors, normalized(entry.Vector))
		}

		if entry.TermCount == 0 {
			continue
		}
		w := make(map[string]float64, len(entry.TermFreqs))
		var sumSquares float64
		for term, tf := range entry.TermFreqs {
			weight := float64(tf) / float64(entry.TermCount) * idf(term)
			w[term] = weight
			sumSquares += weight * weight
			s.postings[term] = append(s.postings[term], id)
		}
		s.weights[id] = w
		s.norms[id] = math.Sqrt(sumSquares)
	}
	// Queries score terms with the same smoothed IDF as chunks.
	s.queryIDF = idf
	return s
}

// denseTopK returns the k best chunks by cosine similarity to the query
// vector. Negative similarities clamp to zero so scores stay in [0, 1].
func (s *snapshot) denseTopK(queryVector []float32, k int) []scoredID {
	if len(s.denseIDs) == 0 || len(queryVector) == 0 {
		return nil
	}
	query := normalized(queryVector)

	results := make([]scoredID, 0, len(s.denseIDs))
	for i, id := range s.denseIDs {
		score := float64(dotProduct(query, s.vectors[i]))
		if score < 0 {
			score = 0
		}
		results = append(results, scoredID{id: id, score: score})
	}
	return topK(results, k)
}

// sparseTopK returns the k best chunks by TF-IDF cosine over the query
// terms. Only chunks sharing at least one term are candidates.
func (s *snapshot) sparseTopK(query string, k int) []scoredID {
	queryFreqs, queryCount := TermStats(query)
	if queryCount == 0 {
		return nil
	}

	queryWeights := make(map[string]float64, len(queryFreqs))
	var querySumSquares float64
	for term, tf := range queryFreqs {
		weight := float64(tf) / float64(queryCount) * s.queryIDF(term)
		queryWeights[term] = weight
		querySumSquares += weight * weight
	}
	queryNorm := math.Sqrt(querySumSquares)
	if queryNorm == 0 {
		return nil
	}

	dots := make(map[core.ID]float64)
	for term, qw := range queryWeights {
		for _, id := range s.postings[term] {
			dots[id] += qw * s.weights[id][term]
		}
	}

	results := make([]scoredID, 0, len(dots))
	for id, dot := range dots {
		norm := s.norms[id]
		if norm == 0 {
			continue
		}
		results = append(results, scoredID{id: id, score: dot / (queryNorm * norm)})
	}
	return topK(results, k)
}

// topK sorts by score descending, chunk ID ascending on ties, and trims.
func topK(results []scoredID, k int) []scoredID {
	sort.Slice(results, func(a, b int) bool {
		if results[a].score != results[b].score {
			return results[a].score > results[b].score
		}
		return results[a].id < results[b].id
	})
	if len(results) > k {
		results = results[:k]
	}
	return results
}

// normalized returns an L2-normalized copy of the vector.
func normalized(vector []float32) []float32 {
	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	norm := math.Sqrt(sumSquares)
	if norm == 0 {
		return vector
	}
	out := make([]float32, len(vector))
	for i, v := range vector {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
