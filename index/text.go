package index

import (
	"strings"
	"unicode"
)

// Stop words excluded from term statistics and verbatim matching.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true, "shall": true, "may": true,
}

// tokenize splits text into terms: lowercased, stripped of surrounding
// punctuation, stop words removed. Works on any script; lowering is a
// no-op for unicameral scripts.
func tokenize(text string) []string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	terms := make([]string, 0, len(words))
	for _, word := range words {
		cleaned := strings.ToLower(strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		}))
		if cleaned != "" && !stopWords[cleaned] {
			terms = append(terms, cleaned)
		}
	}
	return terms
}

// TermStats computes the term frequency map and total term count of a
// chunk's text for its index entry.
func TermStats(text string) (map[string]uint32, uint32) {
	terms := tokenize(text)
	freqs := make(map[string]uint32, len(terms))
	for _, term := range terms {
		freqs[term]++
	}
	return freqs, uint32(len(terms))
}

// containsAllQueryWords checks if all query terms appear in the document.
func containsAllQueryWords(document, query string) bool {
	queryTerms := tokenize(query)
	if len(queryTerms) == 0 {
		return false
	}

	docTerms := tokenize(document)
	docSet := make(map[string]bool, len(docTerms))
	for _, term := range docTerms {
		docSet[term] = true
	}

	for _, term := range queryTerms {
		if !docSet[term] {
			return false
		}
	}
	return true
}
