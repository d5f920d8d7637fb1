// Package analytics implements the unsupervised building blocks of the
// enrichment pipeline: TF-IDF vectorization, a fixed-topic-count
// probabilistic topic model, feature standardization, and density-based
// clustering. Everything here is deterministic for a given seed; the
// enrichment output is part of the test contract.
package analytics

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenRe matches word tokens of two or more characters, mirroring the
// common vectorizer convention of dropping single-letter tokens.
var tokenRe = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// VectorizerParams bound the vocabulary.
type VectorizerParams struct {
	// MaxFeatures caps the vocabulary, keeping the most frequent terms.
	MaxFeatures int
	// MinDocFreq drops terms appearing in fewer documents than this.
	MinDocFreq int
}

// Corpus is the vectorized document collection. Weights holds one sparse
// TF-IDF vector per input document, L2-normalized, indexed into Vocabulary.
type Corpus struct {
	Vocabulary []string
	Weights    []map[int]float64
}

// Vectorize builds a TF-IDF weighted bag-of-words over unigrams and bigrams.
// English stopwords are removed before bigrams are formed. Terms below the
// document-frequency floor are dropped, and the vocabulary is capped at
// MaxFeatures keeping the terms with the highest corpus frequency (ties
// broken alphabetically, so the result is deterministic).
func Vectorize(docs []string, p VectorizerParams) Corpus {
	termCounts := make([]map[string]int, len(docs))
	docFreq := make(map[string]int)
	corpusFreq := make(map[string]int)

	for i, doc := range docs {
		counts := make(map[string]int)
		for _, term := range extractTerms(doc) {
			counts[term]++
		}
		termCounts[i] = counts
		for term, n := range counts {
			docFreq[term]++
			corpusFreq[term] += n
		}
	}

	var candidates []string
	for term, df := range docFreq {
		if df >= p.MinDocFreq {
			candidates = append(candidates, term)
		}
	}
	sort.Slice(candidates, func(a, b int) bool {
		if corpusFreq[candidates[a]] != corpusFreq[candidates[b]] {
			return corpusFreq[candidates[a]] > corpusFreq[candidates[b]]
		}
		return candidates[a] < candidates[b]
	})
	if p.MaxFeatures > 0 && len(candidates) > p.MaxFeatures {
		candidates = candidates[:p.MaxFeatures]
	}
	sort.Strings(candidates)

	index := make(map[string]int, len(candidates))
	for i, term := range candidates {
		index[term] = i
	}

	n := float64(len(docs))
	idf := make([]float64, len(candidates))
	for i, term := range candidates {
		// Smoothed idf: every term behaves as if seen in one extra document.
		idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	weights := make([]map[int]float64, len(docs))
	for d, counts := range termCounts {
		vec := make(map[int]float64)
		var norm float64
		for term, tf := range counts {
			i, ok := index[term]
			if !ok {
				continue
			}
			w := float64(tf) * idf[i]
			vec[i] = w
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for i := range vec {
				vec[i] /= norm
			}
		}
		weights[d] = vec
	}

	return Corpus{Vocabulary: candidates, Weights: weights}
}

// extractTerms tokenizes a document into stopword-filtered unigrams plus
// bigrams over the surviving tokens.
func extractTerms(doc string) []string {
	tokens := tokenRe.FindAllString(strings.ToLower(doc), -1)

	kept := tokens[:0]
	for _, tok := range tokens {
		if !stopwords[tok] {
			kept = append(kept, tok)
		}
	}

	terms := make([]string, 0, len(kept)*2)
	terms = append(terms, kept...)
	for i := 0; i+1 < len(kept); i++ {
		terms = append(terms, kept[i]+" "+kept[i+1])
	}
	return terms
}
