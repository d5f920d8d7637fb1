package analytics

import (
	"math/rand"
	"sort"
)

// Dirichlet-style smoothing priors for the EM updates. They keep every
// topic-term and document-topic probability strictly positive.
const (
	docTopicPrior  = 0.1
	topicTermPrior = 0.01
)

// TopicModelParams configure the topic model. Seed and Iterations are fixed
// so repeated runs over the same corpus produce identical assignments.
type TopicModelParams struct {
	Topics     int
	Iterations int
	Seed       int64
}

// TopicModel holds the fitted distributions: one topic distribution per
// document and one term distribution per topic.
type TopicModel struct {
	DocTopics  [][]float64
	TopicTerms [][]float64
}

// FitTopics fits a fixed-topic-count probabilistic topic model to a TF-IDF
// corpus with smoothed EM. Topic-term distributions are initialized from the
// seeded generator; document-topic distributions start uniform. A document
// with no in-vocabulary terms keeps the uniform distribution, so every
// document always has a dominant topic.
func FitTopics(corpus Corpus, p TopicModelParams) TopicModel {
	k := p.Topics
	v := len(corpus.Vocabulary)
	d := len(corpus.Weights)

	docTopics := make([][]float64, d)
	for i := range docTopics {
		docTopics[i] = uniform(k)
	}

	model := TopicModel{DocTopics: docTopics, TopicTerms: make([][]float64, k)}
	if v == 0 {
		for z := range model.TopicTerms {
			model.TopicTerms[z] = []float64{}
		}
		return model
	}

	rng := rand.New(rand.NewSource(p.Seed))
	topicTerms := make([][]float64, k)
	for z := range topicTerms {
		row := make([]float64, v)
		var sum float64
		for w := range row {
			row[w] = rng.Float64() + topicTermPrior
			sum += row[w]
		}
		for w := range row {
			row[w] /= sum
		}
		topicTerms[z] = row
	}

	resp := make([]float64, k)
	for it := 0; it < p.Iterations; it++ {
		nextDoc := filled(d, k, docTopicPrior)
		nextTopic := filled(k, v, topicTermPrior)

		for i, vec := range corpus.Weights {
			for w, x := range vec {
				var denom float64
				for z := 0; z < k; z++ {
					resp[z] = docTopics[i][z] * topicTerms[z][w]
					denom += resp[z]
				}
				if denom == 0 {
					continue
				}
				for z := 0; z < k; z++ {
					r := x * resp[z] / denom
					nextDoc[i][z] += r
					nextTopic[z][w] += r
				}
			}
		}

		for i := range nextDoc {
			normalize(nextDoc[i])
		}
		for z := range nextTopic {
			normalize(nextTopic[z])
		}
		docTopics, topicTerms = nextDoc, nextTopic
	}

	model.DocTopics = docTopics
	model.TopicTerms = topicTerms
	return model
}

// Dominant returns the highest-probability topic for document i and its
// probability. Ties resolve to the lowest topic id.
func (m TopicModel) Dominant(i int) (topic int, confidence float64) {
	best := 0
	for z, p := range m.DocTopics[i] {
		if p > m.DocTopics[i][best] {
			best = z
		}
	}
	return best, m.DocTopics[i][best]
}

// TopTerms returns the n highest-weighted vocabulary terms for each topic,
// weight descending with alphabetical tie-break.
func (m TopicModel) TopTerms(corpus Corpus, n int) [][]string {
	out := make([][]string, len(m.TopicTerms))
	for z, row := range m.TopicTerms {
		idx := make([]int, len(row))
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(a, b int) bool {
			if row[idx[a]] != row[idx[b]] {
				return row[idx[a]] > row[idx[b]]
			}
			return corpus.Vocabulary[idx[a]] < corpus.Vocabulary[idx[b]]
		})
		limit := n
		if limit > len(idx) {
			limit = len(idx)
		}
		terms := make([]string, limit)
		for i := 0; i < limit; i++ {
			terms[i] = corpus.Vocabulary[idx[i]]
		}
		out[z] = terms
	}
	return out
}

func uniform(k int) []float64 {
	row := make([]float64, k)
	for i := range row {
		row[i] = 1 / float64(k)
	}
	return row
}

func filled(rows, cols int, value float64) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		row := make([]float64, cols)
		for j := range row {
			row[j] = value
		}
		out[i] = row
	}
	return out
}

func normalize(row []float64) {
	var sum float64
	for _, v := range row {
		sum += v
	}
	if sum == 0 {
		return
	}
	for i := range row {
		row[i] /= sum
	}
}
