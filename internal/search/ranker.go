package search

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// ErrEmptyCorpus is returned by Rank when there is nothing to score. Callers
// treat it as "no results", not a failure.
var ErrEmptyCorpus = errors.New("ranking corpus is empty")

// Score pairs a corpus index with its cosine similarity to the query.
type Score struct {
	Index      int
	Similarity float64
}

// Rank scores every corpus vector against the query and returns the indices
// ordered by descending cosine similarity. The sort is stable, so ties keep
// their original corpus order.
func Rank(query []float64, corpus [][]float64) ([]Score, error) {
	if len(corpus) == 0 {
		return nil, ErrEmptyCorpus
	}

	scores := make([]Score, len(corpus))
	for i, vec := range corpus {
		scores[i] = Score{Index: i, Similarity: Cosine(query, vec)}
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Similarity > scores[j].Similarity
	})
	return scores, nil
}

// Cosine returns dot(a,b) / (|a|*|b|). A degenerate zero-norm vector scores 0
// rather than dividing by zero.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}
