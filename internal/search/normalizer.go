// Package search implements the semantic search core: text normalization,
// sentence embedding, and cosine-similarity ranking.
package search

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/bbalet/stopwords"
)

// Normalizer reduces free text to a canonical form before embedding:
// lowercase, stopwords and non-alphabetic tokens removed, remaining tokens
// lemmatized and joined with single spaces. Deterministic, no I/O.
type Normalizer struct {
	lemmatizer *golem.Lemmatizer
}

func NewNormalizer() (*Normalizer, error) {
	lemmatizer, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("failed to load english lemmatizer: %w", err)
	}
	return &Normalizer{lemmatizer: lemmatizer}, nil
}

// Normalize returns the canonical form of text. Empty or all-stopword input
// yields the empty string.
func (n *Normalizer) Normalize(text string) string {
	cleaned := stopwords.CleanString(strings.ToLower(text), "en", false)

	var out []string
	for _, token := range strings.Fields(cleaned) {
		if !isAlpha(token) {
			continue
		}
		out = append(out, n.lemmatizer.Lemma(token))
	}
	return strings.Join(out, " ")
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return len(s) > 0
}
