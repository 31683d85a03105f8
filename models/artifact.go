// Package models loads the pre-trained model artifacts and provides
// inference over them. Artifacts are JSON files exported by the offline
// training pipeline; nothing in this package trains or mutates a model.
// All loaded models are immutable and safe for concurrent use.
package models

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode"
)

// readArtifact reads and decodes one JSON artifact file.
func readArtifact(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read model artifact %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode model artifact %s: %w", path, err)
	}
	return nil
}

// tfidfVectorizer is the exported state of the training-time text
// vectorizer: a token vocabulary and per-token inverse document
// frequencies.
type tfidfVectorizer struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
}

func (v *tfidfVectorizer) validate(name string) error {
	if len(v.Vocabulary) == 0 {
		return fmt.Errorf("%s: empty vocabulary", name)
	}
	if len(v.IDF) != len(v.Vocabulary) {
		return fmt.Errorf("%s: idf length %d does not match vocabulary size %d",
			name, len(v.IDF), len(v.Vocabulary))
	}
	for token, idx := range v.Vocabulary {
		if idx < 0 || idx >= len(v.IDF) {
			return fmt.Errorf("%s: token %q has out-of-range index %d", name, token, idx)
		}
	}
	return nil
}

func (v *tfidfVectorizer) dim() int {
	return len(v.IDF)
}

// Vectorize maps text to an l2-normalized tf-idf vector. Tokenization
// matches the training vectorizer: lower-cased alphanumeric runs of two or
// more characters.
func (v *tfidfVectorizer) Vectorize(text string) []float64 {
	vec := make([]float64, len(v.IDF))
	for _, token := range tokenize(text) {
		if idx, ok := v.Vocabulary[token]; ok {
			vec[idx] += v.IDF[idx]
		}
	}
	var norm float64
	for _, x := range vec {
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// tokenize splits text into lower-case alphanumeric tokens, dropping
// single-character tokens.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) >= 2 {
			out = append(out, f)
		}
	}
	return out
}

// dot returns the inner product of two equal-length vectors.
func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
