package models

import (
	"fmt"

	"github.com/carerx/drug-advisor-api/interfaces"
)

// Compile-time checks to ensure both topic projections implement TopicModel
var (
	_ interfaces.TopicModel = (*nmfTopics)(nil)
	_ interfaces.TopicModel = (*ldaTopics)(nil)
)

// efficacyArtifact is the serialized clinical-efficacy topic pair: one
// shared text vectorizer and the component matrices of two independently
// trained topic models over the same term space.
type efficacyArtifact struct {
	Vectorizer    tfidfVectorizer `json:"vectorizer"`
	NMFComponents [][]float64     `json:"nmf_components"`
	LDAComponents [][]float64     `json:"lda_components"`
}

// EfficacyModel holds the loaded topic pair. The two projections share the
// vectorizer and have the same topic count so their outputs can be blended.
type EfficacyModel struct {
	art efficacyArtifact
}

// LoadEfficacyModel reads the efficacy topic-pair artifact.
func LoadEfficacyModel(path string) (*EfficacyModel, error) {
	var art efficacyArtifact
	if err := readArtifact(path, &art); err != nil {
		return nil, err
	}
	if err := art.Vectorizer.validate("efficacy model"); err != nil {
		return nil, err
	}
	if len(art.NMFComponents) == 0 || len(art.LDAComponents) == 0 {
		return nil, fmt.Errorf("efficacy model: missing topic components")
	}
	if len(art.NMFComponents) != len(art.LDAComponents) {
		return nil, fmt.Errorf("efficacy model: topic counts differ (nmf %d, lda %d)",
			len(art.NMFComponents), len(art.LDAComponents))
	}
	dim := art.Vectorizer.dim()
	for i, row := range art.NMFComponents {
		if len(row) != dim {
			return nil, fmt.Errorf("efficacy model: nmf component %d has dimension %d, want %d", i, len(row), dim)
		}
	}
	for i, row := range art.LDAComponents {
		if len(row) != dim {
			return nil, fmt.Errorf("efficacy model: lda component %d has dimension %d, want %d", i, len(row), dim)
		}
	}
	return &EfficacyModel{art: art}, nil
}

// Topics returns the shared latent topic count.
func (m *EfficacyModel) Topics() int {
	return len(m.art.NMFComponents)
}

// NMF returns the non-negative factorization projection.
func (m *EfficacyModel) NMF() interfaces.TopicModel {
	return &nmfTopics{m: m}
}

// LDA returns the latent-allocation projection.
func (m *EfficacyModel) LDA() interfaces.TopicModel {
	return &ldaTopics{m: m}
}

type nmfTopics struct {
	m *EfficacyModel
}

// Transform projects text onto the non-negative topic basis: per-topic
// inner products with negatives clamped to zero.
func (t *nmfTopics) Transform(text string) []float64 {
	vec := t.m.art.Vectorizer.Vectorize(text)
	out := make([]float64, len(t.m.art.NMFComponents))
	for k, comp := range t.m.art.NMFComponents {
		s := dot(vec, comp)
		if s > 0 {
			out[k] = s
		}
	}
	return out
}

type ldaTopics struct {
	m *EfficacyModel
}

// Transform projects text onto the allocation topics and normalizes the
// scores into a distribution. With no mass anywhere the distribution is
// uniform, matching the trained model's prior on unseen text.
func (t *ldaTopics) Transform(text string) []float64 {
	vec := t.m.art.Vectorizer.Vectorize(text)
	k := len(t.m.art.LDAComponents)
	out := make([]float64, k)
	var total float64
	for i, comp := range t.m.art.LDAComponents {
		s := dot(vec, comp)
		if s > 0 {
			out[i] = s
			total += s
		}
	}
	if total == 0 {
		for i := range out {
			out[i] = 1 / float64(k)
		}
		return out
	}
	for i := range out {
		out[i] /= total
	}
	return out
}
