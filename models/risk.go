package models

import (
	"fmt"

	"github.com/carerx/drug-advisor-api/interfaces"
)

// Compile-time check to ensure RiskClassifier implements RiskModel
var _ interfaces.RiskModel = (*RiskClassifier)(nil)

// riskArtifact is the serialized interaction-risk pipeline: a text
// vectorizer, scaling statistics for the two numeric features, and a
// linear classifier over the concatenated feature vector.
type riskArtifact struct {
	Vectorizer    tfidfVectorizer `json:"vectorizer"`
	NumericMeans  []float64       `json:"numeric_means"`
	NumericScales []float64       `json:"numeric_scales"`
	Classes       []string        `json:"classes"`
	Weights       [][]float64     `json:"weights"`
	Intercepts    []float64       `json:"intercepts"`
}

// RiskClassifier scores interaction note text plus the source drug's cost
// and age profile against the trained risk labels.
type RiskClassifier struct {
	art riskArtifact
}

// LoadRiskModel reads the interaction-risk artifact. A feature schema
// mismatch inside the artifact is an integration bug and fails the load.
func LoadRiskModel(path string) (*RiskClassifier, error) {
	var art riskArtifact
	if err := readArtifact(path, &art); err != nil {
		return nil, err
	}
	if err := art.Vectorizer.validate("risk model"); err != nil {
		return nil, err
	}
	if len(art.NumericMeans) != 2 || len(art.NumericScales) != 2 {
		return nil, fmt.Errorf("risk model: expected 2 numeric features, got %d means and %d scales",
			len(art.NumericMeans), len(art.NumericScales))
	}
	if len(art.Classes) == 0 {
		return nil, fmt.Errorf("risk model: no classes")
	}
	if len(art.Weights) != len(art.Classes) || len(art.Intercepts) != len(art.Classes) {
		return nil, fmt.Errorf("risk model: weights/intercepts do not match %d classes", len(art.Classes))
	}
	wantDim := art.Vectorizer.dim() + 2
	for i, w := range art.Weights {
		if len(w) != wantDim {
			return nil, fmt.Errorf("risk model: class %d weight vector has dimension %d, want %d", i, len(w), wantDim)
		}
	}
	return &RiskClassifier{art: art}, nil
}

// PredictRisk returns the trained label with the highest linear score for
// the combined text plus scaled numeric features. Pure function of its
// inputs.
func (m *RiskClassifier) PredictRisk(combinedText string, pmpmCost, avgAge float64) string {
	text := m.art.Vectorizer.Vectorize(combinedText)
	features := make([]float64, 0, len(text)+2)
	features = append(features, text...)
	features = append(features, scale(pmpmCost, m.art.NumericMeans[0], m.art.NumericScales[0]))
	features = append(features, scale(avgAge, m.art.NumericMeans[1], m.art.NumericScales[1]))

	best := 0
	bestScore := dot(m.art.Weights[0], features) + m.art.Intercepts[0]
	for i := 1; i < len(m.art.Classes); i++ {
		score := dot(m.art.Weights[i], features) + m.art.Intercepts[i]
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return m.art.Classes[best]
}

func scale(x, mean, sd float64) float64 {
	if sd == 0 {
		return 0
	}
	return (x - mean) / sd
}
