package models

import (
	"fmt"
	"math"

	"github.com/carerx/drug-advisor-api/interfaces"
)

// Compile-time check to ensure KMeansGrouping implements GroupingModel
var _ interfaces.GroupingModel = (*KMeansGrouping)(nil)

// groupingArtifact is the serialized clustering pipeline: category
// vocabularies for the one-hot encoder, scaler statistics for the numeric
// features, and the fitted k-means centroids.
type groupingArtifact struct {
	GenericNames       []string    `json:"generic_names"`
	TherapeuticClasses []string    `json:"therapeutic_classes"`
	NumericMeans       []float64   `json:"numeric_means"`
	NumericScales      []float64   `json:"numeric_scales"`
	Centroids          [][]float64 `json:"centroids"`
}

// KMeansGrouping assigns drugs to cost/therapeutic clusters by one-hot
// encoding the categorical features, scaling the numeric ones, and picking
// the nearest fitted centroid.
type KMeansGrouping struct {
	art          groupingArtifact
	genericIndex map[string]int
	classIndex   map[string]int
}

// LoadGroupingModel reads the clustering artifact and validates that the
// centroid dimension matches the preprocessing output.
func LoadGroupingModel(path string) (*KMeansGrouping, error) {
	var art groupingArtifact
	if err := readArtifact(path, &art); err != nil {
		return nil, err
	}
	if len(art.NumericMeans) != 2 || len(art.NumericScales) != 2 {
		return nil, fmt.Errorf("grouping model: expected 2 numeric features, got %d means and %d scales",
			len(art.NumericMeans), len(art.NumericScales))
	}
	if len(art.Centroids) == 0 {
		return nil, fmt.Errorf("grouping model: no centroids")
	}
	wantDim := len(art.GenericNames) + len(art.TherapeuticClasses) + 2
	for i, c := range art.Centroids {
		if len(c) != wantDim {
			return nil, fmt.Errorf("grouping model: centroid %d has dimension %d, want %d", i, len(c), wantDim)
		}
	}

	m := &KMeansGrouping{
		art:          art,
		genericIndex: make(map[string]int, len(art.GenericNames)),
		classIndex:   make(map[string]int, len(art.TherapeuticClasses)),
	}
	for i, g := range art.GenericNames {
		m.genericIndex[g] = i
	}
	for i, t := range art.TherapeuticClasses {
		m.classIndex[t] = i
	}
	return m, nil
}

// Clusters returns the number of fitted clusters.
func (m *KMeansGrouping) Clusters() int {
	return len(m.art.Centroids)
}

// AssignCluster returns the index of the nearest centroid for the encoded
// feature vector. Categories unseen at training time encode to all zeros,
// matching the training encoder's unknown handling.
func (m *KMeansGrouping) AssignCluster(genericName, therapeuticClass string, pmpmCost, avgAge float64) int {
	features := make([]float64, len(m.art.GenericNames)+len(m.art.TherapeuticClasses)+2)
	if idx, ok := m.genericIndex[genericName]; ok {
		features[idx] = 1
	}
	if idx, ok := m.classIndex[therapeuticClass]; ok {
		features[len(m.art.GenericNames)+idx] = 1
	}
	base := len(m.art.GenericNames) + len(m.art.TherapeuticClasses)
	features[base] = scale(pmpmCost, m.art.NumericMeans[0], m.art.NumericScales[0])
	features[base+1] = scale(avgAge, m.art.NumericMeans[1], m.art.NumericScales[1])

	best := 0
	bestDist := math.Inf(1)
	for i, centroid := range m.art.Centroids {
		var d float64
		for j := range centroid {
			diff := features[j] - centroid[j]
			d += diff * diff
		}
		if d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
