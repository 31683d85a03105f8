package engine

import (
	"math"
	"sort"

	"github.com/carerx/drug-advisor-api/catalog/entities"
)

// Topic blend weights for the two efficacy models. Fixed at training time.
const (
	nmfBlendWeight = 0.6
	ldaBlendWeight = 0.4
)

// DefaultTopAlternatives is the number of efficacy alternatives attached to
// a recommendation.
const DefaultTopAlternatives = 3

// EfficacyAlternative is one ranked same-generic alternative.
type EfficacyAlternative struct {
	Drug           entities.DrugRecord `json:"drug_info"`
	Similarity     float64             `json:"efficacy_similarity"`
	CostDifference float64             `json:"cost_difference"`
}

// RankAlternatives ranks candidates sharing the drug's generic name and
// therapeutic class by clinical-efficacy similarity, most similar first and
// cheapest among ties. Similarity is the cosine between blended topic
// vectors (0.6 of the factorization model, 0.4 of the allocation model)
// over each record's efficacy text. Returns nil when the topic models are
// unavailable or the drug has no exact generic+class peers.
func (e *Engine) RankAlternatives(drug entities.DrugRecord, topN int) []EfficacyAlternative {
	if e.nmf == nil || e.lda == nil {
		return nil
	}
	if drug.ClinicalEfficacy == "" {
		return nil
	}
	candidates := e.catalog.SameGenericPeers(drug)
	if len(candidates) == 0 {
		return nil
	}
	if topN <= 0 {
		topN = DefaultTopAlternatives
	}

	target := e.combinedTopicVector(drug.ClinicalEfficacy)

	ranked := make([]EfficacyAlternative, 0, len(candidates))
	for _, candidate := range candidates {
		vec := e.combinedTopicVector(candidate.ClinicalEfficacy)
		var costDiff float64
		if candidate.PMPMCost != nil && drug.PMPMCost != nil {
			costDiff = *candidate.PMPMCost - *drug.PMPMCost
		}
		ranked = append(ranked, EfficacyAlternative{
			Drug:           candidate,
			Similarity:     cosineSimilarity(target, vec),
			CostDifference: costDiff,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Similarity != ranked[j].Similarity {
			return ranked[i].Similarity > ranked[j].Similarity
		}
		return costOf(ranked[i].Drug) < costOf(ranked[j].Drug)
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// combinedTopicVector blends the two topic model outputs for one text.
func (e *Engine) combinedTopicVector(text string) []float64 {
	nmf := e.nmf.Transform(text)
	lda := e.lda.Transform(text)
	out := make([]float64, len(nmf))
	for i := range out {
		out[i] = nmfBlendWeight*nmf[i] + ldaBlendWeight*lda[i]
	}
	return out
}

func costOf(d entities.DrugRecord) float64 {
	if d.PMPMCost == nil {
		return math.Inf(1)
	}
	return *d.PMPMCost
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
