package engine

import (
	"fmt"

	"github.com/carerx/drug-advisor-api/catalog"
	"github.com/carerx/drug-advisor-api/catalog/entities"
	"github.com/carerx/drug-advisor-api/metrics"
)

// Analysis type discriminators in the response payload.
const (
	AnalysisSingleDrug  = "single_drug"
	AnalysisCombination = "combination"
)

// InteractionSummary is the caller-facing form of an interaction result.
// The risk label is carried from the classifier unmodified; it is never
// downgraded for presentation.
type InteractionSummary struct {
	RiskLabel   string `json:"risk_label"`
	Description string `json:"description"`
}

// SingleDrugAnalysis is the analysis payload for a one-drug request.
type SingleDrugAnalysis struct {
	Type                 string                `json:"type"`
	CostSavingPerMember  float64               `json:"cost_saving_per_member"`
	PercentageSaving     float64               `json:"percentage_saving"`
	EfficacyAlternatives []EfficacyAlternative `json:"clinical_efficacy_alternatives"`
}

// CombinationAlternatives carries the efficacy alternatives for both
// original drugs of a pair request.
type CombinationAlternatives struct {
	Drug1 []EfficacyAlternative `json:"drug1"`
	Drug2 []EfficacyAlternative `json:"drug2"`
}

// CombinationAnalysis is the analysis payload for a two-drug request.
type CombinationAnalysis struct {
	Type                   string                  `json:"type"`
	TotalCostSaving        float64                 `json:"total_cost_saving"`
	PercentageSaving       float64                 `json:"percentage_saving"`
	OriginalInteraction    InteractionSummary      `json:"original_interaction"`
	RecommendedInteraction InteractionSummary      `json:"recommended_interaction"`
	EfficacyAlternatives   CombinationAlternatives `json:"clinical_efficacy_alternatives"`
}

// Result is a complete recommendation response.
type Result struct {
	OriginalDrugs    []entities.DrugRecord `json:"original_drugs"`
	RecommendedDrugs []entities.DrugRecord `json:"recommended_drugs"`
	Analysis         any                   `json:"analysis"`
}

// Recommend resolves the requested drug names and produces a single-drug or
// combination recommendation. Requests with more than two names use the
// first two.
//
// Errors: *ValidationError for an empty request or a duplicate-generic
// pair, *NotFoundError listing every unknown name, *ModelUnavailableError
// when no recommendation can be produced at all.
func (e *Engine) Recommend(names []string) (*Result, error) {
	if e.catalog == nil || e.catalog.Len() == 0 {
		return nil, &ModelUnavailableError{Resource: "drug catalog"}
	}

	normalized := make([]string, 0, len(names))
	for _, name := range names {
		if n := catalog.NormalizeName(name); n != "" {
			normalized = append(normalized, n)
		}
	}
	if len(normalized) == 0 {
		return nil, &ValidationError{Message: "no drug names provided"}
	}

	originals := make([]entities.DrugRecord, 0, len(normalized))
	var missing []string
	for _, name := range normalized {
		record, ok := e.catalog.Resolve(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		originals = append(originals, record)
	}
	if len(missing) > 0 {
		return nil, &NotFoundError{Names: missing}
	}

	if len(originals) >= 2 && e.catalog.SameGeneric(originals[0], originals[1]) {
		return nil, &ValidationError{
			Message: fmt.Sprintf("Both drugs have the same generic name (%s). This is not a recommended combination.",
				*originals[0].GenericName),
		}
	}

	if len(originals) == 1 {
		return e.recommendSingle(originals[0]), nil
	}
	return e.recommendPair(originals[0], originals[1]), nil
}

// recommendSingle picks the cheapest valid cluster peer, or the drug
// itself when no substitution is possible.
func (e *Engine) recommendSingle(original entities.DrugRecord) *Result {
	metrics.RecommendationsTotal.WithLabelValues(AnalysisSingleDrug).Inc()

	recommended := e.candidatesFor(original)[0]

	var saving, percentage float64
	if original.PMPMCost != nil && recommended.PMPMCost != nil {
		saving = *original.PMPMCost - *recommended.PMPMCost
		if *original.PMPMCost > 0 {
			percentage = saving / *original.PMPMCost * 100
		}
	}

	if saving > 0 {
		e.recordSavings(*original.PMPMCost, *recommended.PMPMCost)
	}

	return &Result{
		OriginalDrugs:    []entities.DrugRecord{original},
		RecommendedDrugs: []entities.DrugRecord{recommended},
		Analysis: SingleDrugAnalysis{
			Type:                 AnalysisSingleDrug,
			CostSavingPerMember:  saving,
			PercentageSaving:     percentage,
			EfficacyAlternatives: e.RankAlternatives(original, DefaultTopAlternatives),
		},
	}
}

// recommendPair classifies the original pair, runs the safe-pair search
// over both candidate lists, and reports before/after risk and savings.
func (e *Engine) recommendPair(original1, original2 entities.DrugRecord) *Result {
	metrics.RecommendationsTotal.WithLabelValues(AnalysisCombination).Inc()

	originalInteraction := e.CheckInteraction(original1, original2)

	candidates1 := e.candidatesFor(original1)
	candidates2 := e.candidatesFor(original2)
	recommended1, recommended2 := e.findSafePair(candidates1, candidates2)

	recommendedInteraction := e.CheckInteraction(recommended1, recommended2)

	totalOriginal := costOf(original1) + costOf(original2)
	totalRecommended := costOf(recommended1) + costOf(recommended2)
	saving := totalOriginal - totalRecommended
	var percentage float64
	if totalOriginal > 0 {
		percentage = saving / totalOriginal * 100
	}

	if saving > 0 {
		e.recordSavings(totalOriginal, totalRecommended)
	}

	return &Result{
		OriginalDrugs:    []entities.DrugRecord{original1, original2},
		RecommendedDrugs: []entities.DrugRecord{recommended1, recommended2},
		Analysis: CombinationAnalysis{
			Type:             AnalysisCombination,
			TotalCostSaving:  saving,
			PercentageSaving: percentage,
			OriginalInteraction: summarize(originalInteraction,
				"No interaction found in data."),
			RecommendedInteraction: summarize(recommendedInteraction,
				"This combination is considered safe (no interaction found)."),
			EfficacyAlternatives: CombinationAlternatives{
				Drug1: e.RankAlternatives(original1, DefaultTopAlternatives),
				Drug2: e.RankAlternatives(original2, DefaultTopAlternatives),
			},
		},
	}
}

// summarize converts a possibly-nil interaction result into its payload
// form, using noInteractionText for the distinguished no-interaction
// outcome.
func summarize(result *InteractionResult, noInteractionText string) InteractionSummary {
	if result == nil {
		return InteractionSummary{RiskLabel: "No Interaction", Description: noInteractionText}
	}
	return InteractionSummary{RiskLabel: result.RiskLabel, Description: result.Description}
}
