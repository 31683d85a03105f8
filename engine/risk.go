package engine

import (
	"fmt"
	"strings"

	"github.com/carerx/drug-advisor-api/catalog/entities"
)

// Risk labels produced by the interaction classifier. RiskWarning is not a
// trained label: it is returned only when the classifier itself is not
// loaded.
const (
	RiskLowRisk              = "Low Risk"
	RiskPotentialInteraction = "Potential Interaction"
	RiskHighRisk             = "High Risk"
	RiskWarning              = "Warning"
)

// InteractionResult is a classified drug-interaction finding. A nil
// *InteractionResult is the distinguished no-interaction outcome, not a
// risk level.
type InteractionResult struct {
	RiskLabel   string `json:"risk_label"`
	Description string `json:"description"`
}

// CheckInteraction decides whether one drug's free-text interaction notes
// mention the other's generic name and classifies the matching text.
//
// The match is asymmetric and first-match-wins: a's notes are checked for
// b's generic first, and b's notes for a's generic only if that fails. The
// drug whose notes matched becomes the prediction source; its name, generic
// and matched text form the classifier's text feature, with its cost and
// age profile as numeric features. Pure function of its inputs.
func (e *Engine) CheckInteraction(a, b entities.DrugRecord) *InteractionResult {
	if e.risk == nil {
		return &InteractionResult{
			RiskLabel:   RiskWarning,
			Description: "Interaction risk model is not available.",
		}
	}

	var source *entities.DrugRecord
	var matchedText string
	if b.HasGeneric() && containsFold(a.DrugInteractions, *b.GenericName) {
		source = &a
		matchedText = a.DrugInteractions
	} else if a.HasGeneric() && containsFold(b.DrugInteractions, *a.GenericName) {
		source = &b
		matchedText = b.DrugInteractions
	} else {
		return nil
	}

	generic := ""
	if source.HasGeneric() {
		generic = *source.GenericName
	}
	var cost, age float64
	if source.PMPMCost != nil {
		cost = *source.PMPMCost
	}
	if source.AvgAge != nil {
		age = *source.AvgAge
	}

	combined := fmt.Sprintf("%s %s %s", source.DrugName, generic, matchedText)
	label := e.risk.PredictRisk(combined, cost, age)

	return &InteractionResult{
		RiskLabel:   label,
		Description: fmt.Sprintf("DRUG INTERACTION FOUND in '%s' data: %s", source.DrugName, matchedText),
	}
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
