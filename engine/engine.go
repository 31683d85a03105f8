// Package engine implements the drug recommendation core: cluster-scoped
// cost-effective alternative lookup, interaction risk classification,
// efficacy similarity ranking, and the orchestration that combines them
// into single-drug and two-drug recommendations.
//
// The engine is stateless per request. The catalog and all model artifacts
// are loaded once at start and shared by reference; concurrent requests
// need no locking.
package engine

import (
	"github.com/carerx/drug-advisor-api/catalog"
	"github.com/carerx/drug-advisor-api/catalog/entities"
	"github.com/carerx/drug-advisor-api/interfaces"
	"github.com/carerx/drug-advisor-api/logging"
	"github.com/carerx/drug-advisor-api/metrics"
)

// maxPairCandidates caps each side of the combinatorial safe-pair search so
// worst-case latency stays bounded by 50x50 classifier calls.
const maxPairCandidates = 50

// Deps are the pre-trained capabilities and collaborators injected into the
// engine at start-up. Any of them may be nil; the engine degrades where the
// missing capability allows it.
type Deps struct {
	Risk     interfaces.RiskModel
	Grouping interfaces.GroupingModel
	NMF      interfaces.TopicModel
	LDA      interfaces.TopicModel
	Ledger   interfaces.CostLedger
}

// Engine answers "what should this member take instead" for one or two
// drugs.
type Engine struct {
	catalog  *catalog.Catalog
	risk     interfaces.RiskModel
	grouping interfaces.GroupingModel
	nmf      interfaces.TopicModel
	lda      interfaces.TopicModel
	ledger   interfaces.CostLedger
}

// New creates an engine over the loaded catalog and injected capabilities.
func New(cat *catalog.Catalog, deps Deps) *Engine {
	return &Engine{
		catalog:  cat,
		risk:     deps.Risk,
		grouping: deps.Grouping,
		nmf:      deps.NMF,
		lda:      deps.LDA,
		ledger:   deps.Ledger,
	}
}

// Catalog returns the engine's catalog.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// candidatesFor builds the substitution candidate list for one drug:
// records of the drug's cluster sorted cheapest first, or a one-element
// list holding the drug itself when no substitution is possible (no
// generic, NA equivalence code, unknown cluster, or empty cluster).
func (e *Engine) candidatesFor(drug entities.DrugRecord) []entities.DrugRecord {
	if !drug.Substitutable() {
		return []entities.DrugRecord{drug}
	}
	clusterID, ok := e.clusterOf(drug)
	if !ok {
		return []entities.DrugRecord{drug}
	}
	candidates := e.catalog.RecordsInCluster(clusterID)
	if len(candidates) == 0 {
		return []entities.DrugRecord{drug}
	}
	return candidates
}

// findSafePair walks the candidate cross product in nested ascending-cost
// order (drug-1 candidates outer, drug-2 inner) and returns the first pair
// whose interaction comes back clean or Low Risk. The accepted pair is
// cheapest-for-drug-1-then-cheapest-compatible-for-drug-2, not globally
// cheapest. When the whole product is risky, the cheapest candidate of
// each list is returned regardless of risk; the caller reports that pair's
// computed risk unmodified.
func (e *Engine) findSafePair(candidates1, candidates2 []entities.DrugRecord) (entities.DrugRecord, entities.DrugRecord) {
	c1 := candidates1
	if len(c1) > maxPairCandidates {
		c1 = c1[:maxPairCandidates]
	}
	c2 := candidates2
	if len(c2) > maxPairCandidates {
		c2 = c2[:maxPairCandidates]
	}

	for _, alt1 := range c1 {
		for _, alt2 := range c2 {
			result := e.CheckInteraction(alt1, alt2)
			if result == nil || result.RiskLabel == RiskLowRisk {
				metrics.SafePairSearches.WithLabelValues("accepted").Inc()
				return alt1, alt2
			}
		}
	}

	metrics.SafePairSearches.WithLabelValues("fallback").Inc()
	return candidates1[0], candidates2[0]
}

// recordSavings appends one positive-savings event to the cost-impact
// ledger. Failures are logged and swallowed: a ledger outage must never
// fail the recommendation response.
func (e *Engine) recordSavings(originalCost, reducedCost float64) {
	if e.ledger == nil {
		return
	}
	if err := e.ledger.Append(originalCost, reducedCost); err != nil {
		lwe := &LedgerWriteError{Err: err}
		logging.Warn("Could not save cost impact", "error", lwe.Error(),
			"original_cost", originalCost, "reduced_cost", reducedCost)
	}
}
