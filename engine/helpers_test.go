package engine

import (
	"github.com/carerx/drug-advisor-api/catalog"
	"github.com/carerx/drug-advisor-api/catalog/entities"
	"github.com/carerx/drug-advisor-api/interfaces"
)

// Test stubs for the injected model capabilities.

type stubRisk struct {
	fn func(text string, cost, age float64) string
}

func (s stubRisk) PredictRisk(text string, cost, age float64) string {
	if s.fn == nil {
		return RiskLowRisk
	}
	return s.fn(text, cost, age)
}

type stubGrouping struct {
	clusters map[string]int
}

func (s stubGrouping) AssignCluster(genericName, therapeuticClass string, pmpmCost, avgAge float64) int {
	return s.clusters[genericName]
}

type stubTopics struct {
	vectors map[string][]float64
	dim     int
}

func (s stubTopics) Transform(text string) []float64 {
	if vec, ok := s.vectors[text]; ok {
		return vec
	}
	return make([]float64, s.dim)
}

type stubLedger struct {
	appends [][2]float64
	failErr error
}

func (s *stubLedger) Append(originalCost, reducedCost float64) error {
	if s.failErr != nil {
		return s.failErr
	}
	s.appends = append(s.appends, [2]float64{originalCost, reducedCost})
	return nil
}

func (s *stubLedger) Summary() (interfaces.CostSummary, error) {
	var sum interfaces.CostSummary
	for _, a := range s.appends {
		sum.OriginalTotalCost += a[0]
		sum.ReducedTotalCost += a[1]
	}
	sum.TotalSavings = sum.OriginalTotalCost - sum.ReducedTotalCost
	if sum.OriginalTotalCost > 0 {
		sum.ReductionPercent = sum.TotalSavings / sum.OriginalTotalCost * 100
	}
	return sum, nil
}

func (s *stubLedger) Records() ([]interfaces.CostImpact, error) { return nil, nil }
func (s *stubLedger) Clear() error                              { s.appends = nil; return nil }
func (s *stubLedger) Close() error                              { return nil }

func fp(v float64) *float64 { return &v }
func sp(s string) *string   { return &s }

// record builds a substitutable drug record with the fields the engine
// reads. Names are upper-cased at load time, so fixtures use upper case.
func record(name, generic, class string, cost, age float64) entities.DrugRecord {
	return entities.DrugRecord{
		DrugName:                   name,
		GenericName:                sp(generic),
		TherapeuticClass:           class,
		PMPMCost:                   fp(cost),
		AvgAge:                     fp(age),
		TherapeuticEquivalenceCode: "AB",
		DrugInteractions:           entities.NoInteractionData,
		ClinicalEfficacy:           entities.NoEfficacyData,
	}
}

// newTestEngine builds an engine over the records with clusters assigned
// through the grouping stub.
func newTestEngine(records []entities.DrugRecord, deps Deps) *Engine {
	cat := catalog.New(records)
	eng := New(cat, deps)
	if deps.Grouping != nil {
		eng.AssignClusters()
	}
	return eng
}
