// Package interfaces defines the capability contracts the recommendation
// engine consumes. The pre-trained model artifacts and the cost-impact
// ledger are injected behind these interfaces so implementations can be
// swapped without touching engine logic.
package interfaces

import "time"

// RiskModel classifies the severity of a matched drug-interaction note.
// The feature schema is fixed by training: one combined text feature plus
// the source drug's PMPM cost and average member age.
type RiskModel interface {
	// PredictRisk returns one of the trained risk labels.
	PredictRisk(combinedText string, pmpmCost, avgAge float64) string
}

// GroupingModel assigns a drug to a cost/therapeutic cluster.
type GroupingModel interface {
	// AssignCluster maps the four clustering features to a cluster id.
	AssignCluster(genericName, therapeuticClass string, pmpmCost, avgAge float64) int
}

// TopicModel turns free text into a fixed-length latent topic vector.
// The efficacy ranker blends two independently trained topic models over
// the same text-frequency features.
type TopicModel interface {
	Transform(text string) []float64
}

// CostImpact is one appended ledger row.
type CostImpact struct {
	ID           int64     `json:"id"`
	OriginalCost float64   `json:"original_cost"`
	ReducedCost  float64   `json:"reduced_cost"`
	Timestamp    time.Time `json:"timestamp"`
}

// CostSummary aggregates all ledger rows on demand.
type CostSummary struct {
	OriginalTotalCost float64 `json:"original_total_cost"`
	ReducedTotalCost  float64 `json:"reduced_total_cost"`
	TotalSavings      float64 `json:"total_savings"`
	ReductionPercent  float64 `json:"reduction_percent"`
}

// CostLedger is the append-only cost-impact store. Appends are independent
// inserts with no cross-request ordering; they are never deduplicated.
type CostLedger interface {
	Append(originalCost, reducedCost float64) error
	Summary() (CostSummary, error)
	Records() ([]CostImpact, error)
	Clear() error
	Close() error
}
