package engine

import (
	"github.com/carerx/drug-advisor-api/catalog/entities"
	"github.com/carerx/drug-advisor-api/logging"
)

// clusterOf maps a drug's clustering features through the pre-fit grouping
// model. Returns false when the model is unavailable or any required
// feature is missing; callers treat that as "no substitution possible",
// not an error.
func (e *Engine) clusterOf(drug entities.DrugRecord) (int, bool) {
	if e.grouping == nil {
		return 0, false
	}
	if !drug.HasGeneric() || drug.TherapeuticClass == "" || drug.PMPMCost == nil || drug.AvgAge == nil {
		return 0, false
	}
	return e.grouping.AssignCluster(*drug.GenericName, drug.TherapeuticClass, *drug.PMPMCost, *drug.AvgAge), true
}

// AssignClusters runs the startup cluster assignment pass, filling the
// cluster id of every feature-complete record. Records with a missing
// feature keep a nil cluster and are skipped by substitution search. The
// catalog is read-only once this returns.
func (e *Engine) AssignClusters() int {
	if e.grouping == nil {
		logging.Warn("Grouping model not loaded, skipping cluster assignment")
		return 0
	}
	assigned := 0
	for i := 0; i < e.catalog.Len(); i++ {
		record := e.catalog.Record(i)
		clusterID, ok := e.clusterOf(record)
		if !ok {
			continue
		}
		e.catalog.SetCluster(i, clusterID)
		assigned++
	}
	logging.Info("Cluster assignment complete", "assigned", assigned, "records", e.catalog.Len())
	return assigned
}
