package catalog

import (
	"math"
	"sort"

	"github.com/carerx/drug-advisor-api/catalog/entities"
)

// Catalog is the in-memory drug dataset. Records are stored in load order;
// the name index keeps the first record for a duplicated name, which is the
// documented lookup behavior for overlapping formulary versions.
type Catalog struct {
	records []entities.DrugRecord
	byName  map[string]int
}

// New builds a catalog over the given cleaned records.
func New(records []entities.DrugRecord) *Catalog {
	byName := make(map[string]int, len(records))
	for i := range records {
		if _, exists := byName[records[i].DrugName]; !exists {
			byName[records[i].DrugName] = i
		}
	}
	return &Catalog{records: records, byName: byName}
}

// Len returns the number of records in the catalog.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Resolve looks up a drug by name. The name is normalized before lookup;
// when duplicates exist the first loaded record wins.
func (c *Catalog) Resolve(name string) (entities.DrugRecord, bool) {
	idx, ok := c.byName[NormalizeName(name)]
	if !ok {
		return entities.DrugRecord{}, false
	}
	return c.records[idx], true
}

// SameGeneric reports whether both records carry the same present generic
// name. Records without a generic never match anything, themselves included.
func (c *Catalog) SameGeneric(a, b entities.DrugRecord) bool {
	if !a.HasGeneric() || !b.HasGeneric() {
		return false
	}
	return *a.GenericName == *b.GenericName
}

// RecordsInCluster returns substitution candidates in the given cluster,
// cheapest first. Records with the NA equivalence code or without a cost
// are excluded.
func (c *Catalog) RecordsInCluster(clusterID int) []entities.DrugRecord {
	var out []entities.DrugRecord
	for i := range c.records {
		r := &c.records[i]
		if r.Cluster == nil || *r.Cluster != clusterID {
			continue
		}
		if r.TherapeuticEquivalenceCode == entities.NoEquivalence || r.PMPMCost == nil {
			continue
		}
		out = append(out, *r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].PMPMCost < *out[j].PMPMCost
	})
	return out
}

// SameGenericPeers returns records sharing the drug's generic name and
// therapeutic class, excluding the drug itself. Used by the efficacy ranker.
func (c *Catalog) SameGenericPeers(drug entities.DrugRecord) []entities.DrugRecord {
	if !drug.HasGeneric() {
		return nil
	}
	var out []entities.DrugRecord
	for i := range c.records {
		r := &c.records[i]
		if r.DrugName == drug.DrugName {
			continue
		}
		if !r.HasGeneric() || *r.GenericName != *drug.GenericName {
			continue
		}
		if r.TherapeuticClass != drug.TherapeuticClass {
			continue
		}
		out = append(out, *r)
	}
	return out
}

// Drugs returns the records deduplicated by name, in load order.
func (c *Catalog) Drugs() []entities.DrugRecord {
	seen := make(map[string]bool, len(c.records))
	out := make([]entities.DrugRecord, 0, len(c.byName))
	for i := range c.records {
		if seen[c.records[i].DrugName] {
			continue
		}
		seen[c.records[i].DrugName] = true
		out = append(out, c.records[i])
	}
	return out
}

// Stats summarizes the catalog for the stats endpoint.
type Stats struct {
	TotalDrugs         int     `json:"total_drugs"`
	AvgPMPMCost        float64 `json:"avg_pmpm_cost"`
	TherapeuticClasses int     `json:"therapeutic_classes"`
	TotalPrescriptions int64   `json:"total_prescriptions"`
}

// ComputeStats aggregates catalog-wide statistics.
func (c *Catalog) ComputeStats() Stats {
	names := make(map[string]bool)
	classes := make(map[string]bool)
	var costSum float64
	var costCount int
	var fills float64
	for i := range c.records {
		r := &c.records[i]
		names[r.DrugName] = true
		classes[r.TherapeuticClass] = true
		if r.PMPMCost != nil {
			costSum += *r.PMPMCost
			costCount++
		}
		if r.TotalPrescriptionFills != nil {
			fills += *r.TotalPrescriptionFills
		}
	}
	var avg float64
	if costCount > 0 {
		avg = math.Round(costSum/float64(costCount)*100) / 100
	}
	return Stats{
		TotalDrugs:         len(names),
		AvgPMPMCost:        avg,
		TherapeuticClasses: len(classes),
		TotalPrescriptions: int64(fills),
	}
}

// SetCluster assigns a cluster id to the record at index i. Only the
// startup cluster assignment pass may call this; after that the catalog is
// read-only.
func (c *Catalog) SetCluster(i int, clusterID int) {
	id := clusterID
	c.records[i].Cluster = &id
}

// Record returns the record at index i.
func (c *Catalog) Record(i int) entities.DrugRecord {
	return c.records[i]
}
