package entities

// Sentinel values carried over from the source extract. A record whose
// TherapeuticEquivalenceCode equals NoEquivalence has no substitutable
// equivalent and is never offered as an alternative.
const (
	NoEquivalence     = "NA"
	NoInteractionData = "No interaction data"
	NoEfficacyData    = "No efficacy data available"
)

// DrugRecord is one cleaned row of the drug claims extract. DrugName and
// GenericName are trimmed and upper-cased at load time. Pointer fields are
// nil when the source value was missing; they serialize as JSON null.
type DrugRecord struct {
	DrugName                   string   `json:"drug_name"`
	GenericName                *string  `json:"generic_name"`
	TherapeuticClass           string   `json:"therapeutic_class"`
	PMPMCost                   *float64 `json:"pmpm_cost"`
	AvgAge                     *float64 `json:"avg_age"`
	TherapeuticEquivalenceCode string   `json:"therapeutic_equivalence_code"`
	DrugInteractions           string   `json:"drug_interactions"`
	ClinicalEfficacy           string   `json:"clinical_efficacy"`
	TotalPrescriptionFills     *float64 `json:"total_prescription_fills"`
	TotalDrugCost              *float64 `json:"total_drug_cost"`
	MemberCount                *float64 `json:"member_count"`
	Cluster                    *int     `json:"cluster"`
}

// HasGeneric reports whether the record carries a usable generic name.
func (d *DrugRecord) HasGeneric() bool {
	return d.GenericName != nil && *d.GenericName != ""
}

// Substitutable reports whether alternative search is allowed for this
// record: it needs a generic identity and a real equivalence code.
func (d *DrugRecord) Substitutable() bool {
	return d.HasGeneric() && d.TherapeuticEquivalenceCode != NoEquivalence
}
