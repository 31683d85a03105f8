package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/carerx/drug-advisor-api/catalog/entities"
)

const testHeader = "drug_name,generic_name,therapeutic_class,pmpm_cost,avg_age,therapeutic_equivalence_code,drug_interactions,clinical_efficacy,total_prescription_fills,total_drug_cost,member_count\n"

func writeTestCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "claims.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing test csv: %v", err)
	}
	return path
}

func TestLoadNormalizesAndParses(t *testing.T) {
	csv := testHeader +
		"  lipitor , atorvastatin ,Cardiovascular,\"$1,234.50\",62.5,AB,May interact with warfarin,Effective statin,1200,\"$45,000\",300\n"

	cat, err := Load(writeTestCSV(t, csv))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cat.Len() != 1 {
		t.Fatalf("Len = %d, want 1", cat.Len())
	}

	rec, ok := cat.Resolve("lipitor")
	if !ok {
		t.Fatal("Resolve(lipitor) failed")
	}
	if rec.DrugName != "LIPITOR" {
		t.Errorf("DrugName = %q, want LIPITOR", rec.DrugName)
	}
	if rec.GenericName == nil || *rec.GenericName != "ATORVASTATIN" {
		t.Errorf("GenericName = %v, want ATORVASTATIN", rec.GenericName)
	}
	if rec.PMPMCost == nil || *rec.PMPMCost != 1234.50 {
		t.Errorf("PMPMCost = %v, want 1234.50", rec.PMPMCost)
	}
	if rec.AvgAge == nil || *rec.AvgAge != 62.5 {
		t.Errorf("AvgAge = %v, want 62.5", rec.AvgAge)
	}
	if rec.TotalDrugCost == nil || *rec.TotalDrugCost != 45000 {
		t.Errorf("TotalDrugCost = %v, want 45000", rec.TotalDrugCost)
	}
}

func TestLoadSkipsIncompleteRows(t *testing.T) {
	csv := testHeader +
		"DRUG OK,GEN,Class,10,50,AB,,,,,\n" +
		",GEN,Class,10,50,AB,,,,,\n" + // no name
		"NAN,GEN,Class,10,50,AB,,,,,\n" + // NaN name
		"DRUG NOGEN,,Class,10,50,AB,,,,,\n" + // no generic
		"DRUG NANGEN,nan,Class,10,50,AB,,,,,\n" + // NaN generic
		"DRUG NOCLASS,GEN,,10,50,AB,,,,,\n" + // no class
		"DRUG NOCOST,GEN,Class,,50,AB,,,,,\n" + // no cost
		"DRUG BADCOST,GEN,Class,abc,50,AB,,,,,\n" + // unparsable cost
		"DRUG NOAGE,GEN,Class,10,,AB,,,,,\n" // no age

	cat, err := Load(writeTestCSV(t, csv))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cat.Len() != 1 {
		t.Errorf("Len = %d, want 1 (only the complete row)", cat.Len())
	}
	if _, ok := cat.Resolve("DRUG OK"); !ok {
		t.Error("complete row missing from catalog")
	}
}

func TestLoadFillsSentinels(t *testing.T) {
	csv := testHeader +
		"DRUG A,GEN,Class,10,50,,,,,,\n" +
		"DRUG B,GEN,Class,10,50,nan,NaN,NAN,,,\n"

	cat, err := Load(writeTestCSV(t, csv))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, name := range []string{"DRUG A", "DRUG B"} {
		rec, ok := cat.Resolve(name)
		if !ok {
			t.Fatalf("Resolve(%s) failed", name)
		}
		if rec.TherapeuticEquivalenceCode != entities.NoEquivalence {
			t.Errorf("%s equivalence code = %q, want %q", name, rec.TherapeuticEquivalenceCode, entities.NoEquivalence)
		}
		if rec.DrugInteractions != entities.NoInteractionData {
			t.Errorf("%s interactions = %q, want sentinel", name, rec.DrugInteractions)
		}
		if rec.ClinicalEfficacy != entities.NoEfficacyData {
			t.Errorf("%s efficacy = %q, want sentinel", name, rec.ClinicalEfficacy)
		}
		if rec.TotalPrescriptionFills != nil {
			t.Errorf("%s fills = %v, want nil", name, rec.TotalPrescriptionFills)
		}
	}
}

func TestLoadDecodesLatin1(t *testing.T) {
	// 0xE9 is é in ISO-8859-1 and invalid as a standalone UTF-8 byte.
	csv := testHeader +
		"DRUG \xc9,GEN,Class,10,50,AB,,,,,\n"

	cat, err := Load(writeTestCSV(t, csv))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := cat.Resolve("DRUG É"); !ok {
		t.Error("latin-1 encoded name not decoded")
	}
}

func TestLoadMissingColumn(t *testing.T) {
	csv := "drug_name,generic_name,therapeutic_class,pmpm_cost\nA,B,C,10\n"

	if _, err := Load(writeTestCSV(t, csv)); err == nil {
		t.Error("expected error for missing avg_age column")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"10", fp(10)},
		{"$10.50", fp(10.50)},
		{"$1,234.56", fp(1234.56)},
		{" 42 ", fp(42)},
		{"", nil},
		{"abc", nil},
		{"$", nil},
	}
	for _, tt := range tests {
		got := parseCurrency(tt.in)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("parseCurrency(%q) = %v, want nil", tt.in, *got)
		case tt.want != nil && got == nil:
			t.Errorf("parseCurrency(%q) = nil, want %v", tt.in, *tt.want)
		case tt.want != nil && got != nil && *got != *tt.want:
			t.Errorf("parseCurrency(%q) = %v, want %v", tt.in, *got, *tt.want)
		}
	}
}

func fp(v float64) *float64 { return &v }
