package validation

import (
	"strings"
	"testing"
)

func TestValidateDrugName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple name", "Lipitor", false},
		{"dose strength", "Metformin 500mg", false},
		{"salt form", "Amlodipine Besylate 5/10", false},
		{"combination", "Sacubitril/Valsartan (Entresto)", false},
		{"percent and comma", "Lidocaine 2.5%, topical", false},
		{"apostrophe", "Burow's solution", false},
		{"surrounding spaces", "  aspirin  ", false},
		{"empty", "", true},
		{"only spaces", "   ", true},
		{"too long", strings.Repeat("A", 201), true},
		{"script tag", "<script>alert(1)</script>", true},
		{"sql injection", "x' or '1'='1", true},
		{"sql comment", "aspirin--", true},
		{"union select", "a union select b", true},
		{"path traversal", "../etc/passwd", true},
		{"nosql operator", "{$ne:null}", true},
		{"disallowed characters", "aspirin;rm -rf", true},
		{"angle brackets", "drug<name>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDrugName(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateDrugName(%q) = nil, want error", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateDrugName(%q) = %v, want nil", tt.input, err)
			}
		})
	}
}

func TestValidateDrugNames(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		wantErr bool
	}{
		{"one name", []string{"Lipitor"}, false},
		{"two names", []string{"Lipitor", "Metformin"}, false},
		{"extra names allowed", []string{"A1", "B2", "C3", "D4"}, false},
		{"empty list", []string{}, true},
		{"nil list", nil, true},
		{"one invalid name fails the list", []string{"Lipitor", "<script>"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDrugNames(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateDrugNames(%v) = nil, want error", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateDrugNames(%v) = %v, want nil", tt.input, err)
			}
		})
	}
}
