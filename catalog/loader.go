// Package catalog loads the cleaned drug claims extract and provides
// read-only queries over it. The catalog is built once at process start and
// never mutated afterwards, so it is safe to share across requests without
// locking.
package catalog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/carerx/drug-advisor-api/catalog/entities"
	"github.com/carerx/drug-advisor-api/logging"
	"golang.org/x/text/encoding/charmap"
)

// NormalizeName applies the canonical drug name normalization: trimmed and
// upper-cased. Lookups and the loader must agree on this.
func NormalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Load reads the claims CSV at path and returns the cleaned catalog.
// Rows missing drug_name, generic_name, pmpm_cost or therapeutic_class are
// excluded, mirroring the cleaning the upstream extract pipeline applies.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			logging.Warn("Failed to close data file", "error", err)
		}
	}()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file %s: %w", path, err)
	}

	// Claims extracts arrive either UTF-8 or ISO-8859-1 depending on the
	// exporting system, so sniff before decoding.
	var reader io.Reader
	if utf8.Valid(raw) {
		reader = bytes.NewReader(raw)
	} else {
		reader = charmap.ISO8859_1.NewDecoder().Reader(bytes.NewReader(raw))
	}

	cr := csv.NewReader(reader)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"drug_name", "generic_name", "therapeutic_class", "pmpm_cost", "avg_age"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("data file %s is missing required column %q", path, required)
		}
	}

	var records []entities.DrugRecord
	lineCount := 0
	skippedMissingName := 0
	skippedMissingGeneric := 0
	skippedMissingClass := 0
	skippedBadCost := 0
	skippedBadAge := 0

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV read error at line %d: %w", lineCount+2, err)
		}
		lineCount++

		field := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		name := NormalizeName(field("drug_name"))
		if name == "" || name == "NAN" {
			skippedMissingName++
			continue
		}

		generic := normalizeOptionalName(field("generic_name"))
		if generic == nil {
			skippedMissingGeneric++
			continue
		}

		class := field("therapeutic_class")
		if class == "" {
			skippedMissingClass++
			continue
		}

		cost := parseCurrency(field("pmpm_cost"))
		if cost == nil {
			skippedBadCost++
			continue
		}

		age := parseCurrency(field("avg_age"))
		if age == nil {
			skippedBadAge++
			continue
		}

		rec := entities.DrugRecord{
			DrugName:                   name,
			GenericName:                generic,
			TherapeuticClass:           class,
			PMPMCost:                   cost,
			AvgAge:                     age,
			TherapeuticEquivalenceCode: stringOrDefault(field("therapeutic_equivalence_code"), entities.NoEquivalence),
			DrugInteractions:           stringOrDefault(field("drug_interactions"), entities.NoInteractionData),
			ClinicalEfficacy:           stringOrDefault(field("clinical_efficacy"), entities.NoEfficacyData),
			TotalPrescriptionFills:     parseCurrency(field("total_prescription_fills")),
			TotalDrugCost:              parseCurrency(field("total_drug_cost")),
			MemberCount:                parseCurrency(field("member_count")),
		}
		records = append(records, rec)
	}

	logging.Info("Drug catalog loaded",
		"rows", lineCount,
		"kept", len(records),
		"skipped_missing_name", skippedMissingName,
		"skipped_missing_generic", skippedMissingGeneric,
		"skipped_missing_class", skippedMissingClass,
		"skipped_bad_cost", skippedBadCost,
		"skipped_bad_age", skippedBadAge)

	return New(records), nil
}

// normalizeOptionalName trims and upper-cases a name column, returning nil
// for empty or "NAN" values so missing generics stay missing.
func normalizeOptionalName(s string) *string {
	v := NormalizeName(s)
	if v == "" || v == "NAN" {
		return nil
	}
	return &v
}

// parseCurrency parses a possibly currency-formatted number ("$1,234.50").
// Returns nil when the value is empty or unparsable.
func parseCurrency(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func stringOrDefault(s, def string) string {
	if s == "" || strings.EqualFold(s, "nan") {
		return def
	}
	return s
}
