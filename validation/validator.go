// Package validation provides request input validation for the drug
// advisor API.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Pre-compiled pattern for performance: drug names are alphanumeric plus
// the punctuation that appears in formulary listings (dose strengths,
// salt forms, combination products).
var drugNameRegex = regexp.MustCompile(`^[a-zA-Z0-9\s\-\.\+/%,'()]+$`)

// Dangerous substrings checked before the charset test. strings.Contains
// is much faster than a regex for plain substring screens.
var dangerousPatterns = []string{
	"<script", "</script>", "javascript:", "onload=", "onerror=", "eval(",
	"' or ", "\" or ", "union select", "drop table", "delete from",
	"insert into", "--", "/*", "*/", "exec(",
	"../", "..\\", "%2e%2e", "file://",
	"{$ne:", "{$gt:", "{$where:",
}

const maxDrugNameLength = 200

// ValidateDrugName checks one user-supplied drug name before it reaches
// the catalog.
func ValidateDrugName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("drug name cannot be empty")
	}
	if len(trimmed) > maxDrugNameLength {
		return fmt.Errorf("drug name too long: %d characters (max %d)", len(trimmed), maxDrugNameLength)
	}

	lower := strings.ToLower(trimmed)
	for _, pattern := range dangerousPatterns {
		if strings.Contains(lower, pattern) {
			return fmt.Errorf("drug name contains invalid sequence")
		}
	}

	if !drugNameRegex.MatchString(trimmed) {
		return fmt.Errorf("drug name contains invalid characters")
	}
	return nil
}

// ValidateDrugNames validates the whole request list. The engine compares
// at most a pair; extra names are ignored downstream, not rejected here.
func ValidateDrugNames(names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("no drug names provided")
	}
	for _, name := range names {
		if err := ValidateDrugName(name); err != nil {
			return err
		}
	}
	return nil
}
