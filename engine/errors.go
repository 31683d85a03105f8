package engine

import (
	"fmt"
	"strings"
)

// NotFoundError reports every requested drug name absent from the catalog,
// not just the first one, so the caller can correct the whole request.
type NotFoundError struct {
	Names []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("could not find data for drug(s): %s", strings.Join(e.Names, ", "))
}

// ValidationError reports a request the engine refuses to process, such as
// an empty name list or a duplicate-generic combination.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ModelUnavailableError reports that a required model or dataset is not
// loaded and no recommendation can be produced at all. Missing models that
// only degrade the result do not raise it.
type ModelUnavailableError struct {
	Resource string
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("%s is not available", e.Resource)
}

// LedgerWriteError wraps a failed cost-impact append. It is logged and
// swallowed inside the engine, never returned to the caller.
type LedgerWriteError struct {
	Err error
}

func (e *LedgerWriteError) Error() string {
	return fmt.Sprintf("cost impact ledger write failed: %v", e.Err)
}

func (e *LedgerWriteError) Unwrap() error {
	return e.Err
}
