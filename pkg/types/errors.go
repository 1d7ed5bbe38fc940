package types

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced across package boundaries. Callers match them
// with errors.Is / errors.As.
var (
	// ErrUnknownPersona is returned when a persona id is not one of the
	// five canonical personas. Rejected before any graph work happens.
	ErrUnknownPersona = errors.New("unknown persona")

	// ErrCompanyNotFound is returned by the directory for an id with no
	// backing company record.
	ErrCompanyNotFound = errors.New("company not found")
)

// UnparseableError means the query text matched no known intent pattern
// and carried neither a recognizable company nor attribute.
type UnparseableError struct {
	RawText string
}

func (e *UnparseableError) Error() string {
	return fmt.Sprintf("unparseable query: %q", e.RawText)
}

// EntityNotFoundError means a company mention could not be resolved above
// the fuzzy-match confidence threshold. Mention carries the offending text
// so the caller can prompt for clarification.
type EntityNotFoundError struct {
	Mention string
}

func (e *EntityNotFoundError) Error() string {
	return fmt.Sprintf("no company matches %q above the confidence threshold", e.Mention)
}

// GraphUnavailableError means the external graph store could not be
// reached, timed out, or its circuit breaker is open.
type GraphUnavailableError struct {
	Op    string
	Cause error
}

func (e *GraphUnavailableError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("graph store unavailable during %s", e.Op)
	}
	return fmt.Sprintf("graph store unavailable during %s: %v", e.Op, e.Cause)
}

func (e *GraphUnavailableError) Unwrap() error { return e.Cause }
