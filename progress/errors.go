/*
errors.go - Centralized error types for the progress engine

PURPOSE:
  All error types in one place. The computation core itself never fails -
  malformed input degrades the output - so most of these cover the storage
  and API collaborators that surround it.

USAGE:
  Callers classify with the helpers:

    if progress.IsNotFound(err) { ... 404 ... }
    if progress.IsClientError(err) { ... 400 ... }
*/
package progress

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrProjectNotFound is returned when a referenced project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrItemNotFound is returned when a referenced work item doesn't exist.
	ErrItemNotFound = errors.New("work item not found")

	// ErrReportNotFound is returned when a referenced progress report
	// doesn't exist (already deleted, or never created).
	ErrReportNotFound = errors.New("progress report not found")

	// ErrInvalidWorkRange is returned when a report's work range ends
	// before it starts. Overlapping ranges across reports are allowed;
	// this is the only range validation performed.
	ErrInvalidWorkRange = errors.New("work range: start after end")

	// ErrMissingItem is returned when a report is submitted without an item.
	ErrMissingItem = errors.New("report: missing work item")

	// ErrMissingDelta is returned when a report is submitted without a
	// progress delta.
	ErrMissingDelta = errors.New("report: missing progress delta")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// ReportValidationError carries the offending report id (empty on insert)
// alongside the validation sentinel.
type ReportValidationError struct {
	Report ReportID
	Err    error
}

func (e *ReportValidationError) Error() string {
	if e.Report == "" {
		return fmt.Sprintf("invalid report: %v", e.Err)
	}
	return fmt.Sprintf("invalid report %s: %v", e.Report, e.Err)
}

func (e *ReportValidationError) Unwrap() error { return e.Err }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound reports whether the error indicates a missing resource.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProjectNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrReportNotFound)
}

// IsClientError reports whether the error is due to invalid client input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidWorkRange) ||
		errors.Is(err, ErrMissingItem) ||
		errors.Is(err, ErrMissingDelta)
}
