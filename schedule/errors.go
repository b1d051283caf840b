/*
errors.go - Centralized error types for the scheduling core

PURPOSE:
  All error types in one place for consistency and discoverability.
  The api and store packages wrap these with additional context.

ERROR CATEGORIES:
  1. Lookup errors - Missing activities or allocations
  2. Data consistency - Overfull days, malformed dates
  3. Runaway computation - Distribution safety bound

NOTE ON SEVERITY:
  The scheduling core degrades rather than fails (see planner.go): most of
  these values are logged as warnings and attached to results instead of
  aborting a recomputation pass.

SEE ALSO:
  - distributor.go: Emits TruncatedDistributionError
  - planner.go: Collects warnings per pass
*/
package schedule

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrActivityNotFound is returned when a referenced activity doesn't exist.
	ErrActivityNotFound = errors.New("activity not found")

	// ErrNoAllocation is returned when an activity has no per-day allocation
	// recorded yet (for example a predecessor that was never scheduled).
	ErrNoAllocation = errors.New("activity has no allocation")

	// ErrProjectNotFound is returned when a referenced project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")

	// ErrInvalidDate is returned when a stored date string cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")

	// ErrDistributionTruncated indicates the distributor hit its safety bound
	// before placing all requested hours.
	ErrDistributionTruncated = errors.New("distribution truncated at safety bound")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// TruncatedDistributionError reports a distribution that hit the iteration
// safety bound. The partial allocation is still valid and returned; the
// shortfall is the work that could not be placed.
type TruncatedDistributionError struct {
	Start     WorkDate
	Requested Hours
	Placed    Hours
	Shortfall Hours
}

func (e *TruncatedDistributionError) Error() string {
	return fmt.Sprintf("distribution from %s truncated: requested %s, placed %s, shortfall %s",
		e.Start, e.Requested, e.Placed, e.Shortfall)
}

func (e *TruncatedDistributionError) Unwrap() error {
	return ErrDistributionTruncated
}

// OverfullDayWarning reports a day that was already loaded past capacity
// before a distribution ran. The distributor refuses to add hours to such a
// day but does not correct it; the pre-existing excess is a caller bug.
type OverfullDayWarning struct {
	Day      string
	Load     Hours
	Capacity Hours
}

func (w *OverfullDayWarning) Error() string {
	return fmt.Sprintf("day %s already overfull: %s committed against capacity %s",
		w.Day, w.Load, w.Capacity)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrActivityNotFound) ||
		errors.Is(err, ErrProjectNotFound)
}
