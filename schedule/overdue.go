package schedule

import "log"

// =============================================================================
// OVERDUE EVALUATION
// =============================================================================

// IsOverdue reports whether an activity's planned end has slipped past the
// reference date. Completed activities are never overdue. The adjusted end
// date, when present, takes precedence over the planned one; with neither
// recorded the activity cannot be judged late.
//
// Date strings come from stored data and may be malformed; a parse failure
// is logged and yields false (fail-safe, the planning screen simply shows
// no lateness badge).
func IsOverdue(a *Activity, reference WorkDate) bool {
	if a == nil || a.IsCompleted() {
		return false
	}

	target := effectiveEnd(a)
	if target == "" {
		return false
	}

	end, err := ParseDate(target)
	if err != nil {
		log.Printf("[Overdue] activity %s has unparseable end date %q: %v", a.ID, target, err)
		return false
	}

	return end.Before(reference)
}

// OverdueNow evaluates against today's calendar date.
func OverdueNow(a *Activity) bool {
	return IsOverdue(a, Today())
}

// DaysLate reports how many working days the activity has slipped: the count
// of working days after its effective end date, up to and including the
// reference date. Zero for anything not overdue.
func DaysLate(a *Activity, reference WorkDate) int {
	if !IsOverdue(a, reference) {
		return 0
	}
	end, err := ParseDate(effectiveEnd(a))
	if err != nil {
		return 0
	}
	return WorkingDaysBetween(end.AddDays(1), reference)
}

// effectiveEnd picks the date lateness is judged against: the adjusted end
// when one was recorded, the planned end otherwise.
func effectiveEnd(a *Activity) string {
	if a.AdjustedEnd != "" {
		return a.AdjustedEnd
	}
	return a.PlannedEnd
}
