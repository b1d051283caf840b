/*
resolver.go - Predecessor-based start dates

PURPOSE:
  When an activity depends on another, its start date is derived from the
  predecessor's last occupied day: if that day still has spare capacity the
  dependent activity starts there, otherwise on the next working day after.

FAIL-OPEN POLICY:
  A missing predecessor reference, a lookup miss, or a predecessor with no
  allocation recorded yet all degrade to "next working day from today"
  rather than failing. Upstream data may not be fully loaded when the
  planning screen recomputes; a hard error here would block the whole pass.
  Each degraded resolution is logged.

SEE ALSO:
  - distributor.go: Consumes the resolved start date
  - planner.go: Orders activities so predecessors resolve first
*/
package schedule

import "log"

// =============================================================================
// START RESOLVER
// =============================================================================

// StartResolver computes effective start dates for dependent activities.
type StartResolver struct {
	DailyCapacity Hours

	// Today is injectable for tests; nil means the real calendar.
	Today func() WorkDate
}

func NewStartResolver(dailyCapacity Hours) *StartResolver {
	if !dailyCapacity.IsPositive() {
		dailyCapacity = DefaultDailyCapacity
	}
	return &StartResolver{DailyCapacity: dailyCapacity}
}

func (r *StartResolver) today() WorkDate {
	if r.Today != nil {
		return r.Today()
	}
	return Today()
}

// fallbackStart is the degraded result when no predecessor data is usable.
func (r *StartResolver) fallbackStart() WorkDate {
	return NextWorkingDay(r.today(), false)
}

// ResolveStart determines the start date for an activity that depends on
// predecessorID. The reference is matched against each candidate's primary
// ID and analytic ID.
func (r *StartResolver) ResolveStart(predecessorID string, activities []*Activity, load *LoadMap) WorkDate {
	if predecessorID == "" {
		return r.fallbackStart()
	}

	var pred *Activity
	for _, a := range activities {
		if a.Matches(predecessorID) {
			pred = a
			break
		}
	}

	if pred == nil {
		log.Printf("[Resolver] predecessor %q not found, falling back to next working day", predecessorID)
		return r.fallbackStart()
	}

	lastKey := pred.LastAllocatedKey()
	if lastKey == "" {
		log.Printf("[Resolver] predecessor %q has no allocation yet, falling back to next working day", predecessorID)
		return r.fallbackStart()
	}

	lastDay, err := ParseDate(lastKey)
	if err != nil {
		log.Printf("[Resolver] predecessor %q has malformed allocation key %q: %v", predecessorID, lastKey, err)
		return r.fallbackStart()
	}

	// Spare capacity on the predecessor's last day means the dependent
	// activity can start that same day.
	if load.Remaining(lastKey, r.DailyCapacity).GreaterThan(Epsilon) {
		return lastDay
	}
	return NextWorkingDay(lastDay, false)
}
