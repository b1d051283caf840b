/*
distributor.go - Day-by-day hour allocation against shared daily capacity

PURPOSE:
  Spreads an activity's total hours across working days starting at a given
  date, never exceeding the daily capacity once existing commitments are
  accounted for, and derives the activity's completion date.

KEY BEHAVIOR:
  - An activity never starts on a weekend: the start is normalized forward
    to the next working day.
  - A partially loaded day is topped up before the cursor moves on, so two
    activities scheduled in sequence share a day without overbooking it.
  - The shared LoadMap is mutated in place; callers schedule activities one
    at a time against the same map (see load.go for the discipline).

FAILURE POLICY:
  Zero or negative hours yield an empty allocation ending on the normalized
  start. Hitting the iteration safety bound returns whatever was placed and
  logs an internal error; a planning screen degrades to a partial schedule
  rather than crashing.

SEE ALSO:
  - load.go: The shared load accumulator
  - planner.go: Orders activities and calls Distribute for each
*/
package schedule

import (
	"log"
	"sort"
)

// =============================================================================
// ALLOCATION - Result of one distribution
// =============================================================================

// Allocation is the per-day hour assignment produced for one activity.
type Allocation struct {
	// PerDay maps ISO date keys to the hours this activity received on that
	// day. Disjoint from the LoadMap, though both are updated together.
	PerDay map[string]Hours

	// EndDate is the last day that received hours, or the normalized start
	// date when no hours were requested.
	EndDate WorkDate

	// Truncated is set when the safety bound cut the distribution short.
	Truncated bool

	// Warnings carries non-fatal findings from the post-pass validation.
	Warnings []error
}

// Total sums the allocated hours across all days.
func (a *Allocation) Total() Hours {
	total := ZeroHours()
	for _, h := range a.PerDay {
		total = total.Add(h)
	}
	return total
}

// Days returns the allocated date keys in calendar order.
func (a *Allocation) Days() []string {
	keys := make([]string, 0, len(a.PerDay))
	for key := range a.PerDay {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// =============================================================================
// DISTRIBUTOR
// =============================================================================

// Distributor allocates hours day by day against a shared LoadMap.
type Distributor struct {
	DailyCapacity Hours
}

// NewDistributor creates a distributor. A zero or negative capacity falls
// back to the default 8-hour day.
func NewDistributor(dailyCapacity Hours) *Distributor {
	if !dailyCapacity.IsPositive() {
		dailyCapacity = DefaultDailyCapacity
	}
	return &Distributor{DailyCapacity: dailyCapacity}
}

// Distribute spreads total hours across working days beginning at start,
// respecting the existing load, and mutates load with the hours it places.
//
// The cursor walks forward one calendar day at a time. On a working day with
// spare capacity it places min(remaining, spare); the cursor only advances
// past a day once that day is full, so a later call for another activity
// sees the partially filled day and tops it up instead of skipping it.
func (d *Distributor) Distribute(start WorkDate, total Hours, load *LoadMap) Allocation {
	normalized := NextWorkingDay(start, true)

	alloc := Allocation{
		PerDay:  make(map[string]Hours),
		EndDate: normalized,
	}

	if !total.GreaterThan(ZeroHours()) {
		return alloc
	}

	remaining := total
	cursor := normalized
	lastAllocated := WorkDate{}

	for iter := 0; remaining.GreaterThan(Epsilon); iter++ {
		if iter >= maxDistributionDays {
			alloc.Truncated = true
			err := &TruncatedDistributionError{
				Start:     normalized,
				Requested: total,
				Placed:    total.Sub(remaining),
				Shortfall: remaining,
			}
			alloc.Warnings = append(alloc.Warnings, err)
			log.Printf("[Distributor] internal error: %v", err)
			break
		}

		// Must not happen; guards against cursor arithmetic bugs.
		if cursor.Before(normalized) {
			cursor = NextWorkingDay(normalized, true)
		}

		if !cursor.IsWorkingDay() {
			cursor = cursor.AddDays(1)
			continue
		}

		key := cursor.Key()
		spare := load.Remaining(key, d.DailyCapacity)
		if spare.GreaterThan(Epsilon) {
			placed := remaining.Min(spare)
			alloc.PerDay[key] = alloc.PerDay[key].Add(placed)
			load.Add(key, placed)
			remaining = remaining.Sub(placed)
			lastAllocated = cursor

			// Leave the cursor on a day with leftover capacity: when
			// remaining hit zero exactly at partial fill, the next
			// distribution (another activity) still gets that spare.
			if load.IsFull(key, d.DailyCapacity) {
				cursor = cursor.AddDays(1)
			}
			continue
		}

		cursor = cursor.AddDays(1)
	}

	if !lastAllocated.IsZero() {
		alloc.EndDate = lastAllocated
	}

	d.validate(&alloc, normalized, load)
	return alloc
}

// validate drops any allocation entry dated before the normalized start
// (defensive, should be unreachable) and warns on pre-existing overfull
// days. The distributor never corrects an overfull day; it only refuses to
// add to one.
func (d *Distributor) validate(alloc *Allocation, start WorkDate, load *LoadMap) {
	startKey := start.Key()
	for key := range alloc.PerDay {
		if key < startKey {
			log.Printf("[Distributor] dropping allocation before start: %s < %s", key, startKey)
			delete(alloc.PerDay, key)
		}
	}

	for _, day := range load.OverfullDays(d.DailyCapacity) {
		w := &OverfullDayWarning{Day: day, Load: load.Get(day), Capacity: d.DailyCapacity}
		alloc.Warnings = append(alloc.Warnings, w)
		log.Printf("[Distributor] warning: %v", w)
	}
}
