/*
planner.go - Plan recomputation across a set of activities

PURPOSE:
  Drives the scheduling core over a whole planning board: orders activities
  so predecessors are scheduled first, resolves each start date, distributes
  hours against one shared LoadMap, and writes the resulting allocation and
  planned end date back onto each activity.

ORDERING:
  Predecessor links form a forest in well-formed data. The planner walks
  each activity's dependency chain first (depth-first), so by the time a
  dependent activity is distributed its predecessor already has a per-day
  allocation. A cycle is broken at the point of detection: the offending
  activity is scheduled as if it had no predecessor, with a logged warning.

CONCURRENCY:
  The whole pass is synchronous and single-writer by design. One LoadMap is
  built fresh per recomputation and mutated sequentially; hosts that want
  parallelism must run whole passes, not activities, concurrently.

SEE ALSO:
  - distributor.go, resolver.go: The per-activity steps
  - api/replanner.go: Periodic recomputation driver
*/
package schedule

import "log"

// =============================================================================
// PLANNER
// =============================================================================

// Planner recomputes the schedule for a set of activities.
type Planner struct {
	Distributor *Distributor
	Resolver    *StartResolver
}

// NewPlanner wires a planner with a shared daily capacity.
func NewPlanner(dailyCapacity Hours) *Planner {
	return &Planner{
		Distributor: NewDistributor(dailyCapacity),
		Resolver:    NewStartResolver(dailyCapacity),
	}
}

// ActivityPlan is the outcome of scheduling one activity.
type ActivityPlan struct {
	ActivityID ActivityID
	Start      WorkDate
	Allocation Allocation
}

// PlanResult is the outcome of a full recomputation pass.
type PlanResult struct {
	Plans []ActivityPlan

	// Load is the shared accumulator after the pass; every scheduled
	// activity's hours are committed in it.
	Load *LoadMap

	// Warnings aggregates the non-fatal findings of the pass (truncated
	// distributions, overfull days, broken dependency cycles).
	Warnings []error
}

// TotalPlanned sums the hours placed across all activities in the pass.
func (r *PlanResult) TotalPlanned() Hours {
	total := ZeroHours()
	for _, p := range r.Plans {
		total = total.Add(p.Allocation.Total())
	}
	return total
}

// Recompute schedules every non-completed activity. Activities are mutated
// in place: PerDay and PlannedEnd reflect the new distribution afterwards.
// Completed activities keep their recorded allocation and still occupy
// capacity in the shared load.
func (p *Planner) Recompute(activities []*Activity) *PlanResult {
	result := &PlanResult{Load: NewLoadMap()}

	// Completed work occupies its days before anything new is placed.
	for _, a := range activities {
		if a.IsCompleted() {
			for key, h := range a.PerDay {
				result.Load.Add(key, h)
			}
		}
	}

	scheduled := make(map[ActivityID]bool)
	visiting := make(map[ActivityID]bool)

	var schedule func(a *Activity)
	schedule = func(a *Activity) {
		if scheduled[a.ID] || a.IsCompleted() {
			return
		}
		if visiting[a.ID] {
			// Dependency cycle; break it here and schedule without the link.
			log.Printf("[Planner] dependency cycle at activity %s, ignoring predecessor %q", a.ID, a.PredecessorID)
			return
		}
		visiting[a.ID] = true
		defer delete(visiting, a.ID)

		if a.PredecessorID != "" {
			if pred := findActivity(activities, a.PredecessorID); pred != nil {
				schedule(pred)
			}
		}

		start := a.StartDate
		if a.PredecessorID != "" {
			start = p.Resolver.ResolveStart(a.PredecessorID, activities, result.Load)
		} else if start.IsZero() {
			start = p.Resolver.fallbackStart()
		}

		alloc := p.Distributor.Distribute(start, a.TotalHours, result.Load)
		a.PerDay = alloc.PerDay
		a.PlannedEnd = alloc.EndDate.Key()

		result.Plans = append(result.Plans, ActivityPlan{
			ActivityID: a.ID,
			Start:      NextWorkingDay(start, true),
			Allocation: alloc,
		})
		result.Warnings = append(result.Warnings, alloc.Warnings...)
		scheduled[a.ID] = true
	}

	for _, a := range activities {
		schedule(a)
	}

	return result
}

func findActivity(activities []*Activity, ref string) *Activity {
	for _, a := range activities {
		if a.Matches(ref) {
			return a
		}
	}
	return nil
}
