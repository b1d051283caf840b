/*
Package schedule implements the work-hours planning core.

PURPOSE:
  This package contains the pure scheduling logic used by the planning
  module: given an activity's start date, its total hours and the hours
  already committed to each day, it computes a day-by-day allocation that
  respects working days and daily capacity, and derives the completion date.

KEY CONCEPTS IN THIS FILE (types.go):
  - Hours: A quantity of work, rounded to hundredths of an hour
  - Activity: The descriptor consumed by the distributor and resolver
  - LoadMap (load.go): Hours already committed per calendar day

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal rounded to 2 places after every
     arithmetic step, so capacity comparisons are exact
  2. Day granularity: All dates are WorkDate values; time-of-day never
     participates in a scheduling decision
  3. Resilience: Bad input degrades to an empty or partial result with a
     logged warning, never a panic or hard failure (the planning UI shows
     whatever schedule was computed)

USAGE:
  dist := schedule.NewDistributor(schedule.DefaultDailyCapacity)
  load := schedule.NewLoadMap()
  alloc := dist.Distribute(start, schedule.HoursOf(20), load)
  fmt.Println(alloc.EndDate, alloc.PerDay)

SEE ALSO:
  - calendar.go: Working-day calendar
  - distributor.go: Day-by-day hour allocation
  - resolver.go: Predecessor-based start dates
  - overdue.go: Lateness evaluation
*/
package schedule

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// HOURS - Work quantity in hundredths of an hour
// =============================================================================

// Hours is a quantity of work. Every constructor and arithmetic result is
// rounded to 2 decimal places, which bounds accumulation error across
// iterative allocation and makes equality checks exact.
type Hours struct {
	v decimal.Decimal
}

// Epsilon is the tolerance below which remaining work or spare capacity is
// treated as zero (one hundredth of an hour).
var Epsilon = HoursOf(0.01)

func HoursOf(value float64) Hours {
	return Hours{v: decimal.NewFromFloat(value).Round(2)}
}

func HoursFromInt(value int) Hours {
	return Hours{v: decimal.NewFromInt(int64(value))}
}

func ZeroHours() Hours { return Hours{v: decimal.Zero} }

// ParseHours parses a stored decimal string, returning zero on failure.
func ParseHours(s string) Hours {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroHours()
	}
	return Hours{v: d.Round(2)}
}

func (h Hours) Add(o Hours) Hours { return Hours{v: h.v.Add(o.v).Round(2)} }
func (h Hours) Sub(o Hours) Hours { return Hours{v: h.v.Sub(o.v).Round(2)} }
func (h Hours) Neg() Hours        { return Hours{v: h.v.Neg()} }
func (h Hours) IsZero() bool      { return h.v.IsZero() }
func (h Hours) IsNegative() bool  { return h.v.IsNegative() }
func (h Hours) IsPositive() bool  { return h.v.IsPositive() }

func (h Hours) GreaterThan(o Hours) bool     { return h.v.GreaterThan(o.v) }
func (h Hours) LessThan(o Hours) bool        { return h.v.LessThan(o.v) }
func (h Hours) LessThanOrEqual(o Hours) bool { return h.v.LessThanOrEqual(o.v) }
func (h Hours) Equal(o Hours) bool           { return h.v.Equal(o.v) }

func (h Hours) Min(o Hours) Hours {
	if h.LessThan(o) {
		return h
	}
	return o
}

func (h Hours) Max(o Hours) Hours {
	if h.GreaterThan(o) {
		return h
	}
	return o
}

func (h Hours) Float64() float64 {
	f, _ := h.v.Float64()
	return f
}

func (h Hours) String() string { return h.v.StringFixed(2) }

// =============================================================================
// CONSTANTS
// =============================================================================

// DefaultDailyCapacity is the number of plannable hours in one working day.
var DefaultDailyCapacity = HoursFromInt(8)

// maxDistributionDays bounds the distributor loop. Hitting it means a very
// large request or a stuck cursor; the partial allocation is returned and an
// internal error is logged.
const maxDistributionDays = 365

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ActivityID string
type ProjectID string

// =============================================================================
// ACTIVITY - Planning item descriptor
// =============================================================================

type ActivityStatus string

const (
	StatusPlanned    ActivityStatus = "planned"
	StatusInProgress ActivityStatus = "in_progress"
	StatusCompleted  ActivityStatus = "completed"
	StatusBlocked    ActivityStatus = "blocked"
)

// Activity is a planning item. The scheduling core consumes it; ownership
// (persistence, editing) belongs to the host application.
type Activity struct {
	ID ActivityID

	// AnalyticID is the secondary identifier carried over from the project
	// breakdown structure. Predecessor references may point at either ID.
	AnalyticID string

	Name      string
	ProjectID ProjectID
	Status    ActivityStatus

	// StartDate is the requested start; the distributor normalizes it to
	// the next working day when it lands on a weekend.
	StartDate WorkDate

	TotalHours Hours

	// PredecessorID references another activity by ID or AnalyticID.
	// Empty means no dependency.
	PredecessorID string

	// PerDay is the allocation produced by the last distribution, keyed by
	// ISO date. Used for later predecessor lookups.
	PerDay map[string]Hours

	// PlannedEnd is the end date derived by distribution; AdjustedEnd is a
	// manual override. Stored as ISO date strings, possibly empty, possibly
	// malformed when imported from older data - overdue evaluation parses
	// them defensively.
	PlannedEnd  string
	AdjustedEnd string
}

// IsCompleted reports whether the activity is done; completed activities are
// never overdue and are skipped by plan recomputation.
func (a *Activity) IsCompleted() bool { return a.Status == StatusCompleted }

// Matches reports whether the given reference identifies this activity,
// by primary ID or by analytic ID.
func (a *Activity) Matches(ref string) bool {
	if ref == "" {
		return false
	}
	return string(a.ID) == ref || a.AnalyticID == ref
}

// LastAllocatedKey returns the lexicographically-last date key in the
// activity's allocation, or "" when nothing is allocated yet. ISO keys sort
// in calendar order, so this is the activity's last occupied day.
func (a *Activity) LastAllocatedKey() string {
	last := ""
	for key := range a.PerDay {
		if key > last {
			last = key
		}
	}
	return last
}
