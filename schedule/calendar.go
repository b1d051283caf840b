package schedule

import (
	"time"
)

// =============================================================================
// WORK DATE - Day-granularity calendar date (this IS a day-planning system)
// =============================================================================

// WorkDate is a calendar date with the time-of-day stripped. All scheduling
// decisions are made at day granularity; callers must never compare raw
// time.Time values or timezone drift leaks into the plan.
type WorkDate struct {
	t time.Time
}

const dateKeyLayout = "2006-01-02"

// Constructors
func NewWorkDate(year int, month time.Month, day int) WorkDate {
	return WorkDate{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf normalizes an arbitrary timestamp to a pure calendar date.
func DateOf(t time.Time) WorkDate {
	return NewWorkDate(t.Year(), t.Month(), t.Day())
}

func Today() WorkDate {
	return DateOf(time.Now())
}

// ParseDate parses a YYYY-MM-DD key back into a WorkDate.
func ParseDate(s string) (WorkDate, error) {
	t, err := time.Parse(dateKeyLayout, s)
	if err != nil {
		return WorkDate{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d WorkDate) Before(other WorkDate) bool        { return d.t.Before(other.t) }
func (d WorkDate) Equal(other WorkDate) bool         { return d.t.Equal(other.t) }
func (d WorkDate) After(other WorkDate) bool         { return d.t.After(other.t) }
func (d WorkDate) BeforeOrEqual(other WorkDate) bool { return d.Before(other) || d.Equal(other) }
func (d WorkDate) AfterOrEqual(other WorkDate) bool  { return d.After(other) || d.Equal(other) }

// Arithmetic
func (d WorkDate) AddDays(n int) WorkDate { return DateOf(d.t.AddDate(0, 0, n)) }

// Properties
func (d WorkDate) Year() int             { return d.t.Year() }
func (d WorkDate) Month() time.Month     { return d.t.Month() }
func (d WorkDate) Day() int              { return d.t.Day() }
func (d WorkDate) Weekday() time.Weekday { return d.t.Weekday() }
func (d WorkDate) IsZero() bool          { return d.t.IsZero() }
func (d WorkDate) Time() time.Time       { return d.t }

// Key returns the ISO date string used as allocation/load map key.
// ISO keys sort lexicographically in calendar order.
func (d WorkDate) Key() string { return d.t.Format(dateKeyLayout) }

func (d WorkDate) String() string { return d.Key() }

// =============================================================================
// WORKING-DAY CALENDAR - Weekends off, no holiday awareness
// =============================================================================

// IsWorkingDay reports whether the date can receive allocated hours.
// Saturday and Sunday are the two non-working weekdays; there is no
// holiday calendar.
func (d WorkDate) IsWorkingDay() bool {
	wd := d.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// NextWorkingDay advances one day at a time until a working day is found.
// With includeSelf, a date that is already a working day is returned
// unchanged (idempotent).
func NextWorkingDay(d WorkDate, includeSelf bool) WorkDate {
	if includeSelf && d.IsWorkingDay() {
		return d
	}
	cursor := d.AddDays(1)
	for !cursor.IsWorkingDay() {
		cursor = cursor.AddDays(1)
	}
	return cursor
}

// PreviousWorkingDay returns the closest working day strictly before d.
func PreviousWorkingDay(d WorkDate) WorkDate {
	cursor := d.AddDays(-1)
	for !cursor.IsWorkingDay() {
		cursor = cursor.AddDays(-1)
	}
	return cursor
}

// WorkingDaysBetween counts working days in [from, to], inclusive.
// Used to express lateness in working days, not by the distributor itself.
func WorkingDaysBetween(from, to WorkDate) int {
	if to.Before(from) {
		return 0
	}
	count := 0
	for cursor := from; cursor.BeforeOrEqual(to); cursor = cursor.AddDays(1) {
		if cursor.IsWorkingDay() {
			count++
		}
	}
	return count
}
