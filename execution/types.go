// Package execution implements time-tracking against the plan.
// Executed hours are recorded per activity per day and compared with the
// per-day allocation the scheduling core produced.
package execution

import "github.com/atlas/planning-engine/schedule"

// =============================================================================
// EXECUTION LOG - Hours actually worked
// =============================================================================

// Entry records hours worked on one activity on one calendar day.
type Entry struct {
	ID         string
	ActivityID schedule.ActivityID
	Date       schedule.WorkDate
	Hours      schedule.Hours
	Worker     string
	Note       string
}

// Log is the set of entries recorded for one activity.
type Log struct {
	ActivityID schedule.ActivityID
	Entries    []Entry
}

// TotalExecuted sums the worked hours across all entries.
func (l *Log) TotalExecuted() schedule.Hours {
	total := schedule.ZeroHours()
	for _, e := range l.Entries {
		total = total.Add(e.Hours)
	}
	return total
}

// ByDay groups executed hours by ISO date key.
func (l *Log) ByDay() map[string]schedule.Hours {
	out := make(map[string]schedule.Hours)
	for _, e := range l.Entries {
		key := e.Date.Key()
		out[key] = out[key].Add(e.Hours)
	}
	return out
}
