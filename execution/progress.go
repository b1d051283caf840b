/*
progress.go - Planned vs executed comparison

PURPOSE:
  Computes the progress figures the planning screens display: completion
  percentage, hour variance, and the per-day gap between what was planned
  and what was actually logged.

SEMANTICS:
  - Percent is executed/planned, capped at 100. Zero planned hours with any
    execution reads as 100% (the work happened even if it was never sized).
  - Variance is executed minus planned: positive means over-spend.
  - A day appears in the per-day comparison when either side has hours.
*/
package execution

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/atlas/planning-engine/schedule"
)

// =============================================================================
// PROGRESS
// =============================================================================

// Progress summarizes execution against plan for one activity.
type Progress struct {
	ActivityID schedule.ActivityID
	Planned    schedule.Hours
	Executed   schedule.Hours
	Variance   schedule.Hours // executed - planned
	Percent    float64        // 0..100
	Days       []DayProgress
}

// DayProgress compares one calendar day.
type DayProgress struct {
	Day      string // ISO date key
	Planned  schedule.Hours
	Executed schedule.Hours
}

// Compute builds the progress summary for an activity and its log.
func Compute(a *schedule.Activity, l *Log) Progress {
	planned := schedule.ZeroHours()
	for _, h := range a.PerDay {
		planned = planned.Add(h)
	}

	executed := schedule.ZeroHours()
	executedByDay := map[string]schedule.Hours{}
	if l != nil {
		executed = l.TotalExecuted()
		executedByDay = l.ByDay()
	}

	p := Progress{
		ActivityID: a.ID,
		Planned:    planned,
		Executed:   executed,
		Variance:   executed.Sub(planned),
		Percent:    percent(executed, planned),
	}

	seen := make(map[string]bool)
	for key := range a.PerDay {
		seen[key] = true
	}
	for key := range executedByDay {
		seen[key] = true
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		p.Days = append(p.Days, DayProgress{
			Day:      key,
			Planned:  a.PerDay[key],
			Executed: executedByDay[key],
		})
	}

	return p
}

func percent(executed, planned schedule.Hours) float64 {
	if !planned.IsPositive() {
		if executed.IsPositive() {
			return 100
		}
		return 0
	}
	ratio := decimal.NewFromFloat(executed.Float64()).
		Div(decimal.NewFromFloat(planned.Float64())).
		Mul(decimal.NewFromInt(100)).
		Round(2)
	f, _ := ratio.Float64()
	if f > 100 {
		return 100
	}
	return f
}
