// Package store provides ActivityStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/atlas/planning-engine/execution"
	"github.com/atlas/planning-engine/schedule"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	activities map[schedule.ActivityID]*schedule.Activity
	executions map[schedule.ActivityID][]execution.Entry
	runs       []schedule.PlanRun
}

var (
	_ schedule.ActivityStore = (*Memory)(nil)
	_ schedule.PlanRunStore  = (*Memory)(nil)
	_ execution.Store        = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		activities: make(map[schedule.ActivityID]*schedule.Activity),
		executions: make(map[schedule.ActivityID][]execution.Entry),
	}
}

func (m *Memory) SaveActivity(_ context.Context, a *schedule.Activity) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities[a.ID] = cloneActivity(a)
	return nil
}

func (m *Memory) GetActivity(_ context.Context, id schedule.ActivityID) (*schedule.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.activities[id]
	if !ok {
		return nil, schedule.ErrActivityNotFound
	}
	return cloneActivity(a), nil
}

func (m *Memory) ListActivities(_ context.Context) ([]*schedule.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*schedule.Activity, 0, len(m.activities))
	for _, a := range m.activities {
		result = append(result, cloneActivity(a))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) ListByProject(_ context.Context, projectID schedule.ProjectID) ([]*schedule.Activity, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*schedule.Activity
	for _, a := range m.activities {
		if a.ProjectID == projectID {
			result = append(result, cloneActivity(a))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) SaveAllocation(_ context.Context, id schedule.ActivityID, perDay map[string]schedule.Hours, plannedEnd string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.activities[id]
	if !ok {
		return schedule.ErrActivityNotFound
	}
	a.PerDay = clonePerDay(perDay)
	a.PlannedEnd = plannedEnd
	return nil
}

func (m *Memory) DeleteActivity(_ context.Context, id schedule.ActivityID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.activities[id]; !ok {
		return schedule.ErrActivityNotFound
	}
	delete(m.activities, id)
	delete(m.executions, id)
	return nil
}

func (m *Memory) SaveExecution(_ context.Context, e execution.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executions[e.ActivityID] = append(m.executions[e.ActivityID], e)
	return nil
}

func (m *Memory) GetExecutionLog(_ context.Context, activityID schedule.ActivityID) (*execution.Log, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]execution.Entry, len(m.executions[activityID]))
	copy(entries, m.executions[activityID])
	return &execution.Log{ActivityID: activityID, Entries: entries}, nil
}

func (m *Memory) SavePlanRun(_ context.Context, run schedule.PlanRun) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.runs {
		if existing.ID == run.ID {
			m.runs[i] = run
			return nil
		}
	}
	m.runs = append(m.runs, run)
	return nil
}

func (m *Memory) ListPlanRuns(_ context.Context, limit int) ([]schedule.PlanRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	runs := make([]schedule.PlanRun, len(m.runs))
	copy(runs, m.runs)
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAtTimestamp > runs[j].StartedAtTimestamp
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func cloneActivity(a *schedule.Activity) *schedule.Activity {
	c := *a
	c.PerDay = clonePerDay(a.PerDay)
	return &c
}

func clonePerDay(perDay map[string]schedule.Hours) map[string]schedule.Hours {
	if perDay == nil {
		return nil
	}
	out := make(map[string]schedule.Hours, len(perDay))
	for k, v := range perDay {
		out[k] = v
	}
	return out
}
