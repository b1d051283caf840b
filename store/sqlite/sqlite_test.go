package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas/planning-engine/execution"
	"github.com/atlas/planning-engine/schedule"
	"github.com/atlas/planning-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testActivity(id string) *schedule.Activity {
	return &schedule.Activity{
		ID:         schedule.ActivityID(id),
		AnalyticID: "wbs-" + id,
		Name:       "Activity " + id,
		ProjectID:  "proj-1",
		Status:     schedule.StatusPlanned,
		StartDate:  schedule.NewWorkDate(2024, time.March, 4),
		TotalHours: schedule.HoursOf(20),
	}
}

// =============================================================================
// ACTIVITY ROUND TRIPS
// =============================================================================

func TestStore_SaveAndGetActivity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := testActivity("act-1")
	a.PredecessorID = "act-0"
	a.AdjustedEnd = "2024-03-15"
	require.NoError(t, store.SaveActivity(ctx, a))

	got, err := store.GetActivity(ctx, "act-1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, a.AnalyticID, got.AnalyticID)
	assert.Equal(t, a.Name, got.Name)
	assert.Equal(t, a.PredecessorID, got.PredecessorID)
	assert.Equal(t, a.AdjustedEnd, got.AdjustedEnd)
	assert.True(t, got.StartDate.Equal(a.StartDate))
	assert.True(t, got.TotalHours.Equal(schedule.HoursOf(20)))
}

func TestStore_GetActivity_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetActivity(context.Background(), "nope")
	assert.ErrorIs(t, err, schedule.ErrActivityNotFound)
}

func TestStore_SaveActivity_Upsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := testActivity("act-1")
	require.NoError(t, store.SaveActivity(ctx, a))

	a.Name = "Renamed"
	a.TotalHours = schedule.HoursOf(40)
	require.NoError(t, store.SaveActivity(ctx, a))

	got, err := store.GetActivity(ctx, "act-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.True(t, got.TotalHours.Equal(schedule.HoursOf(40)))

	all, err := store.ListActivities(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "upsert must not duplicate")
}

func TestStore_ListByProject(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := testActivity("act-1")
	b := testActivity("act-2")
	b.ProjectID = "proj-2"
	require.NoError(t, store.SaveActivity(ctx, a))
	require.NoError(t, store.SaveActivity(ctx, b))

	got, err := store.ListByProject(ctx, "proj-2")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, schedule.ActivityID("act-2"), got[0].ID)
}

// =============================================================================
// ALLOCATIONS
// =============================================================================

func TestStore_SaveAllocation_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := testActivity("act-1")
	require.NoError(t, store.SaveActivity(ctx, a))

	perDay := map[string]schedule.Hours{
		"2024-03-04": schedule.HoursOf(8),
		"2024-03-05": schedule.HoursOf(8),
		"2024-03-06": schedule.HoursOf(4),
	}
	require.NoError(t, store.SaveAllocation(ctx, "act-1", perDay, "2024-03-06"))

	got, err := store.GetActivity(ctx, "act-1")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-06", got.PlannedEnd)
	require.Len(t, got.PerDay, 3)
	assert.True(t, got.PerDay["2024-03-06"].Equal(schedule.HoursOf(4)))
}

func TestStore_SaveAllocation_ReplacesPrevious(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveActivity(ctx, testActivity("act-1")))
	first := map[string]schedule.Hours{"2024-03-04": schedule.HoursOf(8)}
	require.NoError(t, store.SaveAllocation(ctx, "act-1", first, "2024-03-04"))

	second := map[string]schedule.Hours{"2024-03-11": schedule.HoursOf(6.5)}
	require.NoError(t, store.SaveAllocation(ctx, "act-1", second, "2024-03-11"))

	got, err := store.GetActivity(ctx, "act-1")
	require.NoError(t, err)
	require.Len(t, got.PerDay, 1, "old allocation rows must be gone")
	assert.True(t, got.PerDay["2024-03-11"].Equal(schedule.HoursOf(6.5)))
}

func TestStore_SaveAllocation_MissingActivity(t *testing.T) {
	store := newTestStore(t)

	err := store.SaveAllocation(context.Background(), "nope", nil, "")
	assert.ErrorIs(t, err, schedule.ErrActivityNotFound)
}

func TestStore_DeleteActivity_CascadesAllocation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveActivity(ctx, testActivity("act-1")))
	perDay := map[string]schedule.Hours{"2024-03-04": schedule.HoursOf(8)}
	require.NoError(t, store.SaveAllocation(ctx, "act-1", perDay, "2024-03-04"))

	require.NoError(t, store.DeleteActivity(ctx, "act-1"))
	_, err := store.GetActivity(ctx, "act-1")
	assert.ErrorIs(t, err, schedule.ErrActivityNotFound)
}

// =============================================================================
// EXECUTIONS
// =============================================================================

func TestStore_ExecutionLog_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveActivity(ctx, testActivity("act-1")))
	require.NoError(t, store.SaveExecution(ctx, execution.Entry{
		ID:         "exec-1",
		ActivityID: "act-1",
		Date:       schedule.NewWorkDate(2024, time.March, 4),
		Hours:      schedule.HoursOf(6.5),
		Worker:     "crew-a",
		Note:       "foundation pour",
	}))
	require.NoError(t, store.SaveExecution(ctx, execution.Entry{
		ID:         "exec-2",
		ActivityID: "act-1",
		Date:       schedule.NewWorkDate(2024, time.March, 5),
		Hours:      schedule.HoursOf(8),
	}))

	l, err := store.GetExecutionLog(ctx, "act-1")
	require.NoError(t, err)
	require.Len(t, l.Entries, 2)
	assert.Equal(t, "exec-1", l.Entries[0].ID)
	assert.Equal(t, "crew-a", l.Entries[0].Worker)
	assert.True(t, l.TotalExecuted().Equal(schedule.HoursOf(14.5)))
}

// =============================================================================
// PLAN RUNS
// =============================================================================

func TestStore_PlanRuns_UpsertAndOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run1 := schedule.PlanRun{
		ID:                 "run-1",
		Status:             "running",
		StartedAt:          schedule.NewWorkDate(2024, time.March, 4),
		StartedAtTimestamp: 1000,
	}
	require.NoError(t, store.SavePlanRun(ctx, run1))

	run1.Status = "completed"
	run1.ActivitiesPlanned = 3
	run1.TotalPlannedHours = schedule.HoursOf(44)
	run1.CompletedAt = 1010
	require.NoError(t, store.SavePlanRun(ctx, run1))

	run2 := schedule.PlanRun{
		ID:                 "run-2",
		Status:             "completed",
		StartedAt:          schedule.NewWorkDate(2024, time.March, 5),
		StartedAtTimestamp: 2000,
		CompletedAt:        2005,
	}
	require.NoError(t, store.SavePlanRun(ctx, run2))

	runs, err := store.ListPlanRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2, "upsert must not duplicate")
	assert.Equal(t, "run-2", runs[0].ID, "newest first")
	assert.Equal(t, "completed", runs[1].Status)
	assert.True(t, runs[1].TotalPlannedHours.Equal(schedule.HoursOf(44)))
}
