/*
store.go - Persistence interface for activities and allocations

PURPOSE:
  Defines the interface between the scheduling core and the database.
  Different implementations can use SQLite or in-memory storage.

KEY INTERFACES:
  ActivityStore: Activity CRUD plus allocation persistence
  PlanRunStore:  Audit records for recomputation passes

ALLOCATION WRITES:
  SaveAllocation replaces an activity's entire per-day allocation in one
  call. A recomputation pass rewrites every scheduled activity, so partial
  per-day updates are never needed.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - schedule/store/memory.go: In-memory for testing

SEE ALSO:
  - planner.go: Produces the allocations persisted here
  - api/handlers.go: HTTP surface over this interface
*/
package schedule

import "context"

// =============================================================================
// ACTIVITY STORE
// =============================================================================

// ActivityStore handles persistence of activities and their allocations.
type ActivityStore interface {
	// SaveActivity inserts or updates an activity record.
	SaveActivity(ctx context.Context, a *Activity) error

	// GetActivity returns an activity by primary ID, or ErrActivityNotFound.
	GetActivity(ctx context.Context, id ActivityID) (*Activity, error)

	// ListActivities returns all activities, PerDay populated.
	ListActivities(ctx context.Context) ([]*Activity, error)

	// ListByProject returns the activities of one project.
	ListByProject(ctx context.Context, projectID ProjectID) ([]*Activity, error)

	// SaveAllocation replaces the stored per-day allocation and planned end
	// for an activity.
	SaveAllocation(ctx context.Context, id ActivityID, perDay map[string]Hours, plannedEnd string) error

	// DeleteActivity removes an activity and its allocation.
	DeleteActivity(ctx context.Context, id ActivityID) error
}

// =============================================================================
// PLAN RUN STORE - Audit trail for recomputation passes
// =============================================================================

// PlanRun records one recomputation pass for audit and UI display.
type PlanRun struct {
	ID                 string
	Status             string // "running", "completed", "failed"
	ActivitiesPlanned  int
	TotalPlannedHours  Hours
	Warnings           int
	Error              string
	StartedAt          WorkDate
	StartedAtTimestamp int64 // unix seconds, for ordering runs within a day
	CompletedAt        int64
}

// PlanRunStore persists recomputation audit records.
type PlanRunStore interface {
	SavePlanRun(ctx context.Context, run PlanRun) error
	ListPlanRuns(ctx context.Context, limit int) ([]PlanRun, error)
}
