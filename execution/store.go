package execution

import (
	"context"

	"github.com/atlas/planning-engine/schedule"
)

// Store persists execution log entries. Lives here rather than in the
// schedule package because entries reference execution types; the schedule
// package stays free of this dependency.
type Store interface {
	// SaveExecution appends one worked-hours entry.
	SaveExecution(ctx context.Context, e Entry) error

	// GetExecutionLog returns all entries for an activity, oldest first.
	// An activity with no entries yields an empty log, not an error.
	GetExecutionLog(ctx context.Context, activityID schedule.ActivityID) (*Log, error)
}
