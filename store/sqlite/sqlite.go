/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements persistence for activities, per-day allocations, execution logs
  and plan-run audit records using SQLite. In production, the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:
  schedule.ActivityStore: Activity CRUD + allocation writes
  schedule.PlanRunStore:  Recomputation audit trail
  execution.Store:        Worked-hours log

ALLOCATION WRITES:
  SaveAllocation rewrites the activity's allocation rows inside one SQL
  transaction. A recomputation pass replaces every scheduled activity's
  allocation, so delete-then-insert is the natural shape.

KEY TABLES:
  activities:  Planning items (start, hours, predecessor, end dates)
  allocations: Per-day hours, one row per activity/day
  executions:  Hours actually worked, per activity/day
  plan_runs:   One row per recomputation pass

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's WAL mode:
  multiple readers don't block, single writer at a time.

USAGE:
  store, err := sqlite.New("./data/planning.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - schedule/store.go: Interface definitions
  - schedule/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/atlas/planning-engine/execution"
	"github.com/atlas/planning-engine/schedule"
)

// Store implements the storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ schedule.ActivityStore = (*Store)(nil)
	_ schedule.PlanRunStore  = (*Store)(nil)
	_ execution.Store        = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schemaSQL := `
	-- Planning items
	CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		analytic_id TEXT,
		name TEXT NOT NULL,
		project_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'planned',
		start_date TEXT NOT NULL,
		total_hours TEXT NOT NULL,
		predecessor_id TEXT,
		planned_end TEXT,
		adjusted_end TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_activities_project
		ON activities(project_id);
	CREATE INDEX IF NOT EXISTS idx_activities_analytic
		ON activities(analytic_id) WHERE analytic_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_activities_status
		ON activities(status);

	-- Per-day allocation produced by distribution (hot path for load map)
	CREATE TABLE IF NOT EXISTS allocations (
		activity_id TEXT NOT NULL,
		day TEXT NOT NULL,
		hours TEXT NOT NULL,
		PRIMARY KEY (activity_id, day),
		FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_allocations_day
		ON allocations(day);

	-- Hours actually worked
	CREATE TABLE IF NOT EXISTS executions (
		id TEXT PRIMARY KEY,
		activity_id TEXT NOT NULL,
		day TEXT NOT NULL,
		hours TEXT NOT NULL,
		worker TEXT,
		note TEXT,
		created_at TEXT NOT NULL,
		FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_executions_activity
		ON executions(activity_id, day);

	-- Recomputation audit trail
	CREATE TABLE IF NOT EXISTS plan_runs (
		id TEXT PRIMARY KEY,
		status TEXT NOT NULL,
		activities_planned INTEGER DEFAULT 0,
		total_planned_hours TEXT,
		warnings INTEGER DEFAULT 0,
		error TEXT,
		started_day TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		completed_at INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_plan_runs_started
		ON plan_runs(started_at DESC);
	`

	_, err := s.db.Exec(schemaSQL)
	return err
}

// =============================================================================
// ACTIVITY STORE
// =============================================================================

func (s *Store) SaveActivity(ctx context.Context, a *schedule.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activities
			(id, analytic_id, name, project_id, status, start_date, total_hours,
			 predecessor_id, planned_end, adjusted_end, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			analytic_id = excluded.analytic_id,
			name = excluded.name,
			project_id = excluded.project_id,
			status = excluded.status,
			start_date = excluded.start_date,
			total_hours = excluded.total_hours,
			predecessor_id = excluded.predecessor_id,
			planned_end = excluded.planned_end,
			adjusted_end = excluded.adjusted_end,
			updated_at = excluded.updated_at`,
		string(a.ID), a.AnalyticID, a.Name, string(a.ProjectID), string(a.Status),
		a.StartDate.Key(), a.TotalHours.String(), a.PredecessorID,
		a.PlannedEnd, a.AdjustedEnd, now, now)
	return err
}

func (s *Store) GetActivity(ctx context.Context, id schedule.ActivityID) (*schedule.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, analytic_id, name, project_id, status, start_date,
		       total_hours, predecessor_id, planned_end, adjusted_end
		FROM activities WHERE id = ?`, string(id))

	a, err := scanActivity(row)
	if err == sql.ErrNoRows {
		return nil, schedule.ErrActivityNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.loadAllocation(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) ListActivities(ctx context.Context) ([]*schedule.Activity, error) {
	return s.listActivities(ctx, `
		SELECT id, analytic_id, name, project_id, status, start_date,
		       total_hours, predecessor_id, planned_end, adjusted_end
		FROM activities ORDER BY id`)
}

func (s *Store) ListByProject(ctx context.Context, projectID schedule.ProjectID) ([]*schedule.Activity, error) {
	return s.listActivities(ctx, `
		SELECT id, analytic_id, name, project_id, status, start_date,
		       total_hours, predecessor_id, planned_end, adjusted_end
		FROM activities WHERE project_id = ? ORDER BY id`, string(projectID))
}

func (s *Store) listActivities(ctx context.Context, query string, args ...any) ([]*schedule.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []*schedule.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, a := range activities {
		if err := s.loadAllocation(ctx, a); err != nil {
			return nil, err
		}
	}
	return activities, nil
}

func (s *Store) SaveAllocation(ctx context.Context, id schedule.ActivityID, perDay map[string]schedule.Hours, plannedEnd string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE activities SET planned_end = ?, updated_at = ? WHERE id = ?`,
		plannedEnd, time.Now().UTC().Format(time.RFC3339), string(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrActivityNotFound
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM allocations WHERE activity_id = ?`, string(id)); err != nil {
		return err
	}

	for day, hours := range perDay {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO allocations (activity_id, day, hours) VALUES (?, ?, ?)`,
			string(id), day, hours.String()); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) DeleteActivity(ctx context.Context, id schedule.ActivityID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM activities WHERE id = ?`, string(id))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return schedule.ErrActivityNotFound
	}
	return nil
}

func (s *Store) loadAllocation(ctx context.Context, a *schedule.Activity) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT day, hours FROM allocations WHERE activity_id = ?`, string(a.ID))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var day, hours string
		if err := rows.Scan(&day, &hours); err != nil {
			return err
		}
		if a.PerDay == nil {
			a.PerDay = make(map[string]schedule.Hours)
		}
		a.PerDay[day] = schedule.ParseHours(hours)
	}
	return rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (*schedule.Activity, error) {
	var (
		id, name, projectID, status, startDate, totalHours string
		analyticID, predecessorID, plannedEnd, adjustedEnd sql.NullString
	)
	if err := row.Scan(&id, &analyticID, &name, &projectID, &status,
		&startDate, &totalHours, &predecessorID, &plannedEnd, &adjustedEnd); err != nil {
		return nil, err
	}

	start, err := schedule.ParseDate(startDate)
	if err != nil {
		return nil, fmt.Errorf("activity %s: %w: %q", id, schedule.ErrInvalidDate, startDate)
	}

	return &schedule.Activity{
		ID:            schedule.ActivityID(id),
		AnalyticID:    analyticID.String,
		Name:          name,
		ProjectID:     schedule.ProjectID(projectID),
		Status:        schedule.ActivityStatus(status),
		StartDate:     start,
		TotalHours:    schedule.ParseHours(totalHours),
		PredecessorID: predecessorID.String,
		PlannedEnd:    plannedEnd.String,
		AdjustedEnd:   adjustedEnd.String,
	}, nil
}

// =============================================================================
// EXECUTION LOG
// =============================================================================

func (s *Store) SaveExecution(ctx context.Context, e execution.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO executions (id, activity_id, day, hours, worker, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.ActivityID), e.Date.Key(), e.Hours.String(),
		e.Worker, e.Note, time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) GetExecutionLog(ctx context.Context, activityID schedule.ActivityID) (*execution.Log, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, day, hours, worker, note
		FROM executions WHERE activity_id = ? ORDER BY day`, string(activityID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	l := &execution.Log{ActivityID: activityID}
	for rows.Next() {
		var id, day, hours string
		var worker, note sql.NullString
		if err := rows.Scan(&id, &day, &hours, &worker, &note); err != nil {
			return nil, err
		}
		date, err := schedule.ParseDate(day)
		if err != nil {
			return nil, fmt.Errorf("execution %s: %w: %q", id, schedule.ErrInvalidDate, day)
		}
		l.Entries = append(l.Entries, execution.Entry{
			ID:         id,
			ActivityID: activityID,
			Date:       date,
			Hours:      schedule.ParseHours(hours),
			Worker:     worker.String,
			Note:       note.String,
		})
	}
	return l, rows.Err()
}

// =============================================================================
// PLAN RUNS
// =============================================================================

func (s *Store) SavePlanRun(ctx context.Context, run schedule.PlanRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO plan_runs
			(id, status, activities_planned, total_planned_hours, warnings,
			 error, started_day, started_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			activities_planned = excluded.activities_planned,
			total_planned_hours = excluded.total_planned_hours,
			warnings = excluded.warnings,
			error = excluded.error,
			completed_at = excluded.completed_at`,
		run.ID, run.Status, run.ActivitiesPlanned, run.TotalPlannedHours.String(),
		run.Warnings, run.Error, run.StartedAt.Key(), run.StartedAtTimestamp, run.CompletedAt)
	return err
}

func (s *Store) ListPlanRuns(ctx context.Context, limit int) ([]schedule.PlanRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, status, activities_planned, total_planned_hours, warnings,
		       error, started_day, started_at, completed_at
		FROM plan_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []schedule.PlanRun
	for rows.Next() {
		var (
			run                    schedule.PlanRun
			totalHours, startedDay string
			errMsg                 sql.NullString
			completedAt            sql.NullInt64
		)
		if err := rows.Scan(&run.ID, &run.Status, &run.ActivitiesPlanned,
			&totalHours, &run.Warnings, &errMsg, &startedDay,
			&run.StartedAtTimestamp, &completedAt); err != nil {
			return nil, err
		}
		run.TotalPlannedHours = schedule.ParseHours(totalHours)
		run.Error = errMsg.String
		run.CompletedAt = completedAt.Int64
		if day, err := schedule.ParseDate(startedDay); err == nil {
			run.StartedAt = day
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
