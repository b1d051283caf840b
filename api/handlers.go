/*
handlers.go - HTTP API handlers for the planning engine

PURPOSE:
  Exposes the scheduling core via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the schedule and execution packages.

ENDPOINTS:
  Activities:
    GET    /api/activities                     List all activities
    POST   /api/activities                     Create activity
    GET    /api/activities/{id}                Get activity details
    DELETE /api/activities/{id}                Delete activity
    GET    /api/activities/{id}/allocation     Current per-day allocation
    GET    /api/activities/{id}/progress       Planned vs executed hours
    POST   /api/activities/{id}/executions     Log worked hours
    GET    /api/activities/{id}/executions     Execution log

  Plan:
    POST   /api/plan/recompute                 Run a recomputation pass
    GET    /api/plan/load                      Shared per-day load
    GET    /api/plan/overdue                   Late activities
    GET    /api/plan/runs                      Recomputation audit trail

  Calendar:
    GET    /api/calendar/next-working-day      Working-day lookup

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atlas/planning-engine/execution"
	"github.com/atlas/planning-engine/schedule"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is everything the API needs from persistence. Satisfied by the
// production SQLite store and by the in-memory store used in tests.
type Store interface {
	schedule.ActivityStore
	schedule.PlanRunStore
	execution.Store
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   Store
	Planner *schedule.Planner
}

// NewHandler creates a new handler with the given store.
func NewHandler(store Store) *Handler {
	return &Handler{
		Store:   store,
		Planner: schedule.NewPlanner(schedule.DefaultDailyCapacity),
	}
}

// =============================================================================
// ACTIVITY HANDLERS
// =============================================================================

// ListActivities returns all activities, with optional ?project_id= filter.
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		activities []*schedule.Activity
		err        error
	)
	if projectID := r.URL.Query().Get("project_id"); projectID != "" {
		activities, err = h.Store.ListByProject(ctx, schedule.ProjectID(projectID))
	} else {
		activities, err = h.Store.ListActivities(ctx)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list activities", err)
		return
	}

	today := schedule.Today()
	dtos := make([]ActivityDTO, len(activities))
	for i, a := range activities {
		dtos[i] = toActivityDTO(a, today)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetActivity returns a single activity.
func (h *Handler) GetActivity(w http.ResponseWriter, r *http.Request) {
	id := schedule.ActivityID(chi.URLParam(r, "id"))

	a, err := h.Store.GetActivity(r.Context(), id)
	if schedule.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Activity not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get activity", err)
		return
	}

	writeJSON(w, http.StatusOK, toActivityDTO(a, schedule.Today()))
}

// CreateActivity creates or updates an activity.
func (h *Handler) CreateActivity(w http.ResponseWriter, r *http.Request) {
	var req CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.ProjectID == "" {
		writeError(w, http.StatusBadRequest, "name and project_id are required", nil)
		return
	}
	if req.TotalHours < 0 {
		writeError(w, http.StatusBadRequest, "total_hours must be non-negative", nil)
		return
	}

	start, err := schedule.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date format (use YYYY-MM-DD)", err)
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}
	status := schedule.ActivityStatus(req.Status)
	if status == "" {
		status = schedule.StatusPlanned
	}

	a := &schedule.Activity{
		ID:            schedule.ActivityID(id),
		AnalyticID:    req.AnalyticID,
		Name:          req.Name,
		ProjectID:     schedule.ProjectID(req.ProjectID),
		Status:        status,
		StartDate:     start,
		TotalHours:    schedule.HoursOf(req.TotalHours),
		PredecessorID: req.PredecessorID,
		AdjustedEnd:   req.AdjustedEnd,
	}

	if err := h.Store.SaveActivity(r.Context(), a); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save activity", err)
		return
	}

	writeJSON(w, http.StatusCreated, toActivityDTO(a, schedule.Today()))
}

// DeleteActivity removes an activity and its allocation.
func (h *Handler) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	id := schedule.ActivityID(chi.URLParam(r, "id"))

	err := h.Store.DeleteActivity(r.Context(), id)
	if schedule.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Activity not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete activity", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetAllocation returns the stored per-day allocation for an activity.
func (h *Handler) GetAllocation(w http.ResponseWriter, r *http.Request) {
	id := schedule.ActivityID(chi.URLParam(r, "id"))

	a, err := h.Store.GetActivity(r.Context(), id)
	if schedule.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Activity not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get activity", err)
		return
	}

	total := schedule.ZeroHours()
	for _, hrs := range a.PerDay {
		total = total.Add(hrs)
	}
	writeJSON(w, http.StatusOK, AllocationDTO{
		ActivityID: string(a.ID),
		PerDay:     toFloatMap(a.PerDay),
		TotalHours: total.Float64(),
		EndDate:    a.PlannedEnd,
	})
}

// =============================================================================
// PLAN HANDLERS
// =============================================================================

// RecomputePlan runs a full recomputation pass and persists the result.
func (h *Handler) RecomputePlan(w http.ResponseWriter, r *http.Request) {
	result, run, err := RunPlan(r.Context(), h.Store, h.Planner)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Recomputation failed", err)
		return
	}

	dto := PlanResultDTO{
		RunID:             run.ID,
		ActivitiesPlanned: len(result.Plans),
		TotalPlannedHours: result.TotalPlanned().Float64(),
		Load:              toFloatMap(result.Load.Snapshot()),
	}
	for _, p := range result.Plans {
		dto.Allocations = append(dto.Allocations, toAllocationDTO(p.ActivityID, p.Allocation))
	}
	for _, warn := range result.Warnings {
		dto.Warnings = append(dto.Warnings, warn.Error())
	}
	writeJSON(w, http.StatusOK, dto)
}

// GetLoad returns the shared per-day load derived from stored allocations.
func (h *Handler) GetLoad(w http.ResponseWriter, r *http.Request) {
	activities, err := h.Store.ListActivities(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list activities", err)
		return
	}

	load := schedule.NewLoadMap()
	for _, a := range activities {
		for key, hrs := range a.PerDay {
			load.Add(key, hrs)
		}
	}
	writeJSON(w, http.StatusOK, toFloatMap(load.Snapshot()))
}

// ListOverdue returns activities whose end date slipped past today.
func (h *Handler) ListOverdue(w http.ResponseWriter, r *http.Request) {
	activities, err := h.Store.ListActivities(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list activities", err)
		return
	}

	reference := schedule.Today()
	if ref := r.URL.Query().Get("reference"); ref != "" {
		parsed, err := schedule.ParseDate(ref)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid reference date (use YYYY-MM-DD)", err)
			return
		}
		reference = parsed
	}

	dtos := []ActivityDTO{}
	for _, a := range activities {
		if schedule.IsOverdue(a, reference) {
			dtos = append(dtos, toActivityDTO(a, reference))
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListPlanRuns returns the recomputation audit trail.
func (h *Handler) ListPlanRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := h.Store.ListPlanRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list plan runs", err)
		return
	}

	dtos := make([]PlanRunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = PlanRunDTO{
			ID:                run.ID,
			Status:            run.Status,
			ActivitiesPlanned: run.ActivitiesPlanned,
			TotalPlannedHours: run.TotalPlannedHours.Float64(),
			Warnings:          run.Warnings,
			Error:             run.Error,
			StartedAt:         run.StartedAt.Key(),
			CompletedAt:       run.CompletedAt,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// CALENDAR HANDLERS
// =============================================================================

// NextWorkingDay resolves the next working day for a date.
// GET /api/calendar/next-working-day?date=2024-03-09&include_self=true
func (h *Handler) NextWorkingDay(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	date := schedule.Today()
	if raw != "" {
		parsed, err := schedule.ParseDate(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date (use YYYY-MM-DD)", err)
			return
		}
		date = parsed
	}
	includeSelf := r.URL.Query().Get("include_self") == "true"

	writeJSON(w, http.StatusOK, NextWorkingDayDTO{
		Input:          date.Key(),
		NextWorkingDay: schedule.NextWorkingDay(date, includeSelf).Key(),
		IsWorkingDay:   date.IsWorkingDay(),
	})
}

// =============================================================================
// EXECUTION HANDLERS
// =============================================================================

// CreateExecution logs worked hours against an activity.
func (h *Handler) CreateExecution(w http.ResponseWriter, r *http.Request) {
	id := schedule.ActivityID(chi.URLParam(r, "id"))
	ctx := r.Context()

	if _, err := h.Store.GetActivity(ctx, id); err != nil {
		if schedule.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Activity not found", nil)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get activity", err)
		return
	}

	var req CreateExecutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Hours <= 0 {
		writeError(w, http.StatusBadRequest, "hours must be positive", nil)
		return
	}
	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return
	}

	entry := execution.Entry{
		ID:         uuid.NewString(),
		ActivityID: id,
		Date:       date,
		Hours:      schedule.HoursOf(req.Hours),
		Worker:     req.Worker,
		Note:       req.Note,
	}
	if err := h.Store.SaveExecution(ctx, entry); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save execution", err)
		return
	}

	writeJSON(w, http.StatusCreated, ExecutionDTO{
		ID:         entry.ID,
		ActivityID: string(id),
		Date:       entry.Date.Key(),
		Hours:      entry.Hours.Float64(),
		Worker:     entry.Worker,
		Note:       entry.Note,
	})
}

// ListExecutions returns the execution log of an activity.
func (h *Handler) ListExecutions(w http.ResponseWriter, r *http.Request) {
	id := schedule.ActivityID(chi.URLParam(r, "id"))

	l, err := h.Store.GetExecutionLog(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load execution log", err)
		return
	}

	dtos := make([]ExecutionDTO, len(l.Entries))
	for i, e := range l.Entries {
		dtos[i] = ExecutionDTO{
			ID:         e.ID,
			ActivityID: string(e.ActivityID),
			Date:       e.Date.Key(),
			Hours:      e.Hours.Float64(),
			Worker:     e.Worker,
			Note:       e.Note,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetProgress compares planned and executed hours for an activity.
func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request) {
	id := schedule.ActivityID(chi.URLParam(r, "id"))
	ctx := r.Context()

	a, err := h.Store.GetActivity(ctx, id)
	if schedule.IsNotFound(err) {
		writeError(w, http.StatusNotFound, "Activity not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get activity", err)
		return
	}

	l, err := h.Store.GetExecutionLog(ctx, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load execution log", err)
		return
	}

	writeJSON(w, http.StatusOK, toProgressDTO(execution.Compute(a, l)))
}

// =============================================================================
// SHARED PLAN EXECUTION
// =============================================================================

// RunPlan loads all activities, recomputes the schedule, persists every new
// allocation and records a plan run. Shared between the HTTP handler and
// the background replanner.
func RunPlan(ctx context.Context, store Store, planner *schedule.Planner) (*schedule.PlanResult, schedule.PlanRun, error) {
	started := time.Now()
	run := schedule.PlanRun{
		ID:                 fmt.Sprintf("run-%d", started.UnixNano()),
		Status:             "running",
		StartedAt:          schedule.Today(),
		StartedAtTimestamp: started.Unix(),
	}
	if err := store.SavePlanRun(ctx, run); err != nil {
		return nil, run, err
	}

	activities, err := store.ListActivities(ctx)
	if err != nil {
		run.Status = "failed"
		run.Error = err.Error()
		store.SavePlanRun(ctx, run)
		return nil, run, err
	}

	result := planner.Recompute(activities)

	for _, p := range result.Plans {
		if err := store.SaveAllocation(ctx, p.ActivityID, p.Allocation.PerDay, p.Allocation.EndDate.Key()); err != nil {
			run.Status = "failed"
			run.Error = err.Error()
			store.SavePlanRun(ctx, run)
			return nil, run, err
		}
	}

	run.Status = "completed"
	run.ActivitiesPlanned = len(result.Plans)
	run.TotalPlannedHours = result.TotalPlanned()
	run.Warnings = len(result.Warnings)
	run.CompletedAt = time.Now().Unix()
	if err := store.SavePlanRun(ctx, run); err != nil {
		return result, run, err
	}
	return result, run, nil
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
