/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"github.com/atlas/planning-engine/execution"
	"github.com/atlas/planning-engine/schedule"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// ActivityDTO represents a planning item in API responses.
type ActivityDTO struct {
	ID            string             `json:"id"`
	AnalyticID    string             `json:"analytic_id,omitempty"`
	Name          string             `json:"name"`
	ProjectID     string             `json:"project_id"`
	Status        string             `json:"status"`
	StartDate     string             `json:"start_date"`
	TotalHours    float64            `json:"total_hours"`
	PredecessorID string             `json:"predecessor_id,omitempty"`
	PlannedEnd    string             `json:"planned_end,omitempty"`
	AdjustedEnd   string             `json:"adjusted_end,omitempty"`
	PerDay        map[string]float64 `json:"per_day,omitempty"`
	Overdue       bool               `json:"overdue"`
	DaysLate      int                `json:"days_late,omitempty"`
}

// CreateActivityRequest is the request to create or update an activity.
type CreateActivityRequest struct {
	ID            string  `json:"id,omitempty"`
	AnalyticID    string  `json:"analytic_id,omitempty"`
	Name          string  `json:"name"`
	ProjectID     string  `json:"project_id"`
	Status        string  `json:"status,omitempty"`
	StartDate     string  `json:"start_date"`
	TotalHours    float64 `json:"total_hours"`
	PredecessorID string  `json:"predecessor_id,omitempty"`
	AdjustedEnd   string  `json:"adjusted_end,omitempty"`
}

// AllocationDTO represents one activity's distribution result.
type AllocationDTO struct {
	ActivityID string             `json:"activity_id"`
	PerDay     map[string]float64 `json:"per_day"`
	TotalHours float64            `json:"total_hours"`
	EndDate    string             `json:"end_date"`
	Truncated  bool               `json:"truncated,omitempty"`
}

// PlanResultDTO is the response of a recomputation pass.
type PlanResultDTO struct {
	RunID             string             `json:"run_id"`
	ActivitiesPlanned int                `json:"activities_planned"`
	TotalPlannedHours float64            `json:"total_planned_hours"`
	Allocations       []AllocationDTO    `json:"allocations"`
	Load              map[string]float64 `json:"load"`
	Warnings          []string           `json:"warnings,omitempty"`
}

// PlanRunDTO represents one recorded recomputation pass.
type PlanRunDTO struct {
	ID                string  `json:"id"`
	Status            string  `json:"status"`
	ActivitiesPlanned int     `json:"activities_planned"`
	TotalPlannedHours float64 `json:"total_planned_hours"`
	Warnings          int     `json:"warnings"`
	Error             string  `json:"error,omitempty"`
	StartedAt         string  `json:"started_at"`
	CompletedAt       int64   `json:"completed_at,omitempty"`
}

// NextWorkingDayDTO is the calendar lookup response.
type NextWorkingDayDTO struct {
	Input          string `json:"input"`
	NextWorkingDay string `json:"next_working_day"`
	IsWorkingDay   bool   `json:"is_working_day"`
}

// CreateExecutionRequest records worked hours against an activity.
type CreateExecutionRequest struct {
	Date   string  `json:"date"`
	Hours  float64 `json:"hours"`
	Worker string  `json:"worker,omitempty"`
	Note   string  `json:"note,omitempty"`
}

// ExecutionDTO represents one execution log entry.
type ExecutionDTO struct {
	ID         string  `json:"id"`
	ActivityID string  `json:"activity_id"`
	Date       string  `json:"date"`
	Hours      float64 `json:"hours"`
	Worker     string  `json:"worker,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// ProgressDTO summarizes planned vs executed hours.
type ProgressDTO struct {
	ActivityID string           `json:"activity_id"`
	Planned    float64          `json:"planned"`
	Executed   float64          `json:"executed"`
	Variance   float64          `json:"variance"`
	Percent    float64          `json:"percent"`
	Days       []DayProgressDTO `json:"days,omitempty"`
}

// DayProgressDTO compares one calendar day.
type DayProgressDTO struct {
	Day      string  `json:"day"`
	Planned  float64 `json:"planned"`
	Executed float64 `json:"executed"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toActivityDTO(a *schedule.Activity, reference schedule.WorkDate) ActivityDTO {
	return ActivityDTO{
		ID:            string(a.ID),
		AnalyticID:    a.AnalyticID,
		Name:          a.Name,
		ProjectID:     string(a.ProjectID),
		Status:        string(a.Status),
		StartDate:     a.StartDate.Key(),
		TotalHours:    a.TotalHours.Float64(),
		PredecessorID: a.PredecessorID,
		PlannedEnd:    a.PlannedEnd,
		AdjustedEnd:   a.AdjustedEnd,
		PerDay:        toFloatMap(a.PerDay),
		Overdue:       schedule.IsOverdue(a, reference),
		DaysLate:      schedule.DaysLate(a, reference),
	}
}

func toAllocationDTO(id schedule.ActivityID, alloc schedule.Allocation) AllocationDTO {
	return AllocationDTO{
		ActivityID: string(id),
		PerDay:     toFloatMap(alloc.PerDay),
		TotalHours: alloc.Total().Float64(),
		EndDate:    alloc.EndDate.Key(),
		Truncated:  alloc.Truncated,
	}
}

func toProgressDTO(p execution.Progress) ProgressDTO {
	dto := ProgressDTO{
		ActivityID: string(p.ActivityID),
		Planned:    p.Planned.Float64(),
		Executed:   p.Executed.Float64(),
		Variance:   p.Variance.Float64(),
		Percent:    p.Percent,
	}
	for _, d := range p.Days {
		dto.Days = append(dto.Days, DayProgressDTO{
			Day:      d.Day,
			Planned:  d.Planned.Float64(),
			Executed: d.Executed.Float64(),
		})
	}
	return dto
}

func toFloatMap(hours map[string]schedule.Hours) map[string]float64 {
	if len(hours) == 0 {
		return nil
	}
	out := make(map[string]float64, len(hours))
	for key, h := range hours {
		out[key] = h.Float64()
	}
	return out
}
