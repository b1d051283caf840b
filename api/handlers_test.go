/*
handlers_test.go - HTTP-level tests for the planning API

Tests for:
- Activity CRUD and validation
- Plan recomputation end-to-end (distribution persisted, run recorded)
- Overdue listing and calendar lookup
- Execution logging and progress
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas/planning-engine/schedule/store"
	"github.com/atlas/planning-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	server := httptest.NewServer(NewRouter(NewHandler(store)))
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createActivity(t *testing.T, server *httptest.Server, req CreateActivityRequest) ActivityDTO {
	t.Helper()

	resp := doJSON(t, http.MethodPost, server.URL+"/api/activities", req)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[ActivityDTO](t, resp)
}

// =============================================================================
// ACTIVITY CRUD
// =============================================================================

func TestCreateActivity_GeneratesIDAndDefaults(t *testing.T) {
	server := newTestServer(t)

	dto := createActivity(t, server, CreateActivityRequest{
		Name:       "Excavation",
		ProjectID:  "proj-1",
		StartDate:  "2024-03-04",
		TotalHours: 20,
	})

	assert.NotEmpty(t, dto.ID)
	assert.Equal(t, "planned", dto.Status)
	assert.Equal(t, "2024-03-04", dto.StartDate)
	assert.Equal(t, 20.0, dto.TotalHours)
}

func TestCreateActivity_Validation(t *testing.T) {
	server := newTestServer(t)

	cases := []struct {
		name string
		req  CreateActivityRequest
	}{
		{"missing name", CreateActivityRequest{ProjectID: "p", StartDate: "2024-03-04"}},
		{"missing project", CreateActivityRequest{Name: "x", StartDate: "2024-03-04"}},
		{"bad date", CreateActivityRequest{Name: "x", ProjectID: "p", StartDate: "04/03/2024"}},
		{"negative hours", CreateActivityRequest{Name: "x", ProjectID: "p", StartDate: "2024-03-04", TotalHours: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, server.URL+"/api/activities", tc.req)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestGetActivity_NotFound(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/activities/nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeleteActivity(t *testing.T) {
	server := newTestServer(t)
	dto := createActivity(t, server, CreateActivityRequest{
		Name: "Demolition", ProjectID: "proj-1", StartDate: "2024-03-04", TotalHours: 8,
	})

	req, _ := http.NewRequest(http.MethodDelete, server.URL+"/api/activities/"+dto.ID, nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	getResp, err := http.Get(server.URL + "/api/activities/" + dto.ID)
	require.NoError(t, err)
	getResp.Body.Close()
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

// =============================================================================
// PLAN RECOMPUTATION
// =============================================================================

func TestRecomputePlan_EndToEnd(t *testing.T) {
	server := newTestServer(t)

	// Two activities starting the same Monday share the daily capacity.
	a := createActivity(t, server, CreateActivityRequest{
		ID: "a", Name: "Formwork", ProjectID: "proj-1",
		StartDate: "2024-03-04", TotalHours: 20,
	})
	createActivity(t, server, CreateActivityRequest{
		ID: "b", Name: "Rebar", ProjectID: "proj-1",
		StartDate: "2024-03-04", TotalHours: 10, PredecessorID: "a",
	})

	resp := doJSON(t, http.MethodPost, server.URL+"/api/plan/recompute", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[PlanResultDTO](t, resp)

	assert.Equal(t, 2, result.ActivitiesPlanned)
	assert.Equal(t, 30.0, result.TotalPlannedHours)
	assert.NotEmpty(t, result.RunID)

	// a: Mon 8, Tue 8, Wed 4 -> ends Wednesday
	allocResp, err := http.Get(server.URL + "/api/activities/" + a.ID + "/allocation")
	require.NoError(t, err)
	alloc := decode[AllocationDTO](t, allocResp)
	assert.Equal(t, "2024-03-06", alloc.EndDate)
	assert.Equal(t, 8.0, alloc.PerDay["2024-03-04"])
	assert.Equal(t, 4.0, alloc.PerDay["2024-03-06"])

	// b starts on a's last day (4h spare on Wednesday)
	bResp, err := http.Get(server.URL + "/api/activities/b/allocation")
	require.NoError(t, err)
	bAlloc := decode[AllocationDTO](t, bResp)
	assert.Equal(t, 4.0, bAlloc.PerDay["2024-03-06"])
	assert.Equal(t, "2024-03-07", bAlloc.EndDate)

	// Load map aggregates both, capped at capacity
	loadResp, err := http.Get(server.URL + "/api/plan/load")
	require.NoError(t, err)
	load := decode[map[string]float64](t, loadResp)
	assert.Equal(t, 8.0, load["2024-03-06"])

	// The pass was recorded
	runsResp, err := http.Get(server.URL + "/api/plan/runs")
	require.NoError(t, err)
	runs := decode[[]PlanRunDTO](t, runsResp)
	require.NotEmpty(t, runs)
	assert.Equal(t, "completed", runs[0].Status)
	assert.Equal(t, 2, runs[0].ActivitiesPlanned)
}

// The handler depends on the Store interface, not the SQLite type, so the
// in-memory store can back the full API.
func TestRecomputePlan_MemoryBackedStore(t *testing.T) {
	server := httptest.NewServer(NewRouter(NewHandler(store.NewMemory())))
	t.Cleanup(server.Close)

	createActivity(t, server, CreateActivityRequest{
		ID: "a", Name: "Formwork", ProjectID: "proj-1",
		StartDate: "2024-03-04", TotalHours: 12,
	})

	resp := doJSON(t, http.MethodPost, server.URL+"/api/plan/recompute", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	result := decode[PlanResultDTO](t, resp)
	assert.Equal(t, 1, result.ActivitiesPlanned)

	allocResp, err := http.Get(server.URL + "/api/activities/a/allocation")
	require.NoError(t, err)
	alloc := decode[AllocationDTO](t, allocResp)
	assert.Equal(t, 8.0, alloc.PerDay["2024-03-04"])
	assert.Equal(t, 4.0, alloc.PerDay["2024-03-05"])
}

// =============================================================================
// OVERDUE & CALENDAR
// =============================================================================

func TestListOverdue_UsesReferenceDate(t *testing.T) {
	server := newTestServer(t)
	createActivity(t, server, CreateActivityRequest{
		ID: "late", Name: "Late one", ProjectID: "proj-1",
		StartDate: "2024-01-01", TotalHours: 8, AdjustedEnd: "2024-01-10",
	})
	createActivity(t, server, CreateActivityRequest{
		ID: "ontime", Name: "On time", ProjectID: "proj-1",
		StartDate: "2024-01-01", TotalHours: 8, AdjustedEnd: "2024-06-01",
	})

	resp, err := http.Get(server.URL + "/api/plan/overdue?reference=2024-02-01")
	require.NoError(t, err)
	overdue := decode[[]ActivityDTO](t, resp)

	require.Len(t, overdue, 1)
	assert.Equal(t, "late", overdue[0].ID)
	assert.True(t, overdue[0].Overdue)
	// 2024-01-10 is a Wednesday; 16 working days pass before 2024-02-01.
	assert.Equal(t, 16, overdue[0].DaysLate)
}

func TestNextWorkingDay_Endpoint(t *testing.T) {
	server := newTestServer(t)

	// Saturday rolls to Monday
	resp, err := http.Get(server.URL + "/api/calendar/next-working-day?date=2024-03-09")
	require.NoError(t, err)
	dto := decode[NextWorkingDayDTO](t, resp)
	assert.Equal(t, "2024-03-11", dto.NextWorkingDay)
	assert.False(t, dto.IsWorkingDay)

	// Working day with include_self stays put
	resp, err = http.Get(server.URL + "/api/calendar/next-working-day?date=2024-03-06&include_self=true")
	require.NoError(t, err)
	dto = decode[NextWorkingDayDTO](t, resp)
	assert.Equal(t, "2024-03-06", dto.NextWorkingDay)
	assert.True(t, dto.IsWorkingDay)
}

// =============================================================================
// EXECUTIONS & PROGRESS
// =============================================================================

func TestExecutionsAndProgress(t *testing.T) {
	server := newTestServer(t)
	dto := createActivity(t, server, CreateActivityRequest{
		ID: "a", Name: "Masonry", ProjectID: "proj-1",
		StartDate: "2024-03-04", TotalHours: 16,
	})

	// Plan it so progress has a denominator
	resp := doJSON(t, http.MethodPost, server.URL+"/api/plan/recompute", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	execURL := fmt.Sprintf("%s/api/activities/%s/executions", server.URL, dto.ID)
	execResp := doJSON(t, http.MethodPost, execURL, CreateExecutionRequest{
		Date: "2024-03-04", Hours: 8, Worker: "crew-a",
	})
	require.Equal(t, http.StatusCreated, execResp.StatusCode)
	created := decode[ExecutionDTO](t, execResp)
	assert.NotEmpty(t, created.ID)

	// Rejects non-positive hours
	badResp := doJSON(t, http.MethodPost, execURL, CreateExecutionRequest{Date: "2024-03-04", Hours: 0})
	badResp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, badResp.StatusCode)

	progResp, err := http.Get(fmt.Sprintf("%s/api/activities/%s/progress", server.URL, dto.ID))
	require.NoError(t, err)
	progress := decode[ProgressDTO](t, progResp)
	assert.Equal(t, 16.0, progress.Planned)
	assert.Equal(t, 8.0, progress.Executed)
	assert.Equal(t, 50.0, progress.Percent)
}
