package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gardenlog/core/internal/infrastructure/config"
	"github.com/gardenlog/core/internal/infrastructure/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "GardenLog",
			Version:     "test",
			Environment: "test",
		},
		Server: config.ServerConfig{Port: 8080, Host: "127.0.0.1"},
		Database: config.DatabaseConfig{
			Driver: "memory",
		},
		Logger: config.LoggerConfig{Level: "error", Format: "json"},
		Security: config.SecurityConfig{
			CORSAllowedOrigins: "*",
			RateLimitRequests:  1000,
			RateLimitWindow:    time.Minute,
		},
		Metrics: config.MetricsConfig{Enabled: false},
	}
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv, err := New(testConfig(), nil, logger.NewNop())
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var decoded map[string]interface{}
	if resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			decoded = nil
		}
	}
	return resp, decoded
}

func doJSONList(t *testing.T, url string) (*http.Response, []interface{}) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	var decoded []interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	return resp, decoded
}

func createPlant(t *testing.T, ts *httptest.Server, name, variety string) int {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/plants", map[string]interface{}{
		"name":    name,
		"variety": variety,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create plant: status %d, body %v", resp.StatusCode, body)
	}
	return int(body["id"].(float64))
}

func createCycle(t *testing.T, ts *httptest.Server, plantID, year int) int {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/cycles", map[string]interface{}{
		"plant": plantID,
		"year":  year,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create cycle: status %d, body %v", resp.StatusCode, body)
	}
	return int(body["id"].(float64))
}

func TestPlantLifecycle(t *testing.T) {
	ts := newTestServer(t)

	id := createPlant(t, ts, "Tomato", "Cherry")

	resp, body := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/plants/%d", ts.URL, id), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get plant: status %d", resp.StatusCode)
	}
	if body["name"] != "Tomato" || body["cycle_count"] != float64(0) {
		t.Errorf("unexpected detail body: %v", body)
	}
	if body["latest_cycle"] != nil {
		t.Errorf("plant without cycles should report null latest_cycle, got %v", body["latest_cycle"])
	}

	variety := map[string]interface{}{"variety": "Roma"}
	resp, body = doJSON(t, http.MethodPatch, fmt.Sprintf("%s/api/v1/plants/%d", ts.URL, id), variety)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch plant: status %d, body %v", resp.StatusCode, body)
	}
	if body["variety"] != "Roma" || body["name"] != "Tomato" {
		t.Errorf("partial update body: %v", body)
	}

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/v1/plants/%d", ts.URL, id), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete plant: status %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/plants/%d", ts.URL, id), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted plant should 404, got %d", resp.StatusCode)
	}
}

func TestPlantValidationBody(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/plants", map[string]interface{}{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", resp.StatusCode)
	}

	fields, ok := body["errors"].(map[string]interface{})
	if !ok {
		t.Fatalf("400 body should be keyed by errors: %v", body)
	}
	if _, ok := fields["name"]; !ok {
		t.Errorf("expected a message under errors.name, got %v", fields)
	}
}

func TestCycleConflict(t *testing.T) {
	ts := newTestServer(t)
	plantID := createPlant(t, ts, "Tomato", "Cherry")

	createCycle(t, ts, plantID, 2024)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/cycles", map[string]interface{}{
		"plant": plantID,
		"year":  2024,
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate year: status %d, body %v", resp.StatusCode, body)
	}
	if body["detail"] == nil {
		t.Errorf("conflict body should carry a detail message: %v", body)
	}

	createCycle(t, ts, plantID, 2025)
}

func TestCycleResponseShape(t *testing.T) {
	ts := newTestServer(t)
	plantID := createPlant(t, ts, "Tomato", "Cherry")
	cycleID := createCycle(t, ts, plantID, 2026)

	resp, body := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/cycles/%d", ts.URL, cycleID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get cycle: status %d", resp.StatusCode)
	}
	if body["plant"] != float64(plantID) || body["plant_name"] != "Tomato" || body["plant_variety"] != "Cherry" {
		t.Errorf("cycle plant fields: %v", body)
	}
	if body["status"] != "planning" || body["status_display"] != "Planning" {
		t.Errorf("status fields: %v", body)
	}
	events, ok := body["events"].([]interface{})
	if !ok || len(events) != 0 {
		t.Errorf("events should be an empty array, got %v", body["events"])
	}
	if body["event_count"] != float64(0) || body["task_count"] != float64(0) {
		t.Errorf("count fields: %v", body)
	}
}

func TestToggleComplete(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/tasks", map[string]interface{}{
		"title": "Water",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create task: status %d, body %v", resp.StatusCode, body)
	}
	taskID := int(body["id"].(float64))
	if body["priority"] != "medium" || body["priority_display"] != "Medium" {
		t.Errorf("default priority fields: %v", body)
	}

	toggleURL := fmt.Sprintf("%s/api/v1/tasks/%d/toggle_complete", ts.URL, taskID)

	resp, body = doJSON(t, http.MethodPost, toggleURL, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toggle: status %d", resp.StatusCode)
	}
	if body["completed"] != true || body["completed_at"] == nil {
		t.Errorf("first toggle: %v", body)
	}

	resp, body = doJSON(t, http.MethodPost, toggleURL, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second toggle: status %d", resp.StatusCode)
	}
	if body["completed"] != false || body["completed_at"] != nil {
		t.Errorf("second toggle: %v", body)
	}
}

func TestAddEventAction(t *testing.T) {
	ts := newTestServer(t)
	plantID := createPlant(t, ts, "Tomato", "")
	cycleID := createCycle(t, ts, plantID, 2026)

	// a conflicting cycle id in the body is ignored; the path wins
	resp, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/v1/cycles/%d/add_event", ts.URL, cycleID), map[string]interface{}{
		"planting_cycle": 9999,
		"event_type":     "sowing",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add_event: status %d, body %v", resp.StatusCode, body)
	}
	if body["planting_cycle"] != float64(cycleID) {
		t.Errorf("event bound to %v, want path cycle %d", body["planting_cycle"], cycleID)
	}
	if body["event_type_display"] != "Sowing" {
		t.Errorf("display label: %v", body)
	}

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/v1/cycles/9999/add_event", map[string]interface{}{
		"event_type": "sowing",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown cycle should 404, got %d", resp.StatusCode)
	}
}

func TestAddTaskAction(t *testing.T) {
	ts := newTestServer(t)
	plantID := createPlant(t, ts, "Tomato", "")
	cycleID := createCycle(t, ts, plantID, 2026)

	resp, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/v1/cycles/%d/add_task", ts.URL, cycleID), map[string]interface{}{
		"title":    "Pot on",
		"priority": "high",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add_task: status %d, body %v", resp.StatusCode, body)
	}
	if body["planting_cycle"] != float64(cycleID) || body["priority"] != "high" {
		t.Errorf("task body: %v", body)
	}
}

func TestTaskListCompletedPresence(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/tasks", map[string]interface{}{
		"title": "open",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create task: status %d, body %v", resp.StatusCode, body)
	}
	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/v1/tasks", map[string]interface{}{
		"title":     "done",
		"completed": true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create task: status %d, body %v", resp.StatusCode, body)
	}

	// a present but empty value filters completed=false
	resp, list := doJSONList(t, ts.URL+"/api/v1/tasks?completed=")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list tasks: status %d", resp.StatusCode)
	}
	if len(list) != 1 || list[0].(map[string]interface{})["title"] != "open" {
		t.Fatalf("?completed= returned %d tasks, want only the open one", len(list))
	}

	_, list = doJSONList(t, ts.URL+"/api/v1/tasks?completed=true")
	if len(list) != 1 || list[0].(map[string]interface{})["title"] != "done" {
		t.Fatalf("?completed=true returned %d tasks, want only the done one", len(list))
	}

	// absent parameter means no filter
	_, list = doJSONList(t, ts.URL+"/api/v1/tasks")
	if len(list) != 2 {
		t.Fatalf("unfiltered list returned %d tasks, want 2", len(list))
	}
}

func TestTaskPatchNullClears(t *testing.T) {
	ts := newTestServer(t)
	plantID := createPlant(t, ts, "Tomato", "")
	cycleID := createCycle(t, ts, plantID, 2026)

	resp, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/v1/cycles/%d/add_task", ts.URL, cycleID), map[string]interface{}{
		"title":    "Stake",
		"due_date": "2026-09-01",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add_task: status %d, body %v", resp.StatusCode, body)
	}
	taskID := int(body["id"].(float64))

	// a patch that omits the nullable fields leaves them alone
	resp, body = doJSON(t, http.MethodPatch, fmt.Sprintf("%s/api/v1/tasks/%d", ts.URL, taskID), map[string]interface{}{
		"title": "Stake tomatoes",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch task: status %d, body %v", resp.StatusCode, body)
	}
	if body["due_date"] != "2026-09-01" || body["planting_cycle"] != float64(cycleID) {
		t.Fatalf("omitted fields changed: %v", body)
	}

	// explicit nulls clear them
	resp, body = doJSON(t, http.MethodPatch, fmt.Sprintf("%s/api/v1/tasks/%d", ts.URL, taskID), map[string]interface{}{
		"due_date":       nil,
		"planting_cycle": nil,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch task: status %d, body %v", resp.StatusCode, body)
	}
	if body["due_date"] != nil || body["planting_cycle"] != nil {
		t.Errorf("null patch should clear due_date and planting_cycle: %v", body)
	}
}

func TestPlantListFilters(t *testing.T) {
	ts := newTestServer(t)
	createPlant(t, ts, "Tomato", "Cherry")
	createPlant(t, ts, "Carrot", "Nantes")

	resp, list := doJSONList(t, ts.URL+"/api/v1/plants?search=cherry")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list plants: status %d", resp.StatusCode)
	}
	if len(list) != 1 {
		t.Fatalf("search returned %d plants, want 1", len(list))
	}
	item := list[0].(map[string]interface{})
	if item["name"] != "Tomato" || item["latest_cycle_status"] != nil {
		t.Errorf("list item: %v", item)
	}
}

func TestDashboardShape(t *testing.T) {
	ts := newTestServer(t)
	plantID := createPlant(t, ts, "Tomato", "")
	cycleID := createCycle(t, ts, plantID, time.Now().Year())

	resp, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/v1/cycles/%d/add_event", ts.URL, cycleID), map[string]interface{}{
		"event_type": "harvest",
		"quantity":   2.5,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add_event: status %d, body %v", resp.StatusCode, body)
	}

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/v1/dashboard/stats", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard: status %d", resp.StatusCode)
	}

	if body["current_year"] != float64(time.Now().Year()) {
		t.Errorf("current_year = %v", body["current_year"])
	}

	stats, ok := body["stats"].(map[string]interface{})
	if !ok {
		t.Fatalf("stats block missing: %v", body)
	}
	if stats["total_plants"] != float64(1) || stats["current_cycles"] != float64(1) {
		t.Errorf("stats: %v", stats)
	}

	cycles, ok := body["cycles"].([]interface{})
	if !ok || len(cycles) != 1 {
		t.Fatalf("cycles block: %v", body["cycles"])
	}

	harvests, ok := body["recent_harvests"].(map[string]interface{})
	if !ok {
		t.Fatalf("recent_harvests missing: %v", body)
	}
	if harvests["count"] != float64(1) || harvests["total_quantity"] != 2.5 {
		t.Errorf("recent_harvests: %v", harvests)
	}
}

func TestDeleteCycleCascades(t *testing.T) {
	ts := newTestServer(t)
	plantID := createPlant(t, ts, "Tomato", "")
	cycleID := createCycle(t, ts, plantID, 2026)

	resp, body := doJSON(t, http.MethodPost, fmt.Sprintf("%s/api/v1/cycles/%d/add_event", ts.URL, cycleID), map[string]interface{}{
		"event_type": "sowing",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatal("add_event failed")
	}
	eventID := int(body["id"].(float64))

	resp, _ = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/v1/cycles/%d", ts.URL, cycleID), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete cycle: status %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/v1/events/%d", ts.URL, eventID), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("cascaded event should 404, got %d", resp.StatusCode)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health: status %d", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("health body: %v", body)
	}
}
