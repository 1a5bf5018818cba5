package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/good-yellow-bee/alerthub/internal/alerts"
	"github.com/good-yellow-bee/alerthub/internal/audience"
	"github.com/good-yellow-bee/alerthub/internal/models"
	"github.com/good-yellow-bee/alerthub/internal/notifier"
	"github.com/good-yellow-bee/alerthub/internal/reminder"
	"github.com/good-yellow-bee/alerthub/internal/storage"
)

// testServer creates a test server backed by a temp SQLite database.
func testServer(t *testing.T) (*Server, storage.Storage, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "alerthub-test-*.db")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	tmpFile.Close()

	store := storage.NewSQLiteStorage(tmpFile.Name())
	if err := store.Open(); err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("open storage: %v", err)
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		os.Remove(tmpFile.Name())
		t.Fatalf("migrate storage: %v", err)
	}

	dispatcher := notifier.NewDispatcher()
	dispatcher.Register(models.DeliveryInApp, notifier.NewInAppChannel(store.Deliveries()))
	service := alerts.NewService(store)
	engine := reminder.NewEngine(store, dispatcher, audience.NewResolver(store), nil, time.Hour)

	cfg := &Config{
		Address: ":0",
		Verbose: false,
	}
	srv, err := New(cfg, store, service, engine)
	if err != nil {
		store.Close()
		os.Remove(tmpFile.Name())
		t.Fatalf("create server: %v", err)
	}

	cleanup := func() {
		store.Close()
		os.Remove(tmpFile.Name())
	}
	return srv, store, cleanup
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &wrapper); err != nil {
		t.Fatalf("decode response: %v (body: %s)", err, rec.Body.String())
	}
	if err := json.Unmarshal(wrapper.Data, out); err != nil {
		t.Fatalf("decode data: %v (body: %s)", err, rec.Body.String())
	}
}

func TestAPI_EndToEnd(t *testing.T) {
	srv, _, cleanup := testServer(t)
	defer cleanup()
	router := srv.setupRouter()

	// Directory setup
	rec := doJSON(t, router, http.MethodPost, "/api/v1/directory/organizations", map[string]string{"name": "Acme Corp"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create org = %d: %s", rec.Code, rec.Body.String())
	}
	var org models.Organization
	decodeData(t, rec, &org)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/directory/teams", map[string]string{
		"name":            "Finance",
		"organization_id": org.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create team = %d: %s", rec.Code, rec.Body.String())
	}
	var team models.Team
	decodeData(t, rec, &team)

	rec = doJSON(t, router, http.MethodPost, "/api/v1/directory/users", map[string]string{
		"name":    "Eve",
		"team_id": team.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create user = %d: %s", rec.Code, rec.Body.String())
	}
	var eve models.User
	decodeData(t, rec, &eve)

	// Alert creation decorates the title and snapshots the audience.
	now := time.Now().UTC()
	rec = doJSON(t, router, http.MethodPost, "/api/v1/alerts", map[string]any{
		"title":         "Quarter Close",
		"message":       "books close friday",
		"severity":      "warning",
		"delivery_type": "in_app",
		"start_time":    now.Add(-time.Minute).Format(time.RFC3339),
		"expiry_time":   now.Add(24 * time.Hour).Format(time.RFC3339),
		"visibility":    "team",
		"team_id":       team.ID,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create alert = %d: %s", rec.Code, rec.Body.String())
	}
	var alert models.Alert
	decodeData(t, rec, &alert)
	if alert.Title != "Finance: Quarter Close" {
		t.Errorf("title = %q, want team-prefixed", alert.Title)
	}

	// Listing
	rec = doJSON(t, router, http.MethodGet, "/api/v1/alerts?severity=warning", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list alerts = %d: %s", rec.Code, rec.Body.String())
	}
	var listed []*models.Alert
	decodeData(t, rec, &listed)
	if len(listed) != 1 {
		t.Errorf("listed = %d alerts, want 1", len(listed))
	}

	// Inbox shows the alert for the team member.
	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/inbox/%s/alerts", eve.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("inbox = %d: %s", rec.Code, rec.Body.String())
	}
	var visible []*models.Alert
	decodeData(t, rec, &visible)
	if len(visible) != 1 || visible[0].ID != alert.ID {
		t.Errorf("visible = %d alerts, want the team alert", len(visible))
	}

	// Manual reminder pass delivers to eve.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/reminders/trigger", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("trigger = %d: %s", rec.Code, rec.Body.String())
	}
	var stats reminder.PassStats
	decodeData(t, rec, &stats)
	if stats.Deliveries != 1 {
		t.Errorf("deliveries = %d, want 1", stats.Deliveries)
	}

	// Read, then snooze.
	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/inbox/%s/alerts/%s/read", eve.ID, alert.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("mark read = %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/inbox/%s/alerts/%s/snooze", eve.ID, alert.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("snooze = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/inbox/%s/alerts/snoozed", eve.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("snoozed = %d: %s", rec.Code, rec.Body.String())
	}
	var snoozed []*models.Alert
	decodeData(t, rec, &snoozed)
	if len(snoozed) != 1 {
		t.Errorf("snoozed = %d alerts, want 1", len(snoozed))
	}

	// Snoozed user is skipped on the next pass.
	rec = doJSON(t, router, http.MethodPost, "/api/v1/reminders/trigger", nil)
	decodeData(t, rec, &stats)
	if stats.Deliveries != 0 || stats.Skipped != 1 {
		t.Errorf("deliveries/skipped = %d/%d, want 0/1", stats.Deliveries, stats.Skipped)
	}

	// Analytics rollup
	rec = doJSON(t, router, http.MethodGet, "/api/v1/analytics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("analytics = %d: %s", rec.Code, rec.Body.String())
	}
	var analytics alerts.Analytics
	decodeData(t, rec, &analytics)
	if analytics.TotalAlerts != 1 || analytics.Delivered != 1 || analytics.Read != 1 {
		t.Errorf("analytics = %+v, want 1 alert, 1 delivery, 1 read", analytics)
	}

	// Archive removes the alert from every listing.
	rec = doJSON(t, router, http.MethodDelete, "/api/v1/alerts/"+alert.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("archive = %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/inbox/%s/alerts", eve.ID), nil)
	decodeData(t, rec, &visible)
	if len(visible) != 0 {
		t.Errorf("visible after archive = %d, want 0", len(visible))
	}
}

func TestAPI_CreateAlert_Validation(t *testing.T) {
	srv, _, cleanup := testServer(t)
	defer cleanup()
	router := srv.setupRouter()

	now := time.Now().UTC()
	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{
			"severity": "info", "delivery_type": "in_app", "visibility": "organization",
			"start_time": now.Format(time.RFC3339), "expiry_time": now.Add(time.Hour).Format(time.RFC3339),
		}},
		{"bad severity", map[string]any{
			"title": "t", "severity": "urgent", "delivery_type": "in_app", "visibility": "organization",
			"start_time": now.Format(time.RFC3339), "expiry_time": now.Add(time.Hour).Format(time.RFC3339),
		}},
		{"bad visibility", map[string]any{
			"title": "t", "severity": "info", "delivery_type": "in_app", "visibility": "broadcast",
			"start_time": now.Format(time.RFC3339), "expiry_time": now.Add(time.Hour).Format(time.RFC3339),
		}},
		{"window inverted", map[string]any{
			"title": "t", "severity": "info", "delivery_type": "in_app", "visibility": "organization",
			"start_time": now.Add(time.Hour).Format(time.RFC3339), "expiry_time": now.Format(time.RFC3339),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/v1/alerts", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
			}
		})
	}

	// Unknown scope id is NotFound, not validation.
	rec := doJSON(t, router, http.MethodPost, "/api/v1/alerts", map[string]any{
		"title": "t", "severity": "info", "delivery_type": "in_app", "visibility": "organization",
		"organization_id": "missing",
		"start_time":      now.Format(time.RFC3339), "expiry_time": now.Add(time.Hour).Format(time.RFC3339),
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404: %s", rec.Code, rec.Body.String())
	}
}

func TestAPI_Healthz(t *testing.T) {
	srv, _, cleanup := testServer(t)
	defer cleanup()
	router := srv.setupRouter()

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("healthz = %d, want 200", rec.Code)
	}
	rec = doJSON(t, router, http.MethodGet, "/healthz/ready", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("ready = %d, want 200", rec.Code)
	}
}

func TestAPI_InboxUnknownUser(t *testing.T) {
	srv, _, cleanup := testServer(t)
	defer cleanup()
	router := srv.setupRouter()

	// Unknown users simply have an empty inbox.
	rec := doJSON(t, router, http.MethodGet, "/api/v1/inbox/missing/alerts", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var visible []json.RawMessage
	decodeData(t, rec, &visible)
	if len(visible) != 0 {
		t.Errorf("visible = %d alerts, want 0", len(visible))
	}

	// Acknowledging against an unknown user is still an error.
	rec = doJSON(t, router, http.MethodPut, "/api/v1/inbox/missing/alerts/also-missing/read", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404: %s", rec.Code, rec.Body.String())
	}
}
