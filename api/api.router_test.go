// FilePath: api/api.router_test.go
package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/animalhaven/feederhub/internal/config"
	"github.com/animalhaven/feederhub/internal/database"
	"github.com/animalhaven/feederhub/internal/device"
	"github.com/animalhaven/feederhub/internal/hubservice"
	"github.com/animalhaven/feederhub/internal/models"
	"github.com/animalhaven/feederhub/internal/repository/photos"
	"github.com/animalhaven/feederhub/internal/repository/sqlstore"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "feederhub-test.db")
	db, err := database.NewSQLiteDB(config.SQLiteConfig{Path: dbPath})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := sqlstore.InitSchema(db); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}

	photoStore, err := photos.NewStore(photos.Config{BasePath: t.TempDir()})
	if err != nil {
		t.Fatalf("Failed to create photo store: %v", err)
	}

	timing := config.DeviceConfig{
		ProbeTimeout:    500 * time.Millisecond,
		DispenseTimeout: time.Second,
		CaptureTimeout:  500 * time.Millisecond,
	}

	svc := hubservice.New(
		sqlstore.NewFeederRepository(db),
		sqlstore.NewFeedingEventRepository(db),
		sqlstore.NewScheduleRepository(db),
		sqlstore.NewSettingsRepository(db),
		photoStore,
		device.NewClient(timing),
		nil,
		timing,
	)
	t.Cleanup(svc.Shutdown)
	return NewRouter(svc)
}

// fakeDevice answers the firmware endpoints the hub calls.
func fakeDevice(t *testing.T) string {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/get_status":
			io.WriteString(w, `{"weight": 180}`)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	t.Cleanup(server.Close)
	return strings.TrimPrefix(server.URL, "http://")
}

func doJSON(t *testing.T, router *Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func doForm(t *testing.T, router *Router, method, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/health", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200 from health endpoint, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("Expected X-Request-ID header on every response")
	}

	// An installed health handler takes over
	router.SetHealthCheck(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"status":"ok"}`)
	})
	rec = doJSON(t, router, http.MethodGet, "/api/v1/health", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "ok") {
		t.Errorf("Expected installed health handler response, got %d %q", rec.Code, rec.Body.String())
	}
}

func TestRegisterAndListFeeders(t *testing.T) {
	router := newTestRouter(t)
	addr := fakeDevice(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/feeders", map[string]interface{}{
		"name":       "Kitchen Feeder",
		"ip_address": addr,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created models.FeederModule
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to decode created feeder: %v", err)
	}
	if created.ID == 0 || created.Name != "Kitchen Feeder" {
		t.Errorf("Unexpected created feeder: %+v", created)
	}

	// Duplicate address is rejected with a structured validation error
	rec = doJSON(t, router, http.MethodPost, "/api/v1/feeders", map[string]interface{}{
		"name":       "Impostor",
		"ip_address": addr,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for duplicate address, got %d", rec.Code)
	}
	var apiErr struct {
		Type      string `json:"type"`
		RequestID string `json:"request_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &apiErr); err != nil {
		t.Fatalf("Failed to decode error payload: %v", err)
	}
	if apiErr.Type != "validation" {
		t.Errorf("Expected validation error type, got %q", apiErr.Type)
	}
	if apiErr.RequestID == "" {
		t.Error("Expected request id in error payload")
	}

	// Listing probes the device and reports it online
	rec = doJSON(t, router, http.MethodGet, "/api/v1/feeders", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var feeders []models.FeederModule
	if err := json.Unmarshal(rec.Body.Bytes(), &feeders); err != nil {
		t.Fatalf("Failed to decode feeder list: %v", err)
	}
	if len(feeders) != 1 || !feeders[0].Online {
		t.Errorf("Expected one online feeder, got %+v", feeders)
	}
}

func TestFeedingFlow(t *testing.T) {
	router := newTestRouter(t)
	addr := fakeDevice(t)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/feeders", map[string]interface{}{
		"name":       "Kitchen Feeder",
		"ip_address": addr,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var feeder models.FeederModule
	if err := json.Unmarshal(rec.Body.Bytes(), &feeder); err != nil {
		t.Fatalf("Failed to decode feeder: %v", err)
	}

	// Trigger a dispense via form post
	rec = doForm(t, router, http.MethodPost, "/api/v1/feeders/1/feed", url.Values{
		"amount": {"60"},
		"source": {"Dashboard"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from feed, got %d: %s", rec.Code, rec.Body.String())
	}
	var event models.FeedingEvent
	if err := json.Unmarshal(rec.Body.Bytes(), &event); err != nil {
		t.Fatalf("Failed to decode feeding event: %v", err)
	}
	if event.Amount != 60 || event.FeedingID == "" {
		t.Errorf("Unexpected feeding event: %+v", event)
	}

	// Photo upload back-fills the event via the correlation header
	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos", bytes.NewReader([]byte("jpeg-bytes")))
	req.Header.Set("X-Feeding-ID", event.FeedingID)
	req.Header.Set("X-Capture-Type", "1")
	photoRec := httptest.NewRecorder()
	router.ServeHTTP(photoRec, req)
	if photoRec.Code != http.StatusCreated {
		t.Fatalf("Expected 201 from photo upload, got %d: %s", photoRec.Code, photoRec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/feedings?limit=10", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from feedings list, got %d", rec.Code)
	}
	var events []models.FeedingEvent
	if err := json.Unmarshal(rec.Body.Bytes(), &events); err != nil {
		t.Fatalf("Failed to decode events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	if !strings.Contains(events[0].ImagePath, event.FeedingID) {
		t.Errorf("Expected image path carrying the correlation token, got %q", events[0].ImagePath)
	}

	// The stored photo is served back under its file name
	name := strings.TrimPrefix(events[0].ImagePath, "/uploads/")
	rec = doJSON(t, router, http.MethodGet, "/api/v1/photos/"+name, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from photo fetch, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "image/jpeg" {
		t.Errorf("Expected image/jpeg, got %q", got)
	}
	if rec.Body.String() != "jpeg-bytes" {
		t.Errorf("Expected the uploaded bytes back, got %q", rec.Body.String())
	}

	// An unknown photo name is a 404
	rec = doJSON(t, router, http.MethodGet, "/api/v1/photos/nope.jpg", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown photo, got %d", rec.Code)
	}

	// Daily totals for today reflect the feeding
	today := time.Now().Format("2006-01-02")
	rec = doJSON(t, router, http.MethodGet, "/api/v1/feeders/1/totals/"+today, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 from totals, got %d", rec.Code)
	}
	var totals models.DailyTotals
	if err := json.Unmarshal(rec.Body.Bytes(), &totals); err != nil {
		t.Fatalf("Failed to decode totals: %v", err)
	}
	if totals.TotalFeedings != 1 || totals.TotalDispensed != 60 {
		t.Errorf("Expected 1 feeding / 60g, got %+v", totals)
	}
}

func TestDispenseAmountSetting(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/settings/dispense-amount", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var payload map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	if payload["amount"] != models.DefaultFeedAmount {
		t.Errorf("Expected built-in default %d, got %.1f", models.DefaultFeedAmount, payload["amount"])
	}

	rec = doForm(t, router, http.MethodPut, "/api/v1/settings/dispense-amount", url.Values{
		"amount": {"85"},
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/v1/settings/dispense-amount", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	if payload["amount"] != 85 {
		t.Errorf("Expected configured amount 85, got %.1f", payload["amount"])
	}
}

func TestInvalidPathID(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{
		"/api/v1/feeders/abc/status",
		"/api/v1/feeders/0/feed",
		"/api/v1/feeders/-3",
	} {
		method := http.MethodGet
		if strings.HasSuffix(path, "/feed") {
			method = http.MethodPost
		}
		if strings.HasSuffix(path, "/-3") {
			method = http.MethodDelete
		}
		rec := doJSON(t, router, method, path, nil)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s %s: expected 400, got %d", method, path, rec.Code)
		}
	}
}
