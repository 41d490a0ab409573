package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rental-cleaning-manager/backend/internal/calendar"
	"github.com/rental-cleaning-manager/backend/internal/storage"
	"github.com/rental-cleaning-manager/backend/internal/storage/models"
	"github.com/rental-cleaning-manager/backend/internal/websocket"
)

// staticFeed returns the same events for every URL.
type staticFeed struct {
	events []models.CalendarEvent
}

func (f *staticFeed) Fetch(ctx context.Context, url string) ([]models.CalendarEvent, error) {
	return f.events, nil
}

type apiFixture struct {
	server *httptest.Server
	repos  Repositories
	feed   *staticFeed
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	db, err := storage.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := storage.RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}

	repos := Repositories{
		Properties: storage.NewPropertyRepository(db),
		Bookings:   storage.NewBookingRepository(db),
		Jobs:       storage.NewCleaningJobRepository(db),
		SyncLog:    storage.NewSyncLogRepository(db),
	}

	hub := websocket.NewHub()
	go hub.Run()

	feed := &staticFeed{}
	syncService := calendar.NewSyncService(
		repos.Properties, repos.Bookings, repos.Jobs, repos.SyncLog, feed, false,
	)

	router := NewRouter(db, repos, hub, t.TempDir(), syncService, nil)
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &apiFixture{server: server, repos: repos, feed: feed}
}

func (f *apiFixture) request(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.request(t, "GET", "/api/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var health struct {
		Status      string `json:"status"`
		DBConnected bool   `json:"db_connected"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if health.Status != "healthy" || !health.DBConnected {
		t.Errorf("unexpected health response: %+v", health)
	}
}

func TestPropertyCRUD(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.request(t, "POST", "/api/properties", map[string]any{
		"name":              "Beach House",
		"feed_url":          "https://feed.example/beach.ics",
		"sync_interval_min": 30,
		"enabled":           true,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want 201", resp.StatusCode)
	}

	var created models.Property
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decoding created property: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created property has no id")
	}
	if created.SyncStatus != models.SyncStatusPending {
		t.Errorf("sync status = %s, want pending", created.SyncStatus)
	}

	resp = f.request(t, "GET", "/api/properties/"+created.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d, want 200", resp.StatusCode)
	}

	resp = f.request(t, "PUT", "/api/properties/"+created.ID, map[string]any{
		"name":              "Beach House East",
		"feed_url":          created.FeedURL,
		"sync_interval_min": 60,
		"enabled":           false,
	})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("update status = %d, want 204", resp.StatusCode)
	}

	updated, err := f.repos.Properties.GetByID(context.Background(), created.ID)
	if err != nil || updated == nil {
		t.Fatalf("reloading property: %v", err)
	}
	if updated.Name != "Beach House East" || updated.Enabled {
		t.Errorf("update not applied: %+v", updated)
	}

	resp = f.request(t, "DELETE", "/api/properties/"+created.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", resp.StatusCode)
	}

	resp = f.request(t, "GET", "/api/properties/"+created.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", resp.StatusCode)
	}
}

func TestCreatePropertyValidation(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.request(t, "POST", "/api/properties", map[string]any{
		"feed_url": "https://feed.example/x.ics",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for missing name", resp.StatusCode)
	}
}

func TestSyncAllEndpoint(t *testing.T) {
	f := newAPIFixture(t)

	p := &models.Property{
		Name:            "Beach House",
		FeedURL:         "https://feed.example/beach.ics",
		SyncIntervalMin: 15,
		Enabled:         true,
	}
	if err := f.repos.Properties.Create(context.Background(), p); err != nil {
		t.Fatalf("creating property: %v", err)
	}

	f.feed.events = []models.CalendarEvent{
		{
			UID:   "bk-1",
			Start: time.Date(2026, 5, 1, 15, 0, 0, 0, time.UTC),
			End:   time.Date(2026, 5, 5, 11, 0, 0, 0, time.UTC),
		},
	}

	resp := f.request(t, "POST", "/api/sync", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Succeeded int `json:"succeeded"`
		Failed    int `json:"failed"`
		Results   []struct {
			PropertyID    string `json:"property_id"`
			BookingsAdded int    `json:"bookings_added"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if body.Succeeded != 1 || body.Failed != 0 {
		t.Errorf("succeeded/failed = %d/%d, want 1/0", body.Succeeded, body.Failed)
	}
	if len(body.Results) != 1 || body.Results[0].BookingsAdded != 1 {
		t.Errorf("unexpected results: %+v", body.Results)
	}

	// The audit row is visible through the sync-log endpoint
	resp = f.request(t, "GET", "/api/sync-log?property_id="+p.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sync-log status = %d, want 200", resp.StatusCode)
	}
	var entries []models.SyncLogEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatalf("decoding sync log: %v", err)
	}
	if len(entries) != 1 || entries[0].BookingsAdded != 1 {
		t.Errorf("unexpected sync log: %+v", entries)
	}
}

func TestUpdateJobOperatorFields(t *testing.T) {
	f := newAPIFixture(t)
	ctx := context.Background()

	p := &models.Property{Name: "Beach House", FeedURL: "https://feed.example/b.ics", SyncIntervalMin: 15, Enabled: true}
	if err := f.repos.Properties.Create(ctx, p); err != nil {
		t.Fatalf("creating property: %v", err)
	}

	booking := &models.Booking{
		UID:        "bk-1",
		PropertyID: p.ID,
		Checkin:    time.Date(2026, 5, 1, 15, 0, 0, 0, time.UTC),
		Checkout:   time.Date(2026, 5, 5, 11, 0, 0, 0, time.UTC),
		Status:     models.BookingStatusActive,
	}
	if err := f.repos.Bookings.UpsertByUID(ctx, booking); err != nil {
		t.Fatalf("inserting booking: %v", err)
	}

	job := &models.CleaningJob{
		BookingUID:   "bk-1",
		PropertyID:   p.ID,
		ScheduledFor: booking.Checkout.Add(time.Hour),
		Status:       models.JobStatusScheduled,
	}
	if err := f.repos.Jobs.Create(ctx, job); err != nil {
		t.Fatalf("creating job: %v", err)
	}

	resp := f.request(t, "PATCH", "/api/jobs/"+job.ID, map[string]any{
		"maintenance_notes":   "deep clean the oven",
		"reimbursement_cents": 3500,
		"status":              models.JobStatusCompleted,
	})
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("patch status = %d, want 204", resp.StatusCode)
	}

	got, err := f.repos.Jobs.GetByID(ctx, job.ID)
	if err != nil || got == nil {
		t.Fatalf("reloading job: %v", err)
	}
	if got.MaintenanceNotes == nil || *got.MaintenanceNotes != "deep clean the oven" {
		t.Errorf("maintenance notes = %v", got.MaintenanceNotes)
	}
	if got.ReimbursementCents != 3500 {
		t.Errorf("reimbursement = %d, want 3500", got.ReimbursementCents)
	}
	if got.Status != models.JobStatusCompleted {
		t.Errorf("status = %s, want completed", got.Status)
	}
	// Scheduling fields are untouched by the operator path
	if !got.ScheduledFor.Equal(job.ScheduledFor) {
		t.Errorf("scheduled for changed: %v", got.ScheduledFor)
	}

	resp = f.request(t, "PATCH", "/api/jobs/"+job.ID, map[string]any{
		"status": "bogus",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid status patch = %d, want 400", resp.StatusCode)
	}
}
