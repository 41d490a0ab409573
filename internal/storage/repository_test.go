package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rental-cleaning-manager/backend/internal/storage/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := RunMigrations(db); err != nil {
		t.Fatalf("running migrations: %v", err)
	}
	return db
}

func createTestProperty(t *testing.T, db *DB, name string, enabled bool) *models.Property {
	t.Helper()
	p := &models.Property{
		Name:            name,
		FeedURL:         "https://feed.example/" + name + ".ics",
		SyncIntervalMin: 15,
		Enabled:         enabled,
	}
	if err := NewPropertyRepository(db).Create(context.Background(), p); err != nil {
		t.Fatalf("creating property: %v", err)
	}
	return p
}

func TestBookingUpsertByUID(t *testing.T) {
	db := newTestDB(t)
	p := createTestProperty(t, db, "upsert", true)
	repo := NewBookingRepository(db)
	ctx := context.Background()

	checkin := time.Date(2026, 4, 1, 15, 0, 0, 0, time.UTC)
	checkout := time.Date(2026, 4, 5, 11, 0, 0, 0, time.UTC)

	first := &models.Booking{
		UID:        "bk-1",
		PropertyID: p.ID,
		Checkin:    checkin,
		Checkout:   checkout,
		Status:     models.BookingStatusActive,
	}
	if err := repo.UpsertByUID(ctx, first); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// Same UID with a later checkout must update in place, not insert
	second := &models.Booking{
		UID:        "bk-1",
		PropertyID: p.ID,
		Checkin:    checkin,
		Checkout:   checkout.Add(24 * time.Hour),
		Status:     models.BookingStatusActive,
	}
	if err := repo.UpsertByUID(ctx, second); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	all, err := repo.ListByProperty(ctx, p.ID)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 booking after upsert, got %d", len(all))
	}
	if all[0].ID != first.ID {
		t.Errorf("upsert replaced the row id: %s != %s", all[0].ID, first.ID)
	}
	if !all[0].Checkout.Equal(second.Checkout) {
		t.Errorf("checkout = %v, want %v", all[0].Checkout, second.Checkout)
	}
}

func TestBookingMarkCancelledMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookingRepository(db)

	err := repo.MarkCancelled(context.Background(), "no-such-uid", time.Now().UTC())
	if err == nil {
		t.Fatal("expected error cancelling a missing booking")
	}
}

func TestCleaningJobFieldOwnership(t *testing.T) {
	db := newTestDB(t)
	p := createTestProperty(t, db, "ownership", true)
	bookingRepo := NewBookingRepository(db)
	jobRepo := NewCleaningJobRepository(db)
	ctx := context.Background()

	booking := &models.Booking{
		UID:        "bk-1",
		PropertyID: p.ID,
		Checkin:    time.Date(2026, 4, 1, 15, 0, 0, 0, time.UTC),
		Checkout:   time.Date(2026, 4, 5, 11, 0, 0, 0, time.UTC),
		Status:     models.BookingStatusActive,
	}
	if err := bookingRepo.UpsertByUID(ctx, booking); err != nil {
		t.Fatalf("inserting booking: %v", err)
	}

	job := &models.CleaningJob{
		BookingUID:   "bk-1",
		PropertyID:   p.ID,
		ScheduledFor: booking.Checkout.Add(time.Hour),
		Status:       models.JobStatusScheduled,
	}
	if err := jobRepo.Create(ctx, job); err != nil {
		t.Fatalf("creating job: %v", err)
	}

	maint := "restock towels"
	if err := jobRepo.UpdateOperatorFields(ctx, job.ID, &maint, 1200, models.JobStatusCompleted); err != nil {
		t.Fatalf("operator update: %v", err)
	}

	// A scheduling rewrite must leave the operator fields alone
	note := models.NoteSameDayTurnover
	newSchedule := job.ScheduledFor.Add(2 * time.Hour)
	if err := jobRepo.UpdateSchedulingFields(ctx, job.ID, newSchedule, &note, models.JobStatusScheduled); err != nil {
		t.Fatalf("scheduling update: %v", err)
	}

	got, err := jobRepo.GetByID(ctx, job.ID)
	if err != nil || got == nil {
		t.Fatalf("reloading job: %v", err)
	}
	if got.MaintenanceNotes == nil || *got.MaintenanceNotes != maint {
		t.Errorf("maintenance notes = %v, want %q", got.MaintenanceNotes, maint)
	}
	if got.ReimbursementCents != 1200 {
		t.Errorf("reimbursement = %d, want 1200", got.ReimbursementCents)
	}
	if !got.ScheduledFor.Equal(newSchedule) {
		t.Errorf("scheduled for = %v, want %v", got.ScheduledFor, newSchedule)
	}
	if got.Notes == nil || *got.Notes != note {
		t.Errorf("notes = %v, want %q", got.Notes, note)
	}

	// And an operator update must leave the schedule alone
	if err := jobRepo.UpdateOperatorFields(ctx, job.ID, &maint, 1500, models.JobStatusCompleted); err != nil {
		t.Fatalf("second operator update: %v", err)
	}
	got, _ = jobRepo.GetByID(ctx, job.ID)
	if !got.ScheduledFor.Equal(newSchedule) {
		t.Errorf("operator update changed the schedule: %v", got.ScheduledFor)
	}
}

func TestPropertyUpdateSyncStatus(t *testing.T) {
	db := newTestDB(t)
	p := createTestProperty(t, db, "status", true)
	repo := NewPropertyRepository(db)
	ctx := context.Background()

	if err := repo.UpdateSyncStatus(ctx, p.ID, models.SyncStatusSuccess, nil); err != nil {
		t.Fatalf("marking success: %v", err)
	}

	got, _ := repo.GetByID(ctx, p.ID)
	if got.SyncStatus != models.SyncStatusSuccess {
		t.Errorf("status = %s, want success", got.SyncStatus)
	}
	if got.LastSyncAt == nil {
		t.Fatal("success did not set last_sync_at")
	}
	lastSync := *got.LastSyncAt

	// A later failure records the error but keeps the last successful sync time
	errMsg := "fetch timed out"
	if err := repo.UpdateSyncStatus(ctx, p.ID, models.SyncStatusError, &errMsg); err != nil {
		t.Fatalf("marking error: %v", err)
	}

	got, _ = repo.GetByID(ctx, p.ID)
	if got.SyncStatus != models.SyncStatusError {
		t.Errorf("status = %s, want error", got.SyncStatus)
	}
	if got.SyncError == nil || *got.SyncError != errMsg {
		t.Errorf("sync error = %v, want %q", got.SyncError, errMsg)
	}
	if got.LastSyncAt == nil || !got.LastSyncAt.Equal(lastSync) {
		t.Errorf("last_sync_at changed on failure: %v", got.LastSyncAt)
	}
}

func TestListEnabledSkipsDisabled(t *testing.T) {
	db := newTestDB(t)
	createTestProperty(t, db, "on", true)
	createTestProperty(t, db, "off", false)

	enabled, err := NewPropertyRepository(db).ListEnabled(context.Background())
	if err != nil {
		t.Fatalf("listing enabled: %v", err)
	}
	if len(enabled) != 1 || enabled[0].Name != "on" {
		t.Errorf("expected only the enabled property, got %+v", enabled)
	}
}

func TestSyncLogListByProperty(t *testing.T) {
	db := newTestDB(t)
	p := createTestProperty(t, db, "log", true)
	repo := NewSyncLogRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		entry := &models.SyncLogEntry{
			PropertyID:    p.ID,
			BookingsAdded: i,
			RunAt:         base.Add(time.Duration(i) * time.Hour),
		}
		if err := repo.Append(ctx, entry); err != nil {
			t.Fatalf("appending entry %d: %v", i, err)
		}
	}

	entries, err := repo.ListByProperty(ctx, p.ID, 2)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries with limit, got %d", len(entries))
	}
	// Newest first
	if entries[0].BookingsAdded != 2 || entries[1].BookingsAdded != 1 {
		t.Errorf("expected newest-first order, got added=%d,%d",
			entries[0].BookingsAdded, entries[1].BookingsAdded)
	}
}
