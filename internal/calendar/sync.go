package calendar

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/rental-cleaning-manager/backend/internal/storage"
	"github.com/rental-cleaning-manager/backend/internal/storage/models"
)

// feedStatusCancelled is the feed status value that marks an event as
// cancelled. Comparison is case-insensitive.
const feedStatusCancelled = "CANCELLED"

// SyncService reconciles iCal feeds into bookings and cleaning jobs.
type SyncService struct {
	propertyRepo *storage.PropertyRepository
	bookingRepo  *storage.BookingRepository
	jobRepo      *storage.CleaningJobRepository
	syncLogRepo  *storage.SyncLogRepository
	feed         FeedSource
	locks        *propertyLocks

	// preserveJobStatus leaves an operator-set job status (completed,
	// cancelled) in place when a booking change would otherwise force the
	// job back to scheduled. Off by default: the historical behavior is to
	// overwrite the status on every detected change.
	preserveJobStatus bool
}

// NewSyncService creates a new sync service.
func NewSyncService(
	propertyRepo *storage.PropertyRepository,
	bookingRepo *storage.BookingRepository,
	jobRepo *storage.CleaningJobRepository,
	syncLogRepo *storage.SyncLogRepository,
	feed FeedSource,
	preserveJobStatus bool,
) *SyncService {
	return &SyncService{
		propertyRepo:      propertyRepo,
		bookingRepo:       bookingRepo,
		jobRepo:           jobRepo,
		syncLogRepo:       syncLogRepo,
		feed:              feed,
		locks:             newPropertyLocks(),
		preserveJobStatus: preserveJobStatus,
	}
}

// SyncProperty runs one reconciliation pass for a single property.
//
// A feed fetch failure aborts before reconciliation and writes no audit row.
// A persistence failure mid-pass aborts the pass; writes already applied are
// not rolled back, and a re-run converges because the pass is idempotent.
func (s *SyncService) SyncProperty(ctx context.Context, propertyID string) (*models.SyncResult, error) {
	property, err := s.propertyRepo.GetByID(ctx, propertyID)
	if err != nil {
		return nil, fmt.Errorf("getting property: %w", err)
	}
	if property == nil {
		return nil, fmt.Errorf("property not found: %s", propertyID)
	}

	// Serialize passes per property; concurrent passes against the same
	// property would race on the stored-booking snapshot.
	unlock := s.locks.acquire(property.ID)
	defer unlock()

	result := &models.SyncResult{
		PropertyID:   property.ID,
		PropertyName: property.Name,
		SyncedAt:     time.Now().UTC(),
	}

	if err := s.propertyRepo.UpdateSyncStatus(ctx, property.ID, models.SyncStatusSyncing, nil); err != nil {
		log.Printf("Failed to update sync status: %v", err)
	}

	events, err := s.feed.Fetch(ctx, property.FeedURL)
	if err != nil {
		errMsg := err.Error()
		s.propertyRepo.UpdateSyncStatus(ctx, property.ID, models.SyncStatusError, &errMsg)
		result.Error = err
		return result, err
	}

	result.EventsFound = len(events)

	added, updated, removed, recErr := s.reconcile(ctx, property, events)
	result.BookingsAdded = added
	result.BookingsUpdated = updated
	result.BookingsRemoved = removed

	// One audit row per pass that ran, including failed and zero-change
	// passes. Only a fetch failure skips the row.
	if err := s.syncLogRepo.Append(ctx, &models.SyncLogEntry{
		PropertyID:      property.ID,
		BookingsAdded:   added,
		BookingsUpdated: updated,
		BookingsRemoved: removed,
		RunAt:           result.SyncedAt,
	}); err != nil {
		log.Printf("Failed to append sync log for property %s: %v", property.ID, err)
	}

	if recErr != nil {
		errMsg := recErr.Error()
		s.propertyRepo.UpdateSyncStatus(ctx, property.ID, models.SyncStatusError, &errMsg)
		result.Error = recErr
		return result, recErr
	}

	if err := s.propertyRepo.UpdateSyncStatus(ctx, property.ID, models.SyncStatusSuccess, nil); err != nil {
		log.Printf("Failed to update sync status: %v", err)
	}

	return result, nil
}

// reconcile diffs the fetched events against the stored bookings for one
// property and applies the changes. It returns the add/update/remove counts
// applied before any error.
func (s *SyncService) reconcile(ctx context.Context, property *models.Property, events []models.CalendarEvent) (added, updated, removed int, err error) {
	// Partition the feed into active events and explicitly cancelled UIDs.
	var activeEvents []models.CalendarEvent
	cancelledUIDs := make(map[string]bool)
	for _, e := range events {
		if strings.EqualFold(e.Status, feedStatusCancelled) {
			cancelledUIDs[e.UID] = true
			continue
		}
		activeEvents = append(activeEvents, e)
	}

	// Snapshot stored bookings; every insert/update/no-op decision below is
	// made against this snapshot.
	stored, err := s.bookingRepo.ListByProperty(ctx, property.ID)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("listing bookings for property %s: %w", property.ID, err)
	}
	byUID := make(map[string]models.Booking, len(stored))
	for _, b := range stored {
		byUID[b.UID] = b
	}

	activeUIDs := make(map[string]bool, len(activeEvents))
	for _, e := range activeEvents {
		activeUIDs[e.UID] = true
	}

	for _, event := range activeEvents {
		sameDay := HasSameDayTurnover(event, activeEvents)
		existing, ok := byUID[event.UID]

		switch {
		case !ok:
			if err := s.applyEvent(ctx, property.ID, event, sameDay); err != nil {
				return added, updated, removed, err
			}
			added++

		case bookingChanged(existing, event):
			if err := s.applyEvent(ctx, property.ID, event, sameDay); err != nil {
				return added, updated, removed, err
			}
			updated++

		case sameDay:
			// Unchanged booking, but re-write the job so the same-day note
			// is present. Same write every run, so still idempotent; does
			// not count as an update.
			if err := s.writeJob(ctx, property.ID, event, sameDay); err != nil {
				return added, updated, removed, err
			}
		}
	}

	// Removal sweep: cancel stored bookings that disappeared from the
	// active set or came back explicitly cancelled. Already-cancelled
	// bookings are skipped so repeated runs report removed=0.
	for uid, b := range byUID {
		if b.Status == models.BookingStatusCancelled {
			continue
		}
		if activeUIDs[uid] && !cancelledUIDs[uid] {
			continue
		}

		now := time.Now().UTC()
		if err := s.bookingRepo.MarkCancelled(ctx, uid, now); err != nil {
			return added, updated, removed, err
		}
		if err := s.jobRepo.MarkCancelled(ctx, uid, now, models.NoteBookingCancelled); err != nil {
			return added, updated, removed, err
		}
		removed++
	}

	return added, updated, removed, nil
}

// bookingChanged reports whether a stored booking differs from its feed
// event. Instants are compared exactly: a one-second checkout shift is a
// change.
func bookingChanged(b models.Booking, e models.CalendarEvent) bool {
	return !b.Checkin.Equal(e.Start) ||
		!b.Checkout.Equal(e.End) ||
		b.Status != models.BookingStatusActive
}

// applyEvent upserts the booking for an event and rewrites its cleaning job.
func (s *SyncService) applyEvent(ctx context.Context, propertyID string, event models.CalendarEvent, sameDay bool) error {
	booking := &models.Booking{
		UID:        event.UID,
		PropertyID: propertyID,
		Checkin:    event.Start,
		Checkout:   event.End,
		Status:     models.BookingStatusActive,
	}
	if err := s.bookingRepo.UpsertByUID(ctx, booking); err != nil {
		return err
	}

	return s.writeJob(ctx, propertyID, event, sameDay)
}

// writeJob creates or overwrites the cleaning job for an event's booking.
// Only the scheduling fields are written; operator-owned fields are preserved.
func (s *SyncService) writeJob(ctx context.Context, propertyID string, event models.CalendarEvent, sameDay bool) error {
	var notes *string
	if sameDay {
		n := models.NoteSameDayTurnover
		notes = &n
	}
	scheduledFor := event.End.Add(models.CleaningOffset)

	job, err := s.jobRepo.FindByBookingUID(ctx, event.UID)
	if err != nil {
		return err
	}

	if job == nil {
		return s.jobRepo.Create(ctx, &models.CleaningJob{
			BookingUID:   event.UID,
			PropertyID:   propertyID,
			ScheduledFor: scheduledFor,
			Status:       models.JobStatusScheduled,
			Notes:        notes,
		})
	}

	status := models.JobStatusScheduled
	if s.preserveJobStatus && job.Status != models.JobStatusScheduled {
		status = job.Status
	}

	return s.jobRepo.UpdateSchedulingFields(ctx, job.ID, scheduledFor, notes, status)
}

// SyncAll runs a reconciliation pass for every enabled property. Failures
// are recorded per property and never abort the batch.
func (s *SyncService) SyncAll(ctx context.Context) (*models.BatchResult, error) {
	properties, err := s.propertyRepo.ListEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing enabled properties: %w", err)
	}

	batch := &models.BatchResult{
		StartedAt: time.Now().UTC(),
	}

	for _, p := range properties {
		result, err := s.SyncProperty(ctx, p.ID)
		if err != nil {
			log.Printf("Sync failed for property %s (%s): %v", p.ID, p.Name, err)
			if result == nil {
				result = &models.SyncResult{
					PropertyID:   p.ID,
					PropertyName: p.Name,
					Error:        err,
					SyncedAt:     time.Now().UTC(),
				}
			}
			batch.Failed++
		} else {
			batch.Succeeded++
		}
		batch.Results = append(batch.Results, *result)
	}

	return batch, nil
}
