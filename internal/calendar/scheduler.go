package calendar

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/rental-cleaning-manager/backend/internal/storage"
	"github.com/rental-cleaning-manager/backend/internal/storage/models"
	"github.com/rental-cleaning-manager/backend/internal/websocket"
	"github.com/robfig/cron/v3"
)

// Scheduler manages periodic feed sync jobs.
type Scheduler struct {
	cron         *cron.Cron
	syncService  *SyncService
	propertyRepo *storage.PropertyRepository
	broadcaster  *websocket.EventBroadcaster

	// Track jobs per property
	jobs   map[string]cron.EntryID
	jobsMu sync.RWMutex

	// Default sync interval if property doesn't specify
	defaultInterval time.Duration
}

// NewScheduler creates a new feed sync scheduler.
func NewScheduler(
	syncService *SyncService,
	propertyRepo *storage.PropertyRepository,
	hub *websocket.Hub,
	defaultIntervalMin int,
) *Scheduler {
	if defaultIntervalMin <= 0 {
		defaultIntervalMin = 15
	}

	var broadcaster *websocket.EventBroadcaster
	if hub != nil {
		broadcaster = websocket.NewEventBroadcaster(hub)
	}

	return &Scheduler{
		cron:            cron.New(cron.WithSeconds()),
		syncService:     syncService,
		propertyRepo:    propertyRepo,
		broadcaster:     broadcaster,
		jobs:            make(map[string]cron.EntryID),
		defaultInterval: time.Duration(defaultIntervalMin) * time.Minute,
	}
}

// Start begins the scheduler and loads all enabled properties.
func (s *Scheduler) Start(ctx context.Context) error {
	log.Println("Starting feed sync scheduler...")

	properties, err := s.propertyRepo.ListEnabled(ctx)
	if err != nil {
		return err
	}

	for _, p := range properties {
		s.ScheduleProperty(p)
	}

	// Refresh property schedules every 5 minutes to catch properties added
	// or modified outside this process.
	s.cron.AddFunc("@every 5m", func() {
		s.refreshSchedules(context.Background())
	})

	s.cron.Start()
	log.Printf("Feed scheduler started with %d properties", len(properties))

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	log.Println("Stopping feed sync scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Feed scheduler stopped")
}

// ScheduleProperty adds or updates a property's sync schedule.
func (s *Scheduler) ScheduleProperty(p models.Property) {
	if !p.Enabled {
		s.UnscheduleProperty(p.ID)
		return
	}

	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	// Remove existing job if any
	if existingID, exists := s.jobs[p.ID]; exists {
		s.cron.Remove(existingID)
		delete(s.jobs, p.ID)
	}

	spec := minutesToCronSpec(p.SyncIntervalMin)

	entryID, err := s.cron.AddFunc(spec, func() {
		s.syncProperty(p.ID, p.Name)
	})

	if err != nil {
		log.Printf("Failed to schedule property %s: %v", p.ID, err)
		return
	}

	s.jobs[p.ID] = entryID
	log.Printf("Scheduled property %s (%s) every %d minutes", p.ID, p.Name, p.SyncIntervalMin)
}

// UnscheduleProperty removes a property from the sync schedule.
func (s *Scheduler) UnscheduleProperty(propertyID string) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if entryID, exists := s.jobs[propertyID]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, propertyID)
		log.Printf("Unscheduled property %s", propertyID)
	}
}

// syncProperty performs the actual sync operation.
func (s *Scheduler) syncProperty(propertyID, propertyName string) {
	ctx := context.Background()
	log.Printf("Syncing property: %s (%s)", propertyID, propertyName)

	result, err := s.syncService.SyncProperty(ctx, propertyID)
	if err != nil {
		log.Printf("Sync failed for %s: %v", propertyID, err)
		if s.broadcaster != nil {
			s.broadcaster.BroadcastSyncError(propertyID, propertyName, err)
		}
		return
	}

	log.Printf("Sync completed for %s: %d events, %d bookings added, %d updated, %d removed",
		propertyID, result.EventsFound, result.BookingsAdded, result.BookingsUpdated, result.BookingsRemoved)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastSyncCompleted(*result)
	}
}

// refreshSchedules reloads property schedules from the database.
func (s *Scheduler) refreshSchedules(ctx context.Context) {
	properties, err := s.propertyRepo.ListEnabled(ctx)
	if err != nil {
		log.Printf("Failed to refresh property schedules: %v", err)
		return
	}

	// Build set of current property IDs
	currentIDs := make(map[string]bool)
	for _, p := range properties {
		currentIDs[p.ID] = true
		s.ScheduleProperty(p)
	}

	// Remove jobs for properties that no longer exist or are disabled
	var removed []string
	s.jobsMu.Lock()
	for propertyID := range s.jobs {
		if !currentIDs[propertyID] {
			s.cron.Remove(s.jobs[propertyID])
			delete(s.jobs, propertyID)
			removed = append(removed, propertyID)
		}
	}
	s.jobsMu.Unlock()

	for _, propertyID := range removed {
		log.Printf("Removed schedule for property %s (no longer enabled)", propertyID)
		if s.broadcaster != nil {
			s.broadcaster.BroadcastNotification("info", "Sync schedule removed",
				"Property "+propertyID+" is no longer scheduled for calendar sync")
		}
	}
}

// minutesToCronSpec converts minutes to a cron spec.
func minutesToCronSpec(minutes int) string {
	if minutes <= 0 {
		minutes = 15
	}

	duration := time.Duration(minutes) * time.Minute
	return "@every " + duration.String()
}

// GetScheduledProperties returns a list of currently scheduled property IDs.
func (s *Scheduler) GetScheduledProperties() []string {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	ids := make([]string, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	return ids
}

// GetNextRun returns the next scheduled run time for a property.
func (s *Scheduler) GetNextRun(propertyID string) *time.Time {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	if entryID, exists := s.jobs[propertyID]; exists {
		entry := s.cron.Entry(entryID)
		if !entry.Next.IsZero() {
			return &entry.Next
		}
	}
	return nil
}
