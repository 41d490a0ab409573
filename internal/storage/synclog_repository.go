package storage

import (
	"context"
	"fmt"

	"github.com/rental-cleaning-manager/backend/internal/storage/models"
)

// SyncLogRepository provides access to the append-only sync audit log.
type SyncLogRepository struct {
	BaseRepository
}

// NewSyncLogRepository creates a new sync log repository.
func NewSyncLogRepository(db *DB) *SyncLogRepository {
	return &SyncLogRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Append writes one audit row for a property's reconciliation pass.
func (r *SyncLogRepository) Append(ctx context.Context, entry *models.SyncLogEntry) error {
	entry.ID = GenerateID()
	if entry.RunAt.IsZero() {
		entry.RunAt = r.Now()
	}

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO sync_log (id, property_id, bookings_added, bookings_updated, bookings_removed, run_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		entry.ID, entry.PropertyID, entry.BookingsAdded, entry.BookingsUpdated, entry.BookingsRemoved, entry.RunAt,
	)

	if err != nil {
		return fmt.Errorf("appending sync log entry: %w", err)
	}

	return nil
}

// ListByProperty retrieves the most recent audit rows for a property.
func (r *SyncLogRepository) ListByProperty(ctx context.Context, propertyID string, limit int) ([]models.SyncLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, property_id, bookings_added, bookings_updated, bookings_removed, run_at
		FROM sync_log
		WHERE property_id = ?
		ORDER BY run_at DESC
		LIMIT ?
	`, propertyID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sync log: %w", err)
	}
	defer rows.Close()

	var entries []models.SyncLogEntry
	for rows.Next() {
		var e models.SyncLogEntry
		if err := rows.Scan(&e.ID, &e.PropertyID, &e.BookingsAdded, &e.BookingsUpdated, &e.BookingsRemoved, &e.RunAt); err != nil {
			return nil, fmt.Errorf("scanning sync log entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// ListRecent retrieves the most recent audit rows across all properties.
func (r *SyncLogRepository) ListRecent(ctx context.Context, limit int) ([]models.SyncLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, property_id, bookings_added, bookings_updated, bookings_removed, run_at
		FROM sync_log
		ORDER BY run_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sync log: %w", err)
	}
	defer rows.Close()

	var entries []models.SyncLogEntry
	for rows.Next() {
		var e models.SyncLogEntry
		if err := rows.Scan(&e.ID, &e.PropertyID, &e.BookingsAdded, &e.BookingsUpdated, &e.BookingsRemoved, &e.RunAt); err != nil {
			return nil, fmt.Errorf("scanning sync log entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
