package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rental-cleaning-manager/backend/internal/storage/models"
)

// BookingRepository provides data access for guest bookings.
//
// Bookings are correlated to feed events by UID alone: the feed source is
// required to emit UIDs that are globally unique across all properties.
type BookingRepository struct {
	BaseRepository
}

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(db *DB) *BookingRepository {
	return &BookingRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// UpsertByUID inserts a booking, or replaces the stay window and status of
// the existing booking with the same UID.
func (r *BookingRepository) UpsertByUID(ctx context.Context, b *models.Booking) error {
	now := r.Now()
	if b.ID == "" {
		b.ID = GenerateID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO bookings (id, uid, property_id, checkin, checkout, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uid) DO UPDATE SET
			checkin = excluded.checkin,
			checkout = excluded.checkout,
			status = excluded.status,
			updated_at = excluded.updated_at
	`,
		b.ID, b.UID, b.PropertyID, b.Checkin, b.Checkout, b.Status, b.CreatedAt, b.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("upserting booking %s: %w", b.UID, err)
	}

	return nil
}

// GetByUID retrieves a booking by its feed UID.
func (r *BookingRepository) GetByUID(ctx context.Context, uid string) (*models.Booking, error) {
	b := &models.Booking{}

	err := r.DB().QueryRowContext(ctx, `
		SELECT id, uid, property_id, checkin, checkout, status, created_at, updated_at
		FROM bookings WHERE uid = ?
	`, uid).Scan(
		&b.ID, &b.UID, &b.PropertyID, &b.Checkin, &b.Checkout,
		&b.Status, &b.CreatedAt, &b.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying booking by uid: %w", err)
	}

	return b, nil
}

// ListByProperty retrieves all bookings for a property.
func (r *BookingRepository) ListByProperty(ctx context.Context, propertyID string) ([]models.Booking, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, uid, property_id, checkin, checkout, status, created_at, updated_at
		FROM bookings
		WHERE property_id = ?
		ORDER BY checkin
	`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("querying bookings: %w", err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// ListByStatus retrieves all bookings with a specific status.
func (r *BookingRepository) ListByStatus(ctx context.Context, status string) ([]models.Booking, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, uid, property_id, checkin, checkout, status, created_at, updated_at
		FROM bookings
		WHERE status = ?
		ORDER BY checkin
	`, status)
	if err != nil {
		return nil, fmt.Errorf("querying bookings by status: %w", err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

func (r *BookingRepository) scanBookings(rows *sql.Rows) ([]models.Booking, error) {
	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		if err := rows.Scan(
			&b.ID, &b.UID, &b.PropertyID, &b.Checkin, &b.Checkout,
			&b.Status, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// MarkCancelled transitions a booking to cancelled.
func (r *BookingRepository) MarkCancelled(ctx context.Context, uid string, at time.Time) error {
	result, err := r.DB().ExecContext(ctx, `
		UPDATE bookings SET status = ?, updated_at = ? WHERE uid = ?
	`, models.BookingStatusCancelled, at, uid)

	if err != nil {
		return fmt.Errorf("cancelling booking %s: %w", uid, err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("booking not found: %s", uid)
	}

	return nil
}
