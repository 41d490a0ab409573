package models

import (
	"time"
)

// Booking represents the durable record of one guest stay, correlated to a
// feed event by its UID. Bookings are never hard-deleted: when an event
// disappears from the feed the booking transitions to cancelled.
type Booking struct {
	ID         string    `json:"id"`
	UID        string    `json:"uid"`
	PropertyID string    `json:"property_id"`
	Checkin    time.Time `json:"checkin"`
	Checkout   time.Time `json:"checkout"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Booking status constants
const (
	BookingStatusActive    = "active"
	BookingStatusCancelled = "cancelled"
)

// IsActive returns true if the booking has not been cancelled.
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusActive
}
