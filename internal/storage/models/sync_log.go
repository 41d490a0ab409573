package models

import (
	"time"
)

// SyncLogEntry is one append-only audit row recording what a single
// property's reconciliation pass changed. One row is written per property
// per sync run, including zero-valued rows when nothing changed.
type SyncLogEntry struct {
	ID              string    `json:"id"`
	PropertyID      string    `json:"property_id"`
	BookingsAdded   int       `json:"bookings_added"`
	BookingsUpdated int       `json:"bookings_updated"`
	BookingsRemoved int       `json:"bookings_removed"`
	RunAt           time.Time `json:"run_at"`
}
