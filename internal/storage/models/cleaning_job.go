package models

import (
	"time"
)

// CleaningJob represents the turnover clean generated from a booking's
// checkout. Exactly one job exists per booking UID.
//
// ScheduledFor, Notes and Status are owned by the reconciliation engine and
// are overwritten on sync. MaintenanceNotes and ReimbursementCents are
// operator-owned and must never be touched by a reconciliation write.
type CleaningJob struct {
	ID                 string    `json:"id"`
	BookingUID         string    `json:"booking_uid"`
	PropertyID         string    `json:"property_id"`
	ScheduledFor       time.Time `json:"scheduled_for"`
	Status             string    `json:"status"`
	Notes              *string   `json:"notes,omitempty"`
	MaintenanceNotes   *string   `json:"maintenance_notes,omitempty"`
	ReimbursementCents int       `json:"reimbursement_cents"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Cleaning job status constants
const (
	JobStatusScheduled = "scheduled"
	JobStatusCompleted = "completed"
	JobStatusCancelled = "cancelled"
	JobStatusDeleted   = "deleted"
)

// CleaningOffset is how long after checkout the clean is scheduled.
const CleaningOffset = time.Hour

// Fixed note texts written by the reconciliation engine. These are part of
// the observable contract and must not vary between runs.
const (
	NoteSameDayTurnover  = "Same-day turnover: next guest checks in on the checkout day"
	NoteBookingCancelled = "Booking cancelled - clean not required"
)
