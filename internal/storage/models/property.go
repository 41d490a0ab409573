// Package models contains the domain models for the application.
package models

import (
	"time"
)

// Property represents a managed rental property with its booking calendar feed.
type Property struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	FeedURL         string     `json:"feed_url"`
	SyncIntervalMin int        `json:"sync_interval_min"`
	LastSyncAt      *time.Time `json:"last_sync_at,omitempty"`
	SyncStatus      string     `json:"sync_status"`
	SyncError       *string    `json:"sync_error,omitempty"`
	Enabled         bool       `json:"enabled"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// SyncStatus constants
const (
	SyncStatusPending = "pending"
	SyncStatusSyncing = "syncing"
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
)

// CalendarEvent represents a parsed event from an iCal feed.
// Events are produced fresh on every fetch and never persisted as-is.
type CalendarEvent struct {
	UID     string    `json:"uid"`
	Summary string    `json:"summary"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
	Status  string    `json:"status,omitempty"`
}

// SyncResult contains the results of one property's reconciliation pass.
type SyncResult struct {
	PropertyID      string    `json:"property_id"`
	PropertyName    string    `json:"property_name"`
	EventsFound     int       `json:"events_found"`
	BookingsAdded   int       `json:"bookings_added"`
	BookingsUpdated int       `json:"bookings_updated"`
	BookingsRemoved int       `json:"bookings_removed"`
	Error           error     `json:"-"`
	SyncedAt        time.Time `json:"synced_at"`
}

// BatchResult aggregates the outcome of a sync run across all properties.
type BatchResult struct {
	Results   []SyncResult `json:"results"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	StartedAt time.Time    `json:"started_at"`
}
