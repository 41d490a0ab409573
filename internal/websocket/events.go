package websocket

import (
	"log"

	"github.com/rental-cleaning-manager/backend/internal/storage/models"
)

// EventBroadcaster handles broadcasting WebSocket events.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// BroadcastSyncCompleted sends a sync completed event.
func (b *EventBroadcaster) BroadcastSyncCompleted(result models.SyncResult) {
	payload := SyncPayload{
		PropertyID:      result.PropertyID,
		PropertyName:    result.PropertyName,
		Status:          "success",
		EventsFound:     result.EventsFound,
		BookingsAdded:   result.BookingsAdded,
		BookingsUpdated: result.BookingsUpdated,
		BookingsRemoved: result.BookingsRemoved,
	}

	if result.Error != nil {
		payload.Status = "error"
	}

	msg := NewMessage(TypeSyncCompleted, payload)
	b.broadcast(msg)
}

// BroadcastSyncError sends a sync error event.
func (b *EventBroadcaster) BroadcastSyncError(propertyID, propertyName string, err error) {
	payload := SyncErrorPayload{
		PropertyID:   propertyID,
		PropertyName: propertyName,
		Error:        "sync_error",
		Message:      err.Error(),
	}

	msg := NewMessage(TypeSyncError, payload)
	b.broadcast(msg)
}

// BroadcastJobStatusChanged sends a cleaning job status changed event.
func (b *EventBroadcaster) BroadcastJobStatusChanged(jobID, bookingUID, propertyID, previousStatus, newStatus string) {
	payload := JobStatusPayload{
		JobID:          jobID,
		BookingUID:     bookingUID,
		PropertyID:     propertyID,
		PreviousStatus: previousStatus,
		NewStatus:      newStatus,
	}

	msg := NewMessage(TypeJobStatusChanged, payload)
	b.broadcast(msg)
}

// BroadcastNotification sends a notification to all connected clients.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	payload := NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}

	msg := NewMessage(TypeNotification, payload)
	b.broadcast(msg)
}

// broadcast sends a message to all connected clients.
func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket message: %v", err)
		return
	}

	b.hub.Broadcast(data)
}
