package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

// Server -> Client event types. Clients never send application messages;
// keepalive is handled at the protocol level with ping/pong frames.
const (
	TypeSyncCompleted    MessageType = "sync.completed"
	TypeSyncError        MessageType = "sync.error"
	TypeJobStatusChanged MessageType = "job.status_changed"
	TypeNotification     MessageType = "notification"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// SyncPayload is the payload for sync.completed events.
type SyncPayload struct {
	PropertyID      string `json:"property_id"`
	PropertyName    string `json:"property_name"`
	Status          string `json:"status"`
	EventsFound     int    `json:"events_found"`
	BookingsAdded   int    `json:"bookings_added"`
	BookingsUpdated int    `json:"bookings_updated"`
	BookingsRemoved int    `json:"bookings_removed"`
}

// SyncErrorPayload is the payload for sync.error events.
type SyncErrorPayload struct {
	PropertyID   string `json:"property_id"`
	PropertyName string `json:"property_name"`
	Error        string `json:"error"`
	Message      string `json:"message"`
}

// JobStatusPayload is the payload for job.status_changed events.
type JobStatusPayload struct {
	JobID          string `json:"job_id"`
	BookingUID     string `json:"booking_uid"`
	PropertyID     string `json:"property_id"`
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
}

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	Level       string `json:"level"` // info, warning, error, success
	Title       string `json:"title"`
	Message     string `json:"message"`
	Dismissible bool   `json:"dismissible"`
}
