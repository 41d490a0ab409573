// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rental-cleaning-manager/backend/internal/calendar"
	"github.com/rental-cleaning-manager/backend/internal/storage"
	"github.com/rental-cleaning-manager/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Check database connection
		dbConnected := db.Ping() == nil

		status := "healthy"
		if !dbConnected {
			status = "degraded"
		}

		response := HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
		}

		w.Header().Set("Content-Type", "application/json")
		if status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(response)
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	PropertiesCount     int `json:"properties_count"`
	ActiveBookings      int `json:"active_bookings"`
	ScheduledCleans     int `json:"scheduled_cleans"`
	ScheduledProperties int `json:"scheduled_properties"`
	ConnectedClients    int `json:"connected_clients"`
}

// Status returns a handler that provides system status information.
func Status(db *storage.DB, hub *websocket.Hub, scheduler *calendar.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var propertiesCount int
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM properties").Scan(&propertiesCount)

		var activeBookings int
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bookings WHERE status = 'active'").Scan(&activeBookings)

		var scheduledCleans int
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cleaning_jobs WHERE status = 'scheduled'").Scan(&scheduledCleans)

		response := StatusResponse{
			PropertiesCount: propertiesCount,
			ActiveBookings:  activeBookings,
			ScheduledCleans: scheduledCleans,
		}
		if hub != nil {
			response.ConnectedClients = hub.ClientCount()
		}
		if scheduler != nil {
			response.ScheduledProperties = len(scheduler.GetScheduledProperties())
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}
