// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rental-cleaning-manager/backend/internal/api/handlers"
	"github.com/rental-cleaning-manager/backend/internal/api/middleware"
	"github.com/rental-cleaning-manager/backend/internal/calendar"
	"github.com/rental-cleaning-manager/backend/internal/storage"
	"github.com/rental-cleaning-manager/backend/internal/websocket"
)

// Repositories bundles the data access layers the router needs.
type Repositories struct {
	Properties *storage.PropertyRepository
	Bookings   *storage.BookingRepository
	Jobs       *storage.CleaningJobRepository
	SyncLog    *storage.SyncLogRepository
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(
	db *storage.DB,
	repos Repositories,
	hub *websocket.Hub,
	staticDir string,
	syncService *calendar.SyncService,
	scheduler *calendar.Scheduler,
) *mux.Router {
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	// API subrouter
	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(db)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(db, hub, scheduler)).Methods("GET")

	// WebSocket endpoint
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(hub)).Methods("GET")

	// Property endpoints
	api.HandleFunc("/properties", handlers.ListProperties(repos.Properties)).Methods("GET")
	api.HandleFunc("/properties", handlers.CreateProperty(repos.Properties, scheduler)).Methods("POST")
	api.HandleFunc("/properties/{id}", handlers.GetProperty(repos.Properties, scheduler)).Methods("GET")
	api.HandleFunc("/properties/{id}", handlers.UpdateProperty(repos.Properties, scheduler)).Methods("PUT")
	api.HandleFunc("/properties/{id}", handlers.DeleteProperty(repos.Properties, scheduler)).Methods("DELETE")
	api.HandleFunc("/properties/{id}/sync", handlers.SyncProperty(repos.Properties, hub, syncService)).Methods("POST")
	api.HandleFunc("/properties/{id}/bookings", handlers.ListPropertyBookings(repos.Bookings)).Methods("GET")

	// Booking endpoints
	api.HandleFunc("/bookings/{uid}", handlers.GetBooking(repos.Bookings)).Methods("GET")

	// Cleaning job endpoints
	api.HandleFunc("/jobs", handlers.ListJobs(repos.Jobs)).Methods("GET")
	api.HandleFunc("/jobs/{id}", handlers.GetJob(repos.Jobs)).Methods("GET")
	api.HandleFunc("/jobs/{id}", handlers.UpdateJob(repos.Jobs, hub)).Methods("PATCH")

	// Sync endpoints
	api.HandleFunc("/sync", handlers.SyncAll(syncService)).Methods("POST")
	api.HandleFunc("/sync-log", handlers.ListSyncLog(repos.SyncLog)).Methods("GET")

	// Serve static frontend files
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))

	return r
}
