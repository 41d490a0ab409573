package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rental-cleaning-manager/backend/internal/api/middleware"
	"github.com/rental-cleaning-manager/backend/internal/calendar"
	"github.com/rental-cleaning-manager/backend/internal/storage"
	"github.com/rental-cleaning-manager/backend/internal/storage/models"
)

// Property request/response types

type PropertyRequest struct {
	Name            string `json:"name"`
	FeedURL         string `json:"feed_url"`
	SyncIntervalMin int    `json:"sync_interval_min"`
	Enabled         bool   `json:"enabled"`
}

// ListProperties returns all properties.
func ListProperties(propertyRepo *storage.PropertyRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		properties, err := propertyRepo.List(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query properties")
			return
		}

		if properties == nil {
			properties = []models.Property{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(properties)
	}
}

// CreateProperty adds a new property.
func CreateProperty(propertyRepo *storage.PropertyRepository, scheduler *calendar.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PropertyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		if req.Name == "" || req.FeedURL == "" {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Name and feed URL are required")
			return
		}

		if req.SyncIntervalMin < 5 {
			req.SyncIntervalMin = 15
		}

		property := &models.Property{
			Name:            req.Name,
			FeedURL:         req.FeedURL,
			SyncIntervalMin: req.SyncIntervalMin,
			Enabled:         req.Enabled,
		}

		if err := propertyRepo.Create(r.Context(), property); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to create property")
			return
		}

		// Schedule the property for syncing if enabled
		if scheduler != nil && property.Enabled {
			scheduler.ScheduleProperty(*property)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(property)
	}
}

// GetProperty returns a single property by ID, with the next scheduled sync
// time when the property is on the schedule.
func GetProperty(propertyRepo *storage.PropertyRepository, scheduler *calendar.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		property, err := propertyRepo.GetByID(r.Context(), id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query property")
			return
		}
		if property == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Property not found")
			return
		}

		response := struct {
			models.Property
			NextSyncAt *time.Time `json:"next_sync_at,omitempty"`
		}{Property: *property}
		if scheduler != nil {
			response.NextSyncAt = scheduler.GetNextRun(id)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}

// UpdateProperty updates an existing property.
func UpdateProperty(propertyRepo *storage.PropertyRepository, scheduler *calendar.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		var req PropertyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		property := &models.Property{
			ID:              id,
			Name:            req.Name,
			FeedURL:         req.FeedURL,
			SyncIntervalMin: req.SyncIntervalMin,
			Enabled:         req.Enabled,
		}

		if err := propertyRepo.Update(r.Context(), property); err != nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Property not found")
			return
		}

		// Update the scheduler with the new property settings
		if scheduler != nil {
			scheduler.ScheduleProperty(*property)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// DeleteProperty removes a property.
func DeleteProperty(propertyRepo *storage.PropertyRepository, scheduler *calendar.Scheduler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		if err := propertyRepo.Delete(r.Context(), id); err != nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Property not found")
			return
		}

		if scheduler != nil {
			scheduler.UnscheduleProperty(id)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
