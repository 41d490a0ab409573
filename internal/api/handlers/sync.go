package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rental-cleaning-manager/backend/internal/api/middleware"
	"github.com/rental-cleaning-manager/backend/internal/calendar"
	"github.com/rental-cleaning-manager/backend/internal/storage"
	"github.com/rental-cleaning-manager/backend/internal/websocket"
)

// SyncProperty triggers a manual sync for one property. The sync runs in the
// background; the result arrives over the websocket.
func SyncProperty(propertyRepo *storage.PropertyRepository, hub *websocket.Hub, syncService *calendar.SyncService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		property, err := propertyRepo.GetByID(r.Context(), id)
		if err != nil || property == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Property not found")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "syncing"})

		go func() {
			ctx := context.Background()

			result, err := syncService.SyncProperty(ctx, id)
			if hub == nil {
				return
			}

			broadcaster := websocket.NewEventBroadcaster(hub)
			if err != nil {
				broadcaster.BroadcastSyncError(id, property.Name, err)
				return
			}
			broadcaster.BroadcastSyncCompleted(*result)
		}()
	}
}

// SyncAll triggers a reconciliation pass for every enabled property and
// returns the per-property breakdown.
func SyncAll(syncService *calendar.SyncService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		batch, err := syncService.SyncAll(r.Context())
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to run sync")
			return
		}

		type resultResponse struct {
			PropertyID      string `json:"property_id"`
			PropertyName    string `json:"property_name"`
			EventsFound     int    `json:"events_found"`
			BookingsAdded   int    `json:"bookings_added"`
			BookingsUpdated int    `json:"bookings_updated"`
			BookingsRemoved int    `json:"bookings_removed"`
			Error           string `json:"error,omitempty"`
		}

		response := struct {
			Succeeded int              `json:"succeeded"`
			Failed    int              `json:"failed"`
			Results   []resultResponse `json:"results"`
		}{
			Succeeded: batch.Succeeded,
			Failed:    batch.Failed,
			Results:   make([]resultResponse, 0, len(batch.Results)),
		}

		for _, res := range batch.Results {
			rr := resultResponse{
				PropertyID:      res.PropertyID,
				PropertyName:    res.PropertyName,
				EventsFound:     res.EventsFound,
				BookingsAdded:   res.BookingsAdded,
				BookingsUpdated: res.BookingsUpdated,
				BookingsRemoved: res.BookingsRemoved,
			}
			if res.Error != nil {
				rr.Error = res.Error.Error()
			}
			response.Results = append(response.Results, rr)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}

// ListSyncLog returns recent sync audit rows, optionally for one property.
func ListSyncLog(syncLogRepo *storage.SyncLogRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID := r.URL.Query().Get("property_id")

		var entries any
		var err error
		if propertyID != "" {
			entries, err = syncLogRepo.ListByProperty(r.Context(), propertyID, 50)
		} else {
			entries, err = syncLogRepo.ListRecent(r.Context(), 50)
		}
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query sync log")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	}
}
