package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rental-cleaning-manager/backend/internal/api/middleware"
	"github.com/rental-cleaning-manager/backend/internal/storage"
	"github.com/rental-cleaning-manager/backend/internal/storage/models"
)

// ListPropertyBookings returns all bookings for a property.
func ListPropertyBookings(bookingRepo *storage.BookingRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID := mux.Vars(r)["id"]

		bookings, err := bookingRepo.ListByProperty(r.Context(), propertyID)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query bookings")
			return
		}

		if bookings == nil {
			bookings = []models.Booking{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(bookings)
	}
}

// GetBooking returns a single booking by its feed UID.
func GetBooking(bookingRepo *storage.BookingRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := mux.Vars(r)["uid"]

		booking, err := bookingRepo.GetByUID(r.Context(), uid)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query booking")
			return
		}
		if booking == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Booking not found")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(booking)
	}
}
