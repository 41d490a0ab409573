package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rental-cleaning-manager/backend/internal/api/middleware"
	"github.com/rental-cleaning-manager/backend/internal/storage"
	"github.com/rental-cleaning-manager/backend/internal/storage/models"
	"github.com/rental-cleaning-manager/backend/internal/websocket"
)

// ListJobs returns cleaning jobs, filtered by property or status.
func ListJobs(jobRepo *storage.CleaningJobRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propertyID := r.URL.Query().Get("property_id")
		status := r.URL.Query().Get("status")

		var jobs []models.CleaningJob
		var err error
		switch {
		case propertyID != "":
			jobs, err = jobRepo.ListByProperty(r.Context(), propertyID)
		case status != "":
			jobs, err = jobRepo.ListByStatus(r.Context(), status)
		default:
			jobs, err = jobRepo.ListByStatus(r.Context(), models.JobStatusScheduled)
		}
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query cleaning jobs")
			return
		}

		// Apply status as a secondary filter when both are given
		if propertyID != "" && status != "" {
			filtered := jobs[:0]
			for _, job := range jobs {
				if job.Status == status {
					filtered = append(filtered, job)
				}
			}
			jobs = filtered
		}

		if jobs == nil {
			jobs = []models.CleaningJob{}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(jobs)
	}
}

// GetJob returns a single cleaning job by ID.
func GetJob(jobRepo *storage.CleaningJobRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		job, err := jobRepo.GetByID(r.Context(), id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query cleaning job")
			return
		}
		if job == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Cleaning job not found")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(job)
	}
}

// UpdateJobRequest carries the operator-editable fields of a cleaning job.
type UpdateJobRequest struct {
	MaintenanceNotes   *string `json:"maintenance_notes"`
	ReimbursementCents *int    `json:"reimbursement_cents"`
	Status             *string `json:"status"`
}

// UpdateJob updates the operator-owned fields of a cleaning job. The
// reconciliation-owned scheduling fields cannot be changed here.
func UpdateJob(jobRepo *storage.CleaningJobRepository, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		var req UpdateJobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		job, err := jobRepo.GetByID(r.Context(), id)
		if err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to query cleaning job")
			return
		}
		if job == nil {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Cleaning job not found")
			return
		}

		maintenanceNotes := job.MaintenanceNotes
		if req.MaintenanceNotes != nil {
			maintenanceNotes = req.MaintenanceNotes
		}
		reimbursement := job.ReimbursementCents
		if req.ReimbursementCents != nil {
			reimbursement = *req.ReimbursementCents
		}
		previousStatus := job.Status
		status := job.Status
		if req.Status != nil {
			if !validJobStatus(*req.Status) {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Invalid job status")
				return
			}
			status = *req.Status
		}

		if err := jobRepo.UpdateOperatorFields(r.Context(), id, maintenanceNotes, reimbursement, status); err != nil {
			middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update cleaning job")
			return
		}

		if hub != nil && status != previousStatus {
			broadcaster := websocket.NewEventBroadcaster(hub)
			broadcaster.BroadcastJobStatusChanged(job.ID, job.BookingUID, job.PropertyID, previousStatus, status)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func validJobStatus(status string) bool {
	switch status {
	case models.JobStatusScheduled, models.JobStatusCompleted, models.JobStatusCancelled, models.JobStatusDeleted:
		return true
	}
	return false
}
