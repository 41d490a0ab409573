package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rental-cleaning-manager/backend/internal/storage/models"
)

// CleaningJobRepository provides data access for cleaning jobs.
type CleaningJobRepository struct {
	BaseRepository
}

// NewCleaningJobRepository creates a new cleaning job repository.
func NewCleaningJobRepository(db *DB) *CleaningJobRepository {
	return &CleaningJobRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new cleaning job.
func (r *CleaningJobRepository) Create(ctx context.Context, job *models.CleaningJob) error {
	job.ID = GenerateID()
	job.CreatedAt = r.Now()
	job.UpdatedAt = r.Now()

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO cleaning_jobs (
			id, booking_uid, property_id, scheduled_for, status, notes,
			maintenance_notes, reimbursement_cents, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		job.ID, job.BookingUID, job.PropertyID, job.ScheduledFor, job.Status,
		job.Notes, job.MaintenanceNotes, job.ReimbursementCents, job.CreatedAt, job.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("inserting cleaning job for booking %s: %w", job.BookingUID, err)
	}

	return nil
}

// GetByID retrieves a cleaning job by its ID.
func (r *CleaningJobRepository) GetByID(ctx context.Context, id string) (*models.CleaningJob, error) {
	job := &models.CleaningJob{}

	err := r.DB().QueryRowContext(ctx, `
		SELECT id, booking_uid, property_id, scheduled_for, status, notes,
		       maintenance_notes, reimbursement_cents, created_at, updated_at
		FROM cleaning_jobs WHERE id = ?
	`, id).Scan(
		&job.ID, &job.BookingUID, &job.PropertyID, &job.ScheduledFor, &job.Status,
		&job.Notes, &job.MaintenanceNotes, &job.ReimbursementCents, &job.CreatedAt, &job.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying cleaning job: %w", err)
	}

	return job, nil
}

// FindByBookingUID retrieves the cleaning job for a booking, if any.
func (r *CleaningJobRepository) FindByBookingUID(ctx context.Context, bookingUID string) (*models.CleaningJob, error) {
	job := &models.CleaningJob{}

	err := r.DB().QueryRowContext(ctx, `
		SELECT id, booking_uid, property_id, scheduled_for, status, notes,
		       maintenance_notes, reimbursement_cents, created_at, updated_at
		FROM cleaning_jobs WHERE booking_uid = ?
	`, bookingUID).Scan(
		&job.ID, &job.BookingUID, &job.PropertyID, &job.ScheduledFor, &job.Status,
		&job.Notes, &job.MaintenanceNotes, &job.ReimbursementCents, &job.CreatedAt, &job.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying cleaning job by booking: %w", err)
	}

	return job, nil
}

// ListByProperty retrieves all cleaning jobs for a property.
func (r *CleaningJobRepository) ListByProperty(ctx context.Context, propertyID string) ([]models.CleaningJob, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, booking_uid, property_id, scheduled_for, status, notes,
		       maintenance_notes, reimbursement_cents, created_at, updated_at
		FROM cleaning_jobs
		WHERE property_id = ?
		ORDER BY scheduled_for
	`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("querying cleaning jobs: %w", err)
	}
	defer rows.Close()

	return r.scanJobs(rows)
}

// ListByStatus retrieves all cleaning jobs with a specific status.
func (r *CleaningJobRepository) ListByStatus(ctx context.Context, status string) ([]models.CleaningJob, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, booking_uid, property_id, scheduled_for, status, notes,
		       maintenance_notes, reimbursement_cents, created_at, updated_at
		FROM cleaning_jobs
		WHERE status = ?
		ORDER BY scheduled_for
	`, status)
	if err != nil {
		return nil, fmt.Errorf("querying cleaning jobs by status: %w", err)
	}
	defer rows.Close()

	return r.scanJobs(rows)
}

func (r *CleaningJobRepository) scanJobs(rows *sql.Rows) ([]models.CleaningJob, error) {
	var jobs []models.CleaningJob
	for rows.Next() {
		var job models.CleaningJob
		if err := rows.Scan(
			&job.ID, &job.BookingUID, &job.PropertyID, &job.ScheduledFor, &job.Status,
			&job.Notes, &job.MaintenanceNotes, &job.ReimbursementCents, &job.CreatedAt, &job.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning cleaning job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// UpdateSchedulingFields overwrites the reconciliation-owned fields of a job.
// Operator-owned fields (maintenance_notes, reimbursement_cents) are not touched.
func (r *CleaningJobRepository) UpdateSchedulingFields(ctx context.Context, id string, scheduledFor time.Time, notes *string, status string) error {
	result, err := r.DB().ExecContext(ctx, `
		UPDATE cleaning_jobs SET
			scheduled_for = ?, notes = ?, status = ?, updated_at = ?
		WHERE id = ?
	`, scheduledFor, notes, status, r.Now(), id)

	if err != nil {
		return fmt.Errorf("updating cleaning job scheduling: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("cleaning job not found: %s", id)
	}

	return nil
}

// UpdateOperatorFields updates the operator-owned fields of a job.
// Scheduling fields are not touched.
func (r *CleaningJobRepository) UpdateOperatorFields(ctx context.Context, id string, maintenanceNotes *string, reimbursementCents int, status string) error {
	result, err := r.DB().ExecContext(ctx, `
		UPDATE cleaning_jobs SET
			maintenance_notes = ?, reimbursement_cents = ?, status = ?, updated_at = ?
		WHERE id = ?
	`, maintenanceNotes, reimbursementCents, status, r.Now(), id)

	if err != nil {
		return fmt.Errorf("updating cleaning job: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("cleaning job not found: %s", id)
	}

	return nil
}

// MarkCancelled cancels the job for a booking and replaces its notes with
// the given cancellation note.
func (r *CleaningJobRepository) MarkCancelled(ctx context.Context, bookingUID string, at time.Time, note string) error {
	_, err := r.DB().ExecContext(ctx, `
		UPDATE cleaning_jobs SET status = ?, notes = ?, updated_at = ?
		WHERE booking_uid = ?
	`, models.JobStatusCancelled, note, at, bookingUID)

	if err != nil {
		return fmt.Errorf("cancelling cleaning job for booking %s: %w", bookingUID, err)
	}

	return nil
}
