package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/univista/sis-api/internal/models"
)

// AttendanceRepository handles persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert inserts or updates the attendance record for (enrollment, day) in
// one atomic statement. The unique index on (enrollment_id, date) makes a
// re-mark update status and marked_by in place instead of duplicating.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.Attendance) (*models.Attendance, error) {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	query := `INSERT INTO attendance (id, enrollment_id, date, status, marked_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (enrollment_id, date)
DO UPDATE SET status = EXCLUDED.status, marked_by = EXCLUDED.marked_by, updated_at = EXCLUDED.updated_at
RETURNING id, enrollment_id, date, status, marked_by, created_at, updated_at`
	var stored models.Attendance
	if err := r.db.GetContext(ctx, &stored, query,
		record.ID, record.EnrollmentID, record.Date, record.Status, record.MarkedBy,
		record.CreatedAt, record.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert attendance: %w", err)
	}
	return &stored, nil
}

// Summary aggregates one enrollment's attendance records.
func (r *AttendanceRepository) Summary(ctx context.Context, enrollmentID string) (*models.AttendanceSummary, error) {
	var summary models.AttendanceSummary
	query := `SELECT COUNT(*) AS total,
        COUNT(*) FILTER (WHERE status = 'present') AS present
        FROM attendance WHERE enrollment_id = $1`
	if err := r.db.GetContext(ctx, &summary, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("attendance summary: %w", err)
	}
	return &summary, nil
}

// ListByEnrollment returns one enrollment's attendance history, newest first.
func (r *AttendanceRepository) ListByEnrollment(ctx context.Context, enrollmentID string) ([]models.Attendance, error) {
	query := `SELECT id, enrollment_id, date, status, marked_by, created_at, updated_at
FROM attendance WHERE enrollment_id = $1 ORDER BY date DESC`
	var records []models.Attendance
	if err := r.db.SelectContext(ctx, &records, query, enrollmentID); err != nil {
		return nil, fmt.Errorf("list attendance by enrollment: %w", err)
	}
	return records, nil
}
