package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/univista/sis-api/internal/models"
)

// FacultyRepository handles persistence for faculty specialization records.
type FacultyRepository struct {
	db *sqlx.DB
}

// NewFacultyRepository constructs the repository.
func NewFacultyRepository(db *sqlx.DB) *FacultyRepository {
	return &FacultyRepository{db: db}
}

const facultyColumns = `id, user_id, employee_no, designation, specialization, joining_date, created_at, updated_at`

// Create inserts a faculty row.
func (r *FacultyRepository) Create(ctx context.Context, faculty *models.Faculty) error {
	now := time.Now().UTC()
	if faculty.ID == "" {
		faculty.ID = uuid.NewString()
	}
	faculty.CreatedAt = now
	faculty.UpdatedAt = now
	query := `INSERT INTO faculty (id, user_id, employee_no, designation, specialization, joining_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query,
		faculty.ID, faculty.UserID, faculty.EmployeeNo, faculty.Designation,
		faculty.Specialization, faculty.JoiningDate, faculty.CreatedAt, faculty.UpdatedAt); err != nil {
		return fmt.Errorf("create faculty: %w", err)
	}
	return nil
}

// FindByUserID resolves the faculty record owned by a user identity.
func (r *FacultyRepository) FindByUserID(ctx context.Context, userID string) (*models.Faculty, error) {
	var faculty models.Faculty
	query := fmt.Sprintf(`SELECT %s FROM faculty WHERE user_id = $1`, facultyColumns)
	if err := r.db.GetContext(ctx, &faculty, query, userID); err != nil {
		return nil, err
	}
	return &faculty, nil
}

// FindByID returns one faculty record.
func (r *FacultyRepository) FindByID(ctx context.Context, id string) (*models.Faculty, error) {
	var faculty models.Faculty
	query := fmt.Sprintf(`SELECT %s FROM faculty WHERE id = $1`, facultyColumns)
	if err := r.db.GetContext(ctx, &faculty, query, id); err != nil {
		return nil, err
	}
	return &faculty, nil
}

// EmployeeNoTaken reports whether an employee number is already in use.
func (r *FacultyRepository) EmployeeNoTaken(ctx context.Context, employeeNo string) (bool, error) {
	var id string
	err := r.db.GetContext(ctx, &id, `SELECT id FROM faculty WHERE employee_no = $1`, employeeNo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check employee number: %w", err)
	}
	return true, nil
}
