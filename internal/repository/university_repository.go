package repository

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/univista/sis-api/internal/models"
)

// UniversityRepository resolves universities and departments during
// registration and login.
type UniversityRepository struct {
	db *sqlx.DB
}

// NewUniversityRepository constructs the repository.
func NewUniversityRepository(db *sqlx.DB) *UniversityRepository {
	return &UniversityRepository{db: db}
}

// FindByName returns the university with the given name, case-insensitively.
func (r *UniversityRepository) FindByName(ctx context.Context, name string) (*models.University, error) {
	var university models.University
	query := `SELECT id, name, address, email, student_suffix, faculty_suffix, admin_password_hash, created_at, updated_at
FROM universities WHERE LOWER(name) = $1`
	if err := r.db.GetContext(ctx, &university, query, strings.ToLower(strings.TrimSpace(name))); err != nil {
		return nil, err
	}
	return &university, nil
}

// FindDepartmentByName returns the department with the given name,
// case-insensitively.
func (r *UniversityRepository) FindDepartmentByName(ctx context.Context, name string) (*models.Department, error) {
	var department models.Department
	query := `SELECT id, name, code, head_faculty_id, created_at, updated_at
FROM departments WHERE LOWER(name) = $1`
	if err := r.db.GetContext(ctx, &department, query, strings.ToLower(strings.TrimSpace(name))); err != nil {
		return nil, err
	}
	return &department, nil
}

// FindDepartmentByID returns one department.
func (r *UniversityRepository) FindDepartmentByID(ctx context.Context, id string) (*models.Department, error) {
	var department models.Department
	query := `SELECT id, name, code, head_faculty_id, created_at, updated_at
FROM departments WHERE id = $1`
	if err := r.db.GetContext(ctx, &department, query, id); err != nil {
		return nil, err
	}
	return &department, nil
}
