package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/univista/sis-api/internal/models"
)

// EnrollmentRepository handles persistence for enrollments. Enrollments are
// created by the institution's registration process; this service only
// reads them.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListIDsByOffering returns the enrollment ids belonging to one offering.
// This is the authorization set for attendance writes.
func (r *EnrollmentRepository) ListIDsByOffering(ctx context.Context, offeringID string) ([]string, error) {
	var ids []string
	query := `SELECT id FROM enrollments WHERE offering_id = $1`
	if err := r.db.SelectContext(ctx, &ids, query, offeringID); err != nil {
		return nil, fmt.Errorf("list enrollment ids by offering: %w", err)
	}
	return ids, nil
}

// Roster returns one offering's enrollments joined with each student's user
// profile. A student row whose user record is missing fails the query.
func (r *EnrollmentRepository) Roster(ctx context.Context, offeringID string) ([]models.RosterEntry, error) {
	query := `SELECT e.id AS enrollment_id, s.id AS student_id, u.id AS user_id, s.enrollment_no,
        u.full_name, u.email, u.profile_pic
        FROM enrollments e
        JOIN students s ON s.id = e.student_id
        JOIN users u ON u.id = s.user_id
        WHERE e.offering_id = $1
        ORDER BY u.full_name`
	var roster []models.RosterEntry
	if err := r.db.SelectContext(ctx, &roster, query, offeringID); err != nil {
		return nil, fmt.Errorf("load offering roster: %w", err)
	}
	return roster, nil
}

// ListByStudent returns every enrollment of one student joined with the
// offering, its course and the teaching faculty's user profile.
func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.StudentEnrollmentRow, error) {
	query := `SELECT e.id AS enrollment_id, o.id AS offering_id, c.id AS course_id,
        c.course_code, c.course_name, c.credits,
        f.id AS faculty_id, fu.full_name AS faculty_name, fu.email AS faculty_email, fu.profile_pic AS faculty_profile_pic
        FROM enrollments e
        JOIN course_offerings o ON o.id = e.offering_id
        JOIN courses c ON c.id = o.course_id
        JOIN faculty f ON f.id = o.faculty_id
        JOIN users fu ON fu.id = f.user_id
        WHERE e.student_id = $1
        ORDER BY c.course_code`
	var rows []models.StudentEnrollmentRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrollments by student: %w", err)
	}
	return rows, nil
}

// CountDistinctStudents counts distinct students enrolled across the given
// offerings; a student enrolled in two of them is counted once.
func (r *EnrollmentRepository) CountDistinctStudents(ctx context.Context, offeringIDs []string) (int, error) {
	if len(offeringIDs) == 0 {
		return 0, nil
	}
	var count int
	query := `SELECT COUNT(DISTINCT student_id) FROM enrollments WHERE offering_id = ANY($1)`
	if err := r.db.GetContext(ctx, &count, query, pq.Array(offeringIDs)); err != nil {
		return 0, fmt.Errorf("count distinct students: %w", err)
	}
	return count, nil
}

// ExistsForOffering reports whether a student holds an enrollment in the
// given offering.
func (r *EnrollmentRepository) ExistsForOffering(ctx context.Context, studentID, offeringID string) (bool, error) {
	var id string
	query := `SELECT id FROM enrollments WHERE student_id = $1 AND offering_id = $2`
	err := r.db.GetContext(ctx, &id, query, studentID, offeringID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}
