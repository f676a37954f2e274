package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/univista/sis-api/internal/models"
)

// AssessmentRepository handles persistence for assessments and grades.
type AssessmentRepository struct {
	db *sqlx.DB
}

// NewAssessmentRepository constructs the repository.
func NewAssessmentRepository(db *sqlx.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

const assessmentColumns = `id, offering_id, title, type, max_marks, weightage, due_date, created_at, updated_at`

// Create inserts an assessment row.
func (r *AssessmentRepository) Create(ctx context.Context, assessment *models.Assessment) error {
	now := time.Now().UTC()
	if assessment.ID == "" {
		assessment.ID = uuid.NewString()
	}
	assessment.CreatedAt = now
	assessment.UpdatedAt = now
	query := `INSERT INTO assessments (id, offering_id, title, type, max_marks, weightage, due_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query,
		assessment.ID, assessment.OfferingID, assessment.Title, assessment.Type,
		assessment.MaxMarks, assessment.Weightage, assessment.DueDate,
		assessment.CreatedAt, assessment.UpdatedAt); err != nil {
		return fmt.Errorf("create assessment: %w", err)
	}
	return nil
}

// FindByID returns one assessment.
func (r *AssessmentRepository) FindByID(ctx context.Context, id string) (*models.Assessment, error) {
	var assessment models.Assessment
	query := fmt.Sprintf(`SELECT %s FROM assessments WHERE id = $1`, assessmentColumns)
	if err := r.db.GetContext(ctx, &assessment, query, id); err != nil {
		return nil, err
	}
	return &assessment, nil
}

// ListByOffering returns an offering's assessments in due-date order.
func (r *AssessmentRepository) ListByOffering(ctx context.Context, offeringID string) ([]models.Assessment, error) {
	query := fmt.Sprintf(`SELECT %s FROM assessments WHERE offering_id = $1 ORDER BY due_date NULLS LAST, created_at`, assessmentColumns)
	var assessments []models.Assessment
	if err := r.db.SelectContext(ctx, &assessments, query, offeringID); err != nil {
		return nil, fmt.Errorf("list assessments by offering: %w", err)
	}
	return assessments, nil
}

// MarksForStudent returns every assessment of an offering left-joined with
// one student's grade; ungraded assessments carry null marks.
func (r *AssessmentRepository) MarksForStudent(ctx context.Context, offeringID, studentID string) ([]models.StudentAssessmentMark, error) {
	query := `SELECT a.id AS assessment_id, a.title, a.type, a.max_marks, a.weightage, g.marks_obtained AS marks
        FROM assessments a
        LEFT JOIN grades g ON g.assessment_id = a.id AND g.student_id = $2
        WHERE a.offering_id = $1
        ORDER BY a.due_date NULLS LAST, a.created_at`
	var marks []models.StudentAssessmentMark
	if err := r.db.SelectContext(ctx, &marks, query, offeringID, studentID); err != nil {
		return nil, fmt.Errorf("list marks for student: %w", err)
	}
	return marks, nil
}

// UpsertGrade inserts or updates the grade for (assessment, student) in one
// atomic statement.
func (r *AssessmentRepository) UpsertGrade(ctx context.Context, grade *models.Grade) (*models.Grade, error) {
	now := time.Now().UTC()
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = now
	}
	if grade.GradedAt.IsZero() {
		grade.GradedAt = now
	}
	grade.UpdatedAt = now
	query := `INSERT INTO grades (id, assessment_id, student_id, marks_obtained, graded_by, graded_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (assessment_id, student_id)
DO UPDATE SET marks_obtained = EXCLUDED.marks_obtained, graded_by = EXCLUDED.graded_by, graded_at = EXCLUDED.graded_at, updated_at = EXCLUDED.updated_at
RETURNING id, assessment_id, student_id, marks_obtained, graded_by, graded_at, created_at, updated_at`
	var stored models.Grade
	if err := r.db.GetContext(ctx, &stored, query,
		grade.ID, grade.AssessmentID, grade.StudentID, grade.MarksObtained,
		grade.GradedBy, grade.GradedAt, grade.CreatedAt, grade.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert grade: %w", err)
	}
	return &stored, nil
}
