package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/univista/sis-api/internal/models"
)

// CourseRepository handles persistence for the course catalog and course
// offerings.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns catalog courses matching the provided filter.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(course_code ILIKE $%d OR course_name ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.DepartmentID != "" {
		where = append(where, fmt.Sprintf("department_id = $%d", len(args)+1))
		args = append(args, filter.DepartmentID)
	}
	whereClause := strings.Join(where, " AND ")

	allowedSort := map[string]string{
		"course_code": "course_code",
		"course_name": "course_name",
		"credits":     "credits",
		"created_at":  "created_at",
	}
	sortColumn, ok := allowedSort[filter.SortBy]
	if !ok {
		sortColumn = "course_code"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, course_code, course_name, credits, department_id, created_at, updated_at
FROM courses WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`, whereClause, sortColumn, order, size, offset)

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM courses WHERE %s`, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// FindOfferingByID returns one course offering.
func (r *CourseRepository) FindOfferingByID(ctx context.Context, id string) (*models.CourseOffering, error) {
	var offering models.CourseOffering
	query := `SELECT id, course_id, faculty_id, semester, academic_year, section, created_at, updated_at
FROM course_offerings WHERE id = $1`
	if err := r.db.GetContext(ctx, &offering, query, id); err != nil {
		return nil, err
	}
	return &offering, nil
}

// ListOfferingsByFaculty returns every offering taught by one faculty
// member, joined with catalog fields.
func (r *CourseRepository) ListOfferingsByFaculty(ctx context.Context, facultyID string) ([]models.OfferingDetail, error) {
	query := `SELECT o.id, o.course_id, o.faculty_id, o.semester, o.academic_year, o.section, o.created_at, o.updated_at,
        c.course_code, c.course_name, c.credits
        FROM course_offerings o
        JOIN courses c ON c.id = o.course_id
        WHERE o.faculty_id = $1
        ORDER BY c.course_code, o.section`
	var offerings []models.OfferingDetail
	if err := r.db.SelectContext(ctx, &offerings, query, facultyID); err != nil {
		return nil, fmt.Errorf("list offerings by faculty: %w", err)
	}
	return offerings, nil
}
