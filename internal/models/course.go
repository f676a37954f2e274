package models

import "time"

// Course is a catalog entry owned by a department.
type Course struct {
	ID           string    `db:"id" json:"id"`
	CourseCode   string    `db:"course_code" json:"course_code"`
	CourseName   string    `db:"course_name" json:"course_name"`
	Credits      int       `db:"credits" json:"credits"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CourseFilter captures filtering criteria for listing courses.
type CourseFilter struct {
	Search       string
	DepartmentID string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// CourseOffering is the schedulable (course, faculty, semester, year,
// section) instance a student enrolls into.
type CourseOffering struct {
	ID           string    `db:"id" json:"id"`
	CourseID     string    `db:"course_id" json:"course_id"`
	FacultyID    string    `db:"faculty_id" json:"faculty_id"`
	Semester     int       `db:"semester" json:"semester"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Section      string    `db:"section" json:"section"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// OfferingDetail enriches CourseOffering with catalog fields.
type OfferingDetail struct {
	CourseOffering
	CourseCode string `db:"course_code" json:"course_code"`
	CourseName string `db:"course_name" json:"course_name"`
	Credits    int    `db:"credits" json:"credits"`
}
