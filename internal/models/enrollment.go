package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusEnrolled  EnrollmentStatus = "enrolled"
	EnrollmentStatusDropped   EnrollmentStatus = "dropped"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
)

// Enrollment links one student to one course offering.
type Enrollment struct {
	ID         string           `db:"id" json:"id"`
	StudentID  string           `db:"student_id" json:"student_id"`
	OfferingID string           `db:"offering_id" json:"offering_id"`
	Status     EnrollmentStatus `db:"status" json:"status"`
	CreatedAt  time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updated_at"`
}

// RosterEntry is one enrollment joined with the student's user profile.
type RosterEntry struct {
	EnrollmentID string  `db:"enrollment_id" json:"enrollment_id"`
	StudentID    string  `db:"student_id" json:"student_id"`
	UserID       string  `db:"user_id" json:"user_id"`
	EnrollmentNo string  `db:"enrollment_no" json:"enrollment_no"`
	FullName     string  `db:"full_name" json:"full_name"`
	Email        string  `db:"email" json:"email"`
	ProfilePic   *string `db:"profile_pic" json:"profile_pic,omitempty"`
}

// StudentEnrollmentRow is one of a student's enrollments joined with the
// offering, its course and the teaching faculty's user profile.
type StudentEnrollmentRow struct {
	EnrollmentID      string  `db:"enrollment_id" json:"enrollment_id"`
	OfferingID        string  `db:"offering_id" json:"offering_id"`
	CourseID          string  `db:"course_id" json:"course_id"`
	CourseCode        string  `db:"course_code" json:"course_code"`
	CourseName        string  `db:"course_name" json:"course_name"`
	Credits           int     `db:"credits" json:"credits"`
	FacultyID         string  `db:"faculty_id" json:"faculty_id"`
	FacultyName       string  `db:"faculty_name" json:"faculty_name"`
	FacultyEmail      string  `db:"faculty_email" json:"faculty_email"`
	FacultyProfilePic *string `db:"faculty_profile_pic" json:"faculty_profile_pic,omitempty"`
}
