package models

import "time"

// Student is the role-specialization record for a user with the student role.
type Student struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	EnrollmentNo    string    `db:"enrollment_no" json:"enrollment_no"`
	BatchYear       int       `db:"batch_year" json:"batch_year"`
	CurrentSemester int       `db:"current_semester" json:"current_semester"`
	Address         string    `db:"address" json:"address"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}
