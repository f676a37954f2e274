package models

import "time"

// Faculty is the role-specialization record for a user with the faculty role.
type Faculty struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"user_id"`
	EmployeeNo     string     `db:"employee_no" json:"employee_no"`
	Designation    *string    `db:"designation" json:"designation,omitempty"`
	Specialization *string    `db:"specialization" json:"specialization,omitempty"`
	JoiningDate    *time.Time `db:"joining_date" json:"joining_date,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}
