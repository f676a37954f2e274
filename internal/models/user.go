package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleFaculty UserRole = "faculty"
	RoleAdmin   UserRole = "admin"
)

// User is the root identity record. Role is immutable after registration;
// the Student or Faculty specialization row is lifecycle-bound to it.
type User struct {
	ID           string     `db:"id" json:"id"`
	FullName     string     `db:"full_name" json:"full_name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         UserRole   `db:"role" json:"role"`
	ProfilePic   *string    `db:"profile_pic" json:"profile_pic,omitempty"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	DOB          *time.Time `db:"dob" json:"dob,omitempty"`
	UniversityID string     `db:"university_id" json:"university_id"`
	DepartmentID *string    `db:"department_id" json:"department_id,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
