package models

import "time"

// University holds institution-level settings, including the email suffix
// patterns used to derive a registrant's role from their email domain.
type University struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Address       string    `db:"address" json:"address"`
	Email         string    `db:"email" json:"email"`
	StudentSuffix string    `db:"student_suffix" json:"student_suffix"`
	FacultySuffix string    `db:"faculty_suffix" json:"faculty_suffix"`
	AdminPassword string    `db:"admin_password_hash" json:"-"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Department groups courses and users under a unique code.
type Department struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Code      string    `db:"code" json:"code"`
	HeadID    *string   `db:"head_faculty_id" json:"head_faculty_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
