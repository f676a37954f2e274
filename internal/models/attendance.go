package models

import "time"

// AttendanceStatus is the marking domain for one attendance record.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
)

// Valid reports whether the status is part of the allowed domain.
func (s AttendanceStatus) Valid() bool {
	return s == AttendancePresent || s == AttendanceAbsent
}

// Attendance is one record per (enrollment, calendar day). The date column
// stores the UTC day boundary; (enrollment_id, date) is unique at the
// storage layer so a re-mark updates in place.
type Attendance struct {
	ID           string           `db:"id" json:"id"`
	EnrollmentID string           `db:"enrollment_id" json:"enrollment_id"`
	Date         time.Time        `db:"date" json:"date"`
	Status       AttendanceStatus `db:"status" json:"status"`
	MarkedBy     string           `db:"marked_by" json:"marked_by"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceSummary aggregates one enrollment's attendance records.
type AttendanceSummary struct {
	Total   int `db:"total" json:"total"`
	Present int `db:"present" json:"present"`
}

// Percentage returns present/total*100, defined as 0 when no records exist.
func (s AttendanceSummary) Percentage() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Present) / float64(s.Total) * 100
}
