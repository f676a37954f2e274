package dto

import "github.com/univista/sis-api/internal/models"

// BatchAttendanceRequest records attendance for one offering on one day.
type BatchAttendanceRequest struct {
	OfferingID string                 `json:"offering_id" validate:"required,uuid4"`
	Date       string                 `json:"date" validate:"required"`
	Entries    []BatchAttendanceEntry `json:"entries" validate:"required,min=1"`
}

// BatchAttendanceEntry is one student's mark within a batch. Entries carry
// no validate tags: a malformed enrollment id or status must skip that
// entry, not fail the whole batch, so the checks live in the service loop.
type BatchAttendanceEntry struct {
	EnrollmentID string `json:"enrollment_id"`
	Status       string `json:"status"`
}

// SkippedAttendanceEntry reports an entry that was not recorded and why.
type SkippedAttendanceEntry struct {
	EnrollmentID string `json:"enrollment_id"`
	Reason       string `json:"reason"`
}

// BatchAttendanceResponse summarizes a batch write.
type BatchAttendanceResponse struct {
	OfferingID string                   `json:"offering_id"`
	Date       string                   `json:"date"`
	Marked     int                      `json:"marked"`
	Records    []models.Attendance      `json:"records"`
	Skipped    []SkippedAttendanceEntry `json:"skipped"`
}
