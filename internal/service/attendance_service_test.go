package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/univista/sis-api/internal/dto"
	"github.com/univista/sis-api/internal/models"
	appErrors "github.com/univista/sis-api/pkg/errors"
)

type fakeAttendanceLog struct {
	upserts   []models.Attendance
	failFor   map[string]error
	lastDates []time.Time
}

func (f *fakeAttendanceLog) Upsert(_ context.Context, record *models.Attendance) (*models.Attendance, error) {
	if err, ok := f.failFor[record.EnrollmentID]; ok {
		return nil, err
	}
	f.upserts = append(f.upserts, *record)
	f.lastDates = append(f.lastDates, record.Date)
	return record, nil
}

func attendanceFixture(log *fakeAttendanceLog) *AttendanceService {
	return NewAttendanceService(
		&fakeFaculties{faculty: &models.Faculty{ID: "fac-1", UserID: "user-1"}},
		&fakeOfferings{byID: map[string]*models.CourseOffering{
			testOfferingA: {ID: testOfferingA, FacultyID: "fac-1"},
			testOfferingB: {ID: testOfferingB, FacultyID: "fac-2"},
		}},
		&fakeEnrollments{ids: map[string][]string{
			testOfferingA: {testEnrollment1, testEnrollment2},
		}},
		log,
		nil,
		nil,
		zap.NewNop(),
	)
}

func TestAttendanceServiceRecordMarksBatch(t *testing.T) {
	log := &fakeAttendanceLog{}
	svc := attendanceFixture(log)

	result, err := svc.Record(context.Background(), "user-1", dto.BatchAttendanceRequest{
		OfferingID: testOfferingA,
		Date:       "2025-03-10T15:04:05Z",
		Entries: []dto.BatchAttendanceEntry{
			{EnrollmentID: testEnrollment1, Status: "present"},
			{EnrollmentID: testEnrollment2, Status: "absent"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Marked)
	require.Len(t, result.Records, 2)
	assert.Equal(t, testEnrollment1, result.Records[0].EnrollmentID)
	assert.Empty(t, result.Skipped)
	assert.Equal(t, "2025-03-10", result.Date)
	require.Len(t, log.upserts, 2)
	assert.Equal(t, models.AttendancePresent, log.upserts[0].Status)
	assert.Equal(t, "fac-1", log.upserts[0].MarkedBy)
	// Timestamps are truncated to midnight UTC.
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), log.upserts[0].Date)
}

func TestAttendanceServiceRecordSkipsBadEntries(t *testing.T) {
	log := &fakeAttendanceLog{}
	svc := attendanceFixture(log)

	result, err := svc.Record(context.Background(), "user-1", dto.BatchAttendanceRequest{
		OfferingID: testOfferingA,
		Date:       "2025-03-10",
		Entries: []dto.BatchAttendanceEntry{
			{EnrollmentID: testEnrollment1, Status: "late"},
			{EnrollmentID: testEnrollment3, Status: "present"},
			{EnrollmentID: testEnrollment2, Status: "present"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Marked)
	require.Len(t, result.Skipped, 2)
	assert.Equal(t, testEnrollment1, result.Skipped[0].EnrollmentID)
	assert.Equal(t, skipReasonInvalidStatus, result.Skipped[0].Reason)
	assert.Equal(t, testEnrollment3, result.Skipped[1].EnrollmentID)
	assert.Equal(t, skipReasonNotEnrolled, result.Skipped[1].Reason)
	require.Len(t, log.upserts, 1)
	assert.Equal(t, testEnrollment2, log.upserts[0].EnrollmentID)
}

func TestAttendanceServiceRecordIsolatesMalformedEntries(t *testing.T) {
	log := &fakeAttendanceLog{}
	svc := attendanceFixture(log)

	result, err := svc.Record(context.Background(), "user-1", dto.BatchAttendanceRequest{
		OfferingID: testOfferingA,
		Date:       "2025-03-10",
		Entries: []dto.BatchAttendanceEntry{
			{EnrollmentID: testEnrollment1, Status: "present"},
			{EnrollmentID: "not-a-uuid", Status: "present"},
			{EnrollmentID: testEnrollment2, Status: ""},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Marked)
	require.Len(t, result.Skipped, 2)
	assert.Equal(t, "not-a-uuid", result.Skipped[0].EnrollmentID)
	assert.Equal(t, skipReasonNotEnrolled, result.Skipped[0].Reason)
	assert.Equal(t, testEnrollment2, result.Skipped[1].EnrollmentID)
	assert.Equal(t, skipReasonInvalidStatus, result.Skipped[1].Reason)
	require.Len(t, log.upserts, 1)
	assert.Equal(t, testEnrollment1, log.upserts[0].EnrollmentID)
}

func TestAttendanceServiceRecordIsolatesWriteFailures(t *testing.T) {
	log := &fakeAttendanceLog{failFor: map[string]error{testEnrollment1: errors.New("deadlock")}}
	svc := attendanceFixture(log)

	result, err := svc.Record(context.Background(), "user-1", dto.BatchAttendanceRequest{
		OfferingID: testOfferingA,
		Date:       "2025-03-10",
		Entries: []dto.BatchAttendanceEntry{
			{EnrollmentID: testEnrollment1, Status: "present"},
			{EnrollmentID: testEnrollment2, Status: "present"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Marked)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, skipReasonWriteFailed, result.Skipped[0].Reason)
}

func TestAttendanceServiceRecordRejectsForeignOffering(t *testing.T) {
	svc := attendanceFixture(&fakeAttendanceLog{})

	_, err := svc.Record(context.Background(), "user-1", dto.BatchAttendanceRequest{
		OfferingID: testOfferingB,
		Date:       "2025-03-10",
		Entries:    []dto.BatchAttendanceEntry{{EnrollmentID: testEnrollment1, Status: "present"}},
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Status)
}

func TestAttendanceServiceRecordValidatesShapeBeforeWrites(t *testing.T) {
	log := &fakeAttendanceLog{}
	svc := attendanceFixture(log)

	_, err := svc.Record(context.Background(), "user-1", dto.BatchAttendanceRequest{
		OfferingID: testOfferingA,
		Date:       "2025-03-10",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.Empty(t, log.upserts)
}

func TestAttendanceServiceRecordIdempotentRemark(t *testing.T) {
	log := &fakeAttendanceLog{}
	svc := attendanceFixture(log)

	req := dto.BatchAttendanceRequest{
		OfferingID: testOfferingA,
		Date:       "2025-03-10",
		Entries:    []dto.BatchAttendanceEntry{{EnrollmentID: testEnrollment1, Status: "absent"}},
	}
	_, err := svc.Record(context.Background(), "user-1", req)
	require.NoError(t, err)

	req.Entries[0].Status = "present"
	result, err := svc.Record(context.Background(), "user-1", req)
	require.NoError(t, err)

	// Re-marking the same day routes through the same upsert, not an error.
	assert.Equal(t, 1, result.Marked)
	require.Len(t, log.upserts, 2)
	assert.Equal(t, log.upserts[0].Date, log.upserts[1].Date)
	assert.Equal(t, models.AttendanceAbsent, log.upserts[0].Status)
	assert.Equal(t, models.AttendancePresent, log.upserts[1].Status)
}
