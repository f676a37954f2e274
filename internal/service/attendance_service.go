package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/univista/sis-api/internal/dto"
	"github.com/univista/sis-api/internal/models"
	appErrors "github.com/univista/sis-api/pkg/errors"
)

const (
	skipReasonInvalidStatus = "invalid status"
	skipReasonNotEnrolled   = "enrollment does not belong to offering"
	skipReasonWriteFailed   = "failed to record attendance"
)

type offeringFinder interface {
	FindOfferingByID(ctx context.Context, id string) (*models.CourseOffering, error)
}

type enrollmentIDLister interface {
	ListIDsByOffering(ctx context.Context, offeringID string) ([]string, error)
}

type attendanceWriter interface {
	Upsert(ctx context.Context, record *models.Attendance) (*models.Attendance, error)
}

// AttendanceService records attendance batches for faculty. Request shape
// is validated up front; after that each entry succeeds or is skipped on
// its own, so one bad entry never poisons the rest of the batch.
type AttendanceService struct {
	faculties   facultyResolver
	offerings   offeringFinder
	enrollments enrollmentIDLister
	attendance  attendanceWriter
	cache       *CacheService
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(
	faculties facultyResolver,
	offerings offeringFinder,
	enrollments enrollmentIDLister,
	attendance attendanceWriter,
	cache *CacheService,
	validate *validator.Validate,
	logger *zap.Logger,
) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		faculties:   faculties,
		offerings:   offerings,
		enrollments: enrollments,
		attendance:  attendance,
		cache:       cache,
		validate:    validate,
		logger:      logger,
	}
}

// Record writes one batch of attendance marks for the offering taught by
// the acting faculty user. The date is truncated to its UTC day so one
// row per enrollment per day holds regardless of the submitted time.
func (s *AttendanceService) Record(ctx context.Context, userID string, req dto.BatchAttendanceRequest) (*dto.BatchAttendanceResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	day, err := parseAttendanceDate(req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD or RFC 3339")
	}

	faculty, err := s.faculties.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve faculty")
	}

	offering, err := s.offerings.FindOfferingByID(ctx, req.OfferingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "offering not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offering")
	}
	// An offering taught by someone else is indistinguishable from a
	// missing one, so ownership failures don't leak existence.
	if offering.FacultyID != faculty.ID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "offering not found")
	}

	enrollmentIDs, err := s.enrollments.ListIDsByOffering(ctx, req.OfferingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}
	enrolled := make(map[string]struct{}, len(enrollmentIDs))
	for _, id := range enrollmentIDs {
		enrolled[id] = struct{}{}
	}

	result := &dto.BatchAttendanceResponse{
		OfferingID: req.OfferingID,
		Date:       day.Format("2006-01-02"),
		Records:    []models.Attendance{},
		Skipped:    []dto.SkippedAttendanceEntry{},
	}
	for _, entry := range req.Entries {
		status := models.AttendanceStatus(entry.Status)
		if !status.Valid() {
			result.Skipped = append(result.Skipped, dto.SkippedAttendanceEntry{
				EnrollmentID: entry.EnrollmentID,
				Reason:       skipReasonInvalidStatus,
			})
			continue
		}
		if _, ok := enrolled[entry.EnrollmentID]; !ok {
			result.Skipped = append(result.Skipped, dto.SkippedAttendanceEntry{
				EnrollmentID: entry.EnrollmentID,
				Reason:       skipReasonNotEnrolled,
			})
			continue
		}

		record, err := s.attendance.Upsert(ctx, &models.Attendance{
			EnrollmentID: entry.EnrollmentID,
			Date:         day,
			Status:       status,
			MarkedBy:     faculty.ID,
		})
		if err != nil {
			s.logger.Warn("attendance upsert failed",
				zap.String("offering_id", req.OfferingID),
				zap.String("enrollment_id", entry.EnrollmentID),
				zap.Error(err))
			result.Skipped = append(result.Skipped, dto.SkippedAttendanceEntry{
				EnrollmentID: entry.EnrollmentID,
				Reason:       skipReasonWriteFailed,
			})
			continue
		}
		result.Records = append(result.Records, *record)
		result.Marked++
	}

	if result.Marked > 0 && s.cache != nil {
		if err := s.cache.Invalidate(ctx, "dash:*"); err != nil {
			s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
		}
	}
	return result, nil
}

// parseAttendanceDate accepts a plain date or an RFC 3339 timestamp and
// normalizes it to midnight UTC.
func parseAttendanceDate(raw string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		t, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, err
		}
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
