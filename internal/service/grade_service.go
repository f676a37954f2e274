package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/univista/sis-api/internal/dto"
	"github.com/univista/sis-api/internal/models"
	appErrors "github.com/univista/sis-api/pkg/errors"
)

type assessmentStore interface {
	Create(ctx context.Context, assessment *models.Assessment) error
	FindByID(ctx context.Context, id string) (*models.Assessment, error)
	ListByOffering(ctx context.Context, offeringID string) ([]models.Assessment, error)
	UpsertGrade(ctx context.Context, grade *models.Grade) (*models.Grade, error)
}

type enrollmentChecker interface {
	ExistsForOffering(ctx context.Context, studentID, offeringID string) (bool, error)
}

// GradeService manages assessments and grade entry for faculty. Every
// write verifies the acting faculty owns the target offering first.
type GradeService struct {
	faculties   facultyResolver
	offerings   offeringFinder
	enrollments enrollmentChecker
	assessments assessmentStore
	cache       *CacheService
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewGradeService constructs a GradeService.
func NewGradeService(
	faculties facultyResolver,
	offerings offeringFinder,
	enrollments enrollmentChecker,
	assessments assessmentStore,
	cache *CacheService,
	validate *validator.Validate,
	logger *zap.Logger,
) *GradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		faculties:   faculties,
		offerings:   offerings,
		enrollments: enrollments,
		assessments: assessments,
		cache:       cache,
		validate:    validate,
		logger:      logger,
	}
}

// CreateAssessment declares a graded component on an offering the acting
// faculty teaches.
func (s *GradeService) CreateAssessment(ctx context.Context, userID string, req dto.CreateAssessmentRequest) (*models.Assessment, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	assessmentType := models.AssessmentType(req.Type)
	if !assessmentType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "type must be one of exam, quiz, assignment, project")
	}

	if _, err := s.resolveOwnedOffering(ctx, userID, req.OfferingID); err != nil {
		return nil, err
	}

	assessment := &models.Assessment{
		ID:         uuid.NewString(),
		OfferingID: req.OfferingID,
		Title:      req.Title,
		Type:       assessmentType,
		MaxMarks:   req.MaxMarks,
		Weightage:  req.Weightage,
	}
	if req.DueDate != nil {
		due, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "due_date must be YYYY-MM-DD")
		}
		assessment.DueDate = &due
	}
	if err := s.assessments.Create(ctx, assessment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assessment")
	}
	return assessment, nil
}

// ListAssessments returns every assessment of an offering the acting
// faculty teaches.
func (s *GradeService) ListAssessments(ctx context.Context, userID, offeringID string) ([]models.Assessment, error) {
	if _, err := s.resolveOwnedOffering(ctx, userID, offeringID); err != nil {
		return nil, err
	}
	assessments, err := s.assessments.ListByOffering(ctx, offeringID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assessments")
	}
	return assessments, nil
}

// EnterGrade records a student's marks on an assessment. Re-grading the
// same (assessment, student) pair overwrites the stored marks.
func (s *GradeService) EnterGrade(ctx context.Context, userID string, req dto.EnterGradeRequest) (*models.Grade, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}

	assessment, err := s.assessments.FindByID(ctx, req.AssessmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assessment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assessment")
	}

	faculty, err := s.resolveOwnedOffering(ctx, userID, assessment.OfferingID)
	if err != nil {
		return nil, err
	}

	if req.MarksObtained > assessment.MaxMarks {
		return nil, appErrors.Clone(appErrors.ErrValidation, "marks_obtained exceeds the assessment's max marks")
	}

	enrolled, err := s.enrollments.ExistsForOffering(ctx, req.StudentID, assessment.OfferingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !enrolled {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "student is not enrolled in this offering")
	}

	grade, err := s.assessments.UpsertGrade(ctx, &models.Grade{
		ID:            uuid.NewString(),
		AssessmentID:  req.AssessmentID,
		StudentID:     req.StudentID,
		MarksObtained: req.MarksObtained,
		GradedBy:      faculty.ID,
		GradedAt:      time.Now().UTC(),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record grade")
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, "dash:*"); err != nil {
			s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
		}
	}
	return grade, nil
}

// resolveOwnedOffering loads the offering and verifies the acting user's
// faculty record teaches it. Foreign offerings read as not found.
func (s *GradeService) resolveOwnedOffering(ctx context.Context, userID, offeringID string) (*models.Faculty, error) {
	faculty, err := s.faculties.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve faculty")
	}
	offering, err := s.offerings.FindOfferingByID(ctx, offeringID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "offering not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offering")
	}
	if offering.FacultyID != faculty.ID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "offering not found")
	}
	return faculty, nil
}
