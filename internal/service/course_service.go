package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/univista/sis-api/internal/models"
	appErrors "github.com/univista/sis-api/pkg/errors"
)

type courseLister interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	FindOfferingByID(ctx context.Context, id string) (*models.CourseOffering, error)
	ListOfferingsByFaculty(ctx context.Context, facultyID string) ([]models.OfferingDetail, error)
}

type rosterReader interface {
	Roster(ctx context.Context, offeringID string) ([]models.RosterEntry, error)
}

// CourseService serves catalog listings, a faculty's offerings and
// offering rosters.
type CourseService struct {
	courses   courseLister
	faculties facultyResolver
	rosters   rosterReader
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(courses courseLister, faculties facultyResolver, rosters rosterReader, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{courses: courses, faculties: faculties, rosters: rosters, logger: logger}
}

// List returns a page of the course catalog with the total match count.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	courses, total, err := s.courses.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}

// MyOfferings lists the offerings taught by the acting faculty user.
func (s *CourseService) MyOfferings(ctx context.Context, userID string) ([]models.OfferingDetail, error) {
	faculty, err := s.faculties.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve faculty")
	}
	offerings, err := s.courses.ListOfferingsByFaculty(ctx, faculty.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offerings")
	}
	return offerings, nil
}

// Roster returns the enrolled students of an offering the acting faculty
// teaches.
func (s *CourseService) Roster(ctx context.Context, userID, offeringID string) ([]models.RosterEntry, error) {
	faculty, err := s.faculties.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve faculty")
	}
	offering, err := s.courses.FindOfferingByID(ctx, offeringID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "offering not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offering")
	}
	if offering.FacultyID != faculty.ID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "offering not found")
	}
	roster, err := s.rosters.Roster(ctx, offeringID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	return roster, nil
}
