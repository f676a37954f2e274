package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/univista/sis-api/internal/dto"
	"github.com/univista/sis-api/internal/models"
	appErrors "github.com/univista/sis-api/pkg/errors"
)

type facultyResolver interface {
	FindByUserID(ctx context.Context, userID string) (*models.Faculty, error)
}

type studentResolver interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

type offeringLister interface {
	ListOfferingsByFaculty(ctx context.Context, facultyID string) ([]models.OfferingDetail, error)
}

type enrollmentReader interface {
	Roster(ctx context.Context, offeringID string) ([]models.RosterEntry, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.StudentEnrollmentRow, error)
	CountDistinctStudents(ctx context.Context, offeringIDs []string) (int, error)
}

type attendanceSummarizer interface {
	Summary(ctx context.Context, enrollmentID string) (*models.AttendanceSummary, error)
}

type studentMarksReader interface {
	MarksForStudent(ctx context.Context, offeringID, studentID string) ([]models.StudentAssessmentMark, error)
}

// DashboardService composes the faculty and student dashboard views by
// joining offerings, enrollments, attendance and grades. Both operations
// are read-only and fail atomically: a dangling reference anywhere aborts
// the whole response.
type DashboardService struct {
	faculties   facultyResolver
	students    studentResolver
	offerings   offeringLister
	enrollments enrollmentReader
	attendance  attendanceSummarizer
	assessments studentMarksReader
	cache       *CacheService
	logger      *zap.Logger
	cacheTTL    time.Duration
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Faculties   facultyResolver
	Students    studentResolver
	Offerings   offeringLister
	Enrollments enrollmentReader
	Attendance  attendanceSummarizer
	Assessments studentMarksReader
	Cache       *CacheService
	Logger      *zap.Logger
	CacheTTL    time.Duration
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DashboardService{
		faculties:   params.Faculties,
		students:    params.Students,
		offerings:   params.Offerings,
		enrollments: params.Enrollments,
		attendance:  params.Attendance,
		assessments: params.Assessments,
		cache:       params.Cache,
		logger:      logger,
		cacheTTL:    ttl,
	}
}

// Faculty returns the dashboard for the faculty member owned by the acting
// user identity. The second return value indicates cache utilisation.
func (s *DashboardService) Faculty(ctx context.Context, userID string) (*dto.FacultyDashboardResponse, bool, error) {
	faculty, err := s.faculties.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "faculty profile not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve faculty")
	}

	cacheKey := fmt.Sprintf("dash:faculty:%s", faculty.ID)
	if s.cache != nil {
		var cached dto.FacultyDashboardResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	summary, err := s.composeFacultyDashboard(ctx, faculty)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

func (s *DashboardService) composeFacultyDashboard(ctx context.Context, faculty *models.Faculty) (*dto.FacultyDashboardResponse, error) {
	offerings, err := s.offerings.ListOfferingsByFaculty(ctx, faculty.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offerings")
	}

	offeringIDs := make([]string, len(offerings))
	for i, offering := range offerings {
		offeringIDs[i] = offering.ID
	}

	distinctStudents, err := s.enrollments.CountDistinctStudents(ctx, offeringIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}

	courses := make([]dto.FacultyCourseSummary, 0, len(offerings))
	for _, offering := range offerings {
		course, err := s.composeOfferingSummary(ctx, offering)
		if err != nil {
			return nil, err
		}
		courses = append(courses, *course)
	}

	stats := dto.FacultyOverallStats{
		CoursesCount:  len(offerings),
		StudentsCount: distinctStudents,
	}
	if len(courses) > 0 {
		var attendanceSum, marksSum float64
		for _, course := range courses {
			attendanceSum += course.AvgAttendance
			marksSum += course.AvgMarks
		}
		stats.AvgAttendance = attendanceSum / float64(len(courses))
		stats.AvgMarks = marksSum / float64(len(courses))
	}

	return &dto.FacultyDashboardResponse{OverallStats: stats, Courses: courses}, nil
}

func (s *DashboardService) composeOfferingSummary(ctx context.Context, offering models.OfferingDetail) (*dto.FacultyCourseSummary, error) {
	roster, err := s.enrollments.Roster(ctx, offering.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	students := make([]dto.EnrolledStudentSummary, 0, len(roster))
	var attendanceSum, marksSum float64
	var assessmentCount int
	for _, entry := range roster {
		summary, err := s.attendance.Summary(ctx, entry.EnrollmentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
		}
		pct := summary.Percentage()

		marks, err := s.assessments.MarksForStudent(ctx, offering.ID, entry.StudentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
		}

		// Faculty view counts ungraded assessments as zero marks so the
		// pooled average reflects missing grades.
		assessments := make([]dto.AssessmentMarks, len(marks))
		for i, mark := range marks {
			obtained := 0.0
			if mark.Marks != nil {
				obtained = *mark.Marks
			}
			assessments[i] = dto.AssessmentMarks{
				AssessmentID:  mark.AssessmentID,
				Title:         mark.Title,
				Type:          mark.Type,
				MaxMarks:      mark.MaxMarks,
				Weightage:     mark.Weightage,
				MarksObtained: obtained,
			}
			marksSum += obtained
			assessmentCount++
		}

		attendanceSum += pct
		students = append(students, dto.EnrolledStudentSummary{
			StudentID:   entry.StudentID,
			UserID:      entry.UserID,
			FullName:    entry.FullName,
			Email:       entry.Email,
			ProfilePic:  entry.ProfilePic,
			Attendance:  pct,
			Assessments: assessments,
		})
	}

	course := &dto.FacultyCourseSummary{
		OfferingID:    offering.ID,
		CourseID:      offering.CourseID,
		CourseCode:    offering.CourseCode,
		CourseName:    offering.CourseName,
		Credits:       offering.Credits,
		Semester:      offering.Semester,
		AcademicYear:  offering.AcademicYear,
		Section:       offering.Section,
		StudentsCount: len(students),
		Students:      students,
	}
	if len(students) > 0 {
		course.AvgAttendance = attendanceSum / float64(len(students))
	}
	// Pooled mean over every (student, assessment) pair, not an average of
	// per-student averages.
	if assessmentCount > 0 {
		course.AvgMarks = marksSum / float64(assessmentCount)
	}
	return course, nil
}

// Student returns the dashboard for the student owned by the acting user
// identity.
func (s *DashboardService) Student(ctx context.Context, userID string) (*dto.StudentDashboardResponse, bool, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve student")
	}

	cacheKey := fmt.Sprintf("dash:student:%s", student.ID)
	if s.cache != nil {
		var cached dto.StudentDashboardResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	summary, err := s.composeStudentDashboard(ctx, student)
	if err != nil {
		return nil, false, err
	}
	s.persistCache(ctx, cacheKey, summary)
	return summary, false, nil
}

func (s *DashboardService) composeStudentDashboard(ctx context.Context, student *models.Student) (*dto.StudentDashboardResponse, error) {
	enrollments, err := s.enrollments.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}

	courses := make([]dto.StudentCourseSummary, 0, len(enrollments))
	for _, enrollment := range enrollments {
		summary, err := s.attendance.Summary(ctx, enrollment.EnrollmentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
		}

		marks, err := s.assessments.MarksForStudent(ctx, enrollment.OfferingID, student.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
		}

		// The student's own average counts only graded work; an ungraded
		// assessment stays null and does not pull the average down.
		assessments := make([]dto.StudentAssessmentMarks, len(marks))
		var gradedSum float64
		var gradedCount int
		for i, mark := range marks {
			assessments[i] = dto.StudentAssessmentMarks{
				AssessmentID:  mark.AssessmentID,
				Title:         mark.Title,
				Type:          mark.Type,
				MaxMarks:      mark.MaxMarks,
				Weightage:     mark.Weightage,
				MarksObtained: mark.Marks,
			}
			if mark.Marks != nil {
				gradedSum += *mark.Marks
				gradedCount++
			}
		}

		course := dto.StudentCourseSummary{
			CourseID:   enrollment.CourseID,
			CourseCode: enrollment.CourseCode,
			CourseName: enrollment.CourseName,
			Credits:    enrollment.Credits,
			Faculty: dto.CourseFacultyInfo{
				ID:         enrollment.FacultyID,
				FullName:   enrollment.FacultyName,
				Email:      enrollment.FacultyEmail,
				ProfilePic: enrollment.FacultyProfilePic,
			},
			Attendance:  summary.Percentage(),
			Assessments: assessments,
		}
		if gradedCount > 0 {
			course.AvgMarks = gradedSum / float64(gradedCount)
		}
		courses = append(courses, course)
	}

	stats := dto.StudentOverallStats{CoursesCount: len(courses)}
	if len(courses) > 0 {
		var attendanceSum, marksSum float64
		for _, course := range courses {
			attendanceSum += course.Attendance
			marksSum += course.AvgMarks
		}
		stats.AvgAttendance = attendanceSum / float64(len(courses))
		stats.AvgMarks = marksSum / float64(len(courses))
	}

	return &dto.StudentDashboardResponse{
		Student: dto.StudentInfo{
			ID:              student.ID,
			EnrollmentNo:    student.EnrollmentNo,
			BatchYear:       student.BatchYear,
			CurrentSemester: student.CurrentSemester,
			Address:         student.Address,
		},
		OverallStats: stats,
		Courses:      courses,
	}, nil
}

func (s *DashboardService) persistCache(ctx context.Context, key string, value interface{}) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil && s.logger != nil {
		s.logger.Warn("dashboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}
