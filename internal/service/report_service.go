package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/univista/sis-api/internal/models"
	appErrors "github.com/univista/sis-api/pkg/errors"
	"github.com/univista/sis-api/pkg/export"
)

// ReportFormat selects the export encoding for offering reports.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// Report is a rendered export with its HTTP delivery metadata.
type Report struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ReportService renders an offering's roster standing (attendance and
// grade averages per student) into downloadable CSV or PDF.
type ReportService struct {
	faculties   facultyResolver
	offerings   offeringLister
	enrollments enrollmentReader
	attendance  attendanceSummarizer
	assessments studentMarksReader
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	logger      *zap.Logger
}

// NewReportService constructs a ReportService.
func NewReportService(
	faculties facultyResolver,
	offerings offeringLister,
	enrollments enrollmentReader,
	attendance attendanceSummarizer,
	assessments studentMarksReader,
	logger *zap.Logger,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		faculties:   faculties,
		offerings:   offerings,
		enrollments: enrollments,
		attendance:  attendance,
		assessments: assessments,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		logger:      logger,
	}
}

var reportHeaders = []string{"Enrollment No", "Student", "Email", "Attendance %", "Avg Marks", "Graded"}

// OfferingReport renders the standing of every student enrolled in one of
// the acting faculty's offerings. The average column uses graded work
// only, matching what the students see on their own dashboards.
func (s *ReportService) OfferingReport(ctx context.Context, userID, offeringID string, format ReportFormat) (*Report, error) {
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	faculty, err := s.faculties.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "faculty profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve faculty")
	}

	offerings, err := s.offerings.ListOfferingsByFaculty(ctx, faculty.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load offerings")
	}
	var offering *models.OfferingDetail
	for i := range offerings {
		if offerings[i].ID == offeringID {
			offering = &offerings[i]
			break
		}
	}
	if offering == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "offering not found")
	}

	roster, err := s.enrollments.Roster(ctx, offeringID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	dataset := export.Dataset{Headers: reportHeaders, Rows: make([]map[string]string, 0, len(roster))}
	for _, entry := range roster {
		summary, err := s.attendance.Summary(ctx, entry.EnrollmentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
		}
		marks, err := s.assessments.MarksForStudent(ctx, offeringID, entry.StudentID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
		}

		var gradedSum float64
		var gradedCount int
		for _, mark := range marks {
			if mark.Marks != nil {
				gradedSum += *mark.Marks
				gradedCount++
			}
		}
		avgMarks := 0.0
		if gradedCount > 0 {
			avgMarks = gradedSum / float64(gradedCount)
		}

		dataset.Rows = append(dataset.Rows, map[string]string{
			"Enrollment No": entry.EnrollmentNo,
			"Student":       entry.FullName,
			"Email":         entry.Email,
			"Attendance %":  fmt.Sprintf("%.1f", summary.Percentage()),
			"Avg Marks":     fmt.Sprintf("%.1f", avgMarks),
			"Graded":        fmt.Sprintf("%d/%d", gradedCount, len(marks)),
		})
	}

	title := fmt.Sprintf("%s %s - %s %s", offering.CourseCode, offering.Section, offering.AcademicYear, offering.CourseName)
	basename := fmt.Sprintf("report-%s-%s-%s", offering.CourseCode, offering.Section, offering.AcademicYear)

	switch format {
	case ReportFormatPDF:
		content, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &Report{Content: content, ContentType: "application/pdf", Filename: basename + ".pdf"}, nil
	default:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &Report{Content: content, ContentType: "text/csv", Filename: basename + ".csv"}, nil
	}
}
