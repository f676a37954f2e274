package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/univista/sis-api/internal/models"
	appErrors "github.com/univista/sis-api/pkg/errors"
)

func reportFixture() *ReportService {
	return NewReportService(
		&fakeFaculties{faculty: &models.Faculty{ID: "fac-1", UserID: "user-1"}},
		&fakeOfferings{list: []models.OfferingDetail{{
			CourseOffering: models.CourseOffering{ID: testOfferingA, FacultyID: "fac-1", AcademicYear: "2025", Section: "A"},
			CourseCode:     "CS101",
			CourseName:     "Intro to CS",
		}}},
		&fakeEnrollments{rosters: map[string][]models.RosterEntry{
			testOfferingA: {
				{EnrollmentID: testEnrollment1, StudentID: "stu-1", EnrollmentNo: "EN-001", FullName: "Asha Rao", Email: "asha@stu.univista.edu"},
			},
		}},
		&fakeAttendanceHistory{summaries: map[string]*models.AttendanceSummary{
			testEnrollment1: {Total: 4, Present: 3},
		}},
		&fakeMarks{marks: map[string][]models.StudentAssessmentMark{
			testOfferingA + "|stu-1": marksOf(ptr(90), nil),
		}},
		zap.NewNop(),
	)
}

func TestReportServiceOfferingReportCSV(t *testing.T) {
	svc := reportFixture()

	report, err := svc.OfferingReport(context.Background(), "user-1", testOfferingA, ReportFormatCSV)
	require.NoError(t, err)

	assert.Equal(t, "text/csv", report.ContentType)
	assert.Equal(t, "report-CS101-A-2025.csv", report.Filename)

	// Spreadsheet-friendly BOM precedes the header row.
	content, hadBOM := strings.CutPrefix(string(report.Content), "\ufeff")
	assert.True(t, hadBOM)
	lines := strings.Split(strings.TrimSpace(content), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Enrollment No,Student,Email,Attendance %,Avg Marks,Graded", lines[0])
	// 3 of 4 sessions attended; only the graded assessment counts.
	assert.Equal(t, "EN-001,Asha Rao,asha@stu.univista.edu,75.0,90.0,1/2", lines[1])
}

func TestReportServiceOfferingReportPDF(t *testing.T) {
	svc := reportFixture()

	report, err := svc.OfferingReport(context.Background(), "user-1", testOfferingA, ReportFormatPDF)
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", report.ContentType)
	assert.True(t, strings.HasPrefix(string(report.Content), "%PDF"))
}

func TestReportServiceOfferingReportRejectsUnknownFormat(t *testing.T) {
	svc := reportFixture()

	_, err := svc.OfferingReport(context.Background(), "user-1", testOfferingA, "xlsx")
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
}

func TestReportServiceOfferingReportForeignOffering(t *testing.T) {
	svc := reportFixture()

	_, err := svc.OfferingReport(context.Background(), "user-1", testOfferingB, ReportFormatCSV)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Status)
}
