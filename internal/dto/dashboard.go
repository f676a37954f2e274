package dto

import "github.com/univista/sis-api/internal/models"

// FacultyDashboardResponse is the denormalized view for a faculty member:
// every offering they teach with its roster, attendance and grade rollups.
type FacultyDashboardResponse struct {
	OverallStats FacultyOverallStats    `json:"overall_stats"`
	Courses      []FacultyCourseSummary `json:"courses"`
}

// FacultyOverallStats aggregates across all of the faculty's offerings.
// Averages are simple means across offerings, not weighted by roster size.
type FacultyOverallStats struct {
	CoursesCount  int     `json:"courses_count"`
	StudentsCount int     `json:"students_count"`
	AvgAttendance float64 `json:"avg_attendance"`
	AvgMarks      float64 `json:"avg_marks"`
}

// FacultyCourseSummary is one offering with its full roster breakdown.
type FacultyCourseSummary struct {
	OfferingID    string                   `json:"offering_id"`
	CourseID      string                   `json:"course_id"`
	CourseCode    string                   `json:"course_code"`
	CourseName    string                   `json:"course_name"`
	Credits       int                      `json:"credits"`
	Semester      int                      `json:"semester"`
	AcademicYear  string                   `json:"academic_year"`
	Section       string                   `json:"section"`
	StudentsCount int                      `json:"students_count"`
	Students      []EnrolledStudentSummary `json:"students"`
	AvgAttendance float64                  `json:"avg_attendance"`
	AvgMarks      float64                  `json:"avg_marks"`
}

// EnrolledStudentSummary is one enrolled student's standing in an offering.
// Ungraded assessments report zero marks in this faculty-facing view.
type EnrolledStudentSummary struct {
	StudentID   string            `json:"student_id"`
	UserID      string            `json:"user_id"`
	FullName    string            `json:"full_name"`
	Email       string            `json:"email"`
	ProfilePic  *string           `json:"profile_pic,omitempty"`
	Attendance  float64           `json:"attendance"`
	Assessments []AssessmentMarks `json:"assessments"`
}

// AssessmentMarks is an assessment with the marks one student obtained.
type AssessmentMarks struct {
	AssessmentID  string                `json:"assessment_id"`
	Title         string                `json:"title"`
	Type          models.AssessmentType `json:"type"`
	MaxMarks      float64               `json:"max_marks"`
	Weightage     float64               `json:"weightage"`
	MarksObtained float64               `json:"marks_obtained"`
}

// StudentDashboardResponse is the denormalized view for a student: every
// enrolled course with the teaching faculty, attendance and grades.
type StudentDashboardResponse struct {
	Student      StudentInfo            `json:"student"`
	OverallStats StudentOverallStats    `json:"overall_stats"`
	Courses      []StudentCourseSummary `json:"courses"`
}

// StudentInfo echoes the student's own record on the dashboard.
type StudentInfo struct {
	ID              string `json:"id"`
	EnrollmentNo    string `json:"enrollment_no"`
	BatchYear       int    `json:"batch_year"`
	CurrentSemester int    `json:"current_semester"`
	Address         string `json:"address"`
}

// StudentOverallStats aggregates across the student's enrolled courses.
type StudentOverallStats struct {
	CoursesCount  int     `json:"courses_count"`
	AvgAttendance float64 `json:"avg_attendance"`
	AvgMarks      float64 `json:"avg_marks"`
}

// StudentCourseSummary is one enrolled course from the student's viewpoint.
// Ungraded assessments carry null marks and are excluded from AvgMarks.
type StudentCourseSummary struct {
	CourseID    string                   `json:"course_id"`
	CourseCode  string                   `json:"course_code"`
	CourseName  string                   `json:"course_name"`
	Credits     int                      `json:"credits"`
	Faculty     CourseFacultyInfo        `json:"faculty"`
	Attendance  float64                  `json:"attendance"`
	Assessments []StudentAssessmentMarks `json:"assessments"`
	AvgMarks    float64                  `json:"avg_marks"`
}

// CourseFacultyInfo identifies the teaching faculty of a course.
type CourseFacultyInfo struct {
	ID         string  `json:"id"`
	FullName   string  `json:"full_name"`
	Email      string  `json:"email"`
	ProfilePic *string `json:"profile_pic,omitempty"`
}

// StudentAssessmentMarks is an assessment with the student's own marks,
// nil while ungraded.
type StudentAssessmentMarks struct {
	AssessmentID  string                `json:"assessment_id"`
	Title         string                `json:"title"`
	Type          models.AssessmentType `json:"type"`
	MaxMarks      float64               `json:"max_marks"`
	Weightage     float64               `json:"weightage"`
	MarksObtained *float64              `json:"marks_obtained"`
}
