package models

import "time"

// AssessmentType classifies an assessment.
type AssessmentType string

const (
	AssessmentExam       AssessmentType = "exam"
	AssessmentQuiz       AssessmentType = "quiz"
	AssessmentAssignment AssessmentType = "assignment"
	AssessmentProject    AssessmentType = "project"
)

// Valid reports whether the type is part of the allowed domain.
func (t AssessmentType) Valid() bool {
	switch t {
	case AssessmentExam, AssessmentQuiz, AssessmentAssignment, AssessmentProject:
		return true
	}
	return false
}

// Assessment belongs to a course offering.
type Assessment struct {
	ID         string         `db:"id" json:"id"`
	OfferingID string         `db:"offering_id" json:"offering_id"`
	Title      string         `db:"title" json:"title"`
	Type       AssessmentType `db:"type" json:"type"`
	MaxMarks   float64        `db:"max_marks" json:"max_marks"`
	Weightage  float64        `db:"weightage" json:"weightage"`
	DueDate    *time.Time     `db:"due_date" json:"due_date,omitempty"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at" json:"updated_at"`
}

// Grade links one assessment to one student. (assessment_id, student_id)
// is unique at the storage layer.
type Grade struct {
	ID            string    `db:"id" json:"id"`
	AssessmentID  string    `db:"assessment_id" json:"assessment_id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	MarksObtained float64   `db:"marks_obtained" json:"marks_obtained"`
	GradedBy      string    `db:"graded_by" json:"graded_by"`
	GradedAt      time.Time `db:"graded_at" json:"graded_at"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// StudentAssessmentMark is an offering assessment left-joined with one
// student's grade. Marks is nil when the assessment has not been graded.
type StudentAssessmentMark struct {
	AssessmentID string         `db:"assessment_id" json:"assessment_id"`
	Title        string         `db:"title" json:"title"`
	Type         AssessmentType `db:"type" json:"type"`
	MaxMarks     float64        `db:"max_marks" json:"max_marks"`
	Weightage    float64        `db:"weightage" json:"weightage"`
	Marks        *float64       `db:"marks" json:"marks"`
}
