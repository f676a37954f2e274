package dto

// CreateAssessmentRequest declares a new graded component for an offering.
type CreateAssessmentRequest struct {
	OfferingID string  `json:"offering_id" validate:"required,uuid4"`
	Title      string  `json:"title" validate:"required,min=1,max=200"`
	Type       string  `json:"type" validate:"required"`
	MaxMarks   float64 `json:"max_marks" validate:"required,gt=0"`
	Weightage  float64 `json:"weightage" validate:"gte=0,lte=100"`
	DueDate    *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

// EnterGradeRequest records or corrects one student's marks on an
// assessment. Re-grading overwrites the previous marks.
type EnterGradeRequest struct {
	AssessmentID  string  `json:"assessment_id" validate:"required,uuid4"`
	StudentID     string  `json:"student_id" validate:"required,uuid4"`
	MarksObtained float64 `json:"marks_obtained" validate:"gte=0"`
}
