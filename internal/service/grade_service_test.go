package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/univista/sis-api/internal/dto"
	"github.com/univista/sis-api/internal/models"
	appErrors "github.com/univista/sis-api/pkg/errors"
)

const testAssessment = "66666666-6666-4666-8666-666666666666"

type fakeAssessmentStore struct {
	created    []models.Assessment
	byID       map[string]*models.Assessment
	grades     []models.Grade
	listErr    error
	byOffering []models.Assessment
}

func (f *fakeAssessmentStore) Create(_ context.Context, assessment *models.Assessment) error {
	f.created = append(f.created, *assessment)
	return nil
}

func (f *fakeAssessmentStore) FindByID(_ context.Context, id string) (*models.Assessment, error) {
	assessment, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return assessment, nil
}

func (f *fakeAssessmentStore) ListByOffering(context.Context, string) ([]models.Assessment, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.byOffering, nil
}

func (f *fakeAssessmentStore) UpsertGrade(_ context.Context, grade *models.Grade) (*models.Grade, error) {
	f.grades = append(f.grades, *grade)
	return grade, nil
}

func gradeFixture(store *fakeAssessmentStore) *GradeService {
	return NewGradeService(
		&fakeFaculties{faculty: &models.Faculty{ID: "fac-1", UserID: "user-1"}},
		&fakeOfferings{byID: map[string]*models.CourseOffering{
			testOfferingA: {ID: testOfferingA, FacultyID: "fac-1"},
			testOfferingB: {ID: testOfferingB, FacultyID: "fac-2"},
		}},
		&fakeEnrollments{exists: map[string]bool{"stu-1|" + testOfferingA: true}},
		store,
		nil,
		nil,
		zap.NewNop(),
	)
}

func TestGradeServiceCreateAssessment(t *testing.T) {
	store := &fakeAssessmentStore{}
	svc := gradeFixture(store)

	assessment, err := svc.CreateAssessment(context.Background(), "user-1", dto.CreateAssessmentRequest{
		OfferingID: testOfferingA,
		Title:      "Midterm",
		Type:       "exam",
		MaxMarks:   100,
		Weightage:  30,
	})
	require.NoError(t, err)

	assert.Equal(t, models.AssessmentExam, assessment.Type)
	require.Len(t, store.created, 1)
	assert.Equal(t, testOfferingA, store.created[0].OfferingID)
}

func TestGradeServiceCreateAssessmentRejectsBadType(t *testing.T) {
	svc := gradeFixture(&fakeAssessmentStore{})

	_, err := svc.CreateAssessment(context.Background(), "user-1", dto.CreateAssessmentRequest{
		OfferingID: testOfferingA,
		Title:      "Surprise",
		Type:       "popquiz",
		MaxMarks:   10,
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
}

func TestGradeServiceCreateAssessmentRejectsForeignOffering(t *testing.T) {
	svc := gradeFixture(&fakeAssessmentStore{})

	_, err := svc.CreateAssessment(context.Background(), "user-1", dto.CreateAssessmentRequest{
		OfferingID: testOfferingB,
		Title:      "Midterm",
		Type:       "exam",
		MaxMarks:   100,
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Status)
}

func TestGradeServiceEnterGradeUpserts(t *testing.T) {
	store := &fakeAssessmentStore{byID: map[string]*models.Assessment{
		testAssessment: {ID: testAssessment, OfferingID: testOfferingA, MaxMarks: 100},
	}}
	svc := gradeFixture(store)

	grade, err := svc.EnterGrade(context.Background(), "user-1", dto.EnterGradeRequest{
		AssessmentID:  testAssessment,
		StudentID:     "99999999-9999-4999-8999-999999999999",
		MarksObtained: 88,
	})
	// stu uuid is not in the enrollment fixture
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 404, appErr.Status)
	assert.Nil(t, grade)
	assert.Empty(t, store.grades)
}

func TestGradeServiceEnterGradeStoresMarks(t *testing.T) {
	store := &fakeAssessmentStore{byID: map[string]*models.Assessment{
		testAssessment: {ID: testAssessment, OfferingID: testOfferingA, MaxMarks: 100},
	}}
	svc := NewGradeService(
		&fakeFaculties{faculty: &models.Faculty{ID: "fac-1", UserID: "user-1"}},
		&fakeOfferings{byID: map[string]*models.CourseOffering{
			testOfferingA: {ID: testOfferingA, FacultyID: "fac-1"},
		}},
		&fakeEnrollments{exists: map[string]bool{
			"88888888-8888-4888-8888-888888888888|" + testOfferingA: true,
		}},
		store,
		nil,
		nil,
		zap.NewNop(),
	)

	grade, err := svc.EnterGrade(context.Background(), "user-1", dto.EnterGradeRequest{
		AssessmentID:  testAssessment,
		StudentID:     "88888888-8888-4888-8888-888888888888",
		MarksObtained: 88,
	})
	require.NoError(t, err)

	assert.Equal(t, 88.0, grade.MarksObtained)
	assert.Equal(t, "fac-1", grade.GradedBy)
	require.Len(t, store.grades, 1)
}

func TestGradeServiceEnterGradeRejectsMarksAboveMax(t *testing.T) {
	store := &fakeAssessmentStore{byID: map[string]*models.Assessment{
		testAssessment: {ID: testAssessment, OfferingID: testOfferingA, MaxMarks: 20},
	}}
	svc := gradeFixture(store)

	_, err := svc.EnterGrade(context.Background(), "user-1", dto.EnterGradeRequest{
		AssessmentID:  testAssessment,
		StudentID:     "88888888-8888-4888-8888-888888888888",
		MarksObtained: 25,
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Status)
	assert.Empty(t, store.grades)
}
