package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/univista/sis-api/internal/dto"
	"github.com/univista/sis-api/internal/middleware"
	"github.com/univista/sis-api/internal/models"
)

type fakeDashboardSrv struct {
	facultyResp *dto.FacultyDashboardResponse
	facultyErr  error
	facultyHit  bool
	studentResp *dto.StudentDashboardResponse
	studentErr  error
	studentHit  bool
	lastUserID  string
}

func (f *fakeDashboardSrv) Faculty(_ context.Context, userID string) (*dto.FacultyDashboardResponse, bool, error) {
	f.lastUserID = userID
	return f.facultyResp, f.facultyHit, f.facultyErr
}

func (f *fakeDashboardSrv) Student(_ context.Context, userID string) (*dto.StudentDashboardResponse, bool, error) {
	f.lastUserID = userID
	return f.studentResp, f.studentHit, f.studentErr
}

func authedContext(t *testing.T, rec *httptest.ResponseRecorder, role models.UserRole) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: role})
	return c
}

func TestDashboardHandlerFacultyRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewDashboardHandler(&fakeDashboardSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/faculty/dashboard", nil)

	handler.Faculty(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardHandlerFacultySuccess(t *testing.T) {
	srv := &fakeDashboardSrv{
		facultyResp: &dto.FacultyDashboardResponse{
			OverallStats: dto.FacultyOverallStats{CoursesCount: 2, StudentsCount: 30},
		},
		facultyHit: true,
	}
	handler := NewDashboardHandler(srv)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, models.RoleFaculty)

	handler.Faculty(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", srv.lastUserID)

	var envelope struct {
		Data dto.FacultyDashboardResponse `json:"data"`
		Meta map[string]interface{}       `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.OverallStats.CoursesCount)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
}

func TestDashboardHandlerStudentSuccess(t *testing.T) {
	srv := &fakeDashboardSrv{
		studentResp: &dto.StudentDashboardResponse{
			Student:      dto.StudentInfo{EnrollmentNo: "EN-001"},
			OverallStats: dto.StudentOverallStats{CoursesCount: 3},
		},
	}
	handler := NewDashboardHandler(srv)

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, models.RoleStudent)

	handler.Student(c)

	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data dto.StudentDashboardResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "EN-001", envelope.Data.Student.EnrollmentNo)
}

func TestDashboardHandlerStudentErrorPassthrough(t *testing.T) {
	handler := NewDashboardHandler(&fakeDashboardSrv{studentErr: assert.AnError})

	rec := httptest.NewRecorder()
	c := authedContext(t, rec, models.RoleStudent)

	handler.Student(c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
