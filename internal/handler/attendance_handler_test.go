package handler

import (
	"bytes"
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

type fakeAttendanceSrv struct {
	resp    *dto.BatchAttendanceResponse
	err     error
	lastReq dto.BatchAttendanceRequest
}

func (f *fakeAttendanceSrv) Record(_ context.Context, _ string, req dto.BatchAttendanceRequest) (*dto.BatchAttendanceResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

func TestAttendanceHandlerRecordRejectsBadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAttendanceHandler(&fakeAttendanceSrv{})

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/faculty/attendance", bytes.NewBufferString("{not json"))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleFaculty})

	handler.Record(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttendanceHandlerRecordSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := &fakeAttendanceSrv{resp: &dto.BatchAttendanceResponse{
		Marked:  2,
		Skipped: []dto.SkippedAttendanceEntry{{EnrollmentID: "enr-3", Reason: "invalid status"}},
	}}
	handler := NewAttendanceHandler(srv)

	payload, err := json.Marshal(dto.BatchAttendanceRequest{
		OfferingID: "off-1",
		Date:       "2025-03-10",
		Entries:    []dto.BatchAttendanceEntry{{EnrollmentID: "enr-1", Status: "present"}},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/faculty/attendance", bytes.NewBuffer(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleFaculty})

	handler.Record(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "off-1", srv.lastReq.OfferingID)

	var envelope struct {
		Data dto.BatchAttendanceResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 2, envelope.Data.Marked)
	require.Len(t, envelope.Data.Skipped, 1)
}
