package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/univista/sis-api/internal/dto"
	"github.com/univista/sis-api/internal/middleware"
	appErrors "github.com/univista/sis-api/pkg/errors"
	"github.com/univista/sis-api/pkg/response"
)

type attendanceService interface {
	Record(ctx context.Context, userID string, req dto.BatchAttendanceRequest) (*dto.BatchAttendanceResponse, error)
}

// AttendanceHandler wires attendance endpoints to the attendance service.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// Record godoc
// @Summary Record a batch of attendance marks
// @Description Mark attendance for one offering on one day; bad entries are skipped with a reason
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.BatchAttendanceRequest true "Attendance batch"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculty/attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.BatchAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	result, err := h.service.Record(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
