package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/univista/sis-api/internal/middleware"
	"github.com/univista/sis-api/internal/service"
	appErrors "github.com/univista/sis-api/pkg/errors"
	"github.com/univista/sis-api/pkg/response"
)

// ReportHandler serves downloadable offering reports.
type ReportHandler struct {
	service *service.ReportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(svc *service.ReportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// OfferingReport godoc
// @Summary Download an offering report
// @Description Per-student attendance and grade standing as CSV or PDF
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Offering ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculty/offerings/{id}/report [get]
func (h *ReportHandler) OfferingReport(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	format := service.ReportFormat(c.DefaultQuery("format", string(service.ReportFormatCSV)))
	report, err := h.service.OfferingReport(c.Request.Context(), claims.UserID, c.Param("id"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	c.Data(200, report.ContentType, report.Content)
}
