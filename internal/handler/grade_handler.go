package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/univista/sis-api/internal/dto"
	"github.com/univista/sis-api/internal/middleware"
	"github.com/univista/sis-api/internal/service"
	appErrors "github.com/univista/sis-api/pkg/errors"
	"github.com/univista/sis-api/pkg/response"
)

// GradeHandler wires assessment and grade endpoints to the grade service.
type GradeHandler struct {
	service *service.GradeService
}

// NewGradeHandler constructs the handler.
func NewGradeHandler(svc *service.GradeService) *GradeHandler {
	return &GradeHandler{service: svc}
}

// CreateAssessment godoc
// @Summary Create an assessment on an offering
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body dto.CreateAssessmentRequest true "Assessment payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculty/assessments [post]
func (h *GradeHandler) CreateAssessment(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.CreateAssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assessment payload"))
		return
	}

	assessment, err := h.service.CreateAssessment(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assessment)
}

// ListAssessments godoc
// @Summary List assessments of an offering
// @Tags Grades
// @Produce json
// @Param id path string true "Offering ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculty/offerings/{id}/assessments [get]
func (h *GradeHandler) ListAssessments(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	assessments, err := h.service.ListAssessments(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assessments, nil)
}

// EnterGrade godoc
// @Summary Record a student's marks for an assessment
// @Description Re-grading the same student overwrites the stored marks
// @Tags Grades
// @Accept json
// @Produce json
// @Param payload body dto.EnterGradeRequest true "Grade payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculty/grades [post]
func (h *GradeHandler) EnterGrade(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.EnterGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid grade payload"))
		return
	}

	grade, err := h.service.EnterGrade(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}
