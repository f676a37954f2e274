package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/univista/sis-api/internal/middleware"
	"github.com/univista/sis-api/internal/models"
	"github.com/univista/sis-api/internal/service"
	appErrors "github.com/univista/sis-api/pkg/errors"
	"github.com/univista/sis-api/pkg/response"
)

// CourseHandler wires catalog and roster endpoints to the course service.
type CourseHandler struct {
	service *service.CourseService
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(svc *service.CourseService) *CourseHandler {
	return &CourseHandler{service: svc}
}

// List godoc
// @Summary List the course catalog
// @Tags Courses
// @Produce json
// @Param search query string false "Match against course code or name"
// @Param department_id query string false "Department ID"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param sort_by query string false "Sort column (course_code, course_name, credits)"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	filter := models.CourseFilter{
		Search:       strings.TrimSpace(c.Query("search")),
		DepartmentID: strings.TrimSpace(c.Query("department_id")),
		Page:         page,
		PageSize:     pageSize,
		SortBy:       c.Query("sort_by"),
		SortOrder:    c.Query("sort_order"),
	}

	courses, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, pagination)
}

// MyOfferings godoc
// @Summary Offerings taught by the authenticated faculty
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculty/offerings [get]
func (h *CourseHandler) MyOfferings(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	offerings, err := h.service.MyOfferings(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, offerings, nil)
}

// Roster godoc
// @Summary Enrolled students of an offering
// @Tags Courses
// @Produce json
// @Param id path string true "Offering ID"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /faculty/offerings/{id}/roster [get]
func (h *CourseHandler) Roster(c *gin.Context) {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	roster, err := h.service.Roster(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}
