package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cursohub/cursohub-api/internal/middleware"
	"github.com/cursohub/cursohub-api/internal/models"
	appErrors "github.com/cursohub/cursohub-api/pkg/errors"
	"github.com/cursohub/cursohub-api/pkg/response"
)

type courseService interface {
	ListPublished(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetails, *models.Pagination, error)
	ListOwn(ctx context.Context, instructorID string, filter models.CourseFilter) ([]models.CourseDetails, *models.Pagination, error)
	GetPublic(ctx context.Context, id, viewerID string, viewerIsAdmin bool) (*models.CourseDetails, error)
	Create(ctx context.Context, instructorID string, req models.CreateCourseRequest) (*models.Course, error)
	Update(ctx context.Context, editorID string, editorIsAdmin bool, courseID string, req models.UpdateCourseRequest) (*models.Course, error)
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// CourseHandler wires catalog and authoring endpoints to the course service.
type CourseHandler struct {
	service courseService
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(service courseService) *CourseHandler {
	return &CourseHandler{service: service}
}

func courseFilterFromQuery(c *gin.Context) models.CourseFilter {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return models.CourseFilter{
		Search:     strings.TrimSpace(c.Query("search")),
		CategoryID: strings.TrimSpace(c.Query("category_id")),
		Level:      strings.TrimSpace(c.Query("level")),
		Page:       page,
		PageSize:   pageSize,
		SortBy:     strings.TrimSpace(c.Query("sort_by")),
		SortOrder:  strings.TrimSpace(c.Query("sort_order")),
	}
}

// List godoc
// @Summary Browse the course catalog
// @Description Published courses with category, instructor and enrollment counts
// @Tags Courses
// @Produce json
// @Param search query string false "Title search"
// @Param category_id query string false "Category filter"
// @Param level query string false "Level filter"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, pagination, err := h.service.ListPublished(c.Request.Context(), courseFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, courses, pagination)
}

// Get godoc
// @Summary Course detail
// @Description Course detail page; drafts are visible only to their instructor and admins
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	viewerID := ""
	if claims := claimsFromContext(c); claims != nil {
		viewerID = claims.AccountID
	}
	flags := middleware.RolesFromContext(c)

	course, err := h.service.GetPublic(c.Request.Context(), c.Param("id"), viewerID, flags.IsAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, course, nil)
}

// Categories godoc
// @Summary List catalog categories
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /categories [get]
func (h *CourseHandler) Categories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, categories, nil)
}

// ListOwn godoc
// @Summary List own courses
// @Description Every course owned by the calling instructor, drafts included
// @Tags Instructor
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /instructor/courses [get]
func (h *CourseHandler) ListOwn(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	courses, pagination, err := h.service.ListOwn(c.Request.Context(), claims.AccountID, courseFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, courses, pagination)
}

// Create godoc
// @Summary Create a draft course
// @Tags Instructor
// @Accept json
// @Produce json
// @Param payload body models.CreateCourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /instructor/courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}

	course, err := h.service.Create(c.Request.Context(), claims.AccountID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, course)
}

// Update godoc
// @Summary Update an owned course
// @Description Partial edit; admins may edit any course
// @Tags Instructor
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.UpdateCourseRequest true "Course changes"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /instructor/courses/{id} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	flags := middleware.RolesFromContext(c)

	var req models.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course payload"))
		return
	}

	course, err := h.service.Update(c.Request.Context(), claims.AccountID, flags.IsAdmin, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, course, nil)
}
