package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cursohub/cursohub-api/internal/models"
	appErrors "github.com/cursohub/cursohub-api/pkg/errors"
	"github.com/cursohub/cursohub-api/pkg/response"
)

type adminStatsService interface {
	Stats(ctx context.Context) (*models.PlatformStats, bool, error)
	InvalidateStats(ctx context.Context)
}

type adminUserService interface {
	ListUsers(ctx context.Context, filter models.ProfileFilter) ([]models.ProfileWithEmail, *models.Pagination, error)
	SetRole(ctx context.Context, adminID, accountID string, req models.SetRoleRequest) error
}

type adminCourseService interface {
	ListForReview(ctx context.Context, filter models.CourseFilter) ([]models.CourseDetails, *models.Pagination, error)
	SetPublication(ctx context.Context, courseID string, req models.SetPublicationRequest) error
}

type adminApplicationService interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.InstructorApplication, *models.Pagination, error)
	Review(ctx context.Context, adminID, applicationID string, req models.ReviewApplicationRequest) (*models.InstructorApplication, error)
}

// AdminHandler wires the admin dashboard and its management endpoints.
type AdminHandler struct {
	stats        adminStatsService
	users        adminUserService
	courses      adminCourseService
	applications adminApplicationService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(stats adminStatsService, users adminUserService, courses adminCourseService, applications adminApplicationService) *AdminHandler {
	return &AdminHandler{stats: stats, users: users, courses: courses, applications: applications}
}

// Stats godoc
// @Summary Platform statistics
// @Description Exact platform counts for the admin dashboard, cached with a short TTL
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, cacheHit, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, stats, nil, map[string]interface{}{"cache_hit": cacheHit})
}

// ListUsers godoc
// @Summary List platform users
// @Description Profiles joined with account emails for the admin user screen
// @Tags Admin
// @Produce json
// @Param search query string false "Name or email search"
// @Param role query string false "Role filter (admin, instructor)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	filter := models.ProfileFilter{
		Search:    strings.TrimSpace(c.Query("search")),
		Role:      strings.TrimSpace(c.Query("role")),
		Page:      page,
		PageSize:  pageSize,
		SortBy:    strings.TrimSpace(c.Query("sort_by")),
		SortOrder: strings.TrimSpace(c.Query("sort_order")),
	}

	users, pagination, err := h.users.ListUsers(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, users, pagination)
}

// SetRole godoc
// @Summary Grant or revoke a role
// @Description Toggles admin or instructor for an account; the flag and the role row change together
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Account ID"
// @Param payload body models.SetRoleRequest true "Role payload"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/users/{id}/role [put]
func (h *AdminHandler) SetRole(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid role payload"))
		return
	}

	if err := h.users.SetRole(c.Request.Context(), claims.AccountID, c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}

	h.stats.InvalidateStats(c.Request.Context())
	response.NoContent(c)
}

// ReviewQueue godoc
// @Summary List courses awaiting publication
// @Tags Admin
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/courses/review [get]
func (h *AdminHandler) ReviewQueue(c *gin.Context) {
	courses, pagination, err := h.courses.ListForReview(c.Request.Context(), courseFilterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, courses, pagination)
}

// SetPublication godoc
// @Summary Publish or unpublish a course
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Course ID"
// @Param payload body models.SetPublicationRequest true "Publication payload"
// @Success 204 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/courses/{id}/publication [put]
func (h *AdminHandler) SetPublication(c *gin.Context) {
	var req models.SetPublicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid publication payload"))
		return
	}

	if err := h.courses.SetPublication(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}

	h.stats.InvalidateStats(c.Request.Context())
	response.NoContent(c)
}

// ListApplications godoc
// @Summary List instructor applications
// @Tags Admin
// @Produce json
// @Param status query string false "Status filter (pending, approved, rejected)"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/applications [get]
func (h *AdminHandler) ListApplications(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	filter := models.ApplicationFilter{
		Status:   strings.TrimSpace(c.Query("status")),
		Page:     page,
		PageSize: pageSize,
	}

	apps, pagination, err := h.applications.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, apps, pagination)
}

// ReviewApplication godoc
// @Summary Review an instructor application
// @Description Approve or reject a pending application; approval grants the instructor role
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body models.ReviewApplicationRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/applications/{id}/review [post]
func (h *AdminHandler) ReviewApplication(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ReviewApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}

	app, err := h.applications.Review(c.Request.Context(), claims.AccountID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, app, nil)
}
