package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cursohub/cursohub-api/internal/models"
	appErrors "github.com/cursohub/cursohub-api/pkg/errors"
	"github.com/cursohub/cursohub-api/pkg/response"
)

type enrollmentService interface {
	Enroll(ctx context.Context, accountID string, req models.EnrollRequest) (*models.Enrollment, error)
	ListOwn(ctx context.Context, accountID string) ([]models.EnrollmentWithCourse, error)
	UpdateProgress(ctx context.Context, accountID, enrollmentID string, req models.UpdateProgressRequest) (*models.Enrollment, error)
}

type certificateLinker interface {
	Link(ctx context.Context, accountID, enrollmentID string) (*models.CertificateLink, error)
}

// EnrollmentHandler wires learner enrollment endpoints.
type EnrollmentHandler struct {
	service      enrollmentService
	certificates certificateLinker
}

// NewEnrollmentHandler constructs the handler.
func NewEnrollmentHandler(service enrollmentService, certificates certificateLinker) *EnrollmentHandler {
	return &EnrollmentHandler{service: service, certificates: certificates}
}

// Enroll godoc
// @Summary Enroll in a course
// @Description Start an enrollment in a published course; re-enrolling is a conflict
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body models.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment payload"))
		return
	}

	enrollment, err := h.service.Enroll(c.Request.Context(), claims.AccountID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, enrollment)
}

// ListOwn godoc
// @Summary List own enrollments
// @Description The caller's enrollments with course details for the learner dashboard
// @Tags Enrollments
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /enrollments [get]
func (h *EnrollmentHandler) ListOwn(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	enrollments, err := h.service.ListOwn(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, enrollments, nil)
}

// UpdateProgress godoc
// @Summary Update course progress
// @Description Move progress between 0 and 100; reaching 100 completes the course and queues the certificate
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID"
// @Param payload body models.UpdateProgressRequest true "Progress payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /enrollments/{id}/progress [patch]
func (h *EnrollmentHandler) UpdateProgress(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid progress payload"))
		return
	}

	enrollment, err := h.service.UpdateProgress(c.Request.Context(), claims.AccountID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Certificate godoc
// @Summary Get certificate download link
// @Description Signed, expiring download link for a completed enrollment's certificate
// @Tags Enrollments
// @Produce json
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /enrollments/{id}/certificate [get]
func (h *EnrollmentHandler) Certificate(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	link, err := h.certificates.Link(c.Request.Context(), claims.AccountID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, link, nil)
}
