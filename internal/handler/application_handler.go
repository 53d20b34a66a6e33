package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cursohub/cursohub-api/internal/models"
	appErrors "github.com/cursohub/cursohub-api/pkg/errors"
	"github.com/cursohub/cursohub-api/pkg/response"
)

type applicationService interface {
	Apply(ctx context.Context, accountID string, req models.ApplyInstructorRequest) (*models.InstructorApplication, error)
}

// ApplicationHandler wires the instructor application endpoint.
type ApplicationHandler struct {
	service applicationService
}

// NewApplicationHandler constructs the handler.
func NewApplicationHandler(service applicationService) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

// Apply godoc
// @Summary Apply to become an instructor
// @Description Submit an instructor application; one pending application per account
// @Tags Applications
// @Accept json
// @Produce json
// @Param payload body models.ApplyInstructorRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /instructor-applications [post]
func (h *ApplicationHandler) Apply(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ApplyInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid application payload"))
		return
	}

	app, err := h.service.Apply(c.Request.Context(), claims.AccountID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, app)
}
