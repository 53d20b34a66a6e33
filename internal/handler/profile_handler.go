package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cursohub/cursohub-api/internal/middleware"
	"github.com/cursohub/cursohub-api/internal/models"
	appErrors "github.com/cursohub/cursohub-api/pkg/errors"
	"github.com/cursohub/cursohub-api/pkg/response"
)

type profileService interface {
	GetOwn(ctx context.Context, accountID string) (*models.Profile, error)
	UpdateOwn(ctx context.Context, accountID string, req models.UpdateProfileRequest) (*models.Profile, error)
}

// ProfileHandler wires profile endpoints to the profile service.
type ProfileHandler struct {
	service profileService
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(service profileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// GetOwn godoc
// @Summary Get own profile
// @Description Returns the caller's profile with resolved role flags; the row is created on first access
// @Tags Profiles
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /profile [get]
func (h *ProfileHandler) GetOwn(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	profile, err := h.service.GetOwn(c.Request.Context(), claims.AccountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	flags := middleware.RolesFromContext(c)
	response.JSON(c, http.StatusOK, profile, nil, map[string]interface{}{
		"is_admin":      flags.IsAdmin,
		"is_instructor": flags.IsInstructor,
	})
}

// UpdateOwn godoc
// @Summary Update own profile
// @Description Partial self-edit of full name, bio and avatar
// @Tags Profiles
// @Accept json
// @Produce json
// @Param payload body models.UpdateProfileRequest true "Profile changes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /profile [put]
func (h *ProfileHandler) UpdateOwn(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	profile, err := h.service.UpdateOwn(c.Request.Context(), claims.AccountID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, profile, nil)
}
