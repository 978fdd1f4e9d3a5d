package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"luxe-estates.backend/internal/domain/entities"
	domainerrors "luxe-estates.backend/internal/domain/errors"
	"luxe-estates.backend/internal/interfaces/http/middleware"
	"luxe-estates.backend/internal/interfaces/http/response"
)

type profileService interface {
	Get(ctx context.Context, id uuid.UUID) (*entities.Profile, error)
	Update(ctx context.Context, id uuid.UUID, input *entities.UpdateProfileInput) (*entities.Profile, error)
	ChangePassword(ctx context.Context, id uuid.UUID, input *entities.ChangePasswordInput) error
}

// ProfileHandler handles member self-service endpoints
type ProfileHandler struct {
	profiles profileService
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profiles profileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetProfile returns the caller's profile
// GET /api/v1/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	if p, ok := middleware.GetProfile(c); ok {
		response.Success(c, http.StatusOK, gin.H{"profile": p})
		return
	}
	id, ok := middleware.GetProfileID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}
	profile, err := h.profiles.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": profile})
}

// UpdateProfile changes the caller's name or notification setting
// PUT /api/v1/profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	id, ok := middleware.GetProfileID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}
	var input entities.UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	profile, err := h.profiles.Update(c.Request.Context(), id, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": profile})
}

// ChangePassword replaces the caller's password
// POST /api/v1/profile/change-password
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	id, ok := middleware.GetProfileID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}
	var input entities.ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.profiles.ChangePassword(c.Request.Context(), id, &input); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Password updated"})
}
