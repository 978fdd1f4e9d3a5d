package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"luxe-estates.backend/internal/domain/entities"
	domainerrors "luxe-estates.backend/internal/domain/errors"
	"luxe-estates.backend/internal/interfaces/http/middleware"
	"luxe-estates.backend/internal/interfaces/http/response"
	"luxe-estates.backend/internal/usecases"
	"luxe-estates.backend/pkg/jwt"
)

type authService interface {
	SignUp(ctx context.Context, input *entities.SignUpInput) (*entities.Profile, error)
	SignIn(ctx context.Context, input *entities.SignInInput) (*entities.AuthResponse, error)
	SignInWithOAuth(ctx context.Context, input *entities.OAuthSignInInput) (*entities.AuthResponse, error)
	SignOut(ctx context.Context, sessionID string, profileID uuid.UUID) error
	RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error)
	RefreshSession(ctx context.Context, sessionID string) error
	GetProfile(ctx context.Context, id uuid.UUID) (*entities.Profile, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	auth authService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth authService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// SignUp handles member registration
// POST /api/v1/auth/signup
func (h *AuthHandler) SignUp(c *gin.Context) {
	var input entities.SignUpInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	profile, err := h.auth.SignUp(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{
		"message": "Account created. An administrator will review your membership.",
		"profile": profile,
	})
}

// SignIn handles password sign-in
// POST /api/v1/auth/signin
func (h *AuthHandler) SignIn(c *gin.Context) {
	var input entities.SignInInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.auth.SignIn(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, signInError(err))
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// SignInWithOAuth exchanges a provider ID token for a session
// POST /api/v1/auth/oauth
func (h *AuthHandler) SignInWithOAuth(c *gin.Context) {
	var input entities.OAuthSignInInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	resp, err := h.auth.SignInWithOAuth(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp)
}

// SignOut ends the caller's session
// POST /api/v1/auth/signout
func (h *AuthHandler) SignOut(c *gin.Context) {
	profileID, _ := middleware.GetProfileID(c)
	if err := h.auth.SignOut(c.Request.Context(), middleware.GetSessionID(c), profileID); err != nil {
		response.Error(c, domainerrors.Upstream(err))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Signed out"})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshToken rotates a token pair, or the tokens held by a session
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	if sessionID := c.GetHeader(middleware.SessionHeader); sessionID != "" {
		if err := h.auth.RefreshSession(c.Request.Context(), sessionID); err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"sessionId": sessionID})
		return
	}

	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		response.Error(c, domainerrors.BadRequest("refreshToken is required"))
		return
	}
	pair, err := h.auth.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, pair)
}

// GetMe returns the signed-in profile
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	profileID, ok := middleware.GetProfileID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("authentication required"))
		return
	}
	profile, err := h.auth.GetProfile(c.Request.Context(), profileID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"profile": profile, "isAdmin": profile.IsAdmin()})
}

// RouteGuard tells the client whether path may render for the caller
// GET /api/v1/auth/route-guard?path=
func (h *AuthHandler) RouteGuard(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		response.Error(c, domainerrors.BadRequest("path is required"))
		return
	}
	response.Success(c, http.StatusOK, usecases.ResolveRoute(path, middleware.GetViewer(c)))
}

func signInError(err error) error {
	if _, ok := domainerrors.As(err); ok {
		return err
	}
	if errors.Is(err, domainerrors.ErrInvalidCredentials) {
		return domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeUnauthorized, "invalid email or password", err)
	}
	return err
}
