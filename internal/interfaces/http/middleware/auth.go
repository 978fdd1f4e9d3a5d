package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"luxe-estates.backend/internal/domain/entities"
	domainerrors "luxe-estates.backend/internal/domain/errors"
	"luxe-estates.backend/internal/interfaces/http/response"
	"luxe-estates.backend/pkg/jwt"
	"luxe-estates.backend/pkg/logger"
	"luxe-estates.backend/pkg/redis"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// SessionHeader carries a redis-backed session id instead of a bearer token
	SessionHeader = "X-Session-ID"
	// ProfileIDKey is the context key for the profile ID
	ProfileIDKey = "profileId"
	// ProfileEmailKey is the context key for the profile email
	ProfileEmailKey = "profileEmail"
	// ProfileRoleKey is the context key for the profile role
	ProfileRoleKey = "profileRole"
	// SessionIDKey is the context key for the session id, when one was used
	SessionIDKey = "sessionId"
	// ProfileKey holds the profile loaded by RequireActiveAccount
	ProfileKey = "profile"
)

// SessionReader resolves session ids to stored tokens
type SessionReader interface {
	GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
}

// ProfileLoader loads the signed-in profile
type ProfileLoader interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*entities.Profile, error)
}

var errNoCredentials = errors.New("no credentials")

// AuthMiddleware requires a valid access token, either as a bearer token or
// through the X-Session-ID header
func AuthMiddleware(jwtService *jwt.JWTService, sessions SessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authenticate(c, jwtService, sessions); err != nil {
			logger.Warn(c.Request.Context(), "Authentication failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			c.Abort()
			response.Error(c, toAuthError(err))
			return
		}
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the viewer when credentials are valid and
// lets anonymous requests through otherwise
func OptionalAuthMiddleware(jwtService *jwt.JWTService, sessions SessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authenticate(c, jwtService, sessions); err != nil && !errors.Is(err, errNoCredentials) {
			logger.Debug(c.Request.Context(), "Ignoring invalid credentials on public route", zap.Error(err))
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, jwtService *jwt.JWTService, sessions SessionReader) error {
	tokenString := ""
	sessionID := strings.TrimSpace(c.GetHeader(SessionHeader))
	if sessionID != "" && sessions != nil {
		session, err := sessions.GetSession(c.Request.Context(), sessionID)
		if err != nil || session == nil {
			return jwt.ErrExpiredToken
		}
		tokenString = session.AccessToken
	}

	if tokenString == "" {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			return errNoCredentials
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			return jwt.ErrInvalidToken
		}
		tokenString = strings.TrimPrefix(authHeader, BearerPrefix)
		sessionID = ""
	}

	claims, err := jwtService.ValidateAccessToken(tokenString)
	if err != nil {
		return err
	}

	c.Set(ProfileIDKey, claims.ProfileID)
	c.Set(ProfileEmailKey, claims.Email)
	c.Set(ProfileRoleKey, claims.Role)
	if sessionID != "" {
		c.Set(SessionIDKey, sessionID)
	}
	ctx := context.WithValue(c.Request.Context(), logger.ProfileIDKey, claims.ProfileID.String())
	c.Request = c.Request.WithContext(ctx)
	return nil
}

func toAuthError(err error) error {
	switch {
	case errors.Is(err, errNoCredentials):
		return domainerrors.Unauthorized("authorization header is required")
	case errors.Is(err, jwt.ErrExpiredToken):
		return domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeUnauthorized, "token has expired", domainerrors.ErrTokenExpired)
	default:
		return domainerrors.Unauthorized("invalid token")
	}
}

// GetProfileID gets the profile ID from context
func GetProfileID(c *gin.Context) (uuid.UUID, bool) {
	id, exists := c.Get(ProfileIDKey)
	if !exists {
		return uuid.Nil, false
	}
	profileID, ok := id.(uuid.UUID)
	return profileID, ok
}

// GetProfileRole gets the profile role from context
func GetProfileRole(c *gin.Context) (string, bool) {
	role, exists := c.Get(ProfileRoleKey)
	if !exists {
		return "", false
	}
	s, ok := role.(string)
	return s, ok
}

// GetSessionID returns the session id used to authenticate, if any
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}

// GetViewer describes who the request renders for
func GetViewer(c *gin.Context) entities.Viewer {
	id, ok := GetProfileID(c)
	if !ok {
		return entities.Anonymous
	}
	role, _ := GetProfileRole(c)
	return entities.Viewer{ProfileID: id, Authenticated: true, Role: entities.Role(role)}
}

// GetProfile returns the profile loaded by RequireActiveAccount
func GetProfile(c *gin.Context) (*entities.Profile, bool) {
	v, exists := c.Get(ProfileKey)
	if !exists {
		return nil, false
	}
	p, ok := v.(*entities.Profile)
	return p, ok
}

// RequireRole creates a middleware that requires one of roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := GetProfileRole(c)
		if !exists {
			c.Abort()
			response.Error(c, domainerrors.Unauthorized("profile role not found"))
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		c.Abort()
		response.Error(c, domainerrors.Forbidden("insufficient permissions"))
	}
}

// RequireAdmin creates a middleware that requires admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(string(entities.RoleAdmin))
}

// RequireActiveAccount loads the profile and rejects suspended accounts. The
// role in the token is replaced with the stored one.
func RequireActiveAccount(profiles ProfileLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetProfileID(c)
		if !ok {
			c.Abort()
			response.Error(c, domainerrors.Unauthorized("authentication required"))
			return
		}

		profile, err := profiles.GetProfile(c.Request.Context(), id)
		if err != nil {
			c.Abort()
			if errors.Is(err, domainerrors.ErrNotFound) {
				response.Error(c, domainerrors.Unauthorized("profile no longer exists"))
				return
			}
			response.Error(c, err)
			return
		}
		if profile.IsSuspended() {
			c.Abort()
			response.Error(c, domainerrors.Suspended())
			return
		}

		c.Set(ProfileKey, profile)
		c.Set(ProfileRoleKey, string(profile.Role))
		c.Next()
	}
}

// OptionalActiveAccount re-checks an authenticated viewer against the stored
// profile on public routes. Suspended, deleted or unloadable profiles are
// downgraded to anonymous instead of rejected.
func OptionalActiveAccount(profiles ProfileLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := GetProfileID(c)
		if !ok {
			c.Next()
			return
		}

		profile, err := profiles.GetProfile(c.Request.Context(), id)
		switch {
		case err != nil:
			logger.Warn(c.Request.Context(), "Treating viewer as anonymous", zap.Error(err))
			clearViewer(c)
		case profile.IsSuspended():
			clearViewer(c)
		default:
			c.Set(ProfileKey, profile)
			c.Set(ProfileRoleKey, string(profile.Role))
		}
		c.Next()
	}
}

func clearViewer(c *gin.Context) {
	for _, k := range []string{ProfileIDKey, ProfileEmailKey, ProfileRoleKey, SessionIDKey, ProfileKey} {
		delete(c.Keys, k)
	}
}
