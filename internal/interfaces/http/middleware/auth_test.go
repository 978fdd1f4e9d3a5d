package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"luxe-estates.backend/internal/domain/entities"
	domainerrors "luxe-estates.backend/internal/domain/errors"
	"luxe-estates.backend/pkg/jwt"
	"luxe-estates.backend/pkg/redis"
)

type stubSessions map[string]*redis.SessionData

func (s stubSessions) GetSession(_ context.Context, id string) (*redis.SessionData, error) {
	if d, ok := s[id]; ok {
		return d, nil
	}
	return nil, errors.New("redis: nil")
}

type stubProfiles map[uuid.UUID]*entities.Profile

func (s stubProfiles) GetProfile(_ context.Context, id uuid.UUID) (*entities.Profile, error) {
	if p, ok := s[id]; ok {
		return p, nil
	}
	return nil, domainerrors.ErrNotFound
}

func testJWT() *jwt.JWTService {
	return jwt.NewJWTService("middleware-secret", time.Minute, time.Hour)
}

func issue(t *testing.T, svc *jwt.JWTService, role string) (uuid.UUID, *jwt.TokenPair) {
	t.Helper()
	id := uuid.New()
	pair, err := svc.GenerateTokenPair(id, "a@mail.test", role)
	require.NoError(t, err)
	return id, pair
}

func viewerEcho(c *gin.Context) {
	v := GetViewer(c)
	c.JSON(http.StatusOK, gin.H{"authenticated": v.Authenticated, "role": v.Role, "session": GetSessionID(c)})
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := testJWT()
	_, pair := issue(t, svc, "user")

	r := gin.New()
	r.GET("/me", AuthMiddleware(svc, nil), viewerEcho)

	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"missing header", "", http.StatusUnauthorized, "authorization header is required"},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, "invalid token"},
		{"garbage token", "Bearer nope", http.StatusUnauthorized, "invalid token"},
		{"refresh token rejected", "Bearer " + pair.RefreshToken, http.StatusUnauthorized, "invalid token"},
		{"valid", "Bearer " + pair.AccessToken, http.StatusOK, `"authenticated":true`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(AuthorizationHeader, tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.body)
		})
	}
}

func TestAuthMiddleware_Session(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := testJWT()
	_, pair := issue(t, svc, "admin")
	sessions := stubSessions{"sess-1": {AccessToken: pair.AccessToken}}

	r := gin.New()
	r.GET("/me", AuthMiddleware(svc, sessions), viewerEcho)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(SessionHeader, "sess-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"admin"`)
	assert.Contains(t, w.Body.String(), `"session":"sess-1"`)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(SessionHeader, "expired")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token has expired")
}

func TestOptionalAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := testJWT()
	_, pair := issue(t, svc, "user")

	r := gin.New()
	r.GET("/properties", OptionalAuthMiddleware(svc, nil), viewerEcho)

	for header, authenticated := range map[string]bool{
		"":                           false,
		"Bearer broken":              false,
		"Bearer " + pair.AccessToken: true,
	} {
		req := httptest.NewRequest(http.MethodGet, "/properties", nil)
		if header != "" {
			req.Header.Set(AuthorizationHeader, header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		if authenticated {
			assert.Contains(t, w.Body.String(), `"authenticated":true`)
		} else {
			assert.Contains(t, w.Body.String(), `"authenticated":false`)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := testJWT()
	_, member := issue(t, svc, "user")
	_, admin := issue(t, svc, "admin")

	r := gin.New()
	r.GET("/admin", AuthMiddleware(svc, nil), RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(AuthorizationHeader, "Bearer "+member.AccessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(AuthorizationHeader, "Bearer "+admin.AccessToken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	bare := gin.New()
	bare.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	w = httptest.NewRecorder()
	bare.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireActiveAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := testJWT()
	activeID, active := issue(t, svc, "user")
	suspendedID, suspended := issue(t, svc, "user")
	_, ghost := issue(t, svc, "user")
	demotedID, demoted := issue(t, svc, "admin")

	profiles := stubProfiles{
		activeID:    {ID: activeID, AccountStatus: entities.AccountActive, Role: entities.RoleUser},
		suspendedID: {ID: suspendedID, AccountStatus: entities.AccountSuspended, Role: entities.RoleUser},
		demotedID:   {ID: demotedID, AccountStatus: entities.AccountActive, Role: entities.RoleUser},
	}

	r := gin.New()
	r.GET("/member", AuthMiddleware(svc, nil), RequireActiveAccount(profiles), func(c *gin.Context) {
		p, ok := GetProfile(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"id": p.ID})
	})
	r.GET("/admin", AuthMiddleware(svc, nil), RequireActiveAccount(profiles), RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	call := func(path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set(AuthorizationHeader, "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusOK, call("/member", active.AccessToken).Code)

	w := call("/member", suspended.AccessToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), domainerrors.CodeAccountSuspended)

	assert.Equal(t, http.StatusUnauthorized, call("/member", ghost.AccessToken).Code)
	assert.Equal(t, http.StatusForbidden, call("/admin", demoted.AccessToken).Code)
}

func TestOptionalActiveAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := testJWT()
	activeID, active := issue(t, svc, "user")
	suspendedID, suspended := issue(t, svc, "user")
	_, ghost := issue(t, svc, "user")
	promotedID, promoted := issue(t, svc, "user")

	profiles := stubProfiles{
		activeID:    {ID: activeID, AccountStatus: entities.AccountActive, Role: entities.RoleUser},
		suspendedID: {ID: suspendedID, AccountStatus: entities.AccountSuspended, Role: entities.RoleUser},
		promotedID:  {ID: promotedID, AccountStatus: entities.AccountActive, Role: entities.RoleAdmin},
	}

	r := gin.New()
	r.GET("/properties", OptionalAuthMiddleware(svc, nil), OptionalActiveAccount(profiles), viewerEcho)

	tests := []struct {
		name   string
		token  string
		expect string
	}{
		{"anonymous", "", `"authenticated":false`},
		{"active member", active.AccessToken, `"authenticated":true`},
		{"suspended member", suspended.AccessToken, `"authenticated":false`},
		{"deleted profile", ghost.AccessToken, `"authenticated":false`},
		{"stored role wins", promoted.AccessToken, `"role":"admin"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/properties", nil)
			if tt.token != "" {
				req.Header.Set(AuthorizationHeader, "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.expect)
		})
	}
}
