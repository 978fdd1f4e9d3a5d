package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"luxe-estates.backend/internal/domain/entities"
	domainerrors "luxe-estates.backend/internal/domain/errors"
	"luxe-estates.backend/internal/domain/repositories"
	"luxe-estates.backend/pkg/crypto"
	"luxe-estates.backend/pkg/jwt"
	"luxe-estates.backend/pkg/logger"
	"luxe-estates.backend/pkg/metrics"
	"luxe-estates.backend/pkg/oauth"
	"luxe-estates.backend/pkg/redis"
)

// AuthEventsChannel is the redis channel carrying session events
const AuthEventsChannel = "auth:events"

// Session event names
const (
	EventSignedIn       = "SIGNED_IN"
	EventSignedOut      = "SIGNED_OUT"
	EventTokenRefreshed = "TOKEN_REFRESHED"
)

// SessionEvent is published on every session state change
type SessionEvent struct {
	Event     string    `json:"event"`
	ProfileID uuid.UUID `json:"profileId"`
	Role      string    `json:"role,omitempty"`
	At        time.Time `json:"at"`
}

// MarshalBinary lets go-redis publish the event as JSON
func (e SessionEvent) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

// SessionStore persists browser sessions
type SessionStore interface {
	CreateSession(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error
	GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// IdentityVerifier validates ID tokens from the OAuth provider
type IdentityVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oauth.Identity, error)
}

// EventPublisher fans session events out to subscribers
type EventPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

// AuthUsecase handles authentication business logic
type AuthUsecase struct {
	profileRepo repositories.ProfileRepository
	uow         repositories.UnitOfWork
	jwtService  *jwt.JWTService
	sessions    SessionStore
	verifier    IdentityVerifier
	events      EventPublisher
	metrics     *metrics.Metrics
	adminEmails map[string]struct{}
	now         func() time.Time
}

// AuthDeps groups the optional collaborators of AuthUsecase
type AuthDeps struct {
	Sessions    SessionStore
	Verifier    IdentityVerifier
	Events      EventPublisher
	Metrics     *metrics.Metrics
	AdminEmails []string
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	profileRepo repositories.ProfileRepository,
	uow repositories.UnitOfWork,
	jwtService *jwt.JWTService,
	deps AuthDeps,
) *AuthUsecase {
	admins := make(map[string]struct{}, len(deps.AdminEmails))
	for _, e := range deps.AdminEmails {
		if e = normalizeEmail(e); e != "" {
			admins[e] = struct{}{}
		}
	}
	return &AuthUsecase{
		profileRepo: profileRepo,
		uow:         uow,
		jwtService:  jwtService,
		sessions:    deps.Sessions,
		verifier:    deps.Verifier,
		events:      deps.Events,
		metrics:     deps.Metrics,
		adminEmails: admins,
		now:         time.Now,
	}
}

// SignUp creates a pending essential-tier profile
func (u *AuthUsecase) SignUp(ctx context.Context, input *entities.SignUpInput) (*entities.Profile, error) {
	if err := crypto.ValidateNewPassword(input.Password, input.ConfirmPassword); err != nil {
		return nil, domainerrors.BadRequest(err.Error())
	}

	email := normalizeEmail(input.Email)
	_, err := u.profileRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, domainerrors.Conflict("email already registered")
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	profile := u.newProfile(email, strings.TrimSpace(input.FullName), entities.ProviderPassword)
	profile.PasswordHash = passwordHash

	if err := u.profileRepo.Create(ctx, profile); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("email already registered")
		}
		return nil, err
	}
	return profile, nil
}

// SignIn authenticates with email and password
func (u *AuthUsecase) SignIn(ctx context.Context, input *entities.SignInInput) (*entities.AuthResponse, error) {
	profile, err := u.profileRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if profile.PasswordHash == "" || !crypto.CheckPassword(input.Password, profile.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}
	if profile.IsSuspended() {
		return nil, domainerrors.Suspended()
	}

	return u.issue(ctx, profile, input.UseSession)
}

// SignInWithOAuth verifies an ID token and signs the matching profile in,
// creating it on first use
func (u *AuthUsecase) SignInWithOAuth(ctx context.Context, input *entities.OAuthSignInInput) (*entities.AuthResponse, error) {
	if u.verifier == nil {
		return nil, domainerrors.BadRequest("oauth sign-in is not configured")
	}
	identity, err := u.verifier.Verify(ctx, input.IDToken)
	if err != nil {
		if errors.Is(err, oauth.ErrNotConfigured) {
			return nil, domainerrors.BadRequest("oauth sign-in is not configured")
		}
		logger.Warn(ctx, "OAuth ID token rejected", zap.Error(err))
		return nil, domainerrors.Unauthorized("invalid identity token")
	}

	profile, err := u.profileRepo.GetByEmail(ctx, identity.Email)
	switch {
	case errors.Is(err, domainerrors.ErrNotFound):
		name := strings.TrimSpace(identity.Name)
		if name == "" {
			name = strings.SplitN(identity.Email, "@", 2)[0]
		}
		profile = u.newProfile(identity.Email, name, entities.ProviderOAuth)
		if err := u.profileRepo.Create(ctx, profile); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	if profile.IsSuspended() {
		return nil, domainerrors.Suspended()
	}
	return u.issue(ctx, profile, input.UseSession)
}

// SignOut drops the redis session, if any, and announces the sign-out
func (u *AuthUsecase) SignOut(ctx context.Context, sessionID string, profileID uuid.UUID) error {
	if sessionID != "" && u.sessions != nil {
		if err := u.sessions.DeleteSession(ctx, sessionID); err != nil {
			return err
		}
	}
	u.publish(ctx, EventSignedOut, profileID, "")
	return nil
}

// RefreshToken issues a new pair from a refresh token
func (u *AuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := u.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeUnauthorized, "invalid or expired refresh token", err)
	}

	profile, err := u.profileRepo.GetByID(ctx, claims.ProfileID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.Unauthorized("profile no longer exists")
		}
		return nil, err
	}
	if profile.IsSuspended() {
		return nil, domainerrors.Suspended()
	}

	pair, err := u.jwtService.GenerateTokenPair(profile.ID, profile.Email, string(profile.Role))
	if err != nil {
		return nil, err
	}
	u.publish(ctx, EventTokenRefreshed, profile.ID, string(profile.Role))
	return pair, nil
}

// RefreshSession rotates the tokens held by a redis session
func (u *AuthUsecase) RefreshSession(ctx context.Context, sessionID string) error {
	if u.sessions == nil {
		return domainerrors.BadRequest("sessions are not enabled")
	}
	session, err := u.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return domainerrors.Unauthorized("session expired")
	}
	pair, err := u.RefreshToken(ctx, session.RefreshToken)
	if err != nil {
		return err
	}
	session.AccessToken = pair.AccessToken
	session.RefreshToken = pair.RefreshToken
	return u.sessions.CreateSession(ctx, sessionID, session, u.jwtService.RefreshExpiry())
}

// GetProfile returns the signed-in profile
func (u *AuthUsecase) GetProfile(ctx context.Context, id uuid.UUID) (*entities.Profile, error) {
	return u.profileRepo.GetByID(ctx, id)
}

// IsAdmin is derived from the role column
func (u *AuthUsecase) IsAdmin(profile *entities.Profile) bool {
	return profile.IsAdmin()
}

// SyncAdminAllowList promotes every allow-listed email to admin. It runs
// once at startup.
func (u *AuthUsecase) SyncAdminAllowList(ctx context.Context) (int64, error) {
	if len(u.adminEmails) == 0 {
		return 0, nil
	}
	emails := make([]string, 0, len(u.adminEmails))
	for e := range u.adminEmails {
		emails = append(emails, e)
	}

	var promoted int64
	err := u.uow.Do(ctx, func(ctx context.Context) error {
		n, err := u.profileRepo.SetRoleByEmails(ctx, emails, entities.RoleAdmin)
		promoted = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return promoted, nil
}

func (u *AuthUsecase) newProfile(email, fullName string, provider entities.AuthProvider) *entities.Profile {
	role := entities.RoleUser
	if _, ok := u.adminEmails[email]; ok {
		role = entities.RoleAdmin
	}
	now := u.now()
	return &entities.Profile{
		Email:                email,
		FullName:             fullName,
		AuthProvider:         provider,
		MembershipTier:       entities.TierEssential,
		AccountStatus:        entities.AccountPending,
		PaymentStatus:        entities.PaymentPending,
		NotificationsEnabled: true,
		Role:                 role,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}

func (u *AuthUsecase) issue(ctx context.Context, profile *entities.Profile, useSession bool) (*entities.AuthResponse, error) {
	pair, err := u.jwtService.GenerateTokenPair(profile.ID, profile.Email, string(profile.Role))
	if err != nil {
		return nil, err
	}

	resp := &entities.AuthResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
		Profile:      profile,
		RedirectTo:   landingPath(profile),
	}

	if useSession && u.sessions != nil {
		sessionID, err := crypto.GenerateSessionID()
		if err != nil {
			return nil, err
		}
		if err := u.sessions.CreateSession(ctx, sessionID, &redis.SessionData{
			ProfileID:    profile.ID.String(),
			Role:         string(profile.Role),
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
			CreatedAt:    u.now(),
		}, u.jwtService.RefreshExpiry()); err != nil {
			return nil, err
		}
		resp.SessionID = sessionID
		resp.AccessToken = ""
		resp.RefreshToken = ""
	}

	u.publish(ctx, EventSignedIn, profile.ID, string(profile.Role))
	return resp, nil
}

func (u *AuthUsecase) publish(ctx context.Context, event string, profileID uuid.UUID, role string) {
	u.metrics.ObserveAuthEvent(event)
	if u.events == nil {
		return
	}
	msg := SessionEvent{Event: event, ProfileID: profileID, Role: role, At: u.now().UTC()}
	if err := u.events.Publish(ctx, AuthEventsChannel, msg); err != nil {
		logger.Warn(ctx, "Failed to publish session event", zap.String("event", event), zap.Error(err))
	}
}

func landingPath(profile *entities.Profile) string {
	if profile.IsAdmin() {
		return AdminDashboardPath
	}
	return MemberDashboardPath
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
