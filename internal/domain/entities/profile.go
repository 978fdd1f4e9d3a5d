package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// Role is the admin/user flag on a profile
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool { return r == RoleAdmin || r == RoleUser }

// MembershipTier is one of three ordered service levels
type MembershipTier string

const (
	TierEssential MembershipTier = "essential"
	TierSignature MembershipTier = "signature"
	TierPrestige  MembershipTier = "prestige"
)

// Rank orders tiers; unknown tiers rank 0
func (t MembershipTier) Rank() int {
	switch t {
	case TierEssential:
		return 1
	case TierSignature:
		return 2
	case TierPrestige:
		return 3
	}
	return 0
}

// Valid reports whether t is a known tier
func (t MembershipTier) Valid() bool { return t.Rank() > 0 }

// AccountStatus is the access axis of a profile, independent of tier
type AccountStatus string

const (
	AccountActive    AccountStatus = "active"
	AccountPending   AccountStatus = "pending"
	AccountSuspended AccountStatus = "suspended"
)

// Valid reports whether s is a known account status
func (s AccountStatus) Valid() bool {
	return s == AccountActive || s == AccountPending || s == AccountSuspended
}

// PaymentStatus tracks membership payment verification
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentVerified PaymentStatus = "verified"
	PaymentRejected PaymentStatus = "rejected"
)

// Valid reports whether s is a known payment status
func (s PaymentStatus) Valid() bool {
	return s == PaymentPending || s == PaymentVerified || s == PaymentRejected
}

// AuthProvider records how a profile signs in
type AuthProvider string

const (
	ProviderPassword AuthProvider = "password"
	ProviderOAuth    AuthProvider = "oauth"
)

// Profile represents a member or admin account
type Profile struct {
	ID                   uuid.UUID      `json:"id"`
	Email                string         `json:"email"`
	FullName             string         `json:"fullName"`
	PasswordHash         string         `json:"-"`
	AuthProvider         AuthProvider   `json:"authProvider"`
	MembershipTier       MembershipTier `json:"membershipTier"`
	AccountStatus        AccountStatus  `json:"accountStatus"`
	PaymentStatus        PaymentStatus  `json:"paymentStatus"`
	PaymentVerifiedAt    null.Time      `json:"paymentVerifiedAt"`
	NotificationsEnabled bool           `json:"notificationsEnabled"`
	Role                 Role           `json:"role"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
}

// IsAdmin is derived from the role column only
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// IsSuspended reports whether access is revoked
func (p *Profile) IsSuspended() bool {
	return p != nil && p.AccountStatus == AccountSuspended
}

// ProfileFilter narrows the admin user table
type ProfileFilter struct {
	Search        string         `form:"search"`
	Tier          MembershipTier `form:"tier"`
	Status        AccountStatus  `form:"status"`
	Role          Role           `form:"role"`
	PaymentStatus PaymentStatus  `form:"paymentStatus"`
}

// ProfileStats backs the admin dashboard counters
type ProfileStats struct {
	Total     int64 `json:"total"`
	Active    int64 `json:"active"`
	Pending   int64 `json:"pending"`
	Suspended int64 `json:"suspended"`
	Admins    int64 `json:"admins"`
}

// SignUpInput represents input for creating a profile
type SignUpInput struct {
	Email           string `json:"email" binding:"required,email"`
	FullName        string `json:"fullName" binding:"required,min=2,max=100"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// SignInInput represents input for password sign-in
type SignInInput struct {
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required"`
	UseSession bool   `json:"useSession"` // If true, store tokens in Redis and return SessionID
}

// OAuthSignInInput carries an ID token issued by the configured provider
type OAuthSignInInput struct {
	IDToken    string `json:"idToken" binding:"required"`
	UseSession bool   `json:"useSession"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	AccessToken  string    `json:"accessToken,omitempty"`
	RefreshToken string    `json:"refreshToken,omitempty"`
	ExpiresAt    time.Time `json:"expiresAt,omitempty"`
	SessionID    string    `json:"sessionId,omitempty"`
	Profile      *Profile  `json:"profile"`
	RedirectTo   string    `json:"redirectTo,omitempty"`
}

// UpdateProfileInput is the self-service profile update
type UpdateProfileInput struct {
	FullName             *string `json:"fullName" binding:"omitempty,min=2,max=100"`
	NotificationsEnabled *bool   `json:"notificationsEnabled"`
}

// ChangePasswordInput represents input for changing the profile password
type ChangePasswordInput struct {
	CurrentPassword    string `json:"currentPassword" binding:"required"`
	NewPassword        string `json:"newPassword" binding:"required"`
	ConfirmNewPassword string `json:"confirmNewPassword" binding:"required"`
}
