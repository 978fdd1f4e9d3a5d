package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"luxe-estates.backend/internal/domain/entities"
)

// ProfileRepository defines profile data operations
type ProfileRepository interface {
	Create(ctx context.Context, profile *entities.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Profile, error)
	GetByEmail(ctx context.Context, email string) (*entities.Profile, error)
	// UpdateSelf writes the self-service fields only
	UpdateSelf(ctx context.Context, profile *entities.Profile) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateTier(ctx context.Context, id uuid.UUID, tier entities.MembershipTier) error
	UpdateAccountStatus(ctx context.Context, id uuid.UUID, status entities.AccountStatus) error
	// UpdatePaymentStatus stamps verifiedAt; a nil value clears it
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entities.PaymentStatus, verifiedAt *time.Time) error
	UpdateRole(ctx context.Context, id uuid.UUID, role entities.Role) error
	SetRoleByEmails(ctx context.Context, emails []string, role entities.Role) (int64, error)
	List(ctx context.Context, filter entities.ProfileFilter, limit, offset int) ([]*entities.Profile, int64, error)
	Stats(ctx context.Context) (*entities.ProfileStats, error)
}
