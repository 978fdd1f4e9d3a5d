package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"luxe-estates.backend/internal/domain/entities"
	domainerrors "luxe-estates.backend/internal/domain/errors"
	"luxe-estates.backend/internal/infrastructure/models"
	"luxe-estates.backend/pkg/utils"
)

// ProfileRepository implements profile data operations
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Create creates a new profile
func (r *ProfileRepository) Create(ctx context.Context, profile *entities.Profile) error {
	id := profile.ID
	if id == uuid.Nil {
		id = utils.GenerateUUIDv7()
	}
	role := profile.Role
	if role == "" {
		role = entities.RoleUser
	}
	m := &models.Profile{
		ID:                   id,
		Email:                strings.ToLower(profile.Email),
		FullName:             profile.FullName,
		PasswordHash:         profile.PasswordHash,
		AuthProvider:         string(profile.AuthProvider),
		MembershipTier:       string(profile.MembershipTier),
		AccountStatus:        string(profile.AccountStatus),
		PaymentStatus:        string(profile.PaymentStatus),
		PaymentVerifiedAt:    profile.PaymentVerifiedAt.Ptr(),
		NotificationsEnabled: profile.NotificationsEnabled,
		Role:                 string(role),
		CreatedAt:            profile.CreatedAt,
		UpdatedAt:            profile.UpdatedAt,
	}

	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	profile.ID = m.ID
	profile.Role = role
	return nil
}

// GetByID gets a profile by ID
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Profile, error) {
	var m models.Profile
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetByEmail gets a profile by email, case-insensitively
func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*entities.Profile, error) {
	var m models.Profile
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// UpdateSelf updates the fields a member may change on their own profile
func (r *ProfileRepository) UpdateSelf(ctx context.Context, profile *entities.Profile) error {
	return r.update(ctx, profile.ID, map[string]interface{}{
		"full_name":             profile.FullName,
		"notifications_enabled": profile.NotificationsEnabled,
	})
}

// UpdatePassword replaces the password hash
func (r *ProfileRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.update(ctx, id, map[string]interface{}{"password_hash": passwordHash})
}

// UpdateTier changes the membership tier
func (r *ProfileRepository) UpdateTier(ctx context.Context, id uuid.UUID, tier entities.MembershipTier) error {
	return r.update(ctx, id, map[string]interface{}{"membership_tier": string(tier)})
}

// UpdateAccountStatus changes the account status; the tier is untouched
func (r *ProfileRepository) UpdateAccountStatus(ctx context.Context, id uuid.UUID, status entities.AccountStatus) error {
	return r.update(ctx, id, map[string]interface{}{"account_status": string(status)})
}

// UpdatePaymentStatus changes the payment status and its verification stamp
func (r *ProfileRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entities.PaymentStatus, verifiedAt *time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"payment_status":      string(status),
		"payment_verified_at": verifiedAt,
	})
}

// UpdateRole promotes or demotes a profile
func (r *ProfileRepository) UpdateRole(ctx context.Context, id uuid.UUID, role entities.Role) error {
	return r.update(ctx, id, map[string]interface{}{"role": string(role)})
}

// SetRoleByEmails applies role to every profile whose email is listed
func (r *ProfileRepository) SetRoleByEmails(ctx context.Context, emails []string, role entities.Role) (int64, error) {
	if len(emails) == 0 {
		return 0, nil
	}
	lowered := make([]string, 0, len(emails))
	for _, e := range emails {
		lowered = append(lowered, strings.ToLower(strings.TrimSpace(e)))
	}
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Profile{}).
		Where("email IN ? AND role <> ?", lowered, string(role)).
		Updates(map[string]interface{}{
			"role":       string(role),
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// List returns one page of profiles matching filter, newest first, and the total match count
func (r *ProfileRepository) List(ctx context.Context, filter entities.ProfileFilter, limit, offset int) ([]*entities.Profile, int64, error) {
	query := r.applyFilter(GetDB(ctx, r.db).WithContext(ctx).Model(&models.Profile{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pageQuery := r.applyFilter(GetDB(ctx, r.db).WithContext(ctx), filter).Order("created_at DESC")
	if limit > 0 {
		pageQuery = pageQuery.Limit(limit).Offset(offset)
	}

	var ms []models.Profile
	if err := pageQuery.Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	profiles := make([]*entities.Profile, 0, len(ms))
	for i := range ms {
		profiles = append(profiles, r.toEntity(&ms[i]))
	}
	return profiles, total, nil
}

// Stats counts profiles by account status and role
func (r *ProfileRepository) Stats(ctx context.Context) (*entities.ProfileStats, error) {
	stats := &entities.ProfileStats{}
	counts := []struct {
		dst   *int64
		where string
		arg   interface{}
	}{
		{&stats.Total, "", nil},
		{&stats.Active, "account_status = ?", string(entities.AccountActive)},
		{&stats.Pending, "account_status = ?", string(entities.AccountPending)},
		{&stats.Suspended, "account_status = ?", string(entities.AccountSuspended)},
		{&stats.Admins, "role = ?", string(entities.RoleAdmin)},
	}
	for _, c := range counts {
		q := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Profile{})
		if c.where != "" {
			q = q.Where(c.where, c.arg)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func (r *ProfileRepository) applyFilter(q *gorm.DB, filter entities.ProfileFilter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		term := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", term, term)
	}
	if filter.Tier != "" {
		q = q.Where("membership_tier = ?", string(filter.Tier))
	}
	if filter.Status != "" {
		q = q.Where("account_status = ?", string(filter.Status))
	}
	if filter.Role != "" {
		q = q.Where("role = ?", string(filter.Role))
	}
	if filter.PaymentStatus != "" {
		q = q.Where("payment_status = ?", string(filter.PaymentStatus))
	}
	return q
}

func (r *ProfileRepository) update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) toEntity(m *models.Profile) *entities.Profile {
	return &entities.Profile{
		ID:                   m.ID,
		Email:                m.Email,
		FullName:             m.FullName,
		PasswordHash:         m.PasswordHash,
		AuthProvider:         entities.AuthProvider(m.AuthProvider),
		MembershipTier:       entities.MembershipTier(m.MembershipTier),
		AccountStatus:        entities.AccountStatus(m.AccountStatus),
		PaymentStatus:        entities.PaymentStatus(m.PaymentStatus),
		PaymentVerifiedAt:    null.TimeFromPtr(m.PaymentVerifiedAt),
		NotificationsEnabled: m.NotificationsEnabled,
		Role:                 entities.Role(m.Role),
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
