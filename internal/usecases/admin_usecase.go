package usecases

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"luxe-estates.backend/internal/domain/entities"
	domainerrors "luxe-estates.backend/internal/domain/errors"
	"luxe-estates.backend/internal/domain/repositories"
	"luxe-estates.backend/pkg/currency"
	"luxe-estates.backend/pkg/logger"
	"luxe-estates.backend/pkg/storage"
	"luxe-estates.backend/pkg/utils"
)

// MediaStore holds uploaded property images
type MediaStore interface {
	Upload(ctx context.Context, r io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, publicURL string) error
}

// ProfileQuery is the admin user table state re-fetched after every mutation
type ProfileQuery struct {
	Filter entities.ProfileFilter
	Page   int
	Limit  int
}

// ProfilePage is one page of the admin user table
type ProfilePage struct {
	Items []*entities.Profile  `json:"items"`
	Meta  utils.PaginationMeta `json:"meta"`
}

// DashboardStats backs the admin dashboard counters
type DashboardStats struct {
	Properties *entities.PropertyStats `json:"properties"`
	Profiles   *entities.ProfileStats  `json:"profiles"`
}

// AdminUsecase handles admin property and user management
type AdminUsecase struct {
	propertyRepo repositories.PropertyRepository
	profileRepo  repositories.ProfileRepository
	media        MediaStore
	now          func() time.Time
}

// NewAdminUsecase creates a new admin usecase
func NewAdminUsecase(
	propertyRepo repositories.PropertyRepository,
	profileRepo repositories.ProfileRepository,
	media MediaStore,
) *AdminUsecase {
	return &AdminUsecase{
		propertyRepo: propertyRepo,
		profileRepo:  profileRepo,
		media:        media,
		now:          time.Now,
	}
}

// ListProperties returns the full, ungated catalog
func (u *AdminUsecase) ListProperties(ctx context.Context) ([]*entities.Property, error) {
	properties, err := u.propertyRepo.ListAll(ctx)
	if err != nil {
		return nil, domainerrors.Upstream(err)
	}
	return properties, nil
}

// GetProperty returns one listing regardless of exclusivity
func (u *AdminUsecase) GetProperty(ctx context.Context, id uuid.UUID) (*entities.Property, error) {
	p, err := u.propertyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, u.mapRepoError(err, "property not found")
	}
	return p, nil
}

// CreateProperty validates input before inserting
func (u *AdminUsecase) CreateProperty(ctx context.Context, input *entities.PropertyInput) (*entities.Property, error) {
	p, err := propertyFromInput(input)
	if err != nil {
		return nil, err
	}
	now := u.now()
	p.CreatedAt, p.UpdatedAt = now, now

	if err := u.propertyRepo.Create(ctx, p); err != nil {
		return nil, domainerrors.Upstream(err)
	}
	return p, nil
}

// UpdateProperty replaces every editable field of a listing
func (u *AdminUsecase) UpdateProperty(ctx context.Context, id uuid.UUID, input *entities.PropertyInput) (*entities.Property, error) {
	p, err := propertyFromInput(input)
	if err != nil {
		return nil, err
	}
	p.ID = id

	if err := u.propertyRepo.Update(ctx, p); err != nil {
		return nil, u.mapRepoError(err, "property not found")
	}
	return u.GetProperty(ctx, id)
}

// DeleteProperty removes a listing only when the caller confirmed it
func (u *AdminUsecase) DeleteProperty(ctx context.Context, id uuid.UUID, confirmed bool) error {
	if !confirmed {
		return domainerrors.ConfirmationRequired("deleting a property must be confirmed")
	}
	if err := u.propertyRepo.Delete(ctx, id); err != nil {
		return u.mapRepoError(err, "property not found")
	}
	return nil
}

// UploadImage stores one image and returns its public URL
func (u *AdminUsecase) UploadImage(ctx context.Context, r io.Reader, size int64, contentType string) (string, error) {
	if u.media == nil {
		return "", domainerrors.InternalServerError("image storage is not configured")
	}
	url, err := u.media.Upload(ctx, r, size, contentType)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return "", domainerrors.BadRequest(err.Error())
		}
		logger.Error(ctx, "Image upload failed", zap.Error(err))
		return "", domainerrors.Upstream(err)
	}
	return url, nil
}

// RemoveImage deletes a previously uploaded image
func (u *AdminUsecase) RemoveImage(ctx context.Context, publicURL string) error {
	if u.media == nil {
		return domainerrors.InternalServerError("image storage is not configured")
	}
	if err := u.media.Remove(ctx, publicURL); err != nil {
		if errors.Is(err, storage.ErrForeignURL) {
			return domainerrors.BadRequest(err.Error())
		}
		return domainerrors.Upstream(err)
	}
	return nil
}

// ListProfiles returns one filtered page of the user table
func (u *AdminUsecase) ListProfiles(ctx context.Context, q ProfileQuery) (*ProfilePage, error) {
	params := utils.GetPaginationParams(q.Page, q.Limit).WithDefaultLimit()
	profiles, total, err := u.profileRepo.List(ctx, q.Filter, params.Limit, params.CalculateOffset())
	if err != nil {
		return nil, domainerrors.Upstream(err)
	}
	return &ProfilePage{
		Items: profiles,
		Meta:  utils.CalculateMeta(total, params.Page, params.Limit),
	}, nil
}

// UpdateTier changes a member's tier and returns the refreshed page
func (u *AdminUsecase) UpdateTier(ctx context.Context, id uuid.UUID, tier entities.MembershipTier, q ProfileQuery) (*ProfilePage, error) {
	if !tier.Valid() {
		return nil, domainerrors.BadRequest("unknown membership tier")
	}
	return u.mutateProfile(ctx, q, func() error {
		return u.profileRepo.UpdateTier(ctx, id, tier)
	})
}

// UpdateAccountStatus suspends or reactivates an account; the tier is kept
func (u *AdminUsecase) UpdateAccountStatus(ctx context.Context, id uuid.UUID, status entities.AccountStatus, q ProfileQuery) (*ProfilePage, error) {
	if !status.Valid() {
		return nil, domainerrors.BadRequest("unknown account status")
	}
	return u.mutateProfile(ctx, q, func() error {
		return u.profileRepo.UpdateAccountStatus(ctx, id, status)
	})
}

// UpdatePaymentStatus stamps the verification time on a move to verified
// and clears it otherwise
func (u *AdminUsecase) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status entities.PaymentStatus, q ProfileQuery) (*ProfilePage, error) {
	if !status.Valid() {
		return nil, domainerrors.BadRequest("unknown payment status")
	}
	var verifiedAt *time.Time
	if status == entities.PaymentVerified {
		now := u.now().UTC()
		verifiedAt = &now
	}
	return u.mutateProfile(ctx, q, func() error {
		return u.profileRepo.UpdatePaymentStatus(ctx, id, status, verifiedAt)
	})
}

// UpdateRole promotes or demotes a profile. Admins cannot demote themselves.
func (u *AdminUsecase) UpdateRole(ctx context.Context, actorID, id uuid.UUID, role entities.Role, q ProfileQuery) (*ProfilePage, error) {
	if !role.Valid() {
		return nil, domainerrors.BadRequest("unknown role")
	}
	if actorID == id && role != entities.RoleAdmin {
		return nil, domainerrors.BadRequest("you cannot remove your own admin role")
	}
	return u.mutateProfile(ctx, q, func() error {
		return u.profileRepo.UpdateRole(ctx, id, role)
	})
}

// Stats returns the dashboard counters
func (u *AdminUsecase) Stats(ctx context.Context) (*DashboardStats, error) {
	properties, err := u.propertyRepo.Stats(ctx)
	if err != nil {
		return nil, domainerrors.Upstream(err)
	}
	profiles, err := u.profileRepo.Stats(ctx)
	if err != nil {
		return nil, domainerrors.Upstream(err)
	}
	return &DashboardStats{Properties: properties, Profiles: profiles}, nil
}

func (u *AdminUsecase) mutateProfile(ctx context.Context, q ProfileQuery, mutate func() error) (*ProfilePage, error) {
	if err := mutate(); err != nil {
		return nil, u.mapRepoError(err, "profile not found")
	}
	return u.ListProfiles(ctx, q)
}

func (u *AdminUsecase) mapRepoError(err error, notFound string) error {
	if errors.Is(err, domainerrors.ErrNotFound) {
		return domainerrors.NotFound(notFound)
	}
	return domainerrors.Upstream(err)
}

func propertyFromInput(in *entities.PropertyInput) (*entities.Property, error) {
	if !in.Category.Valid() {
		return nil, domainerrors.BadRequest("unknown property category")
	}
	images := compactStrings(in.Images)
	if len(images) == 0 {
		return nil, domainerrors.BadRequest("at least one image is required")
	}

	code := currency.Base
	if strings.TrimSpace(in.Currency) != "" {
		parsed, ok := currency.ParseCode(in.Currency)
		if !ok {
			return nil, domainerrors.BadRequest("unsupported currency")
		}
		code = parsed
	}

	listing := in.ListingType
	if listing == "" {
		listing = entities.ListingSale
	}
	if listing != entities.ListingSale && listing != entities.ListingRental {
		return nil, domainerrors.BadRequest("unknown listing type")
	}

	p := &entities.Property{
		Title:                 strings.TrimSpace(in.Title),
		Description:           strings.TrimSpace(in.Description),
		Location:              strings.TrimSpace(in.Location),
		Category:              in.Category,
		Price:                 strings.TrimSpace(in.Price),
		Currency:              code,
		Bedrooms:              in.Bedrooms,
		Bathrooms:             in.Bathrooms,
		Garage:                in.Garage,
		Parking:               in.Parking,
		Area:                  in.Area,
		Images:                images,
		ExternalLinks:         compactStrings(in.ExternalLinks),
		Featured:              in.Featured,
		Exclusive:             in.Exclusive,
		InvestmentOpportunity: in.InvestmentOpportunity,
		ListingType:           listing,
	}

	if listing == entities.ListingRental {
		period := entities.RentalPeriod(strings.TrimSpace(in.RentalPeriod))
		if period == "" {
			period = entities.RentalMonthly
		}
		if !period.Valid() {
			return nil, domainerrors.BadRequest("unknown rental period")
		}
		p.RentalPeriod = null.StringFrom(string(period))
		if deposit := strings.TrimSpace(in.SecurityDeposit); deposit != "" {
			p.SecurityDeposit = null.StringFrom(deposit)
		}
	}

	if in.ROIPercentage != nil {
		if *in.ROIPercentage < 0 {
			return nil, domainerrors.BadRequest("roi percentage cannot be negative")
		}
		p.ROIPercentage = null.Float64From(*in.ROIPercentage)
	}
	return p, nil
}

func compactStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
