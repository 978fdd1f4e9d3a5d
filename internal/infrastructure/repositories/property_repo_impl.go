package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"luxe-estates.backend/internal/domain/entities"
	domainerrors "luxe-estates.backend/internal/domain/errors"
	"luxe-estates.backend/internal/infrastructure/models"
	"luxe-estates.backend/pkg/utils"
	"luxe-estates.backend/pkg/currency"
)

// PropertyRepository implements property data operations
type PropertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository creates a new property repository
func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// Create creates a new property
func (r *PropertyRepository) Create(ctx context.Context, property *entities.Property) error {
	m := r.toModel(property)
	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	property.ID = m.ID
	return nil
}

// GetByID gets a property by ID
func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Property, error) {
	var m models.Property
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// Update replaces every editable column of a property
func (r *PropertyRepository) Update(ctx context.Context, property *entities.Property) error {
	m := r.toModel(property)
	updates := map[string]interface{}{
		"title":                  m.Title,
		"description":            m.Description,
		"location":               m.Location,
		"category":               m.Category,
		"price":                  m.Price,
		"currency":               m.Currency,
		"bedrooms":               m.Bedrooms,
		"bathrooms":              m.Bathrooms,
		"garage":                 m.Garage,
		"parking":                m.Parking,
		"area":                   m.Area,
		"images":                 m.Images,
		"external_links":         m.ExternalLinks,
		"featured":               m.Featured,
		"exclusive":              m.Exclusive,
		"investment_opportunity": m.InvestmentOpportunity,
		"listing_type":           m.ListingType,
		"rental_period":          m.RentalPeriod,
		"security_deposit":       m.SecurityDeposit,
		"roi_percentage":         m.ROIPercentage,
		"updated_at":             time.Now(),
	}

	result := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Property{}).Where("id = ?", property.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Delete soft deletes a property
func (r *PropertyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).WithContext(ctx).Delete(&models.Property{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// ListAll returns every live property, newest first
func (r *PropertyRepository) ListAll(ctx context.Context) ([]*entities.Property, error) {
	var ms []models.Property
	if err := GetDB(ctx, r.db).WithContext(ctx).Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

// ListFeatured returns featured properties, newest first
func (r *PropertyRepository) ListFeatured(ctx context.Context) ([]*entities.Property, error) {
	var ms []models.Property
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("featured = ?", true).Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	return r.toEntities(ms), nil
}

// Stats counts properties for the admin dashboard
func (r *PropertyRepository) Stats(ctx context.Context) (*entities.PropertyStats, error) {
	stats := &entities.PropertyStats{}
	counts := []struct {
		dst   *int64
		where string
		arg   interface{}
	}{
		{&stats.Total, "", nil},
		{&stats.Exclusive, "exclusive = ?", true},
		{&stats.Featured, "featured = ?", true},
		{&stats.Rentals, "listing_type = ?", string(entities.ListingRental)},
	}
	for _, c := range counts {
		q := GetDB(ctx, r.db).WithContext(ctx).Model(&models.Property{})
		if c.where != "" {
			q = q.Where(c.where, c.arg)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return stats, nil
}

func (r *PropertyRepository) toEntities(ms []models.Property) []*entities.Property {
	properties := make([]*entities.Property, 0, len(ms))
	for i := range ms {
		properties = append(properties, r.toEntity(&ms[i]))
	}
	return properties
}

func (r *PropertyRepository) toModel(p *entities.Property) *models.Property {
	id := p.ID
	if id == uuid.Nil {
		id = utils.GenerateUUIDv7()
	}
	code := p.Currency
	if code == "" {
		code = currency.Base
	}
	listing := p.ListingType
	if listing == "" {
		listing = entities.ListingSale
	}
	return &models.Property{
		ID:                    id,
		Title:                 p.Title,
		Description:           p.Description,
		Location:              p.Location,
		Category:              string(p.Category),
		Price:                 p.Price,
		Currency:              string(code),
		Bedrooms:              p.Bedrooms,
		Bathrooms:             p.Bathrooms,
		Garage:                p.Garage,
		Parking:               p.Parking,
		Area:                  p.Area,
		Images:                pq.StringArray(p.Images),
		ExternalLinks:         pq.StringArray(p.ExternalLinks),
		Featured:              p.Featured,
		Exclusive:             p.Exclusive,
		InvestmentOpportunity: p.InvestmentOpportunity,
		ListingType:           string(listing),
		RentalPeriod:          p.RentalPeriod.Ptr(),
		SecurityDeposit:       p.SecurityDeposit.Ptr(),
		ROIPercentage:         p.ROIPercentage.Ptr(),
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func (r *PropertyRepository) toEntity(m *models.Property) *entities.Property {
	return &entities.Property{
		ID:                    m.ID,
		Title:                 m.Title,
		Description:           m.Description,
		Location:              m.Location,
		Category:              entities.PropertyCategory(m.Category),
		Price:                 m.Price,
		Currency:              currency.Code(m.Currency),
		Bedrooms:              m.Bedrooms,
		Bathrooms:             m.Bathrooms,
		Garage:                m.Garage,
		Parking:               m.Parking,
		Area:                  m.Area,
		Images:                []string(m.Images),
		ExternalLinks:         []string(m.ExternalLinks),
		Featured:              m.Featured,
		Exclusive:             m.Exclusive,
		InvestmentOpportunity: m.InvestmentOpportunity,
		ListingType:           entities.ListingType(m.ListingType),
		RentalPeriod:          null.StringFromPtr(m.RentalPeriod),
		SecurityDeposit:       null.StringFromPtr(m.SecurityDeposit),
		ROIPercentage:         null.Float64FromPtr(m.ROIPercentage),
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}
