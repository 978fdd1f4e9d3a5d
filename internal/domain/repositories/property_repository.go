package repositories

import (
	"context"

	"github.com/google/uuid"
	"luxe-estates.backend/internal/domain/entities"
)

// PropertyRepository defines property data operations
type PropertyRepository interface {
	Create(ctx context.Context, property *entities.Property) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Property, error)
	Update(ctx context.Context, property *entities.Property) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListAll returns the full catalog, newest first
	ListAll(ctx context.Context) ([]*entities.Property, error)
	ListFeatured(ctx context.Context) ([]*entities.Property, error)
	Stats(ctx context.Context) (*entities.PropertyStats, error)
}
