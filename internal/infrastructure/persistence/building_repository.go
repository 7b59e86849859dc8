package persistence

import (
	"context"
	"errors"

	"github.com/boardpay/backend/internal/domain/property"
	"github.com/boardpay/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBuildingRepository implements BuildingRepository using GORM
type GormBuildingRepository struct {
	db *gorm.DB
}

// NewGormBuildingRepository creates a new GormBuildingRepository
func NewGormBuildingRepository(db *gorm.DB) *GormBuildingRepository {
	return &GormBuildingRepository{db: db}
}

// FindByID finds a building by its ID, nil when absent
func (r *GormBuildingRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Building, error) {
	var model models.BuildingModel
	if err := dbFrom(ctx, r.db).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a building
func (r *GormBuildingRepository) Save(ctx context.Context, building *property.Building) error {
	model := models.BuildingModelFromDomain(building)
	return dbFrom(ctx, r.db).Save(model).Error
}

// Ensure GormBuildingRepository implements BuildingRepository
var _ property.BuildingRepository = (*GormBuildingRepository)(nil)
