package persistence

import (
	"context"
	"errors"

	"github.com/boardpay/backend/internal/domain/property"
	"github.com/boardpay/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTenantRepository implements TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID finds a tenant by its ID, nil when absent
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Tenant, error) {
	var model models.TenantModel
	if err := dbFrom(ctx, r.db).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBillable returns all non-archived tenants with an assigned room
func (r *GormTenantRepository) FindBillable(ctx context.Context) ([]property.Tenant, error) {
	var tenantModels []models.TenantModel
	if err := dbFrom(ctx, r.db).
		Where("archived = ? AND room_id IS NOT NULL", false).
		Order("last_name ASC, first_name ASC").
		Find(&tenantModels).Error; err != nil {
		return nil, err
	}
	tenants := make([]property.Tenant, len(tenantModels))
	for i, model := range tenantModels {
		tenants[i] = *model.ToDomain()
	}
	return tenants, nil
}

// Save creates or updates a tenant
func (r *GormTenantRepository) Save(ctx context.Context, tenant *property.Tenant) error {
	model := models.TenantModelFromDomain(tenant)
	return dbFrom(ctx, r.db).Save(model).Error
}

// Ensure GormTenantRepository implements TenantRepository
var _ property.TenantRepository = (*GormTenantRepository)(nil)
