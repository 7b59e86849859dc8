package persistence

import (
	"context"
	"errors"

	"github.com/boardpay/backend/internal/domain/billing"
	"github.com/boardpay/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMeterReadingRepository implements MeterReadingRepository using GORM
type GormMeterReadingRepository struct {
	db *gorm.DB
}

// NewGormMeterReadingRepository creates a new GormMeterReadingRepository
func NewGormMeterReadingRepository(db *gorm.DB) *GormMeterReadingRepository {
	return &GormMeterReadingRepository{db: db}
}

// FindByID finds a meter reading by its ID, nil when absent
func (r *GormMeterReadingRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.MeterReading, error) {
	var model models.MeterReadingModel
	if err := dbFrom(ctx, r.db).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindForPeriod returns a tenant's readings inside the billing month,
// ordered by reading date ascending
func (r *GormMeterReadingRepository) FindForPeriod(ctx context.Context, tenantID uuid.UUID, period billing.Period) ([]billing.MeterReading, error) {
	var readingModels []models.MeterReadingModel
	if err := dbFrom(ctx, r.db).
		Where("tenant_id = ? AND reading_date >= ? AND reading_date < ?",
			tenantID, period.Start(), period.Next().Start()).
		Order("reading_date ASC").
		Find(&readingModels).Error; err != nil {
		return nil, err
	}
	readings := make([]billing.MeterReading, len(readingModels))
	for i, model := range readingModels {
		readings[i] = *model.ToDomain()
	}
	return readings, nil
}

// Save creates or updates a meter reading
func (r *GormMeterReadingRepository) Save(ctx context.Context, reading *billing.MeterReading) error {
	model := models.MeterReadingModelFromDomain(reading)
	return dbFrom(ctx, r.db).Save(model).Error
}

// Ensure GormMeterReadingRepository implements MeterReadingRepository
var _ billing.MeterReadingRepository = (*GormMeterReadingRepository)(nil)
