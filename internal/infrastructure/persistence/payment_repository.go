package persistence

import (
	"context"

	"github.com/boardpay/backend/internal/domain/billing"
	"github.com/boardpay/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Save appends a payment to the ledger
func (r *GormPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return dbFrom(ctx, r.db).Save(model).Error
}

// FindByBill returns the payment ledger for a bill, oldest first
func (r *GormPaymentRepository) FindByBill(ctx context.Context, billID uuid.UUID) ([]billing.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := dbFrom(ctx, r.db).
		Where("bill_id = ?", billID).
		Order("paid_at ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	payments := make([]billing.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments, nil
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
