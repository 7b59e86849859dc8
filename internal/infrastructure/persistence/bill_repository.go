package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/boardpay/backend/internal/domain/billing"
	"github.com/boardpay/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBillRepository implements BillRepository using GORM
type GormBillRepository struct {
	db *gorm.DB
}

// NewGormBillRepository creates a new GormBillRepository
func NewGormBillRepository(db *gorm.DB) *GormBillRepository {
	return &GormBillRepository{db: db}
}

// FindByID finds a bill by its ID. A missing bill is reported as a nil
// bill without error; callers translate that to their own not-found
// semantics.
func (r *GormBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	var model models.BillModel
	if err := dbFrom(ctx, r.db).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds bills matching the filter along with the unpaged total
func (r *GormBillRepository) FindAll(ctx context.Context, filter billing.BillFilter) ([]billing.Bill, int64, error) {
	query := dbFrom(ctx, r.db).Model(&models.BillModel{})
	query = r.applyFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.applyOrdering(query, filter)
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}

	var billModels []models.BillModel
	if err := query.Find(&billModels).Error; err != nil {
		return nil, 0, err
	}
	bills := make([]billing.Bill, len(billModels))
	for i, model := range billModels {
		bills[i] = *model.ToDomain()
	}
	return bills, total, nil
}

// ExistsForPeriod checks whether the tenant already has a bill for the cycle
func (r *GormBillRepository) ExistsForPeriod(ctx context.Context, tenantID uuid.UUID, period billing.Period) (bool, error) {
	var count int64
	if err := dbFrom(ctx, r.db).
		Model(&models.BillModel{}).
		Where("tenant_id = ? AND billing_year = ? AND billing_month = ?", tenantID, period.Year, int(period.Month)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindPeriods returns the set of billed cycles for a tenant
func (r *GormBillRepository) FindPeriods(ctx context.Context, tenantID uuid.UUID) ([]billing.Period, error) {
	var rows []struct {
		BillingYear  int
		BillingMonth int
	}
	if err := dbFrom(ctx, r.db).
		Model(&models.BillModel{}).
		Select("billing_year, billing_month").
		Where("tenant_id = ?", tenantID).
		Order("billing_year ASC, billing_month ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	periods := make([]billing.Period, len(rows))
	for i, row := range rows {
		periods[i] = billing.NewPeriod(time.Month(row.BillingMonth), row.BillingYear)
	}
	return periods, nil
}

// FindEscalatable returns NotPaid and Pending bills with a due date
// before asOf. Past-due is a calendar-day notion, so asOf is truncated
// to the start of its UTC day: a bill due today is not fetched until
// tomorrow, matching the escalation check on the bill itself.
func (r *GormBillRepository) FindEscalatable(ctx context.Context, asOf time.Time) ([]billing.Bill, error) {
	dayStart := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	var billModels []models.BillModel
	if err := dbFrom(ctx, r.db).
		Where("status IN ? AND due_date < ?",
			[]string{billing.BillStatusNotPaid.String(), billing.BillStatusPending.String()}, dayStart).
		Order("due_date ASC").
		Find(&billModels).Error; err != nil {
		return nil, err
	}
	bills := make([]billing.Bill, len(billModels))
	for i, model := range billModels {
		bills[i] = *model.ToDomain()
	}
	return bills, nil
}

// FindDueBetween returns approved, unpaid bills due inside the window
func (r *GormBillRepository) FindDueBetween(ctx context.Context, from, to time.Time) ([]billing.Bill, error) {
	var billModels []models.BillModel
	if err := dbFrom(ctx, r.db).
		Where("is_approved = ? AND status IN ? AND due_date >= ? AND due_date <= ?",
			true,
			[]string{
				billing.BillStatusNotPaid.String(),
				billing.BillStatusPending.String(),
				billing.BillStatusOverdue.String(),
			}, from, to).
		Order("due_date ASC").
		Find(&billModels).Error; err != nil {
		return nil, err
	}
	bills := make([]billing.Bill, len(billModels))
	for i, model := range billModels {
		bills[i] = *model.ToDomain()
	}
	return bills, nil
}

// Save creates or updates a bill. The unique index on (tenant_id,
// billing_year, billing_month) rejects a second bill for the same
// cycle.
func (r *GormBillRepository) Save(ctx context.Context, bill *billing.Bill) error {
	model := models.BillModelFromDomain(bill)
	return dbFrom(ctx, r.db).Save(model).Error
}

// applyFilter applies filter options to the query
func (r *GormBillRepository) applyFilter(query *gorm.DB, filter billing.BillFilter) *gorm.DB {
	if filter.TenantID != nil {
		query = query.Where("tenant_id = ?", *filter.TenantID)
	}
	if filter.RoomID != nil {
		query = query.Where("room_id = ?", *filter.RoomID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.Approved != nil {
		query = query.Where("is_approved = ?", *filter.Approved)
	}
	if filter.Period != nil {
		query = query.Where("billing_year = ? AND billing_month = ?", filter.Period.Year, int(filter.Period.Month))
	}
	return query
}

// applyOrdering applies ordering options to the query. The sort field
// is validated against BillSortFields before it reaches the ORDER BY
// clause; unknown fields fall back to newest billing period first.
func (r *GormBillRepository) applyOrdering(query *gorm.DB, filter billing.BillFilter) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, BillSortFields, "")
	if field == "" {
		return query.Order("billing_year DESC, billing_month DESC")
	}
	return query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
}

// Ensure GormBillRepository implements BillRepository
var _ billing.BillRepository = (*GormBillRepository)(nil)
