package billing

import (
	"context"
	"time"

	"github.com/boardpay/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BillFilter narrows bill queries
type BillFilter struct {
	TenantID *uuid.UUID
	RoomID   *uuid.UUID
	Status   *BillStatus
	Approved *bool
	Period   *Period
	shared.Filter
}

// BillRepository provides access to bills. Implementations must back
// Save with a uniqueness guarantee on (tenant, billing year, billing
// month) so that concurrent generation cannot produce duplicate bills
// for the same cycle.
type BillRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	FindAll(ctx context.Context, filter BillFilter) ([]Bill, int64, error)
	// ExistsForPeriod reports whether the tenant already has a bill for the cycle
	ExistsForPeriod(ctx context.Context, tenantID uuid.UUID, period Period) (bool, error)
	// FindPeriods returns the set of billed cycles for a tenant
	FindPeriods(ctx context.Context, tenantID uuid.UUID) ([]Period, error)
	// FindEscalatable returns NotPaid/Pending bills with a due date before asOf
	FindEscalatable(ctx context.Context, asOf time.Time) ([]Bill, error)
	// FindDueBetween returns approved, unpaid bills due inside the window
	FindDueBetween(ctx context.Context, from, to time.Time) ([]Bill, error)
	Save(ctx context.Context, bill *Bill) error
}

// PaymentRepository is the append-only payment ledger
type PaymentRepository interface {
	Save(ctx context.Context, payment *Payment) error
	FindByBill(ctx context.Context, billID uuid.UUID) ([]Payment, error)
}

// MeterReadingRepository provides access to meter readings
type MeterReadingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*MeterReading, error)
	// FindForPeriod returns a tenant's readings inside the billing month,
	// ordered by reading date ascending
	FindForPeriod(ctx context.Context, tenantID uuid.UUID, period Period) ([]MeterReading, error)
	Save(ctx context.Context, reading *MeterReading) error
}

// TransactionManager runs a function inside one storage transaction.
// Repository calls made with the context it passes down share that
// transaction.
type TransactionManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
