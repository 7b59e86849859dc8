package billing

import (
	"context"

	"github.com/boardpay/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// EventKind classifies notification-worthy billing events
type EventKind string

const (
	EventKindNewBill          EventKind = "NEW_BILL"
	EventKindPaymentConfirmed EventKind = "PAYMENT_CONFIRMED"
	EventKindUpcomingDue      EventKind = "UPCOMING_DUE"
	EventKindOverdue          EventKind = "OVERDUE"
)

// Notifier delivers billing notifications to tenants. Delivery is
// fire-and-forget from the engine's perspective: failures are logged
// and never abort the surrounding bill mutation.
type Notifier interface {
	Notify(ctx context.Context, bill *Bill, kind EventKind) error
}

// UsageResolver resolves the metered electricity charge for a tenant
// and billing period. The boolean result is false when no billable
// usage exists for the period (fewer than two readings).
type UsageResolver interface {
	ResolveUsageCharge(ctx context.Context, tenantID uuid.UUID, period Period) (valueobject.Money, bool, error)
}
