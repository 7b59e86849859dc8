package billing

import (
	"context"

	"github.com/boardpay/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// MeterUsageResolver resolves the metered electricity charge for a
// billing period from recorded readings. A single reading inside the
// month is not billable: usage is a delta, and the first reading of a
// cycle only establishes the baseline. With two or more readings the
// charge is the latest reading's computed usage charge.
type MeterUsageResolver struct {
	readings MeterReadingRepository
}

// NewMeterUsageResolver creates a resolver over the reading repository
func NewMeterUsageResolver(readings MeterReadingRepository) *MeterUsageResolver {
	return &MeterUsageResolver{readings: readings}
}

// ResolveUsageCharge returns the electricity charge for the tenant and
// period. The boolean result is false when no billable usage exists:
// fewer than two readings, or the latest reading already claimed by
// another bill.
func (r *MeterUsageResolver) ResolveUsageCharge(ctx context.Context, tenantID uuid.UUID, period Period) (valueobject.Money, bool, error) {
	readings, err := r.readings.FindForPeriod(ctx, tenantID, period)
	if err != nil {
		return valueobject.ZeroPHP(), false, err
	}
	if len(readings) < 2 {
		return valueobject.ZeroPHP(), false, nil
	}

	latest := &readings[len(readings)-1]
	if latest.IsBilled() {
		return valueobject.ZeroPHP(), false, nil
	}

	return valueobject.NewMoneyPHP(latest.TotalCharge()), true, nil
}

var _ UsageResolver = (*MeterUsageResolver)(nil)
