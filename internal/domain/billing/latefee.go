package billing

import (
	"time"

	"github.com/boardpay/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// LateFee computes the late fee for an overdue bill from its
// four-component subtotal (excluding any existing late fee) and the
// owning building's late-fee percentage. It is applied once when a bill
// first becomes overdue; re-running the sweep must not recompute it.
func LateFee(subtotal valueobject.Money, percent decimal.Decimal) valueobject.Money {
	if percent.IsNegative() || subtotal.IsNegative() {
		return valueobject.ZeroPHP()
	}
	return subtotal.CalculatePercentage(percent)
}

// IsPastDue reports whether the due date has passed as of the given
// reference time, comparing calendar dates only.
func IsPastDue(dueDate, asOf time.Time) bool {
	due := time.Date(dueDate.Year(), dueDate.Month(), dueDate.Day(), 0, 0, 0, 0, time.UTC)
	ref := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	return due.Before(ref)
}
