package billing

import (
	"time"

	"github.com/boardpay/backend/internal/domain/shared"
	"github.com/boardpay/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is an append-only ledger entry against a bill. Multiple
// payments may accumulate against one bill; the bill's AmountPaid is
// updated by the engine at each payment event, not recomputed from the
// ledger.
type Payment struct {
	shared.BaseEntity
	BillID    uuid.UUID       `json:"bill_id"`
	TenantID  uuid.UUID       `json:"tenant_id"`
	Amount    decimal.Decimal `json:"amount"`
	PaidAt    time.Time       `json:"paid_at"`
	Method    string          `json:"method"`
	Reference string          `json:"reference"`
	Notes     string          `json:"notes"`
}

// NewPayment creates a new payment ledger entry
func NewPayment(billID, tenantID uuid.UUID, amount valueobject.Money, paidAt time.Time, method, reference, notes string) (*Payment, error) {
	if billID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BILL", "Bill ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}

	return &Payment{
		BaseEntity: shared.NewBaseEntity(),
		BillID:     billID,
		TenantID:   tenantID,
		Amount:     amount.Amount(),
		PaidAt:     paidAt,
		Method:     method,
		Reference:  reference,
		Notes:      notes,
	}, nil
}

// AmountMoney returns the payment amount as Money
func (p *Payment) AmountMoney() valueobject.Money {
	return valueobject.NewMoneyPHP(p.Amount)
}
