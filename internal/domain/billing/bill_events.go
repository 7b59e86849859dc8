package billing

import (
	"time"

	"github.com/boardpay/backend/internal/domain/shared"
	"github.com/boardpay/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillCreatedEvent is raised when a new bill is generated
type BillCreatedEvent struct {
	shared.BaseDomainEvent
	BillID       uuid.UUID       `json:"bill_id"`
	TenantID     uuid.UUID       `json:"tenant_id"`
	RoomID       uuid.UUID       `json:"room_id"`
	BillingMonth time.Month      `json:"billing_month"`
	BillingYear  int             `json:"billing_year"`
	DueDate      time.Time       `json:"due_date"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// EventType returns the event type name
func (e *BillCreatedEvent) EventType() string {
	return "BillCreated"
}

// NewBillCreatedEvent creates a new BillCreatedEvent
func NewBillCreatedEvent(b *Bill) *BillCreatedEvent {
	return &BillCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BillCreated", "Bill", b.ID),
		BillID:          b.ID,
		TenantID:        b.TenantID,
		RoomID:          b.RoomID,
		BillingMonth:    b.BillingMonth,
		BillingYear:     b.BillingYear,
		DueDate:         b.DueDate,
		TotalAmount:     b.TotalAmount(),
	}
}

// BillApprovedEvent is raised when the landlord approves a bill,
// making it visible to the tenant
type BillApprovedEvent struct {
	shared.BaseDomainEvent
	BillID      uuid.UUID       `json:"bill_id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	DueDate     time.Time       `json:"due_date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// EventType returns the event type name
func (e *BillApprovedEvent) EventType() string {
	return "BillApproved"
}

// NewBillApprovedEvent creates a new BillApprovedEvent
func NewBillApprovedEvent(b *Bill) *BillApprovedEvent {
	return &BillApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BillApproved", "Bill", b.ID),
		BillID:          b.ID,
		TenantID:        b.TenantID,
		DueDate:         b.DueDate,
		TotalAmount:     b.TotalAmount(),
	}
}

// BillPaidEvent is raised when a bill is fully paid
type BillPaidEvent struct {
	shared.BaseDomainEvent
	BillID     uuid.UUID       `json:"bill_id"`
	TenantID   uuid.UUID       `json:"tenant_id"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	IsApproved bool            `json:"is_approved"`
	PaidAt     time.Time       `json:"paid_at"`
}

// EventType returns the event type name
func (e *BillPaidEvent) EventType() string {
	return "BillPaid"
}

// NewBillPaidEvent creates a new BillPaidEvent
func NewBillPaidEvent(b *Bill) *BillPaidEvent {
	paidAt := time.Now()
	if b.PaymentDate != nil {
		paidAt = *b.PaymentDate
	}
	return &BillPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BillPaid", "Bill", b.ID),
		BillID:          b.ID,
		TenantID:        b.TenantID,
		AmountPaid:      b.AmountPaid,
		IsApproved:      b.IsApproved,
		PaidAt:          paidAt,
	}
}

// BillPartiallyPaidEvent is raised when a payment leaves an outstanding balance
type BillPartiallyPaidEvent struct {
	shared.BaseDomainEvent
	BillID        uuid.UUID       `json:"bill_id"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	PaymentAmount decimal.Decimal `json:"payment_amount"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Outstanding   decimal.Decimal `json:"outstanding"`
}

// EventType returns the event type name
func (e *BillPartiallyPaidEvent) EventType() string {
	return "BillPartiallyPaid"
}

// NewBillPartiallyPaidEvent creates a new BillPartiallyPaidEvent
func NewBillPartiallyPaidEvent(b *Bill, payment valueobject.Money) *BillPartiallyPaidEvent {
	return &BillPartiallyPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BillPartiallyPaid", "Bill", b.ID),
		BillID:          b.ID,
		TenantID:        b.TenantID,
		PaymentAmount:   payment.Amount(),
		AmountPaid:      b.AmountPaid,
		Outstanding:     b.Outstanding(),
	}
}

// BillOverdueEvent is raised when the status sweep escalates a past-due bill
type BillOverdueEvent struct {
	shared.BaseDomainEvent
	BillID      uuid.UUID       `json:"bill_id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	DueDate     time.Time       `json:"due_date"`
	LateFee     decimal.Decimal `json:"late_fee"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	IsApproved  bool            `json:"is_approved"`
}

// EventType returns the event type name
func (e *BillOverdueEvent) EventType() string {
	return "BillOverdue"
}

// NewBillOverdueEvent creates a new BillOverdueEvent
func NewBillOverdueEvent(b *Bill) *BillOverdueEvent {
	return &BillOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BillOverdue", "Bill", b.ID),
		BillID:          b.ID,
		TenantID:        b.TenantID,
		DueDate:         b.DueDate,
		LateFee:         b.LateFee,
		TotalAmount:     b.TotalAmount(),
		IsApproved:      b.IsApproved,
	}
}

// BillWrittenOffEvent is raised when the landlord forgives a bill
type BillWrittenOffEvent struct {
	shared.BaseDomainEvent
	BillID   uuid.UUID `json:"bill_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Reason   string    `json:"reason"`
}

// EventType returns the event type name
func (e *BillWrittenOffEvent) EventType() string {
	return "BillWrittenOff"
}

// NewBillWrittenOffEvent creates a new BillWrittenOffEvent
func NewBillWrittenOffEvent(b *Bill, reason string) *BillWrittenOffEvent {
	return &BillWrittenOffEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BillWrittenOff", "Bill", b.ID),
		BillID:          b.ID,
		TenantID:        b.TenantID,
		Reason:          reason,
	}
}

// BillCancelledEvent is raised when a bill is voided
type BillCancelledEvent struct {
	shared.BaseDomainEvent
	BillID   uuid.UUID `json:"bill_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Reason   string    `json:"reason"`
}

// EventType returns the event type name
func (e *BillCancelledEvent) EventType() string {
	return "BillCancelled"
}

// NewBillCancelledEvent creates a new BillCancelledEvent
func NewBillCancelledEvent(b *Bill, reason string) *BillCancelledEvent {
	return &BillCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("BillCancelled", "Bill", b.ID),
		BillID:          b.ID,
		TenantID:        b.TenantID,
		Reason:          reason,
	}
}
