package billing

import (
	"fmt"
	"time"

	"github.com/boardpay/backend/internal/domain/shared"
	"github.com/boardpay/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillStatus represents the lifecycle state of a bill
type BillStatus string

const (
	BillStatusNotPaid    BillStatus = "NOT_PAID"    // Created, tenant has not initiated payment
	BillStatusPending    BillStatus = "PENDING"     // Payment initiated but not yet covering the total
	BillStatusPaid       BillStatus = "PAID"        // Fully paid and confirmed (terminal)
	BillStatusOverdue    BillStatus = "OVERDUE"     // Past due date, late fee applied
	BillStatusCancelled  BillStatus = "CANCELLED"   // Administratively cancelled (terminal)
	BillStatusWrittenOff BillStatus = "WRITTEN_OFF" // Forgiven by the landlord (terminal)
)

// IsValid checks if the status is a valid BillStatus
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusNotPaid, BillStatusPending, BillStatusPaid,
		BillStatusOverdue, BillStatusCancelled, BillStatusWrittenOff:
		return true
	}
	return false
}

// String returns the string representation of BillStatus
func (s BillStatus) String() string {
	return string(s)
}

// IsTerminal returns true if no further transitions are permitted
func (s BillStatus) IsTerminal() bool {
	return s == BillStatusPaid || s == BillStatusCancelled || s == BillStatusWrittenOff
}

// CanApplyPayment returns true if payments can be applied in this status
func (s BillStatus) CanApplyPayment() bool {
	return s == BillStatusNotPaid || s == BillStatusPending || s == BillStatusOverdue
}

// CountsAsUnpaid returns true if the bill counts toward unpaid
// aggregates; cancelled and written-off bills are excluded.
func (s BillStatus) CountsAsUnpaid() bool {
	return s == BillStatusNotPaid || s == BillStatusPending || s == BillStatusOverdue
}

// CanEscalate returns true if the status-sweep may move the bill to Overdue
func (s BillStatus) CanEscalate() bool {
	return s == BillStatusNotPaid || s == BillStatusPending
}

// Charges holds the four recurring fee components of a bill
type Charges struct {
	MonthlyRent decimal.Decimal
	WaterFee    decimal.Decimal
	Electricity decimal.Decimal
	InternetFee decimal.Decimal
}

// Bill is the aggregate root for one recurring charge cycle of a
// tenant. All lifecycle transitions go through the aggregate so the
// guards hold regardless of which caller (payment path or status sweep)
// triggers them.
type Bill struct {
	shared.BaseAggregateRoot
	TenantID             uuid.UUID       `json:"tenant_id"`
	RoomID               uuid.UUID       `json:"room_id"`
	BillingMonth         time.Month      `json:"billing_month"`
	BillingYear          int             `json:"billing_year"`
	BillingDate          time.Time       `json:"billing_date"` // first day of the billing month
	DueDate              time.Time       `json:"due_date"`     // computed once at creation
	MonthlyRent          decimal.Decimal `json:"monthly_rent"`
	WaterFee             decimal.Decimal `json:"water_fee"`
	ElectricityFee       decimal.Decimal `json:"electricity_fee"`
	InternetFee          decimal.Decimal `json:"internet_fee"`
	LateFee              decimal.Decimal `json:"late_fee"` // zero = not yet applied
	OtherFees            decimal.Decimal `json:"other_fees"`
	OtherFeesDescription string          `json:"other_fees_description"`
	Status               BillStatus      `json:"status"`
	IsApproved           bool            `json:"is_approved"`
	AmountPaid           decimal.Decimal `json:"amount_paid"`
	PaymentDate          *time.Time      `json:"payment_date"`
	PaymentMethod        string          `json:"payment_method"`
	PaymentReference     string          `json:"payment_reference"`
	Notes                string          `json:"notes"`
}

// NewBill creates a bill for one tenant and billing period in state NotPaid
func NewBill(
	tenantID uuid.UUID,
	roomID uuid.UUID,
	period Period,
	dueDate time.Time,
	charges Charges,
) (*Bill, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if roomID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ROOM", "Room ID cannot be empty")
	}
	if !period.IsValid() {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Billing period is not a valid calendar month")
	}
	if dueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date is required")
	}
	for _, amount := range []decimal.Decimal{charges.MonthlyRent, charges.WaterFee, charges.Electricity, charges.InternetFee} {
		if amount.IsNegative() {
			return nil, shared.NewDomainError("INVALID_AMOUNT", "Charge components cannot be negative")
		}
	}

	b := &Bill{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          tenantID,
		RoomID:            roomID,
		BillingMonth:      period.Month,
		BillingYear:       period.Year,
		BillingDate:       period.Start(),
		DueDate:           dueDate,
		MonthlyRent:       charges.MonthlyRent,
		WaterFee:          charges.WaterFee,
		ElectricityFee:    charges.Electricity,
		InternetFee:       charges.InternetFee,
		LateFee:           decimal.Zero,
		OtherFees:         decimal.Zero,
		AmountPaid:        decimal.Zero,
		Status:            BillStatusNotPaid,
	}

	b.AddDomainEvent(NewBillCreatedEvent(b))

	return b, nil
}

// Period returns the billing cycle this bill represents
func (b *Bill) Period() Period {
	return Period{Month: b.BillingMonth, Year: b.BillingYear}
}

// Subtotal returns the sum of the four recurring charge components,
// excluding late fee and manual adjustments
func (b *Bill) Subtotal() decimal.Decimal {
	return b.MonthlyRent.Add(b.WaterFee).Add(b.ElectricityFee).Add(b.InternetFee)
}

// TotalAmount returns the amount owed. It is always derived, never
// stored, so edits to any component recompute totals consistently.
func (b *Bill) TotalAmount() decimal.Decimal {
	return b.Subtotal().Add(b.LateFee).Add(b.OtherFees)
}

// TotalAmountMoney returns the total as Money
func (b *Bill) TotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyPHP(b.TotalAmount())
}

// Outstanding returns the unpaid remainder (never negative)
func (b *Bill) Outstanding() decimal.Decimal {
	out := b.TotalAmount().Sub(b.AmountPaid)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// HasLateFee reports whether the late fee has already been applied
func (b *Bill) HasLateFee() bool {
	return !b.LateFee.IsZero()
}

// ApplyPayment records a payment against the bill and re-evaluates the
// paid/pending guard. A payment covering the derived total moves the
// bill to Paid; a partial payment moves NotPaid to Pending while an
// overdue bill stays Overdue. Payment bookkeeping fields always track
// the latest payment.
func (b *Bill) ApplyPayment(amount valueobject.Money, paidAt time.Time, method, reference string) error {
	if !b.Status.CanApplyPayment() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot apply payment to bill in %s status", b.Status))
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	b.AmountPaid = b.AmountPaid.Add(amount.Amount())
	b.PaymentDate = &paidAt
	b.PaymentMethod = method
	b.PaymentReference = reference

	if b.AmountPaid.GreaterThanOrEqual(b.TotalAmount()) {
		b.Status = BillStatusPaid
		b.AddDomainEvent(NewBillPaidEvent(b))
	} else {
		if b.Status == BillStatusNotPaid {
			b.Status = BillStatusPending
		}
		b.AddDomainEvent(NewBillPartiallyPaidEvent(b, amount))
	}

	b.Touch()
	b.IncrementVersion()

	return nil
}

// MarkOverdue escalates a past-due bill to Overdue and applies the late
// fee computed from the four-component subtotal and the building's
// late-fee percentage. The fee is set at most once: a bill that already
// carries one keeps it unchanged, and calling this on a bill that is
// already Overdue is a no-op, so the sweep may re-run arbitrarily often.
func (b *Bill) MarkOverdue(asOf time.Time, lateFeePercent decimal.Decimal) error {
	if b.Status == BillStatusOverdue {
		return nil
	}
	if !b.Status.CanEscalate() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot mark bill in %s status as overdue", b.Status))
	}
	if !IsPastDue(b.DueDate, asOf) {
		return shared.NewDomainError("NOT_PAST_DUE", "Bill due date has not passed")
	}

	b.Status = BillStatusOverdue
	if !b.HasLateFee() {
		b.LateFee = LateFee(valueobject.NewMoneyPHP(b.Subtotal()), lateFeePercent).Amount()
	}

	b.Touch()
	b.IncrementVersion()
	b.AddDomainEvent(NewBillOverdueEvent(b))

	return nil
}

// Approve makes the bill visible to the tenant-facing side. Approval is
// not reversible; calling it again is a no-op that still emits the
// new-bill event so delivery can be retried.
func (b *Bill) Approve() {
	b.IsApproved = true
	b.Touch()
	b.IncrementVersion()
	b.AddDomainEvent(NewBillApprovedEvent(b))
}

// WriteOff forgives an unpaid bill. Only NotPaid, Pending, and Overdue
// bills are eligible; the reason is appended to the audit notes with a
// timestamp and the state is terminal.
func (b *Bill) WriteOff(reason string, at time.Time) error {
	if !b.Status.CountsAsUnpaid() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot write off bill in %s status", b.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Write-off reason is required")
	}

	b.Status = BillStatusWrittenOff
	b.appendNote(fmt.Sprintf("Written off %s: %s", at.Format("2006-01-02 15:04:05"), reason))
	b.Touch()
	b.IncrementVersion()
	b.AddDomainEvent(NewBillWrittenOffEvent(b, reason))

	return nil
}

// Cancel voids a bill from any non-terminal state
func (b *Bill) Cancel(reason string, at time.Time) error {
	if b.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel bill in %s status", b.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	b.Status = BillStatusCancelled
	b.appendNote(fmt.Sprintf("Cancelled %s: %s", at.Format("2006-01-02 15:04:05"), reason))
	b.Touch()
	b.IncrementVersion()
	b.AddDomainEvent(NewBillCancelledEvent(b, reason))

	return nil
}

// SetOtherFees records a manual adjustment on a non-terminal bill
func (b *Bill) SetOtherFees(amount decimal.Decimal, description string) error {
	if b.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Cannot adjust fees on a bill in terminal state")
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Other fees cannot be negative")
	}

	b.OtherFees = amount
	b.OtherFeesDescription = description
	b.Touch()
	b.IncrementVersion()

	return nil
}

// AdjustedCharges returns the per-component amounts with the late-fee
// percentage applied, for display breakdowns only; adjusted amounts are
// derived on read and never persisted.
func (b *Bill) AdjustedCharges(lateFeePercent decimal.Decimal) Charges {
	factor := decimal.NewFromInt(1).Add(lateFeePercent.Div(decimal.NewFromInt(100)))
	return Charges{
		MonthlyRent: b.MonthlyRent.Mul(factor),
		WaterFee:    b.WaterFee.Mul(factor),
		Electricity: b.ElectricityFee.Mul(factor),
		InternetFee: b.InternetFee.Mul(factor),
	}
}

// IsPastDue reports whether the bill is unpaid and past its due date
func (b *Bill) IsPastDue(asOf time.Time) bool {
	return b.Status.CountsAsUnpaid() && IsPastDue(b.DueDate, asOf)
}

func (b *Bill) appendNote(note string) {
	if b.Notes == "" {
		b.Notes = note
		return
	}
	b.Notes = b.Notes + "\n" + note
}
