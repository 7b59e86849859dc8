package billing

import (
	"time"

	"github.com/boardpay/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MeterReading carries one electricity meter observation for a tenant.
// Usage and charge are derived from the previous reading; once a
// reading is attached to a bill it is exclusively owned by that bill
// for electricity-amount purposes.
type MeterReading struct {
	shared.BaseEntity
	TenantID        uuid.UUID        `json:"tenant_id"`
	RoomID          uuid.UUID        `json:"room_id"`
	ReadingDate     time.Time        `json:"reading_date"`
	CurrentReading  decimal.Decimal  `json:"current_reading"`
	PreviousReading *decimal.Decimal `json:"previous_reading"`
	RatePerKwh      decimal.Decimal  `json:"rate_per_kwh"`
	Notes           string           `json:"notes"`
	BillID          *uuid.UUID       `json:"bill_id"`
}

// NewMeterReading creates a new meter reading
func NewMeterReading(tenantID, roomID uuid.UUID, readingDate time.Time, current decimal.Decimal, previous *decimal.Decimal, ratePerKwh decimal.Decimal) (*MeterReading, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if roomID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ROOM", "Room ID cannot be empty")
	}
	if current.IsNegative() || ratePerKwh.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Reading and rate cannot be negative")
	}

	return &MeterReading{
		BaseEntity:      shared.NewBaseEntity(),
		TenantID:        tenantID,
		RoomID:          roomID,
		ReadingDate:     readingDate,
		CurrentReading:  current,
		PreviousReading: previous,
		RatePerKwh:      ratePerKwh,
	}, nil
}

// UsageKwh returns the consumption delta since the previous reading,
// clamped at zero. A reading with no predecessor has no usage delta.
func (m *MeterReading) UsageKwh() decimal.Decimal {
	if m.PreviousReading == nil {
		return decimal.Zero
	}
	usage := m.CurrentReading.Sub(*m.PreviousReading)
	if usage.IsNegative() {
		return decimal.Zero
	}
	return usage
}

// TotalCharge returns the usage charge for this reading
func (m *MeterReading) TotalCharge() decimal.Decimal {
	return m.UsageKwh().Mul(m.RatePerKwh)
}

// IsBilled reports whether the reading is already owned by a bill
func (m *MeterReading) IsBilled() bool {
	return m.BillID != nil && *m.BillID != uuid.Nil
}

// AttachToBill assigns the reading's usage charge to a bill. A reading
// already owned by a different bill is rejected before any write.
func (m *MeterReading) AttachToBill(billID uuid.UUID) error {
	if billID == uuid.Nil {
		return shared.NewDomainError("INVALID_BILL", "Bill ID cannot be empty")
	}
	if m.IsBilled() && *m.BillID != billID {
		return shared.NewDomainError("READING_ALREADY_BILLED", "Meter reading is already attached to another bill")
	}
	m.BillID = &billID
	m.Touch()
	return nil
}
