package models

import (
	"time"

	"github.com/boardpay/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillModel is the persistence model for the Bill aggregate root. The
// composite unique index enforces one bill per tenant per billing
// period at the storage layer, backing the idempotency checks made in
// the application layer.
type BillModel struct {
	AggregateModel
	TenantID             uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_bills_tenant_period,priority:1"`
	RoomID               uuid.UUID       `gorm:"type:uuid;not null;index"`
	BillingYear          int             `gorm:"not null;uniqueIndex:idx_bills_tenant_period,priority:2"`
	BillingMonth         int             `gorm:"not null;uniqueIndex:idx_bills_tenant_period,priority:3"`
	BillingDate          time.Time       `gorm:"not null"`
	DueDate              time.Time       `gorm:"not null;index"`
	MonthlyRent          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	WaterFee             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ElectricityFee       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	InternetFee          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LateFee              decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OtherFees            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OtherFeesDescription string          `gorm:"type:varchar(500)"`
	Status               string          `gorm:"type:varchar(20);not null;index"`
	IsApproved           bool            `gorm:"not null;default:false;index"`
	AmountPaid           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentDate          *time.Time
	PaymentMethod        string `gorm:"type:varchar(50)"`
	PaymentReference     string `gorm:"type:varchar(100)"`
	Notes                string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (BillModel) TableName() string {
	return "bills"
}

// ToDomain converts the persistence model to a domain Bill.
func (m *BillModel) ToDomain() *billing.Bill {
	return &billing.Bill{
		BaseAggregateRoot:    m.ToDomainAggregateRoot(),
		TenantID:             m.TenantID,
		RoomID:               m.RoomID,
		BillingMonth:         time.Month(m.BillingMonth),
		BillingYear:          m.BillingYear,
		BillingDate:          m.BillingDate,
		DueDate:              m.DueDate,
		MonthlyRent:          m.MonthlyRent,
		WaterFee:             m.WaterFee,
		ElectricityFee:       m.ElectricityFee,
		InternetFee:          m.InternetFee,
		LateFee:              m.LateFee,
		OtherFees:            m.OtherFees,
		OtherFeesDescription: m.OtherFeesDescription,
		Status:               billing.BillStatus(m.Status),
		IsApproved:           m.IsApproved,
		AmountPaid:           m.AmountPaid,
		PaymentDate:          m.PaymentDate,
		PaymentMethod:        m.PaymentMethod,
		PaymentReference:     m.PaymentReference,
		Notes:                m.Notes,
	}
}

// BillModelFromDomain creates a persistence model from a domain Bill.
func BillModelFromDomain(b *billing.Bill) *BillModel {
	m := &BillModel{
		TenantID:             b.TenantID,
		RoomID:               b.RoomID,
		BillingYear:          b.BillingYear,
		BillingMonth:         int(b.BillingMonth),
		BillingDate:          b.BillingDate,
		DueDate:              b.DueDate,
		MonthlyRent:          b.MonthlyRent,
		WaterFee:             b.WaterFee,
		ElectricityFee:       b.ElectricityFee,
		InternetFee:          b.InternetFee,
		LateFee:              b.LateFee,
		OtherFees:            b.OtherFees,
		OtherFeesDescription: b.OtherFeesDescription,
		Status:               b.Status.String(),
		IsApproved:           b.IsApproved,
		AmountPaid:           b.AmountPaid,
		PaymentDate:          b.PaymentDate,
		PaymentMethod:        b.PaymentMethod,
		PaymentReference:     b.PaymentReference,
		Notes:                b.Notes,
	}
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	return m
}

// PaymentModel is the persistence model for the payment ledger.
type PaymentModel struct {
	BaseModel
	BillID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	TenantID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaidAt    time.Time       `gorm:"not null"`
	Method    string          `gorm:"type:varchar(50)"`
	Reference string          `gorm:"type:varchar(100)"`
	Notes     string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment.
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseEntity: m.ToDomainBaseEntity(),
		BillID:     m.BillID,
		TenantID:   m.TenantID,
		Amount:     m.Amount,
		PaidAt:     m.PaidAt,
		Method:     m.Method,
		Reference:  m.Reference,
		Notes:      m.Notes,
	}
}

// PaymentModelFromDomain creates a persistence model from a domain Payment.
func PaymentModelFromDomain(p *billing.Payment) *PaymentModel {
	m := &PaymentModel{
		BillID:    p.BillID,
		TenantID:  p.TenantID,
		Amount:    p.Amount,
		PaidAt:    p.PaidAt,
		Method:    p.Method,
		Reference: p.Reference,
		Notes:     p.Notes,
	}
	m.FromDomainBaseEntity(p.BaseEntity)
	return m
}

// MeterReadingModel is the persistence model for electricity meter readings.
type MeterReadingModel struct {
	BaseModel
	TenantID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	RoomID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	ReadingDate     time.Time        `gorm:"not null;index"`
	CurrentReading  decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	PreviousReading *decimal.Decimal `gorm:"type:decimal(18,4)"`
	RatePerKwh      decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	Notes           string           `gorm:"type:text"`
	BillID          *uuid.UUID       `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (MeterReadingModel) TableName() string {
	return "meter_readings"
}

// ToDomain converts the persistence model to a domain MeterReading.
func (m *MeterReadingModel) ToDomain() *billing.MeterReading {
	return &billing.MeterReading{
		BaseEntity:      m.ToDomainBaseEntity(),
		TenantID:        m.TenantID,
		RoomID:          m.RoomID,
		ReadingDate:     m.ReadingDate,
		CurrentReading:  m.CurrentReading,
		PreviousReading: m.PreviousReading,
		RatePerKwh:      m.RatePerKwh,
		Notes:           m.Notes,
		BillID:          m.BillID,
	}
}

// MeterReadingModelFromDomain creates a persistence model from a domain MeterReading.
func MeterReadingModelFromDomain(r *billing.MeterReading) *MeterReadingModel {
	m := &MeterReadingModel{
		TenantID:        r.TenantID,
		RoomID:          r.RoomID,
		ReadingDate:     r.ReadingDate,
		CurrentReading:  r.CurrentReading,
		PreviousReading: r.PreviousReading,
		RatePerKwh:      r.RatePerKwh,
		Notes:           r.Notes,
		BillID:          r.BillID,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}
