package models

import (
	"time"

	"github.com/boardpay/backend/internal/domain/property"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BuildingModel is the persistence model for the Building aggregate root.
type BuildingModel struct {
	AggregateModel
	Name                   string          `gorm:"type:varchar(200);not null"`
	Address                string          `gorm:"type:varchar(500)"`
	DefaultMonthlyRent     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DefaultWaterFee        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DefaultElectricityRate decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DefaultInternetFee     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LateFeePercent         decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (BuildingModel) TableName() string {
	return "buildings"
}

// ToDomain converts the persistence model to a domain Building.
func (m *BuildingModel) ToDomain() *property.Building {
	return &property.Building{
		BaseAggregateRoot:      m.ToDomainAggregateRoot(),
		Name:                   m.Name,
		Address:                m.Address,
		DefaultMonthlyRent:     m.DefaultMonthlyRent,
		DefaultWaterFee:        m.DefaultWaterFee,
		DefaultElectricityRate: m.DefaultElectricityRate,
		DefaultInternetFee:     m.DefaultInternetFee,
		LateFeePercent:         m.LateFeePercent,
	}
}

// BuildingModelFromDomain creates a persistence model from a domain Building.
func BuildingModelFromDomain(b *property.Building) *BuildingModel {
	m := &BuildingModel{
		Name:                   b.Name,
		Address:                b.Address,
		DefaultMonthlyRent:     b.DefaultMonthlyRent,
		DefaultWaterFee:        b.DefaultWaterFee,
		DefaultElectricityRate: b.DefaultElectricityRate,
		DefaultInternetFee:     b.DefaultInternetFee,
		LateFeePercent:         b.LateFeePercent,
	}
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	return m
}

// RoomModel is the persistence model for the Room aggregate root.
type RoomModel struct {
	AggregateModel
	Number                string           `gorm:"type:varchar(50);not null;uniqueIndex:idx_rooms_building_number,priority:2"`
	Description           string           `gorm:"type:varchar(500)"`
	BuildingID            uuid.UUID        `gorm:"type:uuid;not null;index;uniqueIndex:idx_rooms_building_number,priority:1"`
	Occupied              bool             `gorm:"not null;default:false"`
	CustomMonthlyRent     *decimal.Decimal `gorm:"type:decimal(18,4)"`
	CustomWaterFee        *decimal.Decimal `gorm:"type:decimal(18,4)"`
	CustomElectricityRate *decimal.Decimal `gorm:"type:decimal(18,4)"`
	CustomInternetFee     *decimal.Decimal `gorm:"type:decimal(18,4)"`
	TenantID              *uuid.UUID       `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (RoomModel) TableName() string {
	return "rooms"
}

// ToDomain converts the persistence model to a domain Room.
func (m *RoomModel) ToDomain() *property.Room {
	return &property.Room{
		BaseAggregateRoot:     m.ToDomainAggregateRoot(),
		Number:                m.Number,
		Description:           m.Description,
		BuildingID:            m.BuildingID,
		Occupied:              m.Occupied,
		CustomMonthlyRent:     m.CustomMonthlyRent,
		CustomWaterFee:        m.CustomWaterFee,
		CustomElectricityRate: m.CustomElectricityRate,
		CustomInternetFee:     m.CustomInternetFee,
		TenantID:              m.TenantID,
	}
}

// RoomModelFromDomain creates a persistence model from a domain Room.
func RoomModelFromDomain(r *property.Room) *RoomModel {
	m := &RoomModel{
		Number:                r.Number,
		Description:           r.Description,
		BuildingID:            r.BuildingID,
		Occupied:              r.Occupied,
		CustomMonthlyRent:     r.CustomMonthlyRent,
		CustomWaterFee:        r.CustomWaterFee,
		CustomElectricityRate: r.CustomElectricityRate,
		CustomInternetFee:     r.CustomInternetFee,
		TenantID:              r.TenantID,
	}
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	return m
}

// TenantModel is the persistence model for the Tenant aggregate root.
type TenantModel struct {
	AggregateModel
	FirstName string     `gorm:"type:varchar(100);not null"`
	LastName  string     `gorm:"type:varchar(100);not null"`
	Phone     string     `gorm:"type:varchar(30)"`
	StartDate time.Time  `gorm:"not null"`
	RoomID    *uuid.UUID `gorm:"type:uuid;index"`
	Archived  bool       `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant.
func (m *TenantModel) ToDomain() *property.Tenant {
	return &property.Tenant{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		FirstName:         m.FirstName,
		LastName:          m.LastName,
		Phone:             m.Phone,
		StartDate:         m.StartDate,
		RoomID:            m.RoomID,
		Archived:          m.Archived,
	}
}

// TenantModelFromDomain creates a persistence model from a domain Tenant.
func TenantModelFromDomain(t *property.Tenant) *TenantModel {
	m := &TenantModel{
		FirstName: t.FirstName,
		LastName:  t.LastName,
		Phone:     t.Phone,
		StartDate: t.StartDate,
		RoomID:    t.RoomID,
		Archived:  t.Archived,
	}
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	return m
}
