package billing

import (
	"github.com/boardpay/backend/internal/domain/property"
	"github.com/shopspring/decimal"
)

// FeeSource records where a resolved fee component came from
type FeeSource string

const (
	FeeSourceCustom   FeeSource = "CUSTOM"   // room-level override
	FeeSourceDefault  FeeSource = "DEFAULT"  // building default
	FeeSourceFallback FeeSource = "FALLBACK" // deployment fallback constant
)

// ResolvedFee is a fee component amount together with its provenance
type ResolvedFee struct {
	Amount decimal.Decimal `json:"amount"`
	Source FeeSource       `json:"source"`
}

// FeeSchedule holds the recurring charge components resolved for a
// tenant's unit. The electricity entry is a per-kWh rate, not a charge:
// the billed electricity amount comes from metered usage.
type FeeSchedule struct {
	Rent            ResolvedFee `json:"rent"`
	Water           ResolvedFee `json:"water"`
	ElectricityRate ResolvedFee `json:"electricity_rate"`
	Internet        ResolvedFee `json:"internet"`
}

// HasZeroComponent reports whether any flat recurring component
// resolved to zero. A zero rent, water, or internet fee is a
// data-quality signal, not an error; bill creation proceeds regardless.
func (s FeeSchedule) HasZeroComponent() bool {
	return s.Rent.Amount.IsZero() || s.Water.Amount.IsZero() || s.Internet.Amount.IsZero()
}

// FallbackFees is the canonical per-deployment fallback table used when
// neither a room override nor a building default is set.
type FallbackFees struct {
	MonthlyRent     decimal.Decimal
	WaterFee        decimal.Decimal
	ElectricityRate decimal.Decimal
	InternetFee     decimal.Decimal
}

// DefaultFallbackFees returns the stock fallback table
func DefaultFallbackFees() FallbackFees {
	return FallbackFees{
		MonthlyRent:     decimal.NewFromInt(5000),
		WaterFee:        decimal.NewFromInt(300),
		ElectricityRate: decimal.NewFromInt(500),
		InternetFee:     decimal.NewFromInt(200),
	}
}

// FeeScheduleResolver resolves the recurring charge components for a
// unit by applying room-level overrides over building defaults, with
// fallback constants when both are absent or zero.
type FeeScheduleResolver struct {
	fallback FallbackFees
}

// NewFeeScheduleResolver creates a resolver with the given fallback table
func NewFeeScheduleResolver(fallback FallbackFees) *FeeScheduleResolver {
	return &FeeScheduleResolver{fallback: fallback}
}

// Resolve computes the fee schedule for a room within its building.
// Resolution order per component: room override (non-nil, non-zero),
// then building default (non-zero), then the fallback constant.
func (r *FeeScheduleResolver) Resolve(room *property.Room, building *property.Building) FeeSchedule {
	return FeeSchedule{
		Rent:            resolveComponent(room.CustomMonthlyRent, building.DefaultMonthlyRent, r.fallback.MonthlyRent),
		Water:           resolveComponent(room.CustomWaterFee, building.DefaultWaterFee, r.fallback.WaterFee),
		ElectricityRate: resolveComponent(room.CustomElectricityRate, building.DefaultElectricityRate, r.fallback.ElectricityRate),
		Internet:        resolveComponent(room.CustomInternetFee, building.DefaultInternetFee, r.fallback.InternetFee),
	}
}

func resolveComponent(custom *decimal.Decimal, dflt, fallback decimal.Decimal) ResolvedFee {
	if custom != nil && !custom.IsZero() {
		return ResolvedFee{Amount: *custom, Source: FeeSourceCustom}
	}
	if !dflt.IsZero() {
		return ResolvedFee{Amount: dflt, Source: FeeSourceDefault}
	}
	return ResolvedFee{Amount: fallback, Source: FeeSourceFallback}
}
