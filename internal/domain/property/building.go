package property

import (
	"github.com/boardpay/backend/internal/domain/shared"
	"github.com/boardpay/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Building holds the default fee components applied to every room that
// does not carry its own override, plus the late-fee percentage charged
// uniformly on overdue bills in the building.
type Building struct {
	shared.BaseAggregateRoot
	Name                   string          `json:"name"`
	Address                string          `json:"address"`
	DefaultMonthlyRent     decimal.Decimal `json:"default_monthly_rent"`
	DefaultWaterFee        decimal.Decimal `json:"default_water_fee"`
	DefaultElectricityRate decimal.Decimal `json:"default_electricity_rate"` // per kWh
	DefaultInternetFee     decimal.Decimal `json:"default_internet_fee"`
	LateFeePercent         decimal.Decimal `json:"late_fee_percent"` // 0-100
}

// NewBuilding creates a new building
func NewBuilding(name, address string, lateFeePercent decimal.Decimal) (*Building, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Building name cannot be empty")
	}
	if lateFeePercent.IsNegative() || lateFeePercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_LATE_FEE", "Late fee percentage must be between 0 and 100")
	}

	return &Building{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Address:           address,
		LateFeePercent:    lateFeePercent,
	}, nil
}

// SetDefaultFees sets the building-wide default fee components
func (b *Building) SetDefaultFees(rent, water, electricityRate, internet decimal.Decimal) error {
	for _, amount := range []decimal.Decimal{rent, water, electricityRate, internet} {
		if amount.IsNegative() {
			return shared.NewDomainError("INVALID_AMOUNT", "Default fees cannot be negative")
		}
	}
	b.DefaultMonthlyRent = rent
	b.DefaultWaterFee = water
	b.DefaultElectricityRate = electricityRate
	b.DefaultInternetFee = internet
	b.Touch()
	b.IncrementVersion()
	return nil
}

// DefaultRentMoney returns the default rent as Money
func (b *Building) DefaultRentMoney() valueobject.Money {
	return valueobject.NewMoneyPHP(b.DefaultMonthlyRent)
}
