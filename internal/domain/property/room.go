package property

import (
	"fmt"

	"github.com/boardpay/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Room is a rentable unit inside a building. Each fee component may carry
// a room-level override; a nil or zero override falls through to the
// building default at resolution time.
type Room struct {
	shared.BaseAggregateRoot
	Number                string           `json:"number"`
	Description           string           `json:"description"`
	BuildingID            uuid.UUID        `json:"building_id"`
	Occupied              bool             `json:"occupied"`
	CustomMonthlyRent     *decimal.Decimal `json:"custom_monthly_rent"`
	CustomWaterFee        *decimal.Decimal `json:"custom_water_fee"`
	CustomElectricityRate *decimal.Decimal `json:"custom_electricity_rate"`
	CustomInternetFee     *decimal.Decimal `json:"custom_internet_fee"`
	TenantID              *uuid.UUID       `json:"tenant_id"`
}

// NewRoom creates a new room in a building
func NewRoom(number string, buildingID uuid.UUID) (*Room, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Room number cannot be empty")
	}
	if buildingID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BUILDING", "Building ID cannot be empty")
	}

	return &Room{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		BuildingID:        buildingID,
	}, nil
}

// AssignTenant marks the room occupied by the given tenant
func (r *Room) AssignTenant(tenantID uuid.UUID) error {
	if tenantID == uuid.Nil {
		return shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if r.TenantID != nil && *r.TenantID != tenantID {
		return shared.NewDomainError("ROOM_OCCUPIED", fmt.Sprintf("Room %s is already occupied", r.Number))
	}
	r.TenantID = &tenantID
	r.Occupied = true
	r.Touch()
	r.IncrementVersion()
	return nil
}

// ReleaseTenant vacates the room
func (r *Room) ReleaseTenant() {
	r.TenantID = nil
	r.Occupied = false
	r.Touch()
	r.IncrementVersion()
}

func (r *Room) String() string {
	return fmt.Sprintf("Room %s", r.Number)
}
