package property

import (
	"time"

	"github.com/boardpay/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Tenant is a boarder with a contract. The day-of-month of the contract
// start date anchors the tenant's recurring billing cycle.
type Tenant struct {
	shared.BaseAggregateRoot
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Phone     string     `json:"phone"`
	StartDate time.Time  `json:"start_date"`
	RoomID    *uuid.UUID `json:"room_id"`
	Archived  bool       `json:"archived"`
}

// NewTenant creates a new tenant with a contract start date
func NewTenant(firstName, lastName, phone string, startDate time.Time) (*Tenant, error) {
	if firstName == "" || lastName == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}
	if startDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_START_DATE", "Contract start date is required")
	}

	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FirstName:         firstName,
		LastName:          lastName,
		Phone:             phone,
		StartDate:         startDate,
	}, nil
}

// FullName returns the tenant's display name
func (t *Tenant) FullName() string {
	return t.FirstName + " " + t.LastName
}

// BillingAnchorDay returns the day-of-month that anchors the tenant's
// billing cycle, derived from the contract start date.
func (t *Tenant) BillingAnchorDay() int {
	return t.StartDate.Day()
}

// HasRoom reports whether the tenant is assigned to a unit; a tenant
// without a unit is never billed.
func (t *Tenant) HasRoom() bool {
	return t.RoomID != nil && *t.RoomID != uuid.Nil
}

// AssignRoom assigns the tenant to a room
func (t *Tenant) AssignRoom(roomID uuid.UUID) error {
	if roomID == uuid.Nil {
		return shared.NewDomainError("INVALID_ROOM", "Room ID cannot be empty")
	}
	t.RoomID = &roomID
	t.Touch()
	t.IncrementVersion()
	return nil
}

// Archive marks the tenant as archived; archived tenants are excluded
// from billing runs.
func (t *Tenant) Archive() {
	t.Archived = true
	t.Touch()
	t.IncrementVersion()
}
