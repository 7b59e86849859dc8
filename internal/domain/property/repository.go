package property

import (
	"context"

	"github.com/google/uuid"
)

// TenantRepository provides access to tenants
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	// FindBillable returns all non-archived tenants with an assigned room
	FindBillable(ctx context.Context) ([]Tenant, error)
	Save(ctx context.Context, tenant *Tenant) error
}

// RoomRepository provides access to rooms
type RoomRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Room, error)
	FindByBuilding(ctx context.Context, buildingID uuid.UUID) ([]Room, error)
	Save(ctx context.Context, room *Room) error
}

// BuildingRepository provides access to buildings
type BuildingRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Building, error)
	Save(ctx context.Context, building *Building) error
}
