package persistence

import (
	"context"
	"errors"

	"github.com/boardpay/backend/internal/domain/property"
	"github.com/boardpay/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRoomRepository implements RoomRepository using GORM
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new GormRoomRepository
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	return &GormRoomRepository{db: db}
}

// FindByID finds a room by its ID, nil when absent
func (r *GormRoomRepository) FindByID(ctx context.Context, id uuid.UUID) (*property.Room, error) {
	var model models.RoomModel
	if err := dbFrom(ctx, r.db).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByBuilding returns all rooms of a building ordered by room number
func (r *GormRoomRepository) FindByBuilding(ctx context.Context, buildingID uuid.UUID) ([]property.Room, error) {
	var roomModels []models.RoomModel
	if err := dbFrom(ctx, r.db).
		Where("building_id = ?", buildingID).
		Order("number ASC").
		Find(&roomModels).Error; err != nil {
		return nil, err
	}
	rooms := make([]property.Room, len(roomModels))
	for i, model := range roomModels {
		rooms[i] = *model.ToDomain()
	}
	return rooms, nil
}

// Save creates or updates a room
func (r *GormRoomRepository) Save(ctx context.Context, room *property.Room) error {
	model := models.RoomModelFromDomain(room)
	return dbFrom(ctx, r.db).Save(model).Error
}

// Ensure GormRoomRepository implements RoomRepository
var _ property.RoomRepository = (*GormRoomRepository)(nil)
