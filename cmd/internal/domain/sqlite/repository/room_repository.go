package repository

import (
	"errors"

	"gorm.io/gorm"

	"roomcal/cmd/internal/domain/entity"
)

type DefaultRoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *DefaultRoomRepository {
	return &DefaultRoomRepository{db: db}
}

func (r *DefaultRoomRepository) FindByID(id int) (*entity.Room, error) {
	var room entity.Room
	err := r.db.First(&room, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &room, err
}

// FindByName resolves an event's free-text location to a catalog room, if it
// is one. Events with locations like "Cafe downstairs" simply get no booking.
func (r *DefaultRoomRepository) FindByName(name string) (*entity.Room, error) {
	var room entity.Room
	err := r.db.First(&room, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &room, err
}

func (r *DefaultRoomRepository) FindAll() ([]*entity.Room, error) {
	var rooms []*entity.Room
	err := r.db.Order("name asc").Find(&rooms).Error
	return rooms, err
}

func (r *DefaultRoomRepository) Save(room *entity.Room) error {
	return r.db.Save(room).Error
}
