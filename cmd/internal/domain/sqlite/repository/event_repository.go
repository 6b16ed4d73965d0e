package repository

import (
	"errors"

	"gorm.io/gorm"

	"roomcal/cmd/internal/domain/entity"
)

type DefaultEventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *DefaultEventRepository {
	return &DefaultEventRepository{db: db}
}

func (e *DefaultEventRepository) FindByID(id int) (*entity.Event, error) {
	var event entity.Event
	err := e.db.First(&event, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &event, err
}

func (e *DefaultEventRepository) FindAll() ([]*entity.Event, error) {
	var events []*entity.Event
	err := e.db.Order("event_date asc").Find(&events).Error
	return events, err
}

func (e *DefaultEventRepository) Save(event *entity.Event) error {
	return e.db.Save(event).Error
}

func (e *DefaultEventRepository) Delete(event *entity.Event) error {
	return e.db.Delete(event).Error
}
