package repository

import (
	"errors"

	"gorm.io/gorm"

	"roomcal/cmd/internal/domain/entity"
)

type DefaultParticipationRepository struct {
	db *gorm.DB
}

func NewParticipationRepository(db *gorm.DB) *DefaultParticipationRepository {
	return &DefaultParticipationRepository{db: db}
}

func (p *DefaultParticipationRepository) Find(eventID, userID int) (*entity.EventParticipation, error) {
	var row entity.EventParticipation
	err := p.db.
		Where("event_id = ?", eventID).
		Where("user_id = ?", userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &row, err
}

func (p *DefaultParticipationRepository) FindByEvent(eventID int) ([]*entity.EventParticipation, error) {
	var rows []*entity.EventParticipation
	err := p.db.
		Where("event_id = ?", eventID).
		Order("created_at asc").
		Find(&rows).Error
	return rows, err
}

func (p *DefaultParticipationRepository) Save(row *entity.EventParticipation) error {
	return p.db.Save(row).Error
}

func (p *DefaultParticipationRepository) Delete(row *entity.EventParticipation) error {
	return p.db.Delete(row).Error
}
