package repository

import (
	"errors"

	"gorm.io/gorm"

	"roomcal/cmd/internal/domain/entity"
)

type DefaultPreferencesRepository struct {
	db *gorm.DB
}

func NewPreferencesRepository(db *gorm.DB) *DefaultPreferencesRepository {
	return &DefaultPreferencesRepository{db: db}
}

func (p *DefaultPreferencesRepository) FindByUserID(userID int) (*entity.ReminderPreferences, error) {
	var prefs entity.ReminderPreferences
	err := p.db.First(&prefs, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &prefs, err
}

func (p *DefaultPreferencesRepository) Save(prefs *entity.ReminderPreferences) error {
	return p.db.Save(prefs).Error
}

func (p *DefaultPreferencesRepository) DeleteByUserID(userID int) error {
	return p.db.Delete(&entity.ReminderPreferences{}, "user_id = ?", userID).Error
}
