package repository

import (
	"gorm.io/gorm"

	"roomcal/cmd/internal/domain/entity"
)

type DefaultReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *DefaultReminderRepository {
	return &DefaultReminderRepository{db: db}
}

func (r *DefaultReminderRepository) Save(reminder *entity.Reminder) error {
	return r.db.Save(reminder).Error
}

func (r *DefaultReminderRepository) FindByUserID(userID int) ([]*entity.Reminder, error) {
	var reminders []*entity.Reminder
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&reminders).Error
	return reminders, err
}

// DeleteByEventReminders retracts a user's confirmed/changed reminders for one
// event and returns what was removed. Canceled notices (type 4) are left
// alone: a cancellation posted moments earlier must survive the retraction
// that follows it. Calling this again for the same pair returns an empty
// slice, not an error.
func (r *DefaultReminderRepository) DeleteByEventReminders(userID, eventID int) ([]*entity.Reminder, error) {
	var matched []*entity.Reminder
	err := r.db.
		Where("user_id = ?", userID).
		Where("related_event_id = ?", eventID).
		Where("reminder_type IN ?", []int{entity.ReminderEventConfirmed, entity.ReminderEventChanged}).
		Find(&matched).Error
	if err != nil || len(matched) == 0 {
		return nil, err
	}
	return matched, r.deleteAll(matched)
}

// DeleteByRoomSlotReminders retracts a user's confirmed/changed booking
// reminders for one room whose reminder time equals the slot start. Reminders
// do not store a booking ID, so this (room, instant) match is the closest
// thing to a key the ledger has.
func (r *DefaultReminderRepository) DeleteByRoomSlotReminders(userID, roomID int, slotStart int64) ([]*entity.Reminder, error) {
	var matched []*entity.Reminder
	err := r.db.
		Where("user_id = ?", userID).
		Where("related_room_id = ?", roomID).
		Where("reminder_time = ?", slotStart).
		Where("reminder_type IN ?", []int{entity.ReminderBookingConfirmed, entity.ReminderBookingChanged}).
		Find(&matched).Error
	if err != nil || len(matched) == 0 {
		return nil, err
	}
	return matched, r.deleteAll(matched)
}

func (r *DefaultReminderRepository) deleteAll(reminders []*entity.Reminder) error {
	ids := make([]int, len(reminders))
	for i, rem := range reminders {
		ids[i] = rem.ID
	}
	return r.db.Delete(&entity.Reminder{}, ids).Error
}

// MarkRead flips one reminder owned by the user; reports whether a row
// actually changed.
func (r *DefaultReminderRepository) MarkRead(id, userID int) (bool, error) {
	res := r.db.Model(&entity.Reminder{}).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Update("is_read", true)
	return res.RowsAffected > 0, res.Error
}

func (r *DefaultReminderRepository) MarkAllRead(userID int) (int64, error) {
	res := r.db.Model(&entity.Reminder{}).
		Where("user_id = ?", userID).
		Where("is_read = ?", false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
