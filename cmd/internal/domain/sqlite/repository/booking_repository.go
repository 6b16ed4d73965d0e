package repository

import (
	"errors"

	"gorm.io/gorm"

	"roomcal/cmd/internal/domain/entity"
)

type DefaultBookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *DefaultBookingRepository {
	return &DefaultBookingRepository{db: db}
}

// FindOverlapping returns one booking for the room/day whose half-open
// interval intersects [start, end), or nil if the slot is free. The predicate
// is strict inequality both ways, so adjacent bookings are not a conflict.
// Zero-padded "15:04" strings compare lexicographically in time order.
func (b *DefaultBookingRepository) FindOverlapping(roomID int, date, start, end string) (*entity.RoomBooking, error) {
	var booking entity.RoomBooking
	err := b.db.
		Where("room_id = ?", roomID).
		Where("booking_date = ?", date).
		Where("start_time < ?", end).
		Where("end_time > ?", start).
		First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByNaturalKey looks a booking up by its full business key. Two bookings
// that share every field except the surrogate ID are indistinguishable here;
// the first row wins. Keeping the natural-key match in one place means a
// future move to surrogate-key deletion touches only this function.
func (b *DefaultBookingRepository) FindByNaturalKey(roomID, userID int, date, start, end string) (*entity.RoomBooking, error) {
	var booking entity.RoomBooking
	err := b.db.
		Where("room_id = ?", roomID).
		Where("user_id = ?", userID).
		Where("booking_date = ?", date).
		Where("start_time = ?", start).
		Where("end_time = ?", end).
		First(&booking).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (b *DefaultBookingRepository) FindByID(id int) (*entity.RoomBooking, error) {
	var booking entity.RoomBooking
	err := b.db.First(&booking, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &booking, err
}

func (b *DefaultBookingRepository) FindByUserID(userID int) ([]*entity.RoomBooking, error) {
	var bookings []*entity.RoomBooking
	err := b.db.
		Where("user_id = ?", userID).
		Order("begins_at asc").
		Find(&bookings).Error
	return bookings, err
}

// FindBookedRoomIDs returns the distinct rooms with any booking intersecting
// [begin, end) epoch millis. Powers the available-rooms picker.
func (b *DefaultBookingRepository) FindBookedRoomIDs(begin, end int64) ([]int, error) {
	var ids []int
	err := b.db.Model(&entity.RoomBooking{}).
		Distinct("room_id").
		Where("begins_at < ?", end).
		Where("ends_at > ?", begin).
		Pluck("room_id", &ids).Error
	return ids, err
}

func (b *DefaultBookingRepository) Save(booking *entity.RoomBooking) error {
	return b.db.Save(booking).Error
}

func (b *DefaultBookingRepository) Delete(booking *entity.RoomBooking) error {
	return b.db.Delete(booking).Error
}
