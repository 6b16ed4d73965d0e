package entity

// RoomBooking is a single reserved interval in a room.
//
// BookingDate plus the two time-of-day strings form the natural key used for
// deletion; BeginsAt/EndsAt carry the same interval as epoch millis so that
// cross-day availability queries stay a plain range comparison.
// Intervals are half-open: a booking ending at 11:00 does not conflict with
// one starting at 11:00. Bookings never span midnight.
type RoomBooking struct {
	ID          int    `gorm:"primaryKey"`
	RoomID      int    `gorm:"not null;index:idx_room_date"` // References: rooms(id)
	UserID      int    `gorm:"not null"`                     // References: users(id)
	BookingDate string `gorm:"not null;index:idx_room_date"` // "2006-01-02"
	StartTime   string `gorm:"not null"`                     // "15:04", inclusive
	EndTime     string `gorm:"not null"`                     // "15:04", exclusive
	BeginsAt    int64  `gorm:"not null"`
	EndsAt      int64  `gorm:"not null"`
	Purpose     string
	CreatedAt   int64 `gorm:"not null"`
	UpdatedAt   int64 `gorm:"not null"`
}
