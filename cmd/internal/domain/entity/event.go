package entity

// Event is a calendar item. Location is free text; BookingID is only set when
// the location matched an actual reservable room at creation/update time.
type Event struct {
	ID                int    `gorm:"primaryKey"`
	Title             string `gorm:"not null"`
	Description       string
	EventDate         int64 `gorm:"not null"` // start instant, epoch millis
	EndTime           int64 `gorm:"not null"` // end instant, epoch millis
	Location          string
	BookingID         *int // References: room_bookings(id)
	CreatedBy         int  `gorm:"not null"` // References: users(id)
	ExpectedAttendees int
	CreatedAt         int64 `gorm:"not null"`
	UpdatedAt         int64 `gorm:"not null"`
}
