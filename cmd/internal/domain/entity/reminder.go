package entity

// Reminder type codes. Even codes are the event-participation family (calendar
// icon on the client), odd codes the room-booking family (bell icon). The
// numeric values are part of the client contract and must not be renumbered.
const (
	ReminderEventConfirmed   = 0
	ReminderBookingConfirmed = 1
	ReminderEventChanged     = 2
	ReminderBookingChanged   = 3
	ReminderEventCanceled    = 4
	ReminderBookingCanceled  = 5
)

// Reminder is a free-standing notification surfaced to one user. It records
// that something happened; it does not mirror a live entity and is never
// cascaded by the database, only retracted by an explicit matching delete.
type Reminder struct {
	ID             int   `gorm:"primaryKey"`
	UserID         int   `gorm:"not null;index"` // References: users(id)
	ReminderType   int   `gorm:"not null"`
	RelatedEventID *int
	RelatedRoomID  *int
	ReminderTime   int64 `gorm:"not null"` // when it becomes relevant, epoch millis
	IsRead         bool  `gorm:"not null"`
	Title          string
	Message        string
	CreatedAt      int64 `gorm:"not null"`
}

// IsBookingReminder reports whether the type code belongs to the room-booking
// family (odd codes).
func IsBookingReminder(reminderType int) bool {
	return reminderType%2 == 1
}
