package entity

// DefaultReminderAdvanceMinutes is applied when preferences are created at
// account-creation time.
const DefaultReminderAdvanceMinutes = 15

// ReminderPreferences holds per-user opt-in flags. One row per employee,
// created with defaults when the account is created and removed with it.
type ReminderPreferences struct {
	UserID                 int  `gorm:"primaryKey"` // References: users(id)
	EventReminder          bool `gorm:"not null"`
	BookingReminder        bool `gorm:"not null"`
	ReminderAdvanceMinutes int  `gorm:"not null"`
	CreatedAt              int64
	UpdatedAt              int64
}
