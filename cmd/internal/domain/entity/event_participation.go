package entity

// Participation statuses. Requests carrying anything else are rejected at the
// boundary, never defaulted.
const (
	ParticipationPending  = "pending"
	ParticipationAccepted = "accepted"
	ParticipationDeclined = "declined"
)

// EventParticipation links a user to an event. At most one row may exist per
// (event, user) pair; a second attend request is rejected, not merged.
type EventParticipation struct {
	ID        int    `gorm:"primaryKey"`
	EventID   int    `gorm:"not null;uniqueIndex:idx_event_user"` // References: events(id)
	UserID    int    `gorm:"not null;uniqueIndex:idx_event_user"` // References: users(id)
	Status    string `gorm:"not null"`
	CreatedAt int64  `gorm:"not null"`
}
