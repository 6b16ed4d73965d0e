package entity

// User is an employee record. Authentication lives with the identity
// provider; we only keep the subject claim to map tokens back to rows.
type User struct {
	ID        int    `gorm:"primaryKey"`
	SubUUID   string `gorm:"not null;uniqueIndex"`
	Username  string `gorm:"not null"`
	Email     string `gorm:"not null;uniqueIndex"`
	IsAdmin   bool   `gorm:"not null"`
	CreatedAt int64  `gorm:"not null"`
	UpdatedAt int64  `gorm:"not null"`
}
