package entity

// Room is catalog data. The booking core treats room IDs as opaque; capacity
// and location only matter for room-picker filtering.
type Room struct {
	ID        int    `gorm:"primaryKey"`
	Name      string `gorm:"not null;uniqueIndex"`
	Capacity  int    `gorm:"not null"`
	Location  string
	CreatedAt int64 `gorm:"not null"`
	UpdatedAt int64 `gorm:"not null"`
}
