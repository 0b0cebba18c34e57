package model

import "time"

// Reservation is a stored booking record. The table is append-only.
// Staff and the time bounds are nullable because rows may be written by other clients.
type Reservation struct {
	ID        string     `gorm:"primaryKey;size:36"`
	Room      string     `gorm:"size:128;not null;index"`
	Staff     *string    `gorm:"size:128;index"`
	StartAt   *time.Time `gorm:"column:start_at;index"`
	EndAt     *time.Time `gorm:"column:end_at"`
	CreatedAt time.Time  `gorm:"not null"`
}
