package model

import "time"

// PushSubscription holds the information for a browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Watches []RoomWatch `gorm:"foreignKey:Endpoint;references:Endpoint;constraint:OnDelete:CASCADE"`
}

// RoomWatch asks for a notification when the room becomes free.
type RoomWatch struct {
	Endpoint  string `gorm:"primaryKey"`
	RoomLabel string `gorm:"primaryKey;size:128;index"`
}
