package models

import "time"

// User represents a registered shopper.
type User struct {
	ID        string    `json:"user_id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username  string    `json:"username" gorm:"uniqueIndex;type:varchar(20)" validate:"required,min=3,max=20"`
	Password  string    `json:"-" gorm:"type:varchar(255)" validate:"required,min=6"` // bcrypt hash, never serialized
	Picture   string    `json:"user_picture" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at"`

	Cart  *Cart      `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Token *AuthToken `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}
