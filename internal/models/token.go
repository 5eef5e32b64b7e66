package models

import "time"

// AuthToken is an opaque bearer token looked up on every authenticated
// request. One per user.
type AuthToken struct {
	ID        uint      `json:"-" gorm:"primaryKey"`
	UserID    string    `json:"-" gorm:"uniqueIndex;type:varchar(36)"`
	Token     string    `json:"token" gorm:"uniqueIndex;type:varchar(64)"`
	CreatedAt time.Time `json:"created_at"`
}
