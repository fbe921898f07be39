package models

import "time"

// User represents a person logging exercises.
// Usernames are not unique.
type User struct {
	ID        string    `json:"_id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Username  string    `json:"username" bson:"username" gorm:"type:varchar(255);not null" validate:"required"`
	CreatedAt time.Time `json:"-" bson:"createdAt" gorm:"index"`
}
