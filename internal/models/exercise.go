package models

import "time"

// DateLayout is how exercise dates are rendered to clients, e.g. "Sun Jan 15 2023".
const DateLayout = "Mon Jan 02 2006"

// Exercise is a single logged activity owned by a user.
type Exercise struct {
	ID          string    `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string    `json:"userId" bson:"userId" gorm:"type:varchar(36);not null;index:idx_exercises_user_date,priority:1"`
	Description string    `json:"description" bson:"description" gorm:"type:text;not null" validate:"required"`
	Duration    float64   `json:"duration" bson:"duration" gorm:"not null" validate:"gte=0"`
	Date        time.Time `json:"date" bson:"date" gorm:"not null;index:idx_exercises_user_date,priority:2"`
	CreatedAt   time.Time `json:"-" bson:"createdAt"`
}

// LogFilter narrows an exercise log query. Nil bounds are open.
type LogFilter struct {
	From  *time.Time
	To    *time.Time
	Limit int
}

// Matches reports whether the exercise date lies within the inclusive bounds.
func (f LogFilter) Matches(e Exercise) bool {
	if f.From != nil && e.Date.Before(*f.From) {
		return false
	}
	if f.To != nil && e.Date.After(*f.To) {
		return false
	}
	return true
}
