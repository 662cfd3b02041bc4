package model

import (
	"time"
)

// UserPreference tracks per-member engagement state, currently the daily
// check-in streak. One row per user.
type UserPreference struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"type:varchar(100);not null;uniqueIndex"`
	Streak      int       `json:"streak" gorm:"default:0"`
	LastCheckIn string    `json:"last_check_in" gorm:"type:varchar(10)"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
