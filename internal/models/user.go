package models

import "time"

// User represents a managed user account.
// Deletes are hard deletes, so there is no soft-delete column here.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password  string    `gorm:"type:varchar(255);not null"` // No json tag for security
	Name      string    `json:"name" gorm:"type:varchar(50);not null"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
