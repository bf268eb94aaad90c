package models

import "time"

// Category is a user-defined income/expense tag. (user_id, name, type) is
// unique per user, enforced by a duplicate check on create/update.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"category_id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Type      string    `gorm:"size:16;index;not null" json:"type"` // income / expense
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
