package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cashbook is a named ledger owned by one user. CurrentBalance is derived:
// initial_balance + sum of signed transaction amounts, rewritten after every
// transaction mutation rather than maintained incrementally.
type Cashbook struct {
	ID             uint            `gorm:"primaryKey" json:"cashbook_id"`
	UserID         uint            `gorm:"index;not null" json:"user_id"`
	Name           string          `gorm:"size:100;not null" json:"name"`
	Description    string          `gorm:"size:500" json:"description"`
	InitialBalance decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"initial_balance"`
	CurrentBalance decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"current_balance"`
	IsActive       bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	User User `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
