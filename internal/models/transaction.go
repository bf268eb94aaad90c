package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single dated income or expense entry in one cashbook.
// Amount is always positive; Type decides its sign.
type Transaction struct {
	ID              uint            `gorm:"primaryKey" json:"transaction_id"`
	UserID          uint            `gorm:"index;not null" json:"user_id"`
	CashbookID      uint            `gorm:"index;not null" json:"cashbook_id"`
	Type            string          `gorm:"size:16;index;not null" json:"type"` // income / expense
	Amount          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	SourcePerson    string          `gorm:"size:150;not null" json:"source_person"`
	Description     string          `gorm:"size:1000" json:"description"`
	TransactionDate time.Time       `gorm:"index;not null" json:"transaction_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	User     User     `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Cashbook Cashbook `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TransactionCategory links a transaction to a category (many-to-many, no
// payload). Rows are replaced wholesale on transaction create/update and
// created/removed individually by the assign/unassign endpoints.
type TransactionCategory struct {
	TransactionID uint `gorm:"primaryKey" json:"transaction_id"`
	CategoryID    uint `gorm:"primaryKey" json:"category_id"`

	Transaction Transaction `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Category    Category    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (TransactionCategory) TableName() string {
	return "transaction_categories"
}
