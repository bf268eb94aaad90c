// Package ledger holds the transaction-category-balance consistency routines.
// Every function takes the *gorm.DB handle it should run on, so callers can
// pass the transaction handle from db.Transaction and have the recomputation
// commit or roll back together with the write that triggered it.
package ledger

import (
	"fmt"

	"github.com/ASMFahim71/ledgerly/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Totals is the income/expense breakdown of one cashbook's transactions.
type Totals struct {
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
}

// Net returns income minus expense.
func (t Totals) Net() decimal.Decimal {
	return t.TotalIncome.Sub(t.TotalExpense)
}

// CashbookTotals sums the signed transaction amounts of a cashbook.
func CashbookTotals(db *gorm.DB, cashbookID uint) (Totals, error) {
	var t Totals
	err := db.Raw(`
		SELECT
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0) AS total_income,
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0) AS total_expense
		FROM transactions
		WHERE cashbook_id = ?`, cashbookID).Scan(&t).Error
	if err != nil {
		return Totals{}, fmt.Errorf("sum cashbook %d: %w", cashbookID, err)
	}
	return t, nil
}

// RecomputeBalance overwrites the cashbook's current_balance with
// initial_balance plus the signed sum of its transactions. It recomputes from
// source rows rather than incrementing, so a lost race self-corrects on the
// next mutation.
func RecomputeBalance(db *gorm.DB, cashbookID uint) error {
	var cashbook models.Cashbook
	if err := db.Select("id", "initial_balance").First(&cashbook, cashbookID).Error; err != nil {
		return fmt.Errorf("load cashbook %d: %w", cashbookID, err)
	}

	totals, err := CashbookTotals(db, cashbookID)
	if err != nil {
		return err
	}

	current := cashbook.InitialBalance.Add(totals.Net())
	if err := db.Model(&models.Cashbook{}).
		Where("id = ?", cashbookID).
		Update("current_balance", current).Error; err != nil {
		return fmt.Errorf("update balance of cashbook %d: %w", cashbookID, err)
	}
	return nil
}

// ReplaceCategories swaps the full category link set of a transaction:
// delete all existing rows, then bulk-insert the new ids. An empty list just
// clears the links.
func ReplaceCategories(db *gorm.DB, transactionID uint, categoryIDs []uint) error {
	if err := db.Where("transaction_id = ?", transactionID).
		Delete(&models.TransactionCategory{}).Error; err != nil {
		return fmt.Errorf("clear categories of transaction %d: %w", transactionID, err)
	}

	ids := dedupe(categoryIDs)
	if len(ids) == 0 {
		return nil
	}

	links := make([]models.TransactionCategory, 0, len(ids))
	for _, id := range ids {
		links = append(links, models.TransactionCategory{
			TransactionID: transactionID,
			CategoryID:    id,
		})
	}
	if err := db.Create(&links).Error; err != nil {
		return fmt.Errorf("link categories to transaction %d: %w", transactionID, err)
	}
	return nil
}

// CategoriesOwned reports whether every id refers to a category of the given
// user. Unknown ids and other users' ids are indistinguishable to the caller.
func CategoriesOwned(db *gorm.DB, userID uint, categoryIDs []uint) (bool, error) {
	ids := dedupe(categoryIDs)
	if len(ids) == 0 {
		return true, nil
	}

	var count int64
	if err := db.Model(&models.Category{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("count categories: %w", err)
	}
	return count == int64(len(ids)), nil
}

// TransactionCategories loads the categories linked to a transaction.
func TransactionCategories(db *gorm.DB, transactionID uint) ([]models.Category, error) {
	var categories []models.Category
	err := db.
		Joins("JOIN transaction_categories tc ON tc.category_id = categories.id").
		Where("tc.transaction_id = ?", transactionID).
		Order("categories.id ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("load categories of transaction %d: %w", transactionID, err)
	}
	return categories, nil
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
