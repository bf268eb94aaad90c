package handler

import (
	"strings"
	"time"

	"github.com/ASMFahim71/ledgerly/internal/apperr"
	"github.com/ASMFahim71/ledgerly/internal/ledger"
	"github.com/ASMFahim71/ledgerly/internal/models"
	"github.com/ASMFahim71/ledgerly/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionHandler serves transaction CRUD and aggregate stats. Create,
// update and delete run as one DB transaction: the row write, the category
// link replacement and the cashbook balance recomputation commit or roll
// back together.
type TransactionHandler struct {
	DB *gorm.DB
}

func NewTransactionHandler(db *gorm.DB) *TransactionHandler {
	return &TransactionHandler{DB: db}
}

type createTransactionReq struct {
	CashbookID      uint             `json:"cashbook_id"`
	Type            string           `json:"type"`
	Amount          *decimal.Decimal `json:"amount"`
	SourcePerson    string           `json:"source_person"`
	Description     string           `json:"description"`
	TransactionDate string           `json:"transaction_date"`
	CategoryIDs     []uint           `json:"category_ids"`
}

type updateTransactionReq struct {
	CashbookID      *uint            `json:"cashbook_id"`
	Type            *string          `json:"type"`
	Amount          *decimal.Decimal `json:"amount"`
	SourcePerson    *string          `json:"source_person"`
	Description     *string          `json:"description"`
	TransactionDate *string          `json:"transaction_date"`
	CategoryIDs     *[]uint          `json:"category_ids"`
}

// transactionResp is the wire shape of a transaction, the cashbook name
// joined in and category links attached on single-item responses.
type transactionResp struct {
	ID              uint              `gorm:"column:id" json:"transaction_id"`
	UserID          uint              `json:"user_id"`
	CashbookID      uint              `json:"cashbook_id"`
	CashbookName    string            `json:"cashbook_name"`
	Type            string            `json:"type"`
	Amount          decimal.Decimal   `json:"amount"`
	SourcePerson    string            `json:"source_person"`
	Description     string            `json:"description"`
	TransactionDate time.Time         `json:"transaction_date"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	Categories      []models.Category `gorm:"-" json:"categories"`
}

func (h *TransactionHandler) baseQuery(userID uint) *gorm.DB {
	return h.DB.Model(&models.Transaction{}).
		Select("transactions.*, cashbooks.name AS cashbook_name").
		Joins("JOIN cashbooks ON cashbooks.id = transactions.cashbook_id").
		Where("transactions.user_id = ?", userID)
}

// fetchOne loads a single transaction row with its cashbook name and
// category links.
func (h *TransactionHandler) fetchOne(userID, id uint) (*transactionResp, error) {
	var row transactionResp
	err := h.baseQuery(userID).
		Where("transactions.id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, err
	}

	categories, err := ledger.TransactionCategories(h.DB, id)
	if err != nil {
		return nil, err
	}
	row.Categories = categories
	return &row, nil
}

// ownsCashbook answers 404 (not 403) for other users' cashbooks.
func (h *TransactionHandler) ownsCashbook(c *gin.Context, userID, cashbookID uint) bool {
	var count int64
	if err := h.DB.Model(&models.Cashbook{}).
		Where("id = ? AND user_id = ?", cashbookID, userID).
		Count(&count).Error; err != nil {
		util.Fail(c, apperr.Internal("Couldn't look up cashbook!", err))
		return false
	}
	if count == 0 {
		util.Fail(c, apperr.NotFound("Cashbook not found or access denied!"))
		return false
	}
	return true
}

// ownsCategories answers 404 for ids that are missing or another user's.
func (h *TransactionHandler) ownsCategories(c *gin.Context, userID uint, ids []uint) bool {
	owned, err := ledger.CategoriesOwned(h.DB, userID, ids)
	if err != nil {
		util.Fail(c, apperr.Internal("Couldn't look up categories!", err))
		return false
	}
	if !owned {
		util.Fail(c, apperr.NotFound("Category not found or access denied!"))
		return false
	}
	return true
}

func (h *TransactionHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	base := h.baseQuery(user.ID)
	if cashbookID := c.Query("cashbook_id"); cashbookID != "" {
		base = base.Where("transactions.cashbook_id = ?", cashbookID)
	}
	if t := c.Query("type"); t == "income" || t == "expense" {
		base = base.Where("transactions.type = ?", t)
	}

	page, pagination, err := util.Paginate(c, base)
	if err != nil {
		util.Fail(c, apperr.Internal("Couldn't count transactions!", err))
		return
	}

	var transactions []transactionResp
	if err := page.
		Order("transactions.transaction_date DESC, transactions.id DESC").
		Find(&transactions).Error; err != nil {
		util.Fail(c, apperr.Internal("Couldn't load transactions!", err))
		return
	}

	util.List(c, len(transactions), util.Response{"transactions": transactions}, pagination)
}

func (h *TransactionHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "Transaction")
	if !ok {
		return
	}

	row, err := h.fetchOne(user.ID, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Fail(c, apperr.NotFound("Transaction not found!"))
		} else {
			util.Fail(c, apperr.Internal("Couldn't load transaction!", err))
		}
		return
	}

	util.Success(c, util.Response{"transaction": row})
}

func (h *TransactionHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation(map[string]string{"body": "Invalid request body!"}))
		return
	}

	req.SourcePerson = strings.TrimSpace(req.SourcePerson)

	errs := make(map[string]string)
	if req.CashbookID == 0 {
		errs["cashbook_id"] = "Cashbook ID must be positive"
	}
	if err := util.ValidateEntryType(req.Type); err != nil {
		errs["type"] = "Type must be either income or expense"
	}
	if req.Amount == nil {
		errs["amount"] = "Amount is required"
	} else if err := util.ValidateAmount(*req.Amount); err != nil {
		errs["amount"] = "Amount must be positive and within range"
	}
	if req.SourcePerson == "" {
		errs["source_person"] = "Source person is required"
	} else if len(req.SourcePerson) > 150 {
		errs["source_person"] = "Source person must be less than 150 characters"
	}
	if len(req.Description) > 1000 {
		errs["description"] = "Description must be less than 1000 characters"
	}
	transactionDate, dateErr := util.ValidateDate(req.TransactionDate)
	if dateErr != nil {
		errs["transaction_date"] = "Transaction date must be in YYYY-MM-DD format"
	}
	if len(errs) > 0 {
		util.Fail(c, apperr.Validation(errs))
		return
	}

	if !h.ownsCashbook(c, user.ID, req.CashbookID) {
		return
	}
	if !h.ownsCategories(c, user.ID, req.CategoryIDs) {
		return
	}

	transaction := models.Transaction{
		UserID:          user.ID,
		CashbookID:      req.CashbookID,
		Type:            req.Type,
		Amount:          *req.Amount,
		SourcePerson:    req.SourcePerson,
		Description:     req.Description,
		TransactionDate: transactionDate,
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&transaction).Error; err != nil {
			return err
		}
		if err := ledger.ReplaceCategories(tx, transaction.ID, req.CategoryIDs); err != nil {
			return err
		}
		return ledger.RecomputeBalance(tx, transaction.CashbookID)
	})
	if err != nil {
		util.Fail(c, apperr.Internal("Couldn't create transaction!", err))
		return
	}

	row, err := h.fetchOne(user.ID, transaction.ID)
	if err != nil {
		util.Fail(c, apperr.Internal("Couldn't load transaction!", err))
		return
	}

	util.Created(c, "Transaction created successfully!", util.Response{"transaction": row})
}

func (h *TransactionHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "Transaction")
	if !ok {
		return
	}

	var req updateTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation(map[string]string{"body": "Invalid request body!"}))
		return
	}

	var existing models.Transaction
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Fail(c, apperr.NotFound("Transaction not found!"))
		} else {
			util.Fail(c, apperr.Internal("Couldn't load transaction!", err))
		}
		return
	}

	errs := make(map[string]string)
	updates := make(map[string]interface{})

	if req.CashbookID != nil {
		if *req.CashbookID == 0 {
			errs["cashbook_id"] = "Cashbook ID must be positive"
		} else {
			updates["cashbook_id"] = *req.CashbookID
		}
	}
	if req.Type != nil {
		if err := util.ValidateEntryType(*req.Type); err != nil {
			errs["type"] = "Type must be either income or expense"
		} else {
			updates["type"] = *req.Type
		}
	}
	if req.Amount != nil {
		if err := util.ValidateAmount(*req.Amount); err != nil {
			errs["amount"] = "Amount must be positive and within range"
		} else {
			updates["amount"] = *req.Amount
		}
	}
	if req.SourcePerson != nil {
		sp := strings.TrimSpace(*req.SourcePerson)
		if sp == "" {
			errs["source_person"] = "Source person is required"
		} else if len(sp) > 150 {
			errs["source_person"] = "Source person must be less than 150 characters"
		} else {
			updates["source_person"] = sp
		}
	}
	if req.Description != nil {
		if len(*req.Description) > 1000 {
			errs["description"] = "Description must be less than 1000 characters"
		} else {
			updates["description"] = *req.Description
		}
	}
	if req.TransactionDate != nil {
		parsed, err := util.ValidateDate(*req.TransactionDate)
		if err != nil {
			errs["transaction_date"] = "Transaction date must be in YYYY-MM-DD format"
		} else {
			updates["transaction_date"] = parsed
		}
	}
	if len(errs) > 0 {
		util.Fail(c, apperr.Validation(errs))
		return
	}

	newCashbookID := existing.CashbookID
	if req.CashbookID != nil && *req.CashbookID != existing.CashbookID {
		if !h.ownsCashbook(c, user.ID, *req.CashbookID) {
			return
		}
		newCashbookID = *req.CashbookID
	}
	if req.CategoryIDs != nil && !h.ownsCategories(c, user.ID, *req.CategoryIDs) {
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Transaction{}).
				Where("id = ? AND user_id = ?", id, user.ID).
				Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.CategoryIDs != nil {
			if err := ledger.ReplaceCategories(tx, id, *req.CategoryIDs); err != nil {
				return err
			}
		}
		// a moved transaction shifts both cashbooks' balances
		if err := ledger.RecomputeBalance(tx, existing.CashbookID); err != nil {
			return err
		}
		if newCashbookID != existing.CashbookID {
			return ledger.RecomputeBalance(tx, newCashbookID)
		}
		return nil
	})
	if err != nil {
		util.Fail(c, apperr.Internal("Couldn't update this transaction!", err))
		return
	}

	row, err := h.fetchOne(user.ID, id)
	if err != nil {
		util.Fail(c, apperr.Internal("Couldn't load transaction!", err))
		return
	}

	util.Success(c, util.Response{
		"message":     "Transaction updated successfully!",
		"transaction": row,
	})
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "Transaction")
	if !ok {
		return
	}

	var existing models.Transaction
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Fail(c, apperr.NotFound("Transaction not found!"))
		} else {
			util.Fail(c, apperr.Internal("Couldn't load transaction!", err))
		}
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id = ?", id).
			Delete(&models.TransactionCategory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ? AND user_id = ?", id, user.ID).
			Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		return ledger.RecomputeBalance(tx, existing.CashbookID)
	})
	if err != nil {
		util.Fail(c, apperr.Internal("Couldn't delete this transaction!", err))
		return
	}

	util.Message(c, "Transaction deleted successfully!")
}

type transactionStats struct {
	TotalTransactions int64           `json:"total_transactions"`
	TotalIncome       decimal.Decimal `json:"total_income"`
	TotalExpense      decimal.Decimal `json:"total_expense"`
	NetAmount         decimal.Decimal `json:"net_amount"`
}

// Stats runs one aggregate over the user's transactions, optionally
// restricted to a cashbook after an ownership check.
func (h *TransactionHandler) Stats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	where := "WHERE user_id = ?"
	args := []interface{}{user.ID}

	if cashbookID := c.Query("cashbook_id"); cashbookID != "" {
		var count int64
		if err := h.DB.Model(&models.Cashbook{}).
			Where("id = ? AND user_id = ?", cashbookID, user.ID).
			Count(&count).Error; err != nil {
			util.Fail(c, apperr.Internal("Couldn't look up cashbook!", err))
			return
		}
		if count == 0 {
			util.Fail(c, apperr.NotFound("Cashbook not found or access denied!"))
			return
		}
		where += " AND cashbook_id = ?"
		args = append(args, cashbookID)
	}

	var stats transactionStats
	err := h.DB.Raw(`
		SELECT
			COUNT(*) AS total_transactions,
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE 0 END), 0) AS total_income,
			COALESCE(SUM(CASE WHEN type = 'expense' THEN amount ELSE 0 END), 0) AS total_expense,
			COALESCE(SUM(CASE WHEN type = 'income' THEN amount ELSE -amount END), 0) AS net_amount
		FROM transactions `+where, args...).Scan(&stats).Error
	if err != nil {
		util.Fail(c, apperr.Internal("Couldn't compute transaction stats!", err))
		return
	}

	util.Success(c, util.Response{"stats": stats})
}
