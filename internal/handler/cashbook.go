package handler

import (
	"strings"

	"github.com/ASMFahim71/ledgerly/internal/apperr"
	"github.com/ASMFahim71/ledgerly/internal/ledger"
	"github.com/ASMFahim71/ledgerly/internal/models"
	"github.com/ASMFahim71/ledgerly/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CashbookHandler serves cashbook CRUD plus the balance report.
type CashbookHandler struct {
	DB *gorm.DB
}

func NewCashbookHandler(db *gorm.DB) *CashbookHandler {
	return &CashbookHandler{DB: db}
}

type createCashbookReq struct {
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	InitialBalance *decimal.Decimal `json:"initial_balance"`
	IsActive       *bool            `json:"is_active"`
}

type updateCashbookReq struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	InitialBalance *decimal.Decimal `json:"initial_balance"`
	IsActive       *bool            `json:"is_active"`
}

func (h *CashbookHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	base := h.DB.Model(&models.Cashbook{}).Where("user_id = ?", user.ID)

	page, pagination, err := util.Paginate(c, base)
	if err != nil {
		util.Fail(c, apperr.Internal("Couldn't count cashbooks!", err))
		return
	}

	var cashbooks []models.Cashbook
	if err := page.Order("id ASC").Find(&cashbooks).Error; err != nil {
		util.Fail(c, apperr.Internal("Couldn't load cashbooks!", err))
		return
	}

	util.List(c, len(cashbooks), util.Response{"cashbooks": cashbooks}, pagination)
}

func (h *CashbookHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "Cashbook")
	if !ok {
		return
	}

	var cashbook models.Cashbook
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&cashbook).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Fail(c, apperr.NotFound("Cashbook not found!"))
		} else {
			util.Fail(c, apperr.Internal("Couldn't load cashbook!", err))
		}
		return
	}

	util.Success(c, util.Response{"cashbook": cashbook})
}

func (h *CashbookHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createCashbookReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation(map[string]string{"body": "Invalid request body!"}))
		return
	}

	req.Name = strings.TrimSpace(req.Name)

	errs := make(map[string]string)
	if req.Name == "" {
		errs["name"] = "Cashbook name is required"
	} else if len(req.Name) > 100 {
		errs["name"] = "Cashbook name must be less than 100 characters"
	}
	if len(req.Description) > 500 {
		errs["description"] = "Description must be less than 500 characters"
	}

	initial := decimal.Zero
	if req.InitialBalance != nil {
		initial = *req.InitialBalance
		if initial.Sign() < 0 {
			errs["initial_balance"] = "Initial balance cannot be negative"
		}
	}
	if len(errs) > 0 {
		util.Fail(c, apperr.Validation(errs))
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	cashbook := models.Cashbook{
		UserID:         user.ID,
		Name:           req.Name,
		Description:    req.Description,
		InitialBalance: initial,
		CurrentBalance: initial, // no transactions yet
		IsActive:       isActive,
	}
	if err := h.DB.Create(&cashbook).Error; err != nil {
		util.Fail(c, apperr.Internal("Couldn't create cashbook!", err))
		return
	}

	util.Created(c, "Cashbook created successfully!", util.Response{"cashbook": cashbook})
}

func (h *CashbookHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "Cashbook")
	if !ok {
		return
	}

	var req updateCashbookReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation(map[string]string{"body": "Invalid request body!"}))
		return
	}

	var existing models.Cashbook
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Fail(c, apperr.NotFound("Cashbook not found!"))
		} else {
			util.Fail(c, apperr.Internal("Couldn't load cashbook!", err))
		}
		return
	}

	errs := make(map[string]string)
	updates := make(map[string]interface{})

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			errs["name"] = "Cashbook name is required"
		} else if len(name) > 100 {
			errs["name"] = "Cashbook name must be less than 100 characters"
		} else {
			updates["name"] = name
		}
	}
	if req.Description != nil {
		if len(*req.Description) > 500 {
			errs["description"] = "Description must be less than 500 characters"
		} else {
			updates["description"] = *req.Description
		}
	}
	if req.InitialBalance != nil {
		if req.InitialBalance.Sign() < 0 {
			errs["initial_balance"] = "Initial balance cannot be negative"
		} else {
			updates["initial_balance"] = *req.InitialBalance
		}
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(errs) > 0 {
		util.Fail(c, apperr.Validation(errs))
		return
	}

	if len(updates) > 0 {
		err := h.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Cashbook{}).
				Where("id = ? AND user_id = ?", id, user.ID).
				Updates(updates).Error; err != nil {
				return err
			}
			// a new initial_balance shifts the derived balance too
			if _, ok := updates["initial_balance"]; ok {
				return ledger.RecomputeBalance(tx, id)
			}
			return nil
		})
		if err != nil {
			util.Fail(c, apperr.Internal("Couldn't update this cashbook!", err))
			return
		}
	}

	var cashbook models.Cashbook
	if err := h.DB.First(&cashbook, id).Error; err != nil {
		util.Fail(c, apperr.Internal("Couldn't load cashbook!", err))
		return
	}

	util.Success(c, util.Response{
		"message":  "Cashbook updated successfully!",
		"cashbook": cashbook,
	})
}

func (h *CashbookHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "Cashbook")
	if !ok {
		return
	}

	var existing models.Cashbook
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Fail(c, apperr.NotFound("Cashbook not found!"))
		} else {
			util.Fail(c, apperr.Internal("Couldn't load cashbook!", err))
		}
		return
	}

	// removing a cashbook takes its transactions and their category links with it
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("transaction_id IN (?)",
			tx.Model(&models.Transaction{}).Select("id").Where("cashbook_id = ?", id),
		).Delete(&models.TransactionCategory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("cashbook_id = ?", id).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", id, user.ID).Delete(&models.Cashbook{}).Error
	})
	if err != nil {
		util.Fail(c, apperr.Internal("Couldn't delete this cashbook!", err))
		return
	}

	util.Message(c, "Cashbook deleted successfully!")
}

// Balance reports the cashbook's initial balance, income/expense totals and
// the derived current balance computed live from source rows.
func (h *CashbookHandler) Balance(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "Cashbook")
	if !ok {
		return
	}

	var cashbook models.Cashbook
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&cashbook).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Fail(c, apperr.NotFound("Cashbook not found!"))
		} else {
			util.Fail(c, apperr.Internal("Couldn't load cashbook!", err))
		}
		return
	}

	totals, err := ledger.CashbookTotals(h.DB, id)
	if err != nil {
		util.Fail(c, apperr.Internal("Couldn't compute balance!", err))
		return
	}

	util.Success(c, util.Response{
		"balance": gin.H{
			"cashbook_id":     cashbook.ID,
			"name":            cashbook.Name,
			"initial_balance": cashbook.InitialBalance,
			"total_income":    totals.TotalIncome,
			"total_expense":   totals.TotalExpense,
			"net_change":      totals.Net(),
			"current_balance": cashbook.InitialBalance.Add(totals.Net()),
		},
	})
}
