package handler

import (
	"strings"

	"github.com/ASMFahim71/ledgerly/internal/apperr"
	"github.com/ASMFahim71/ledgerly/internal/models"
	"github.com/ASMFahim71/ledgerly/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CategoryHandler serves category CRUD, per-category stats and the
// assign/unassign endpoints of the transaction-category join.
type CategoryHandler struct {
	DB *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{DB: db}
}

type createCategoryReq struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type updateCategoryReq struct {
	Name *string `json:"name"`
	Type *string `json:"type"`
}

type assignCategoryReq struct {
	TransactionID uint `json:"transaction_id"`
	CategoryID    uint `json:"category_id"`
}

func (h *CategoryHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	base := h.DB.Model(&models.Category{}).Where("user_id = ?", user.ID)
	if t := c.Query("type"); t == "income" || t == "expense" {
		base = base.Where("type = ?", t)
	}

	page, pagination, err := util.Paginate(c, base)
	if err != nil {
		util.Fail(c, apperr.Internal("Couldn't count categories!", err))
		return
	}

	var categories []models.Category
	if err := page.Order("id ASC").Find(&categories).Error; err != nil {
		util.Fail(c, apperr.Internal("Couldn't load categories!", err))
		return
	}

	util.List(c, len(categories), util.Response{"categories": categories}, pagination)
}

func (h *CategoryHandler) Get(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "Category")
	if !ok {
		return
	}

	var category models.Category
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&category).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Fail(c, apperr.NotFound("Category not found!"))
		} else {
			util.Fail(c, apperr.Internal("Couldn't load category!", err))
		}
		return
	}

	util.Success(c, util.Response{"category": category})
}

func (h *CategoryHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation(map[string]string{"body": "Invalid request body!"}))
		return
	}

	req.Name = strings.TrimSpace(req.Name)

	errs := make(map[string]string)
	if req.Name == "" {
		errs["name"] = "Category name is required"
	} else if len(req.Name) > 100 {
		errs["name"] = "Category name must be less than 100 characters"
	}
	if err := util.ValidateEntryType(req.Type); err != nil {
		errs["type"] = "Type must be either income or expense"
	}
	if len(errs) > 0 {
		util.Fail(c, apperr.Validation(errs))
		return
	}

	// (user_id, name, type) is unique; same name under the other type is fine
	var count int64
	if err := h.DB.Model(&models.Category{}).
		Where("name = ? AND type = ? AND user_id = ?", req.Name, req.Type, user.ID).
		Count(&count).Error; err != nil {
		util.Fail(c, apperr.Internal("Couldn't look up categories!", err))
		return
	}
	if count > 0 {
		util.Fail(c, apperr.Conflict("Category with this name already exists for this type!"))
		return
	}

	category := models.Category{
		UserID: user.ID,
		Name:   req.Name,
		Type:   req.Type,
	}
	if err := h.DB.Create(&category).Error; err != nil {
		util.Fail(c, apperr.Internal("Couldn't create category!", err))
		return
	}

	util.Created(c, "Category created successfully!", util.Response{"category": category})
}

func (h *CategoryHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "Category")
	if !ok {
		return
	}

	var req updateCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Fail(c, apperr.Validation(map[string]string{"body": "Invalid request body!"}))
		return
	}

	var existing models.Category
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Fail(c, apperr.NotFound("Category not found!"))
		} else {
			util.Fail(c, apperr.Internal("Couldn't load category!", err))
		}
		return
	}

	errs := make(map[string]string)
	name := existing.Name
	ctype := existing.Type

	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name == "" {
			errs["name"] = "Category name is required"
		} else if len(name) > 100 {
			errs["name"] = "Category name must be less than 100 characters"
		}
	}
	if req.Type != nil {
		ctype = *req.Type
		if err := util.ValidateEntryType(ctype); err != nil {
			errs["type"] = "Type must be either income or expense"
		}
	}
	if len(errs) > 0 {
		util.Fail(c, apperr.Validation(errs))
		return
	}

	if name != existing.Name || ctype != existing.Type {
		var count int64
		if err := h.DB.Model(&models.Category{}).
			Where("name = ? AND type = ? AND user_id = ? AND id != ?", name, ctype, user.ID, id).
			Count(&count).Error; err != nil {
			util.Fail(c, apperr.Internal("Couldn't look up categories!", err))
			return
		}
		if count > 0 {
			util.Fail(c, apperr.Conflict("Category with this name already exists for this type!"))
			return
		}
	}

	existing.Name = name
	existing.Type = ctype
	if err := h.DB.Save(&existing).Error; err != nil {
		util.Fail(c, apperr.Internal("Couldn't update this category!", err))
		return
	}

	util.Success(c, util.Response{
		"message":  "Category updated successfully!",
		"category": existing,
	})
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id", "Category")
	if !ok {
		return
	}

	var existing models.Category
	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).First(&existing).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Fail(c, apperr.NotFound("Category not found!"))
		} else {
			util.Fail(c, apperr.Internal("Couldn't load category!", err))
		}
		return
	}

	var linked int64
	if err := h.DB.Model(&models.TransactionCategory{}).
		Where("category_id = ?", id).
		Count(&linked).Error; err != nil {
		util.Fail(c, apperr.Internal("Couldn't look up category usage!", err))
		return
	}
	if linked > 0 {
		util.Fail(c, apperr.Conflict("Cannot delete category that is being used in transactions!"))
		return
	}

	if err := h.DB.Where("id = ? AND user_id = ?", id, user.ID).
		Delete(&models.Category{}).Error; err != nil {
		util.Fail(c, apperr.Internal("Couldn't delete this category!", err))
		return
	}

	util.Message(c, "Category deleted successfully!")
}

type categoryStat struct {
	CategoryID       uint            `json:"category_id"`
	Name             string          `json:"name"`
	Type             string          `json:"type"`
	TransactionCount int64           `json:"transaction_count"`
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalExpense     decimal.Decimal `json:"total_expense"`
}

// Stats aggregates transaction counts and totals per category, optionally
// restricted to one cashbook after an ownership check.
func (h *CategoryHandler) Stats(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	joinTxn := "LEFT JOIN transactions t ON t.id = tc.transaction_id"
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
		joinTxn = "LEFT JOIN transactions t ON t.id = tc.transaction_id AND t.cashbook_id = ?"
		args = []interface{}{cashbookID, user.ID}
	}

	var stats []categoryStat
	err := h.DB.Raw(`
		SELECT
			c.id AS category_id,
			c.name,
			c.type,
			COUNT(t.id) AS transaction_count,
			COALESCE(SUM(CASE WHEN t.type = 'income' THEN t.amount ELSE 0 END), 0) AS total_income,
			COALESCE(SUM(CASE WHEN t.type = 'expense' THEN t.amount ELSE 0 END), 0) AS total_expense
		FROM categories c
		LEFT JOIN transaction_categories tc ON tc.category_id = c.id
		`+joinTxn+`
		WHERE c.user_id = ?
		GROUP BY c.id, c.name, c.type
		ORDER BY transaction_count DESC, c.id ASC`, args...).Scan(&stats).Error
	if err != nil {
		util.Fail(c, apperr.Internal("Couldn't compute category stats!", err))
		return
	}

	util.Success(c, util.Response{"categoryStats": stats})
}

// Assign links one category to one transaction. Both must belong to the
// caller; an existing link is a conflict.
func (h *CategoryHandler) Assign(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req assignCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil || req.TransactionID == 0 || req.CategoryID == 0 {
		util.Fail(c, apperr.Conflict("Transaction ID and Category ID are required!"))
		return
	}

	if ok := h.ownsPair(c, user.ID, req.TransactionID, req.CategoryID); !ok {
		return
	}

	var count int64
	if err := h.DB.Model(&models.TransactionCategory{}).
		Where("transaction_id = ? AND category_id = ?", req.TransactionID, req.CategoryID).
		Count(&count).Error; err != nil {
		util.Fail(c, apperr.Internal("Couldn't look up assignment!", err))
		return
	}
	if count > 0 {
		util.Fail(c, apperr.Conflict("Category is already assigned to this transaction!"))
		return
	}

	link := models.TransactionCategory{
		TransactionID: req.TransactionID,
		CategoryID:    req.CategoryID,
	}
	if err := h.DB.Create(&link).Error; err != nil {
		util.Fail(c, apperr.Internal("Couldn't assign category to transaction!", err))
		return
	}

	util.Created(c, "Category assigned to transaction successfully!", nil)
}

// Unassign removes a link. Ownership violations answer 404; removing a link
// that does not exist succeeds, so the operation is idempotent.
func (h *CategoryHandler) Unassign(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	transactionID, ok := paramID(c, "id", "Transaction")
	if !ok {
		return
	}
	categoryID, ok := paramID(c, "category_id", "Category")
	if !ok {
		return
	}

	if ok := h.ownsPair(c, user.ID, transactionID, categoryID); !ok {
		return
	}

	if err := h.DB.Where("transaction_id = ? AND category_id = ?", transactionID, categoryID).
		Delete(&models.TransactionCategory{}).Error; err != nil {
		util.Fail(c, apperr.Internal("Couldn't remove category from transaction!", err))
		return
	}

	util.Message(c, "Category removed from transaction successfully!")
}

// ownsPair checks that the transaction and the category both belong to the
// user, answering 404 (not 403) on violations so existence never leaks.
func (h *CategoryHandler) ownsPair(c *gin.Context, userID, transactionID, categoryID uint) bool {
	var count int64
	if err := h.DB.Model(&models.Transaction{}).
		Where("id = ? AND user_id = ?", transactionID, userID).
		Count(&count).Error; err != nil {
		util.Fail(c, apperr.Internal("Couldn't look up transaction!", err))
		return false
	}
	if count == 0 {
		util.Fail(c, apperr.NotFound("Transaction not found or access denied!"))
		return false
	}

	if err := h.DB.Model(&models.Category{}).
		Where("id = ? AND user_id = ?", categoryID, userID).
		Count(&count).Error; err != nil {
		util.Fail(c, apperr.Internal("Couldn't look up category!", err))
		return false
	}
	if count == 0 {
		util.Fail(c, apperr.NotFound("Category not found or access denied!"))
		return false
	}
	return true
}
