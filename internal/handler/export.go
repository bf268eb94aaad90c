package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ASMFahim71/ledgerly/internal/apperr"
	"github.com/ASMFahim71/ledgerly/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler streams the user's transactions as CSV or XLSX.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

var exportHeaders = []string{"Date", "Type", "Amount", "Cashbook", "Source", "Description"}

func (h *ExportHandler) rows(userID uint) ([]transactionResp, error) {
	var rows []transactionResp
	err := (&TransactionHandler{DB: h.DB}).baseQuery(userID).
		Order("transactions.transaction_date DESC, transactions.id DESC").
		Find(&rows).Error
	return rows, err
}

// CSV writes all transactions of the current user as a CSV attachment.
func (h *ExportHandler) CSV(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	rows, err := h.rows(user.ID)
	if err != nil {
		util.Fail(c, apperr.Internal("Couldn't load transactions!", err))
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"",
		time.Now().Format("20060102")))
	c.Status(http.StatusOK)

	writer := csv.NewWriter(c.Writer)
	writer.Write(exportHeaders)
	for _, r := range rows {
		writer.Write([]string{
			r.TransactionDate.Format("2006-01-02"),
			r.Type,
			r.Amount.StringFixed(2),
			r.CashbookName,
			r.SourcePerson,
			r.Description,
		})
	}

	// the status line is already out, so a mid-stream failure can only be
	// logged, not reported to the client
	writer.Flush()
	if err := writer.Error(); err != nil {
		log.Printf("csv export failed: %s: %v", c.Request.URL.Path, err)
	}
}

// XLSX writes all transactions of the current user as an Excel attachment.
func (h *ExportHandler) XLSX(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	rows, err := h.rows(user.ID)
	if err != nil {
		util.Fail(c, apperr.Internal("Couldn't load transactions!", err))
		return
	}

	f := excelize.NewFile()
	sheetName := "Transactions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Fail(c, apperr.Internal("Couldn't create worksheet!", err))
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for idx, r := range rows {
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.TransactionDate.Format("2006-01-02"))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Type)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), r.Amount.StringFixed(2))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.CashbookName)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.SourcePerson)
		f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), r.Description)
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 10)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 18)
	f.SetColWidth(sheetName, "E", "E", 18)
	f.SetColWidth(sheetName, "F", "F", 30)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Fail(c, apperr.Internal("Couldn't write export!", err))
	}
}
