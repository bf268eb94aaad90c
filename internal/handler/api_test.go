package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ASMFahim71/ledgerly/internal/config"
	"github.com/ASMFahim71/ledgerly/internal/database"
	"github.com/ASMFahim71/ledgerly/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestServer wires the full router against a fresh in-memory database.
func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Mode: gin.TestMode},
		JWT: config.JWTConfig{
			Secret:      "test-secret",
			Issuer:      "ledgerly-test",
			ExpireHours: 1,
			CookieName:  "ledgerly_token",
		},
		Security: config.SecurityConfig{BcryptCost: bcrypt.MinCost},
	}
	return router.Setup(cfg, db)
}

// doJSON performs a request with an optional bearer token and JSON body.
func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dest); err != nil {
		t.Fatalf("unmarshal response %q: %v", w.Body.String(), err)
	}
}

// registerUser registers a fresh user and returns the auth token.
func registerUser(t *testing.T, r *gin.Engine, name, email string) string {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/users/register", "", gin.H{
		"name":     name,
		"email":    email,
		"password": "password123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status = %d, body = %s", email, w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	decodeBody(t, w, &resp)
	if resp.Data.Token == "" {
		t.Fatalf("register %s: empty token", email)
	}
	return resp.Data.Token
}

// createCashbook creates a cashbook and returns its id.
func createCashbook(t *testing.T, r *gin.Engine, token, name, initial string) uint {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/cashbooks", token, gin.H{
		"name":            name,
		"initial_balance": json.RawMessage(initial),
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create cashbook: status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Cashbook struct {
				ID uint `json:"cashbook_id"`
			} `json:"cashbook"`
		} `json:"data"`
	}
	decodeBody(t, w, &resp)
	return resp.Data.Cashbook.ID
}

// createCategory creates a category and returns its id.
func createCategory(t *testing.T, r *gin.Engine, token, name, catType string) uint {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/categories", token, gin.H{
		"name": name,
		"type": catType,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create category %s: status = %d, body = %s", name, w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Category struct {
				ID uint `json:"category_id"`
			} `json:"category"`
		} `json:"data"`
	}
	decodeBody(t, w, &resp)
	return resp.Data.Category.ID
}

type transactionPayload struct {
	CashbookID  uint
	Type        string
	Amount      string
	CategoryIDs []uint
}

// createTransaction creates a transaction and returns its id.
func createTransaction(t *testing.T, r *gin.Engine, token string, p transactionPayload) uint {
	t.Helper()

	body := gin.H{
		"cashbook_id":      p.CashbookID,
		"type":             p.Type,
		"amount":           json.RawMessage(p.Amount),
		"source_person":    "Salary",
		"transaction_date": "2024-01-01",
	}
	if p.CategoryIDs != nil {
		body["category_ids"] = p.CategoryIDs
	}

	w := doJSON(t, r, http.MethodPost, "/api/transactions", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create transaction: status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Transaction struct {
				ID uint `json:"transaction_id"`
			} `json:"transaction"`
		} `json:"data"`
	}
	decodeBody(t, w, &resp)
	return resp.Data.Transaction.ID
}

// getBalance returns the current_balance reported for a cashbook.
func getBalance(t *testing.T, r *gin.Engine, token string, cashbookID uint) decimal.Decimal {
	t.Helper()

	w := doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/cashbooks/%d/balance", cashbookID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get balance: status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Balance struct {
				CurrentBalance decimal.Decimal `json:"current_balance"`
			} `json:"balance"`
		} `json:"data"`
	}
	decodeBody(t, w, &resp)
	return resp.Data.Balance.CurrentBalance
}
