package handler_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCategoryDuplicateNamePerType(t *testing.T) {
	r := newTestServer(t)
	token := registerUser(t, r, "Alice", "alice@example.com")

	createCategory(t, r, token, "Food", "expense")

	// same name, same type is a conflict
	w := doJSON(t, r, http.MethodPost, "/api/categories", token, gin.H{
		"name": "Food",
		"type": "expense",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate: status = %d, want 400, body = %s", w.Code, w.Body.String())
	}

	// same name under the other type is fine
	w = doJSON(t, r, http.MethodPost, "/api/categories", token, gin.H{
		"name": "Food",
		"type": "income",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("same name, other type: status = %d, body = %s", w.Code, w.Body.String())
	}

	// and another user can reuse the name freely
	bob := registerUser(t, r, "Bob", "bob@example.com")
	w = doJSON(t, r, http.MethodPost, "/api/categories", bob, gin.H{
		"name": "Food",
		"type": "expense",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("other user's duplicate: status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestCategoryInvalidType(t *testing.T) {
	r := newTestServer(t)
	token := registerUser(t, r, "Alice", "alice@example.com")

	w := doJSON(t, r, http.MethodPost, "/api/categories", token, gin.H{
		"name": "Misc",
		"type": "transfer",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("bad type: status = %d, want 422, body = %s", w.Code, w.Body.String())
	}
}

func TestCategoryDeleteBlockedWhenUsed(t *testing.T) {
	r := newTestServer(t)
	token := registerUser(t, r, "Alice", "alice@example.com")

	cashbookID := createCashbook(t, r, token, "Wallet", "0")
	catID := createCategory(t, r, token, "Food", "expense")
	txID := createTransaction(t, r, token, transactionPayload{
		CashbookID: cashbookID, Type: "expense", Amount: "10", CategoryIDs: []uint{catID},
	})

	w := doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/categories/%d", catID), token, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("delete in-use category: status = %d, want 400, body = %s", w.Code, w.Body.String())
	}

	// once the link is removed the delete goes through
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/categories/%d/%d", txID, catID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("unassign: status = %d, body = %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/categories/%d", catID), token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete after unassign: status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestCategoryAssignUnassign(t *testing.T) {
	r := newTestServer(t)
	token := registerUser(t, r, "Alice", "alice@example.com")

	cashbookID := createCashbook(t, r, token, "Wallet", "0")
	catID := createCategory(t, r, token, "Food", "expense")
	txID := createTransaction(t, r, token, transactionPayload{
		CashbookID: cashbookID, Type: "expense", Amount: "10",
	})

	w := doJSON(t, r, http.MethodPost, "/api/categories/assign", token, gin.H{
		"transaction_id": txID,
		"category_id":    catID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("assign: status = %d, body = %s", w.Code, w.Body.String())
	}

	// assigning the same pair twice is a conflict
	w = doJSON(t, r, http.MethodPost, "/api/categories/assign", token, gin.H{
		"transaction_id": txID,
		"category_id":    catID,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("assign twice: status = %d, want 400, body = %s", w.Code, w.Body.String())
	}

	// removing a link is idempotent
	for i := 0; i < 2; i++ {
		w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/categories/%d/%d", txID, catID), token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("unassign #%d: status = %d, body = %s", i+1, w.Code, w.Body.String())
		}
	}
}

func TestCategoryAssignCrossUser(t *testing.T) {
	r := newTestServer(t)
	alice := registerUser(t, r, "Alice", "alice@example.com")
	bob := registerUser(t, r, "Bob", "bob@example.com")

	cashbookID := createCashbook(t, r, alice, "Wallet", "0")
	aliceCat := createCategory(t, r, alice, "Food", "expense")
	aliceTx := createTransaction(t, r, alice, transactionPayload{
		CashbookID: cashbookID, Type: "expense", Amount: "10",
	})
	bobCat := createCategory(t, r, bob, "Food", "expense")

	// neither side of the pair may belong to someone else
	for _, body := range []gin.H{
		{"transaction_id": aliceTx, "category_id": bobCat},
		{"transaction_id": aliceTx, "category_id": aliceCat},
	} {
		w := doJSON(t, r, http.MethodPost, "/api/categories/assign", bob, body)
		if w.Code != http.StatusNotFound {
			t.Errorf("cross-user assign %v: status = %d, want 404", body, w.Code)
		}
	}
}

func TestCategoryStats(t *testing.T) {
	r := newTestServer(t)
	token := registerUser(t, r, "Alice", "alice@example.com")

	cashbookID := createCashbook(t, r, token, "Wallet", "0")
	food := createCategory(t, r, token, "Food", "expense")
	salary := createCategory(t, r, token, "Salary", "income")
	createCategory(t, r, token, "Travel", "expense")

	createTransaction(t, r, token, transactionPayload{
		CashbookID: cashbookID, Type: "expense", Amount: "30", CategoryIDs: []uint{food},
	})
	createTransaction(t, r, token, transactionPayload{
		CashbookID: cashbookID, Type: "expense", Amount: "20", CategoryIDs: []uint{food},
	})
	createTransaction(t, r, token, transactionPayload{
		CashbookID: cashbookID, Type: "income", Amount: "100", CategoryIDs: []uint{salary},
	})

	w := doJSON(t, r, http.MethodGet, "/api/categories/stats", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats: status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Stats []struct {
				CategoryID       uint   `json:"category_id"`
				Name             string `json:"name"`
				TransactionCount int64  `json:"transaction_count"`
				TotalIncome      string `json:"total_income"`
				TotalExpense     string `json:"total_expense"`
			} `json:"categoryStats"`
		} `json:"data"`
	}
	decodeBody(t, w, &resp)

	if len(resp.Data.Stats) != 3 {
		t.Fatalf("stats rows = %d, want 3 (unused categories included)", len(resp.Data.Stats))
	}

	byName := make(map[string]struct {
		count           int64
		income, expense string
	})
	for _, s := range resp.Data.Stats {
		byName[s.Name] = struct {
			count           int64
			income, expense string
		}{s.TransactionCount, s.TotalIncome, s.TotalExpense}
	}

	if got := byName["Food"]; got.count != 2 || got.expense != "50" {
		t.Errorf("Food stats = %+v, want count 2, expense 50", got)
	}
	if got := byName["Salary"]; got.count != 1 || got.income != "100" {
		t.Errorf("Salary stats = %+v, want count 1, income 100", got)
	}
	if got := byName["Travel"]; got.count != 0 {
		t.Errorf("Travel stats = %+v, want count 0", got)
	}

	// unknown cashbook filter answers 404 before any aggregation
	w = doJSON(t, r, http.MethodGet, "/api/categories/stats?cashbook_id=9999", token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("stats with unknown cashbook: status = %d, want 404", w.Code)
	}
}
