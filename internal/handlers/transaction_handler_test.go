package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "centsible/internal/errors"
	"centsible/internal/finance"
	"centsible/internal/models"
	"centsible/internal/pagination"
	"centsible/internal/receipt"
	"centsible/internal/services"
)

type mockTransactionService struct {
	createTransactionFn   func(userID string, in services.TransactionInput) (*models.Transaction, error)
	getUserTransactionsFn func(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	getTransactionByIDFn  func(userID, transactionID string) (*models.Transaction, error)
	updateTransactionFn   func(userID, transactionID string, in services.TransactionInput) (*models.Transaction, error)
	deleteTransactionFn   func(userID, transactionID string) error
	importStatementFn     func(userID string, data []byte) (*services.ImportResult, error)
}

func (m *mockTransactionService) CreateTransaction(userID string, in services.TransactionInput) (*models.Transaction, error) {
	if m.createTransactionFn != nil {
		return m.createTransactionFn(userID, in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.getUserTransactionsFn != nil {
		return m.getUserTransactionsFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	if m.getTransactionByIDFn != nil {
		return m.getTransactionByIDFn(userID, transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(userID, transactionID string, in services.TransactionInput) (*models.Transaction, error) {
	if m.updateTransactionFn != nil {
		return m.updateTransactionFn(userID, transactionID, in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(userID, transactionID string) error {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(userID, transactionID)
	}
	return nil
}

func (m *mockTransactionService) ImportStatement(userID string, data []byte) (*services.ImportResult, error) {
	if m.importStatementFn != nil {
		return m.importStatementFn(userID, data)
	}
	return &services.ImportResult{}, nil
}

func setupTransactionRouter(h *TransactionHandler) *gin.Engine {
	r := gin.New()
	g := r.Group("/", injectUserID(testUserID))
	g.POST("/transactions", h.CreateTransaction)
	g.GET("/transactions", h.GetUserTransactions)
	g.POST("/transactions/import", h.ImportStatement)
	g.GET("/transactions/:id", h.GetTransactionByID)
	g.PUT("/transactions/:id", h.UpdateTransaction)
	g.DELETE("/transactions/:id", h.DeleteTransaction)
	g.POST("/receipts/parse", h.ParseReceipt)
	return r
}

func newTransactionHandler(svc services.TransactionServicer, audit services.AuditServicer) *TransactionHandler {
	return NewTransactionHandler(svc, audit, receipt.NewParser(nil))
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 with parsed category and date", func(t *testing.T) {
		var got services.TransactionInput
		svc := &mockTransactionService{
			createTransactionFn: func(userID string, in services.TransactionInput) (*models.Transaction, error) {
				got = in
				tx := &models.Transaction{UserID: userID, Amount: in.Amount, Category: in.Category, Date: in.Date}
				tx.ID = testItemID
				return tx, nil
			},
		}
		audit := &mockAuditService{}
		r := setupTransactionRouter(newTransactionHandler(svc, audit))

		rec := doRequest(r, "POST", "/transactions",
			`{"amount":4550,"category":"dining","date":"2026-03-14","merchant":"Luigi's"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Category != finance.Dining {
			t.Errorf("expected dining, got %s", got.Category)
		}
		if got.Date.Format("2006-01-02") != "2026-03-14" {
			t.Errorf("unexpected date %v", got.Date)
		}
		tx := parseJSON(t, rec)["transaction"].(map[string]interface{})
		if tx["category"] != "dining" {
			t.Errorf("expected category dining in response, got %v", tx["category"])
		}
		if !audit.logged("CREATE_TRANSACTION") {
			t.Error("expected CREATE_TRANSACTION audit entry")
		}
	})

	t.Run("accepts custom category", func(t *testing.T) {
		var got services.TransactionInput
		svc := &mockTransactionService{
			createTransactionFn: func(_ string, in services.TransactionInput) (*models.Transaction, error) {
				got = in
				return &models.Transaction{}, nil
			},
		}
		r := setupTransactionRouter(newTransactionHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions", `{"amount":1200,"category":"custom:pets"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if !got.Category.IsCustom() || got.Category.Name() != "pets" {
			t.Errorf("expected custom:pets, got %s", got.Category)
		}
	})

	t.Run("returns 400 for unknown category", func(t *testing.T) {
		r := setupTransactionRouter(newTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions", `{"amount":100,"category":"yachts"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNKNOWN_CATEGORY")
	})

	t.Run("returns 400 for zero amount", func(t *testing.T) {
		r := setupTransactionRouter(newTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions", `{"amount":0,"category":"dining"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_GetUserTransactions(t *testing.T) {
	t.Run("parses filters", func(t *testing.T) {
		var got services.TransactionFilter
		svc := &mockTransactionService{
			getUserTransactionsFn: func(_ string, _ pagination.PageRequest, f services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				got = f
				resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(newTransactionHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions?from_date=2026-03-01&to_date=2026-03-31T23:59:59Z&category=groceries&min_amount=100&max_amount=5000", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.FromDate == nil || got.ToDate == nil {
			t.Fatal("expected both dates")
		}
		if got.Category == nil || *got.Category != finance.Groceries {
			t.Errorf("unexpected category filter %v", got.Category)
		}
		if *got.MinAmount != 100 || *got.MaxAmount != 5000 {
			t.Errorf("unexpected amount filters %d..%d", *got.MinAmount, *got.MaxAmount)
		}
	})

	tests := []struct {
		name  string
		query string
		code  string
	}{
		{"bad from_date", "from_date=yesterday", "INVALID_INPUT"},
		{"bad category", "category=yachts", "UNKNOWN_CATEGORY"},
		{"bad min_amount", "min_amount=ten", "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupTransactionRouter(newTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

			rec := doRequest(r, "GET", "/transactions?"+tt.query, "")

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), tt.code)
		})
	}
}

func TestTransactionHandler_ByID(t *testing.T) {
	t.Run("not found", func(t *testing.T) {
		svc := &mockTransactionService{
			getTransactionByIDFn: func(_, _ string) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(newTransactionHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/transactions/"+testItemID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})

	t.Run("update", func(t *testing.T) {
		var gotID string
		svc := &mockTransactionService{
			updateTransactionFn: func(_, id string, in services.TransactionInput) (*models.Transaction, error) {
				gotID = id
				return &models.Transaction{Amount: in.Amount}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupTransactionRouter(newTransactionHandler(svc, audit))

		rec := doRequest(r, "PUT", "/transactions/"+testItemID, `{"amount":999,"category":"utilities"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotID != testItemID {
			t.Errorf("expected %s, got %s", testItemID, gotID)
		}
		if !audit.logged("UPDATE_TRANSACTION") {
			t.Error("expected UPDATE_TRANSACTION audit entry")
		}
	})

	t.Run("delete", func(t *testing.T) {
		r := setupTransactionRouter(newTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/transactions/"+testItemID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_ImportStatement(t *testing.T) {
	t.Run("returns counts", func(t *testing.T) {
		var got []byte
		svc := &mockTransactionService{
			importStatementFn: func(_ string, data []byte) (*services.ImportResult, error) {
				got = data
				return &services.ImportResult{Imported: 3, Skipped: 1}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupTransactionRouter(newTransactionHandler(svc, audit))

		rec := doRequest(r, "POST", "/transactions/import", `<Document/>`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if string(got) != `<Document/>` {
			t.Errorf("unexpected body forwarded: %q", got)
		}
		result := parseJSON(t, rec)
		if result["imported"] != float64(3) || result["skipped"] != float64(1) {
			t.Errorf("unexpected result %v", result)
		}
		if !audit.logged("IMPORT_STATEMENT") {
			t.Error("expected IMPORT_STATEMENT audit entry")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		r := setupTransactionRouter(newTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions/import", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "STATEMENT_INVALID")
	})

	t.Run("too large", func(t *testing.T) {
		r := setupTransactionRouter(newTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		req := httptest.NewRequest("POST", "/transactions/import", strings.NewReader(strings.Repeat("x", maxStatementSize+1)))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		if rec.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("expected 413, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "STATEMENT_TOO_LARGE")
	})

	t.Run("unreadable statement", func(t *testing.T) {
		svc := &mockTransactionService{
			importStatementFn: func(string, []byte) (*services.ImportResult, error) {
				return nil, apperrors.ErrStatementInvalid
			},
		}
		r := setupTransactionRouter(newTransactionHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/transactions/import", `not xml`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestTransactionHandler_ParseReceipt(t *testing.T) {
	t.Run("suggests a transaction", func(t *testing.T) {
		r := setupTransactionRouter(newTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/receipts/parse",
			`{"text":"Whole Foods Market\n2026-03-14\nSUBTOTAL 10.00\nTOTAL 10.80"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		s := parseJSON(t, rec)["receipt"].(map[string]interface{})
		if s["total"] != float64(1080) {
			t.Errorf("expected total 1080, got %v", s["total"])
		}
		if s["merchant"] != "Whole Foods Market" {
			t.Errorf("unexpected merchant %v", s["merchant"])
		}
	})

	t.Run("no total", func(t *testing.T) {
		r := setupTransactionRouter(newTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "POST", "/receipts/parse", `{"text":"thank you"}`)

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "RECEIPT_UNREADABLE")
	})
}
