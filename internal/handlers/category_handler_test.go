package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "centsible/internal/errors"
	"centsible/internal/finance"
	"centsible/internal/models"
	"centsible/internal/pagination"
	"centsible/internal/services"
)

type mockCategoryService struct {
	createCategoryFn    func(userID string, in services.CategoryInput) (*models.BudgetCategory, error)
	getUserCategoriesFn func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetCategory], error)
	getCategoryByIDFn   func(userID, categoryID string) (*models.BudgetCategory, error)
	updateCategoryFn    func(userID, categoryID string, in services.CategoryUpdate) (*models.BudgetCategory, error)
	deleteCategoryFn    func(userID, categoryID string) error
}

func (m *mockCategoryService) CreateCategory(userID string, in services.CategoryInput) (*models.BudgetCategory, error) {
	if m.createCategoryFn != nil {
		return m.createCategoryFn(userID, in)
	}
	return &models.BudgetCategory{}, nil
}

func (m *mockCategoryService) GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetCategory], error) {
	if m.getUserCategoriesFn != nil {
		return m.getUserCategoriesFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.BudgetCategory{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockCategoryService) GetCategoryByID(userID, categoryID string) (*models.BudgetCategory, error) {
	if m.getCategoryByIDFn != nil {
		return m.getCategoryByIDFn(userID, categoryID)
	}
	return &models.BudgetCategory{}, nil
}

func (m *mockCategoryService) UpdateCategory(userID, categoryID string, in services.CategoryUpdate) (*models.BudgetCategory, error) {
	if m.updateCategoryFn != nil {
		return m.updateCategoryFn(userID, categoryID, in)
	}
	return &models.BudgetCategory{}, nil
}

func (m *mockCategoryService) DeleteCategory(userID, categoryID string) error {
	if m.deleteCategoryFn != nil {
		return m.deleteCategoryFn(userID, categoryID)
	}
	return nil
}

func setupCategoryRouter(h *CategoryHandler) *gin.Engine {
	r := gin.New()
	g := r.Group("/categories", injectUserID(testUserID))
	g.POST("", h.CreateCategory)
	g.GET("", h.GetUserCategories)
	g.GET("/:id", h.GetCategoryByID)
	g.PUT("/:id", h.UpdateCategory)
	g.DELETE("/:id", h.DeleteCategory)
	return r
}

func TestCategoryHandler_CreateCategory(t *testing.T) {
	t.Run("returns 201 for a core key", func(t *testing.T) {
		var got services.CategoryInput
		svc := &mockCategoryService{
			createCategoryFn: func(userID string, in services.CategoryInput) (*models.BudgetCategory, error) {
				got = in
				cat := &models.BudgetCategory{UserID: userID, Key: finance.Groceries, Name: "Groceries", Allocated: in.Allocated}
				cat.ID = testItemID
				return cat, nil
			},
		}
		audit := &mockAuditService{}
		r := setupCategoryRouter(NewCategoryHandler(svc, audit))

		rec := doRequest(r, "POST", "/categories", `{"key":"groceries","allocated":60000,"color":"#22c55e"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Key != "groceries" || got.Allocated != 60000 {
			t.Errorf("unexpected input %+v", got)
		}
		cat := parseJSON(t, rec)["category"].(map[string]interface{})
		if cat["key"] != "groceries" {
			t.Errorf("expected key groceries, got %v", cat["key"])
		}
		if !audit.logged("CREATE_CATEGORY") {
			t.Error("expected CREATE_CATEGORY audit entry")
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{"unknown key", `{"key":"yachts","allocated":100}`},
		{"bad color", `{"key":"dining","color":"green"}`},
		{"negative allocation", `{"key":"dining","allocated":-1}`},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, &mockAuditService{}))

			rec := doRequest(r, "POST", "/categories", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}

	t.Run("returns 409 on duplicate", func(t *testing.T) {
		svc := &mockCategoryService{
			createCategoryFn: func(string, services.CategoryInput) (*models.BudgetCategory, error) {
				return nil, apperrors.ErrDuplicateCategory
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/categories", `{"key":"housing","allocated":150000}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "DUPLICATE_CATEGORY")
	})
}

func TestCategoryHandler_UpdateCategory(t *testing.T) {
	t.Run("only sends provided fields", func(t *testing.T) {
		var got services.CategoryUpdate
		svc := &mockCategoryService{
			updateCategoryFn: func(_, _ string, in services.CategoryUpdate) (*models.BudgetCategory, error) {
				got = in
				return &models.BudgetCategory{Allocated: *in.Allocated}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/categories/"+testItemID, `{"allocated":0}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Allocated == nil || *got.Allocated != 0 {
			t.Errorf("expected allocated 0, got %v", got.Allocated)
		}
		if got.Name != nil || got.Color != nil {
			t.Errorf("unexpected fields set: %+v", got)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		svc := &mockCategoryService{
			updateCategoryFn: func(_, _ string, _ services.CategoryUpdate) (*models.BudgetCategory, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/categories/"+testItemID, `{"name":"Food"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "BUDGET_CATEGORY_NOT_FOUND")
	})
}

func TestCategoryHandler_GetAndDelete(t *testing.T) {
	t.Run("get includes spent", func(t *testing.T) {
		svc := &mockCategoryService{
			getCategoryByIDFn: func(_, _ string) (*models.BudgetCategory, error) {
				return &models.BudgetCategory{Key: finance.Dining, Allocated: 20000, Spent: 4550}, nil
			},
		}
		r := setupCategoryRouter(NewCategoryHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/categories/"+testItemID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		cat := parseJSON(t, rec)["category"].(map[string]interface{})
		if cat["spent"] != float64(4550) {
			t.Errorf("expected spent 4550, got %v", cat["spent"])
		}
	})

	t.Run("delete", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupCategoryRouter(NewCategoryHandler(&mockCategoryService{}, audit))

		rec := doRequest(r, "DELETE", "/categories/"+testItemID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !audit.logged("DELETE_CATEGORY") {
			t.Error("expected DELETE_CATEGORY audit entry")
		}
	})
}
