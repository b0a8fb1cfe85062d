package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "centsible/internal/errors"
	"centsible/internal/finance"
	"centsible/internal/ledger"
	"centsible/internal/models"
	"centsible/internal/pagination"
)

// categoryService handles budget category business logic.
type categoryService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db, now: time.Now}
}

func (in CategoryInput) key() (finance.CategoryKey, error) {
	if in.Key != "" {
		return finance.ParseCategoryKey(in.Key)
	}
	if strings.TrimSpace(in.Name) == "" {
		return finance.CategoryKey{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "key or name is required")
	}
	return finance.Custom(in.Name)
}

// CreateCategory adds a budget category. Each key may be budgeted once per user.
func (s *categoryService) CreateCategory(userID string, in CategoryInput) (*models.BudgetCategory, error) {
	key, err := in.key()
	if err != nil {
		return nil, apperrors.FromDomain(err)
	}
	if in.Allocated < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "allocated must not be negative")
	}

	var existing []models.BudgetCategory
	if err := s.db.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var state ledger.State
	for _, c := range existing {
		state.Categories = append(state.Categories, c.Ledger())
	}
	if _, err := ledger.Reduce(state, ledger.AddCategory{Category: ledger.Category{Key: key, Allocated: in.Allocated}}); err != nil {
		return nil, apperrors.FromDomain(err)
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = key.Name()
	}
	category := &models.BudgetCategory{
		UserID:    userID,
		Key:       key,
		Name:      name,
		Allocated: in.Allocated,
		Color:     in.Color,
		Icon:      in.Icon,
		IsCustom:  key.IsCustom(),
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// GetUserCategories lists a user's categories with their spend this month.
func (s *categoryService) GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetCategory], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.BudgetCategory{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var categories []models.BudgetCategory
	if err := base.Order("created_at").Scopes(pagination.Paginate(page)).Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.fillSpent(userID, categories); err != nil {
		return nil, err
	}

	result := pagination.NewPageResponse(categories, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetCategoryByID retrieves a category owned by the user with its spend this month.
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.BudgetCategory, error) {
	category, err := s.find(userID, categoryID)
	if err != nil {
		return nil, err
	}
	one := []models.BudgetCategory{*category}
	if err := s.fillSpent(userID, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// UpdateCategory changes the allocation or presentation of a category. The
// key is fixed once created.
func (s *categoryService) UpdateCategory(userID, categoryID string, in CategoryUpdate) (*models.BudgetCategory, error) {
	category, err := s.find(userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Allocated != nil {
		if *in.Allocated < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "allocated must not be negative")
		}
		state := ledger.State{Categories: []ledger.Category{category.Ledger()}}
		if _, err := ledger.Reduce(state, ledger.SetAllocation{ID: category.ID, Allocated: *in.Allocated}); err != nil {
			return nil, apperrors.FromDomain(err)
		}
		updates["allocated"] = *in.Allocated
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		updates["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Color != nil {
		updates["color"] = *in.Color
	}
	if in.Icon != nil {
		updates["icon"] = *in.Icon
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return s.GetCategoryByID(userID, categoryID)
}

// DeleteCategory removes a category. Its transactions are kept, and the key
// may be budgeted again later.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.find(userID, categoryID)
	if err != nil {
		return err
	}
	if err := s.db.Unscoped().Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *categoryService) find(userID, categoryID string) (*models.BudgetCategory, error) {
	var category models.BudgetCategory
	if err := s.db.Where("id = ? AND user_id = ?", categoryID, userID).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// fillSpent derives Spent for each category from this month's transactions.
func (s *categoryService) fillSpent(userID string, categories []models.BudgetCategory) error {
	from, to := currentPeriod(s.now())
	state, err := loadTransactions(s.db, []string{userID}, from, to)
	if err != nil {
		return err
	}
	for i := range categories {
		categories[i].Spent = state.Spent(categories[i].Key)
	}
	return nil
}
