package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "centsible/internal/errors"
	"centsible/internal/ledger"
	"centsible/internal/models"
	"centsible/internal/pagination"
)

// incomeService handles income source business logic.
type incomeService struct {
	db *gorm.DB
}

// NewIncomeService creates a new IncomeServicer.
func NewIncomeService(db *gorm.DB) IncomeServicer {
	return &incomeService{db: db}
}

func (in IncomeInput) validate() error {
	if strings.TrimSpace(in.Source) == "" {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "source is required")
	}
	if in.Amount <= 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	// The reducer owns frequency validation.
	if _, err := ledger.Reduce(ledger.State{}, ledger.AddIncome{Income: ledger.Income{Frequency: in.Frequency}}); err != nil {
		return apperrors.FromDomain(err)
	}
	return nil
}

// CreateIncome adds an income source for a user.
func (s *incomeService) CreateIncome(userID string, in IncomeInput) (*models.IncomeSource, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if in.StartDate.IsZero() {
		in.StartDate = time.Now().UTC()
	}

	income := &models.IncomeSource{
		UserID:      userID,
		Source:      strings.TrimSpace(in.Source),
		Amount:      in.Amount,
		Frequency:   in.Frequency,
		StartDate:   in.StartDate,
		IsActive:    in.IsActive == nil || *in.IsActive,
		Category:    in.Category,
		Description: in.Description,
	}
	if err := s.db.Create(income).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return income, nil
}

// GetUserIncome lists a user's income sources, newest first.
func (s *incomeService) GetUserIncome(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.IncomeSource], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.IncomeSource{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var income []models.IncomeSource
	if err := base.Order("created_at DESC").Scopes(pagination.Paginate(page)).Find(&income).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(income, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetIncomeByID retrieves an income source owned by the user.
func (s *incomeService) GetIncomeByID(userID, incomeID string) (*models.IncomeSource, error) {
	var income models.IncomeSource
	if err := s.db.Where("id = ? AND user_id = ?", incomeID, userID).First(&income).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrIncomeSourceNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &income, nil
}

// UpdateIncome replaces the editable fields of an income source.
func (s *incomeService) UpdateIncome(userID, incomeID string, in IncomeInput) (*models.IncomeSource, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	income, err := s.GetIncomeByID(userID, incomeID)
	if err != nil {
		return nil, err
	}

	income.Source = strings.TrimSpace(in.Source)
	income.Amount = in.Amount
	income.Frequency = in.Frequency
	income.Category = in.Category
	income.Description = in.Description
	if !in.StartDate.IsZero() {
		income.StartDate = in.StartDate
	}
	if in.IsActive != nil {
		income.IsActive = *in.IsActive
	}

	if err := s.db.Save(income).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return income, nil
}

// ToggleIncome flips whether an income source counts towards monthly income.
func (s *incomeService) ToggleIncome(userID, incomeID string) (*models.IncomeSource, error) {
	income, err := s.GetIncomeByID(userID, incomeID)
	if err != nil {
		return nil, err
	}
	income.IsActive = !income.IsActive
	if err := s.db.Model(income).Update("is_active", income.IsActive).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return income, nil
}

// DeleteIncome soft-deletes an income source.
func (s *incomeService) DeleteIncome(userID, incomeID string) error {
	income, err := s.GetIncomeByID(userID, incomeID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(income).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
