package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "centsible/internal/errors"
	"centsible/internal/ledger"
	"centsible/internal/models"
	"centsible/internal/pagination"
)

// goalService handles savings goal business logic.
type goalService struct {
	db *gorm.DB
}

// NewGoalService creates a new GoalServicer.
func NewGoalService(db *gorm.DB) GoalServicer {
	return &goalService{db: db}
}

// goalState loads all of a user's goals, including inactive ones.
func goalState(db *gorm.DB, userID string) (ledger.State, []models.SavingsGoal, error) {
	var goals []models.SavingsGoal
	if err := db.Where("user_id = ?", userID).Order("priority").Find(&goals).Error; err != nil {
		return ledger.State{}, nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	var state ledger.State
	for _, g := range goals {
		state.Goals = append(state.Goals, g.Ledger())
	}
	return state, goals, nil
}

// CreateGoal adds a goal at the lowest priority.
func (s *goalService) CreateGoal(userID string, in GoalInput) (*models.SavingsGoal, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if in.TargetAmount <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be greater than zero")
	}

	var goal *models.SavingsGoal
	err := s.db.Transaction(func(tx *gorm.DB) error {
		state, _, err := goalState(tx, userID)
		if err != nil {
			return err
		}
		next, err := ledger.Reduce(state, ledger.AddGoal{Goal: ledger.Goal{
			Name:     in.Name,
			Category: in.Category,
			Target:   in.TargetAmount,
			Active:   true,
		}})
		if err != nil {
			return apperrors.FromDomain(err)
		}
		added := next.Goals[len(next.Goals)-1]

		goal = &models.SavingsGoal{
			UserID:       userID,
			Name:         strings.TrimSpace(in.Name),
			TargetAmount: in.TargetAmount,
			TargetDate:   in.TargetDate,
			Category:     in.Category,
			Priority:     added.Priority,
			IsActive:     in.IsActive == nil || *in.IsActive,
		}
		if err := tx.Create(goal).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return goal, nil
}

// GetUserGoals lists a user's goals in priority order.
func (s *goalService) GetUserGoals(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsGoal], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.SavingsGoal{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var goals []models.SavingsGoal
	if err := base.Order("priority").Scopes(pagination.Paginate(page)).Find(&goals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(goals, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetGoalByID retrieves a goal owned by the user.
func (s *goalService) GetGoalByID(userID, goalID string) (*models.SavingsGoal, error) {
	var goal models.SavingsGoal
	if err := s.db.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrGoalNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &goal, nil
}

// UpdateGoal changes a goal's name, target, date, category or active flag.
// Priority and current amount have their own operations.
func (s *goalService) UpdateGoal(userID, goalID string, in GoalInput) (*models.SavingsGoal, error) {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) != "" {
		goal.Name = strings.TrimSpace(in.Name)
	}
	if in.TargetAmount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "target amount must be greater than zero")
	}
	if in.TargetAmount > 0 {
		goal.TargetAmount = in.TargetAmount
	}
	if in.Category != "" {
		if !in.Category.Valid() {
			return nil, apperrors.FromDomain(ledger.ErrInvalidGoal)
		}
		goal.Category = in.Category
	}
	if in.TargetDate != nil {
		goal.TargetDate = in.TargetDate
	}
	if in.IsActive != nil {
		goal.IsActive = *in.IsActive
	}

	if err := s.db.Save(goal).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return goal, nil
}

// DeleteGoal soft-deletes a goal.
func (s *goalService) DeleteGoal(userID, goalID string) error {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(goal).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// AddFunds increases a goal's current amount.
func (s *goalService) AddFunds(userID, goalID string, amount int64) (*models.SavingsGoal, error) {
	goal, err := s.GetGoalByID(userID, goalID)
	if err != nil {
		return nil, err
	}
	state := ledger.State{Goals: []ledger.Goal{goal.Ledger()}}
	if _, err := ledger.Reduce(state, ledger.AddGoalFunds{ID: goal.ID, Amount: amount}); err != nil {
		return nil, apperrors.FromDomain(err)
	}

	if err := s.db.Model(goal).Update("current_amount", gorm.Expr("current_amount + ?", amount)).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetGoalByID(userID, goalID)
}

// MoveGoal swaps the goal's priority with the neighbouring active goal and
// returns the user's goals in their new order.
func (s *goalService) MoveGoal(userID, goalID string, dir ledger.Direction) ([]models.SavingsGoal, error) {
	if _, err := s.GetGoalByID(userID, goalID); err != nil {
		return nil, err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		state, goals, err := goalState(tx, userID)
		if err != nil {
			return err
		}
		next, err := ledger.Reduce(state, ledger.MoveGoal{ID: goalID, Direction: dir})
		if err != nil {
			return apperrors.FromDomain(err)
		}
		for i, g := range next.Goals {
			if g.Priority == goals[i].Priority {
				continue
			}
			if err := tx.Model(&goals[i]).Update("priority", g.Priority).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_, goals, err := goalState(s.db, userID)
	return goals, err
}
