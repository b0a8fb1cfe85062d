package services

import (
	"math"
	"time"

	"gorm.io/gorm"

	apperrors "centsible/internal/errors"
	"centsible/internal/models"
	"centsible/internal/pagination"
)

// healthSnapshotService records and lists health snapshots.
type healthSnapshotService struct {
	db *gorm.DB
}

// NewHealthSnapshotService creates a new SnapshotServicer.
func NewHealthSnapshotService(db *gorm.DB) SnapshotServicer {
	return &healthSnapshotService{db: db}
}

// ComputeAndRecordSnapshots computes and stores a health snapshot for all active users.
func (s *healthSnapshotService) ComputeAndRecordSnapshots(recordedAt time.Time) (int, error) {
	var userIDs []string
	if err := s.db.Model(&models.User{}).
		Where("is_active = ?", true).
		Pluck("id", &userIDs).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	count := 0
	for _, userID := range userIDs {
		snapshot, err := s.computeSnapshot(userID, recordedAt)
		if err != nil {
			return count, err
		}

		// Upsert: check for existing snapshot at same user+time
		var existing models.HealthSnapshot
		result := s.db.Where("user_id = ? AND recorded_at = ?", userID, recordedAt).First(&existing)
		if result.Error == nil {
			if err := s.db.Model(&existing).Updates(map[string]interface{}{
				"score":                  snapshot.Score,
				"savings_rate":           snapshot.SavingsRate,
				"income_expense_ratio":   snapshot.IncomeExpenseRatio,
				"emergency_fund_weeks":   snapshot.EmergencyFundWeeks,
				"total_monthly_income":   snapshot.TotalMonthlyIncome,
				"total_monthly_expenses": snapshot.TotalMonthlyExpenses,
			}).Error; err != nil {
				return count, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		} else {
			if err := s.db.Create(snapshot).Error; err != nil {
				return count, apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		count++
	}

	return count, nil
}

// computeSnapshot scores the month that recordedAt falls in.
func (s *healthSnapshotService) computeSnapshot(userID string, recordedAt time.Time) (*models.HealthSnapshot, error) {
	from, to := currentPeriod(recordedAt)
	state, err := loadState(s.db, []string{userID}, from, to)
	if err != nil {
		return nil, err
	}
	summary, health, err := state.Summary()
	if err != nil {
		return nil, apperrors.FromDomain(err)
	}

	return &models.HealthSnapshot{
		UserID:               userID,
		RecordedAt:           recordedAt,
		Score:                health.Score,
		SavingsRate:          health.SavingsRate,
		IncomeExpenseRatio:   health.IncomeExpenseRatio,
		EmergencyFundWeeks:   health.EmergencyFundWeeks,
		TotalMonthlyIncome:   int64(math.Round(summary.TotalMonthlyIncome)),
		TotalMonthlyExpenses: int64(math.Round(summary.TotalMonthlyExpenses)),
	}, nil
}

// GetSnapshots returns paginated snapshots for a user within a date range.
func (s *healthSnapshotService) GetSnapshots(
	userID string,
	from, to time.Time,
	page pagination.PageRequest,
) (*pagination.PageResponse[models.HealthSnapshot], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.HealthSnapshot{}).
		Where("user_id = ? AND recorded_at >= ? AND recorded_at <= ?", userID, from, to)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var snapshots []models.HealthSnapshot
	if err := base.Order("recorded_at DESC").Scopes(pagination.Paginate(page)).Find(&snapshots).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(snapshots, page.Page, page.PageSize, totalItems)
	return &result, nil
}
