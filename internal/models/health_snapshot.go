package models

import (
	"time"

	"centsible/internal/uuid"

	"gorm.io/gorm"
)

// HealthSnapshot is a point-in-time record of a user's financial health.
// This is immutable time-series data: no Base embed, no soft deletes.
type HealthSnapshot struct {
	ID                   string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               string    `gorm:"type:uuid;not null;uniqueIndex:idx_snapshot_user_recorded" json:"user_id"`
	RecordedAt           time.Time `gorm:"not null;uniqueIndex:idx_snapshot_user_recorded" json:"recorded_at"`
	Score                float64   `gorm:"not null" json:"score"`
	SavingsRate          float64   `gorm:"not null" json:"savings_rate"`
	IncomeExpenseRatio   float64   `gorm:"not null" json:"income_expense_ratio"`
	EmergencyFundWeeks   float64   `gorm:"not null" json:"emergency_fund_weeks"`
	TotalMonthlyIncome   int64     `gorm:"type:bigint;not null" json:"total_monthly_income"`
	TotalMonthlyExpenses int64     `gorm:"type:bigint;not null" json:"total_monthly_expenses"`
}

// BeforeCreate hook generates a UUIDv7 for new records
func (h *HealthSnapshot) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New()
	}
	return nil
}
