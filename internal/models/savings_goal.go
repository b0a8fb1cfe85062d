package models

import (
	"time"

	"centsible/internal/finance"
	"centsible/internal/ledger"
)

// SavingsGoal is a target the user is saving towards.
type SavingsGoal struct {
	Base
	UserID        string               `gorm:"type:uuid;not null;index" json:"user_id"`
	Name          string               `gorm:"not null" json:"name"`
	TargetAmount  int64                `gorm:"type:bigint;not null" json:"target_amount"`
	CurrentAmount int64                `gorm:"type:bigint;not null;default:0" json:"current_amount"`
	TargetDate    *time.Time           `json:"target_date,omitempty"`
	Category      finance.GoalCategory `gorm:"column:goal_category;not null" json:"category"`
	Priority      int                  `gorm:"not null" json:"priority"`
	IsActive      bool                 `gorm:"default:true" json:"is_active"`
}

// Progress returns the funded share of the target in percent.
func (g SavingsGoal) Progress() float64 {
	if g.TargetAmount <= 0 {
		return 0
	}
	return float64(g.CurrentAmount) / float64(g.TargetAmount) * 100
}

// Ledger converts the row into its ledger form.
func (g SavingsGoal) Ledger() ledger.Goal {
	return ledger.Goal{
		ID:       g.ID,
		Name:     g.Name,
		Category: g.Category,
		Target:   g.TargetAmount,
		Current:  g.CurrentAmount,
		Priority: g.Priority,
		Active:   g.IsActive,
	}
}
