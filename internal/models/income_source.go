package models

import (
	"time"

	"centsible/internal/finance"
	"centsible/internal/ledger"
)

// IncomeSource is a recurring or one-off source of income.
type IncomeSource struct {
	Base
	UserID      string            `gorm:"type:uuid;not null;index" json:"user_id"`
	Source      string            `gorm:"not null" json:"source"`
	Amount      int64             `gorm:"type:bigint;not null" json:"amount"`
	Frequency   finance.Frequency `gorm:"not null" json:"frequency"`
	StartDate   time.Time         `gorm:"not null" json:"start_date"`
	IsActive    bool              `gorm:"default:true" json:"is_active"`
	Category    string            `json:"category,omitempty"`
	Description string            `json:"description,omitempty"`
}

// Ledger converts the row into its ledger form.
func (i IncomeSource) Ledger() ledger.Income {
	return ledger.Income{
		ID:        i.ID,
		Source:    i.Source,
		Amount:    i.Amount,
		Frequency: i.Frequency,
		StartDate: i.StartDate,
		Active:    i.IsActive,
	}
}
