package models

import (
	"centsible/internal/finance"
	"centsible/internal/ledger"
)

// BudgetCategory is a spending envelope. Spent is derived from transactions
// of the active period and never stored.
type BudgetCategory struct {
	Base
	UserID    string              `gorm:"type:uuid;not null;uniqueIndex:idx_user_category_key" json:"user_id"`
	Key       finance.CategoryKey `gorm:"column:category_key;not null;uniqueIndex:idx_user_category_key" json:"key"`
	Name      string              `gorm:"not null" json:"name"`
	Allocated int64               `gorm:"type:bigint;not null;default:0" json:"allocated"`
	Color     string              `json:"color,omitempty"`
	Icon      string              `json:"icon,omitempty"`
	IsCustom  bool                `gorm:"default:false" json:"is_custom"`
	Spent     int64               `gorm:"-" json:"spent"`
}

// Ledger converts the row into its ledger form.
func (c BudgetCategory) Ledger() ledger.Category {
	return ledger.Category{ID: c.ID, Key: c.Key, Allocated: c.Allocated}
}
