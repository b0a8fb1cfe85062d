package models

import (
	"time"

	"centsible/internal/finance"
)

// BillReminder is a recurring monthly bill.
type BillReminder struct {
	Base
	UserID         string              `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string              `gorm:"not null" json:"name"`
	Amount         int64               `gorm:"type:bigint;not null" json:"amount"`
	DueDay         int                 `gorm:"not null" json:"due_day"`
	Category       finance.CategoryKey `gorm:"column:category_key;not null" json:"category"`
	RemindDays     int                 `gorm:"not null;default:3" json:"remind_days_before"`
	IsActive       bool                `gorm:"default:true" json:"is_active"`
	LastRemindedAt *time.Time          `json:"last_reminded_at,omitempty"`
}

// NextDue returns the next due date on or after from. A due day past the end
// of a month falls on that month's last day.
func (b BillReminder) NextDue(from time.Time) time.Time {
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	due := dueIn(day.Year(), day.Month(), b.DueDay, day.Location())
	if due.Before(day) {
		due = dueIn(day.Year(), day.Month()+1, b.DueDay, day.Location())
	}
	return due
}

func dueIn(year int, month time.Month, dueDay int, loc *time.Location) time.Time {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1).Day()
	if dueDay > last {
		dueDay = last
	}
	return time.Date(first.Year(), first.Month(), dueDay, 0, 0, 0, 0, loc)
}
