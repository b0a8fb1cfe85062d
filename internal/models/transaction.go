package models

import (
	"time"

	"centsible/internal/finance"
	"centsible/internal/ledger"
)

// TransactionSource records how a transaction entered the system.
type TransactionSource string

const (
	TransactionSourceManual    TransactionSource = "manual"
	TransactionSourceReceipt   TransactionSource = "receipt"
	TransactionSourceStatement TransactionSource = "statement"
	TransactionSourceImport    TransactionSource = "import"
)

// Transaction is a single expense.
type Transaction struct {
	Base
	UserID      string              `gorm:"type:uuid;not null;index:idx_user_date" json:"user_id"`
	Amount      int64               `gorm:"type:bigint;not null" json:"amount"`
	Description string              `json:"description"`
	Category    finance.CategoryKey `gorm:"column:category_key;not null;index" json:"category"`
	Date        time.Time           `gorm:"not null;index:idx_user_date" json:"date"`
	Merchant    string              `json:"merchant,omitempty"`
	Notes       string              `json:"notes,omitempty"`
	ReceiptURL  string              `json:"receipt_url,omitempty"`
	Source      TransactionSource   `gorm:"not null;default:'manual'" json:"source"`
	ExternalRef string              `gorm:"index" json:"external_ref,omitempty"`
}

// Ledger converts the row into its ledger form.
func (t Transaction) Ledger() ledger.Transaction {
	return ledger.Transaction{
		ID:          t.ID,
		Amount:      t.Amount,
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date,
	}
}
