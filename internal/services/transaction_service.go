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
	"centsible/internal/statement"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db          *gorm.DB
	categorizer *statement.Categorizer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB) TransactionServicer {
	return &transactionService{db: db, categorizer: statement.NewCategorizer()}
}

func (in TransactionInput) toLedger(id string) ledger.Transaction {
	return ledger.Transaction{ID: id, Amount: in.Amount, Category: in.Category, Description: in.Description, Date: in.Date}
}

// CreateTransaction records an expense for a user.
func (s *transactionService) CreateTransaction(userID string, in TransactionInput) (*models.Transaction, error) {
	if in.Date.IsZero() {
		in.Date = time.Now().UTC()
	}
	if _, err := ledger.Reduce(ledger.State{}, ledger.AddTransaction{Transaction: in.toLedger("")}); err != nil {
		return nil, apperrors.FromDomain(err)
	}
	if in.Source == "" {
		in.Source = models.TransactionSourceManual
	}

	tx := &models.Transaction{
		UserID:      userID,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		Category:    in.Category,
		Date:        in.Date,
		Merchant:    in.Merchant,
		Notes:       in.Notes,
		ReceiptURL:  in.ReceiptURL,
		Source:      in.Source,
	}
	if err := s.db.Create(tx).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tx, nil
}

// GetUserTransactions lists a user's transactions, newest first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Order("date DESC, created_at DESC").Scopes(pagination.Paginate(page)).Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// applyTransactionFilters adds optional WHERE clauses to a transaction query.
func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Category != nil {
		q = q.Where("category_key = ?", *f.Category)
	}
	if f.MinAmount != nil {
		q = q.Where("amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("amount <= ?", *f.MaxAmount)
	}
	return q
}

// GetTransactionByID retrieves a transaction owned by the user.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Where("id = ? AND user_id = ?", transactionID, userID).First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction replaces the editable fields of a transaction.
func (s *transactionService) UpdateTransaction(userID, transactionID string, in TransactionInput) (*models.Transaction, error) {
	tx, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		in.Date = tx.Date
	}
	if in.Category.IsZero() {
		in.Category = tx.Category
	}

	state := ledger.State{Transactions: []ledger.Transaction{tx.Ledger()}}
	if _, err := ledger.Reduce(state, ledger.UpdateTransaction{Transaction: in.toLedger(tx.ID)}); err != nil {
		return nil, apperrors.FromDomain(err)
	}

	tx.Amount = in.Amount
	tx.Description = strings.TrimSpace(in.Description)
	tx.Category = in.Category
	tx.Date = in.Date
	tx.Merchant = in.Merchant
	tx.Notes = in.Notes
	tx.ReceiptURL = in.ReceiptURL

	if err := s.db.Save(tx).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return tx, nil
}

// DeleteTransaction soft-deletes a transaction.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	tx, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}
	if err := s.db.Delete(tx).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ImportStatement records the debit entries of a CAMT.053 statement. Entries
// already imported (same bank reference) and credits are skipped.
func (s *transactionService) ImportStatement(userID string, data []byte) (*ImportResult, error) {
	entries, err := statement.Parse(data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStatementInvalid, err)
	}

	result := &ImportResult{}
	err = s.db.Transaction(func(db *gorm.DB) error {
		for _, e := range entries {
			if !e.Debit || e.Amount <= 0 {
				result.Skipped++
				continue
			}
			if e.Ref != "" {
				var count int64
				if err := db.Model(&models.Transaction{}).
					Where("user_id = ? AND external_ref = ?", userID, e.Ref).
					Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					result.Skipped++
					continue
				}
			}

			description := e.Description
			if description == "" {
				description = e.Counterpart
			}
			tx := &models.Transaction{
				UserID:      userID,
				Amount:      e.Amount,
				Description: description,
				Category:    s.categorizer.Categorize(e.Text()),
				Date:        e.BookedAt,
				Merchant:    e.Counterpart,
				Source:      models.TransactionSourceStatement,
				ExternalRef: e.Ref,
			}
			if err := db.Create(tx).Error; err != nil {
				return err
			}
			result.Imported++
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}
