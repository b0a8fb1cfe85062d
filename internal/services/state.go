package services

import (
	"time"

	"gorm.io/gorm"

	apperrors "centsible/internal/errors"
	"centsible/internal/ledger"
	"centsible/internal/models"
)

// loadState reads the budget records of userIDs into a ledger state.
// Only transactions dated in [from, to) are included.
func loadState(db *gorm.DB, userIDs []string, from, to time.Time) (ledger.State, error) {
	var state ledger.State

	var income []models.IncomeSource
	if err := db.Where("user_id IN ?", userIDs).Order("created_at").Find(&income).Error; err != nil {
		return state, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, i := range income {
		state.Income = append(state.Income, i.Ledger())
	}

	var categories []models.BudgetCategory
	if err := db.Where("user_id IN ?", userIDs).Order("created_at").Find(&categories).Error; err != nil {
		return state, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, c := range categories {
		state.Categories = append(state.Categories, c.Ledger())
	}

	txState, err := loadTransactions(db, userIDs, from, to)
	if err != nil {
		return state, err
	}
	state.Transactions = txState.Transactions

	var goals []models.SavingsGoal
	if err := db.Where("user_id IN ?", userIDs).Order("priority").Find(&goals).Error; err != nil {
		return state, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, g := range goals {
		state.Goals = append(state.Goals, g.Ledger())
	}
	return state, nil
}

// loadTransactions returns a state holding only the transactions of userIDs
// dated in [from, to).
func loadTransactions(db *gorm.DB, userIDs []string, from, to time.Time) (ledger.State, error) {
	var state ledger.State
	var txs []models.Transaction
	if err := db.Where("user_id IN ? AND date >= ? AND date < ?", userIDs, from, to).
		Order("date").Find(&txs).Error; err != nil {
		return state, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, t := range txs {
		state.Transactions = append(state.Transactions, t.Ledger())
	}
	return state, nil
}
