// Package ledger holds a user's budget records as an immutable value and
// applies changes to it through a reducer. Services build a State from
// database rows per request; the importer replays an export through a Store.
package ledger

import (
	"errors"
	"time"

	"centsible/internal/finance"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateCategory = errors.New("category already exists")
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrGoalOutOfRange    = errors.New("goal cannot move further")
	ErrInvalidDirection  = errors.New("direction must be up or down")
	ErrInvalidGoal       = errors.New("invalid goal category")
)

// Income is an income source. Amounts are in cents.
type Income struct {
	ID        string
	Source    string
	Amount    int64
	Frequency finance.Frequency
	StartDate time.Time
	Active    bool
}

// Category is a budget category. Spent is never stored; see FinanceInput.
type Category struct {
	ID        string
	Key       finance.CategoryKey
	Allocated int64
}

// Transaction is a single expense.
type Transaction struct {
	ID          string
	Amount      int64
	Category    finance.CategoryKey
	Description string
	Date        time.Time
}

// Goal is a savings goal. Lower priority values come first.
type Goal struct {
	ID       string
	Name     string
	Category finance.GoalCategory
	Target   int64
	Current  int64
	Priority int
	Active   bool
}

// State is a snapshot of one budget. Reduce never modifies a State in place,
// so a State may be shared freely once built.
type State struct {
	Income       []Income
	Categories   []Category
	Transactions []Transaction
	Goals        []Goal
}

// Spent returns the sum of the transactions filed under key.
func (s State) Spent(key finance.CategoryKey) int64 {
	var total int64
	for _, t := range s.Transactions {
		if t.Category == key {
			total += t.Amount
		}
	}
	return total
}

// Between returns a copy of s holding only transactions dated in [from, to).
func (s State) Between(from, to time.Time) State {
	out := s
	out.Transactions = make([]Transaction, 0, len(s.Transactions))
	for _, t := range s.Transactions {
		if !t.Date.Before(from) && t.Date.Before(to) {
			out.Transactions = append(out.Transactions, t)
		}
	}
	return out
}

// FinanceInput converts the state into the input of finance.Summarize. Each
// category's spend is recomputed from the transactions, so it always equals
// their sum. Transactions filed under a key with no budget row get a category
// with nothing allocated, so every transaction is counted once.
func (s State) FinanceInput() finance.Input {
	spent := make(map[finance.CategoryKey]int64, len(s.Categories))
	for _, t := range s.Transactions {
		spent[t.Category] += t.Amount
	}

	in := finance.Input{
		Income:     make([]finance.IncomeSource, 0, len(s.Income)),
		Categories: make([]finance.Category, 0, len(s.Categories)),
		Goals:      make([]finance.Goal, 0, len(s.Goals)),
	}
	for _, i := range s.Income {
		in.Income = append(in.Income, finance.IncomeSource{
			Amount:    float64(i.Amount),
			Frequency: i.Frequency,
			Active:    i.Active,
		})
	}
	budgeted := make(map[finance.CategoryKey]bool, len(s.Categories))
	for _, c := range s.Categories {
		budgeted[c.Key] = true
		in.Categories = append(in.Categories, finance.Category{
			Key:       c.Key,
			Allocated: float64(c.Allocated),
			Spent:     float64(spent[c.Key]),
		})
	}
	for _, t := range s.Transactions {
		if budgeted[t.Category] {
			continue
		}
		budgeted[t.Category] = true
		in.Categories = append(in.Categories, finance.Category{
			Key:   t.Category,
			Spent: float64(spent[t.Category]),
		})
	}
	for _, g := range s.Goals {
		in.Goals = append(in.Goals, finance.Goal{
			Category:      g.Category,
			CurrentAmount: float64(g.Current),
			TargetAmount:  float64(g.Target),
			Active:        g.Active,
		})
	}
	return in
}

// Summary runs the financial core over the state.
func (s State) Summary() (finance.FinancialSummary, finance.FinancialHealth, error) {
	in := s.FinanceInput()
	summary, err := finance.Summarize(in)
	if err != nil {
		return finance.FinancialSummary{}, finance.FinancialHealth{}, err
	}
	return summary, finance.AssessHealth(summary, in.Goals), nil
}

// Merge combines several states, e.g. every member of a household.
// Categories sharing a key are folded into one with the summed allocation.
func Merge(states ...State) State {
	var out State
	index := make(map[finance.CategoryKey]int)
	for _, s := range states {
		out.Income = append(out.Income, s.Income...)
		out.Transactions = append(out.Transactions, s.Transactions...)
		out.Goals = append(out.Goals, s.Goals...)
		for _, c := range s.Categories {
			if i, ok := index[c.Key]; ok {
				out.Categories[i].Allocated += c.Allocated
				continue
			}
			index[c.Key] = len(out.Categories)
			out.Categories = append(out.Categories, c)
		}
	}
	return out
}
