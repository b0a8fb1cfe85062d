package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"centsible/internal/finance"
	"centsible/internal/ledger"
	"centsible/internal/models"
	"centsible/internal/uuid"
)

// export is the JSON the web app writes when a user downloads their local data.
// Amounts are in major currency units.
type export struct {
	Income []struct {
		ID          string          `json:"id"`
		Source      string          `json:"source"`
		Amount      decimal.Decimal `json:"amount"`
		Frequency   string          `json:"frequency"`
		StartDate   string          `json:"startDate"`
		IsActive    *bool           `json:"isActive"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
	} `json:"income"`
	Budget struct {
		Categories []struct {
			ID        string          `json:"id"`
			Category  string          `json:"category"`
			Name      string          `json:"name"`
			Allocated decimal.Decimal `json:"allocated"`
			Color     string          `json:"color"`
			Icon      string          `json:"icon"`
			IsCustom  bool            `json:"isCustom"`
		} `json:"categories"`
	} `json:"budget"`
	Transactions []struct {
		ID          string          `json:"id"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        string          `json:"date"`
		Merchant    string          `json:"merchant"`
		Notes       string          `json:"notes"`
	} `json:"transactions"`
	Goals []struct {
		ID            string          `json:"id"`
		Name          string          `json:"name"`
		TargetAmount  decimal.Decimal `json:"targetAmount"`
		CurrentAmount decimal.Decimal `json:"currentAmount"`
		TargetDate    string          `json:"targetDate"`
		Category      string          `json:"category"`
		Priority      int             `json:"priority"`
		IsActive      *bool           `json:"isActive"`
	} `json:"goals"`
}

// records holds everything an export turns into, ready to be inserted for one user.
type records struct {
	Income       []models.IncomeSource
	Categories   []models.BudgetCategory
	Transactions []models.Transaction
	Goals        []models.SavingsGoal
	State        ledger.State
	Replayed     map[string]int // accepted actions by type, e.g. "AddIncome"
}

func actionName(a ledger.Action) string {
	name := fmt.Sprintf("%T", a)
	return name[strings.LastIndex(name, ".")+1:]
}

func cents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

var exportDateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05.000Z", time.DateOnly}

func parseExportDate(s string) (time.Time, error) {
	for _, layout := range exportDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// categoryKey accepts both the canonical form and a bare custom name.
func categoryKey(raw, name string, custom bool) (finance.CategoryKey, error) {
	if custom && !strings.HasPrefix(raw, "custom:") {
		if raw == "" {
			raw = name
		}
		return finance.Custom(raw)
	}
	return finance.ParseCategoryKey(raw)
}

// readExport decodes r and replays every record through a ledger store, so
// an export is accepted only if the API would accept each record in turn.
func readExport(r io.Reader, userID string) (*records, error) {
	var ex export
	if err := json.NewDecoder(r).Decode(&ex); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}

	store := ledger.NewStore(ledger.State{})
	out := &records{Replayed: make(map[string]int)}
	stop := store.Subscribe(func(_ ledger.State, a ledger.Action) {
		out.Replayed[actionName(a)]++
	})
	defer stop()

	for i, in := range ex.Income {
		start, err := parseExportDate(in.StartDate)
		if err != nil {
			return nil, fmt.Errorf("income %d: %w", i, err)
		}
		active := in.IsActive == nil || *in.IsActive
		row := models.IncomeSource{
			Base:        models.Base{ID: uuid.New()},
			UserID:      userID,
			Source:      in.Source,
			Amount:      cents(in.Amount),
			Frequency:   finance.Frequency(in.Frequency),
			StartDate:   start,
			IsActive:    active,
			Category:    in.Category,
			Description: in.Description,
		}
		if _, err := store.Dispatch(ledger.AddIncome{Income: row.Ledger()}); err != nil {
			return nil, fmt.Errorf("income %q: %w", in.Source, err)
		}
		out.Income = append(out.Income, row)
	}

	for _, in := range ex.Budget.Categories {
		key, err := categoryKey(in.Category, in.Name, in.IsCustom)
		if err != nil {
			return nil, fmt.Errorf("category %q: %w", in.Name, err)
		}
		name := strings.TrimSpace(in.Name)
		if name == "" {
			name = key.Name()
		}
		row := models.BudgetCategory{
			Base:      models.Base{ID: uuid.New()},
			UserID:    userID,
			Key:       key,
			Name:      name,
			Allocated: cents(in.Allocated),
			Color:     in.Color,
			Icon:      in.Icon,
			IsCustom:  key.IsCustom(),
		}
		if _, err := store.Dispatch(ledger.AddCategory{Category: row.Ledger()}); err != nil {
			return nil, fmt.Errorf("category %q: %w", name, err)
		}
		out.Categories = append(out.Categories, row)
	}

	for i, in := range ex.Transactions {
		key, err := finance.ParseCategoryKey(in.Category)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		date, err := parseExportDate(in.Date)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		row := models.Transaction{
			Base:        models.Base{ID: uuid.New()},
			UserID:      userID,
			Amount:      cents(in.Amount),
			Description: in.Description,
			Category:    key,
			Date:        date,
			Merchant:    in.Merchant,
			Notes:       in.Notes,
			Source:      models.TransactionSourceImport,
			ExternalRef: in.ID,
		}
		if _, err := store.Dispatch(ledger.AddTransaction{Transaction: row.Ledger()}); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		out.Transactions = append(out.Transactions, row)
	}

	goals := ex.Goals
	sort.SliceStable(goals, func(i, j int) bool { return goals[i].Priority < goals[j].Priority })
	for _, in := range goals {
		var target *time.Time
		if in.TargetDate != "" {
			t, err := parseExportDate(in.TargetDate)
			if err != nil {
				return nil, fmt.Errorf("goal %q: %w", in.Name, err)
			}
			target = &t
		}
		row := models.SavingsGoal{
			Base:          models.Base{ID: uuid.New()},
			UserID:        userID,
			Name:          in.Name,
			TargetAmount:  cents(in.TargetAmount),
			CurrentAmount: cents(in.CurrentAmount),
			TargetDate:    target,
			Category:      finance.GoalCategory(in.Category),
			IsActive:      in.IsActive == nil || *in.IsActive,
		}
		state, err := store.Dispatch(ledger.AddGoal{Goal: row.Ledger()})
		if err != nil {
			return nil, fmt.Errorf("goal %q: %w", in.Name, err)
		}
		// Priorities are renumbered densely in the order the user kept them.
		row.Priority = state.Goals[len(state.Goals)-1].Priority
		out.Goals = append(out.Goals, row)
	}

	out.State = store.Snapshot()
	return out, nil
}
