package finance

import (
	"math"
	"sort"
)

// IncomeSource is the slice of an income record the calculations need.
type IncomeSource struct {
	Amount    float64
	Frequency Frequency
	Active    bool
}

// Category is a budget category with its allocation and spend for the period.
type Category struct {
	Key       CategoryKey
	Allocated float64
	Spent     float64
}

// Input bundles every record a summary is computed from.
type Input struct {
	Income     []IncomeSource
	Categories []Category
	Goals      []Goal
}

// Status classifies a category's spend against its allocation.
type Status string

const (
	StatusOver     Status = "over"
	StatusOnTarget Status = "on-target"
	StatusUnder    Status = "under"
)

// Variance is the actual-vs-allocated comparison for one category.
type Variance struct {
	Category        CategoryKey `json:"category"`
	Allocated       float64     `json:"allocated"`
	Spent           float64     `json:"spent"`
	Variance        float64     `json:"variance"`
	VariancePercent float64     `json:"variance_percent"`
	Status          Status      `json:"status"`
}

// CashFlow compares budgeted and real cash flow for the period.
type CashFlow struct {
	Expected float64 `json:"expected"`
	Actual   float64 `json:"actual"`
	Variance float64 `json:"variance"`
}

// FinancialSummary is the derived monthly picture of a budget.
type FinancialSummary struct {
	TotalMonthlyIncome   float64    `json:"total_monthly_income"`
	TotalMonthlyExpenses float64    `json:"total_monthly_expenses"`
	TotalAllocated       float64    `json:"total_allocated"`
	BudgetVariance       float64    `json:"budget_variance"`
	BudgetVariancePct    float64    `json:"budget_variance_percent"`
	Categories           []Variance `json:"categories"`
	CashFlow             CashFlow   `json:"cash_flow"`
}

// TotalMonthlyIncome sums the monthly equivalent of every active source.
// Inactive sources are ignored entirely, including their frequency.
func TotalMonthlyIncome(sources []IncomeSource) (float64, error) {
	var total float64
	for _, s := range sources {
		if !s.Active {
			continue
		}
		monthly, err := Normalize(s.Amount, s.Frequency)
		if err != nil {
			return 0, err
		}
		total += monthly
	}
	return total, nil
}

// TotalAllocated sums the allocation of every category.
func TotalAllocated(categories []Category) float64 {
	var total float64
	for _, c := range categories {
		total += c.Allocated
	}
	return total
}

// TotalSpent sums the spend of every category.
func TotalSpent(categories []Category) float64 {
	var total float64
	for _, c := range categories {
		total += c.Spent
	}
	return total
}

// percentOf returns part/whole*100, or 0 when whole is not positive.
func percentOf(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}

// Classify maps a variance onto its status.
func Classify(variance float64) Status {
	switch {
	case variance > 0:
		return StatusOver
	case variance == 0:
		return StatusOnTarget
	default:
		return StatusUnder
	}
}

// CategoryVariance compares a category's spend with its allocation.
func CategoryVariance(c Category) Variance {
	v := c.Spent - c.Allocated
	return Variance{
		Category:        c.Key,
		Allocated:       c.Allocated,
		Spent:           c.Spent,
		Variance:        v,
		VariancePercent: percentOf(v, c.Allocated),
		Status:          Classify(v),
	}
}

// SortVariances orders over-budget categories first, then by descending
// absolute variance. Ties fall back to the category key so the order is total.
func SortVariances(vs []Variance) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		aOver, bOver := a.Status == StatusOver, b.Status == StatusOver
		if aOver != bOver {
			return aOver
		}
		if da, db := math.Abs(a.Variance), math.Abs(b.Variance); da != db {
			return da > db
		}
		return a.Category.String() < b.Category.String()
	})
}

// Variances computes and sorts the variance of every category.
func Variances(categories []Category) []Variance {
	out := make([]Variance, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryVariance(c))
	}
	SortVariances(out)
	return out
}

// NeedsAttention returns the over-budget prefix of a sorted variance list.
func NeedsAttention(sorted []Variance) []Variance {
	n := 0
	for n < len(sorted) && sorted[n].Status == StatusOver {
		n++
	}
	return sorted[:n]
}

// ProjectCashFlow derives expected and actual cash flow for the period.
func ProjectCashFlow(income, allocated, spent float64) CashFlow {
	expected := income - allocated
	actual := income - spent
	return CashFlow{
		Expected: expected,
		Actual:   actual,
		Variance: actual - expected,
	}
}

// Summarize computes the full monthly summary for in.
func Summarize(in Input) (FinancialSummary, error) {
	income, err := TotalMonthlyIncome(in.Income)
	if err != nil {
		return FinancialSummary{}, err
	}
	allocated := TotalAllocated(in.Categories)
	spent := TotalSpent(in.Categories)
	variance := spent - allocated

	return FinancialSummary{
		TotalMonthlyIncome:   income,
		TotalMonthlyExpenses: spent,
		TotalAllocated:       allocated,
		BudgetVariance:       variance,
		BudgetVariancePct:    percentOf(variance, allocated),
		Categories:           Variances(in.Categories),
		CashFlow:             ProjectCashFlow(income, allocated, spent),
	}, nil
}
