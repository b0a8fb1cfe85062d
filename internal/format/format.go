// Package format renders the financial core's exact numbers for display.
// Nothing here feeds back into calculations.
package format

import (
	"strings"

	"github.com/shopspring/decimal"

	"centsible/internal/finance"
)

var symbols = map[string]string{
	"USD": "$",
	"CAD": "$",
	"AUD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
	"MYR": "RM",
}

// zero-decimal currencies store whole units in the cents column
var zeroDecimal = map[string]bool{"JPY": true, "KRW": true}

// Money renders an amount in minor units, e.g. Money(123456, "USD") is "$1,234.56".
func Money(minor float64, currency string) string {
	currency = strings.ToUpper(currency)
	places := int32(2)
	d := decimal.NewFromFloat(minor).Shift(-2)
	if zeroDecimal[currency] {
		places = 0
		d = decimal.NewFromFloat(minor)
	}

	neg := d.IsNegative()
	s := group(d.Abs().StringFixed(places))

	symbol, ok := symbols[currency]
	if !ok {
		symbol = currency + " "
	}
	if neg {
		return "-" + symbol + s
	}
	return symbol + s
}

// group inserts thousands separators into a non-negative fixed-point string.
func group(s string) string {
	whole, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return b.String()
}

// Percent renders x with one decimal place, e.g. "12.5%".
func Percent(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(1) + "%"
}

// Ratio renders x with two decimal places.
func Ratio(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(2)
}

// Score renders a health score as a whole number.
func Score(x float64) string {
	return decimal.NewFromFloat(x).Round(0).String()
}

// Weeks renders emergency-fund coverage, e.g. "10.5 weeks".
func Weeks(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(1) + " weeks"
}

// Variance is the display form of a category variance.
type Variance struct {
	Category        string `json:"category"`
	Allocated       string `json:"allocated"`
	Spent           string `json:"spent"`
	Variance        string `json:"variance"`
	VariancePercent string `json:"variance_percent"`
	Status          string `json:"status"`
}

// Summary is the display form of a summary and health score.
type Summary struct {
	TotalMonthlyIncome   string     `json:"total_monthly_income"`
	TotalMonthlyExpenses string     `json:"total_monthly_expenses"`
	TotalAllocated       string     `json:"total_allocated"`
	BudgetVariance       string     `json:"budget_variance"`
	ExpectedCashFlow     string     `json:"expected_cash_flow"`
	ActualCashFlow       string     `json:"actual_cash_flow"`
	CashFlowVariance     string     `json:"cash_flow_variance"`
	Categories           []Variance `json:"categories"`
	Score                string     `json:"score"`
	SavingsRate          string     `json:"savings_rate"`
	IncomeExpenseRatio   string     `json:"income_expense_ratio"`
	EmergencyFund        string     `json:"emergency_fund"`
}

// Display renders s and h in currency.
func Display(s finance.FinancialSummary, h finance.FinancialHealth, currency string) Summary {
	out := Summary{
		TotalMonthlyIncome:   Money(s.TotalMonthlyIncome, currency),
		TotalMonthlyExpenses: Money(s.TotalMonthlyExpenses, currency),
		TotalAllocated:       Money(s.TotalAllocated, currency),
		BudgetVariance:       Money(s.BudgetVariance, currency) + " (" + Percent(s.BudgetVariancePct) + ")",
		ExpectedCashFlow:     Money(s.CashFlow.Expected, currency),
		ActualCashFlow:       Money(s.CashFlow.Actual, currency),
		CashFlowVariance:     Money(s.CashFlow.Variance, currency),
		Categories:           make([]Variance, 0, len(s.Categories)),
		Score:                Score(h.Score),
		SavingsRate:          Percent(h.SavingsRate),
		IncomeExpenseRatio:   Ratio(h.IncomeExpenseRatio),
		EmergencyFund:        Weeks(h.EmergencyFundWeeks),
	}
	for _, v := range s.Categories {
		out.Categories = append(out.Categories, Variance{
			Category:        v.Category.String(),
			Allocated:       Money(v.Allocated, currency),
			Spent:           Money(v.Spent, currency),
			Variance:        Money(v.Variance, currency),
			VariancePercent: Percent(v.VariancePercent),
			Status:          string(v.Status),
		})
	}
	return out
}
