package finance

import (
	"fmt"
	"math"
	"strings"
)

// GoalCategory tags a savings goal with its purpose.
type GoalCategory string

const (
	GoalEmergencyFund GoalCategory = "emergency-fund"
	GoalVacation      GoalCategory = "vacation"
	GoalHome          GoalCategory = "home"
	GoalVehicle       GoalCategory = "vehicle"
	GoalEducation     GoalCategory = "education"
	GoalRetirement    GoalCategory = "retirement"
	GoalOther         GoalCategory = "other"
)

// Valid reports whether c is a known goal category.
func (c GoalCategory) Valid() bool {
	switch c {
	case GoalEmergencyFund, GoalVacation, GoalHome, GoalVehicle, GoalEducation, GoalRetirement, GoalOther:
		return true
	}
	return false
}

// Goal is the slice of a savings goal the health score needs.
type Goal struct {
	Category      GoalCategory
	CurrentAmount float64
	TargetAmount  float64
	Active        bool
}

// Scoring policy.
const (
	savingsRateCap       = 20.0 // percent at which the savings component maxes out
	savingsWeight        = 40.0
	ratioFloor           = 1.0
	ratioSpan            = 0.5
	ratioWeight          = 30.0
	emergencyTargetWeeks = 26.0
	emergencyWeight      = 30.0

	// MaxEmergencyWeeks is the coverage reported for a funded goal when there
	// are no expenses to divide by.
	MaxEmergencyWeeks = 52.0

	lowSavingsRate    = 10.0
	tightRatio        = 1.2
	minEmergencyWeeks = 12.0
)

// Recommendation texts.
const (
	RecAddIncome        = "Add an active income source so spending can be measured against what you earn."
	RecNegativeCashFlow = "Warning: spending exceeds income this month. Cut back in the categories that are over budget."
	RecLowSavings       = "Aim to save at least 10% of your monthly income."
	RecTightRatio       = "Expenses are close to income. Look for recurring costs you can reduce."
	RecCreateEmergency  = "Create an emergency-fund savings goal."
	RecGrowEmergency    = "Grow your emergency fund to cover at least 12 weeks of expenses."
	RecHealthy          = "Your finances look healthy. Keep it up."
)

// FinancialHealth is the composite health indicator for a budget.
type FinancialHealth struct {
	Score              float64  `json:"score"`
	SavingsRate        float64  `json:"savings_rate"`
	IncomeExpenseRatio float64  `json:"income_expense_ratio"`
	EmergencyFundWeeks float64  `json:"emergency_fund_weeks"`
	Recommendations    []string `json:"recommendations"`
}

func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) || x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// SavingsRate returns the share of income left after expenses, in percent.
// Zero or negative income yields 0.
func SavingsRate(income, expenses float64) float64 {
	if income <= 0 {
		return 0
	}
	return (income - expenses) / income * 100
}

// IncomeExpenseRatio returns income / max(expenses, 1).
func IncomeExpenseRatio(income, expenses float64) float64 {
	return income / math.Max(expenses, 1)
}

// EmergencyFundWeeks returns how many weeks of expenses the active
// emergency-fund goals cover. A funded goal with no expenses reports
// MaxEmergencyWeeks.
func EmergencyFundWeeks(goals []Goal, monthlyExpenses float64) float64 {
	var fund float64
	for _, g := range goals {
		if g.Active && g.Category == GoalEmergencyFund {
			fund += g.CurrentAmount
		}
	}
	if fund <= 0 {
		return 0
	}
	weekly := monthlyExpenses / WeeksPerMonth
	if weekly <= 0 {
		return MaxEmergencyWeeks
	}
	return fund / weekly
}

// Score combines the three health inputs into a value in [0, 100]. It is
// non-decreasing in each argument.
func Score(savingsRate, ratio, emergencyWeeks float64) float64 {
	savings := clamp(savingsRate, 0, savingsRateCap) / savingsRateCap * savingsWeight
	ratioPts := clamp((ratio-ratioFloor)/ratioSpan, 0, 1) * ratioWeight
	emergency := clamp(emergencyWeeks/emergencyTargetWeeks, 0, 1) * emergencyWeight
	return clamp(savings+ratioPts+emergency, 0, 100)
}

func hasEmergencyGoal(goals []Goal) bool {
	for _, g := range goals {
		if g.Active && g.Category == GoalEmergencyFund {
			return true
		}
	}
	return false
}

// AssessHealth scores a summary. It never fails: zero income produces a low
// score and a recommendation to add income.
func AssessHealth(s FinancialSummary, goals []Goal) FinancialHealth {
	income, expenses := s.TotalMonthlyIncome, s.TotalMonthlyExpenses

	h := FinancialHealth{
		SavingsRate:        SavingsRate(income, expenses),
		IncomeExpenseRatio: IncomeExpenseRatio(income, expenses),
		EmergencyFundWeeks: EmergencyFundWeeks(goals, expenses),
	}
	h.Score = Score(h.SavingsRate, h.IncomeExpenseRatio, h.EmergencyFundWeeks)
	h.Recommendations = recommend(s, goals, h)
	return h
}

func recommend(s FinancialSummary, goals []Goal, h FinancialHealth) []string {
	var recs []string
	hasIncome := s.TotalMonthlyIncome > 0

	if !hasIncome {
		recs = append(recs, RecAddIncome)
	}
	if s.CashFlow.Actual < 0 {
		recs = append(recs, RecNegativeCashFlow)
	}
	if hasIncome && h.SavingsRate < lowSavingsRate && s.CashFlow.Actual >= 0 {
		recs = append(recs, RecLowSavings)
	}
	if hasIncome && h.IncomeExpenseRatio >= 1 && h.IncomeExpenseRatio < tightRatio {
		recs = append(recs, RecTightRatio)
	}
	if !hasEmergencyGoal(goals) {
		recs = append(recs, RecCreateEmergency)
	} else if h.EmergencyFundWeeks < minEmergencyWeeks {
		recs = append(recs, RecGrowEmergency)
	}
	if over := NeedsAttention(s.Categories); len(over) > 0 {
		names := make([]string, len(over))
		for i, v := range over {
			names[i] = v.Category.Name()
		}
		recs = append(recs, fmt.Sprintf("%d categories are over budget: %s.", len(over), strings.Join(names, ", ")))
	}

	if len(recs) == 0 {
		recs = append(recs, RecHealthy)
	}
	return recs
}
