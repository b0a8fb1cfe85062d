package finance

import (
	"errors"
	"math"
	"testing"
)

func TestTotalMonthlyIncome(t *testing.T) {
	sources := []IncomeSource{
		{Amount: 2000, Frequency: FrequencyBiWeekly, Active: true},
		{Amount: 500, Frequency: FrequencyWeekly, Active: true},
		{Amount: 12000, Frequency: FrequencyYearly, Active: true},
		{Amount: 9999, Frequency: FrequencyMonthly, Active: false},
		{Amount: 3000, Frequency: FrequencyOneTime, Active: true},
	}

	got, err := TotalMonthlyIncome(sources)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var want float64
	for _, s := range sources {
		if !s.Active {
			continue
		}
		n, _ := Normalize(s.Amount, s.Frequency)
		want += n
	}
	if !almostEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if !almostEqual(got, 4340+2165+1000) {
		t.Errorf("expected 7505, got %v", got)
	}
}

func TestTotalMonthlyIncome_InvalidFrequency(t *testing.T) {
	t.Run("active source propagates error", func(t *testing.T) {
		_, err := TotalMonthlyIncome([]IncomeSource{{Amount: 1, Frequency: "hourly", Active: true}})
		if !errors.Is(err, ErrInvalidFrequency) {
			t.Errorf("expected ErrInvalidFrequency, got %v", err)
		}
	})

	t.Run("inactive source is ignored", func(t *testing.T) {
		got, err := TotalMonthlyIncome([]IncomeSource{{Amount: 1, Frequency: "hourly", Active: false}})
		if err != nil || got != 0 {
			t.Errorf("expected 0, nil; got %v, %v", got, err)
		}
	})
}

func TestTotals(t *testing.T) {
	custom, _ := Custom("pets")
	cats := []Category{
		{Key: Housing, Allocated: 1500, Spent: 1500},
		{Key: Groceries, Allocated: 600, Spent: 720},
		{Key: custom, Allocated: 100, Spent: 40},
	}
	if got := TotalAllocated(cats); got != 2200 {
		t.Errorf("TotalAllocated = %v, want 2200", got)
	}
	if got := TotalSpent(cats); got != 2260 {
		t.Errorf("TotalSpent = %v, want 2260", got)
	}
	if TotalAllocated(nil) != 0 || TotalSpent(nil) != 0 {
		t.Error("totals of no categories should be 0")
	}
}

func TestCategoryVariance(t *testing.T) {
	t.Run("over budget", func(t *testing.T) {
		v := CategoryVariance(Category{Key: Dining, Allocated: 500, Spent: 650})
		if v.Variance != 150 {
			t.Errorf("variance = %v, want 150", v.Variance)
		}
		if !almostEqual(v.VariancePercent, 30) {
			t.Errorf("variance percent = %v, want 30", v.VariancePercent)
		}
		if v.Status != StatusOver {
			t.Errorf("status = %s, want over", v.Status)
		}
	})

	t.Run("on target", func(t *testing.T) {
		v := CategoryVariance(Category{Key: Housing, Allocated: 1200, Spent: 1200})
		if v.Status != StatusOnTarget || v.Variance != 0 {
			t.Errorf("expected on-target with 0 variance, got %+v", v)
		}
	})

	t.Run("under budget", func(t *testing.T) {
		v := CategoryVariance(Category{Key: Utilities, Allocated: 200, Spent: 150})
		if v.Status != StatusUnder || v.Variance != -50 || !almostEqual(v.VariancePercent, -25) {
			t.Errorf("unexpected variance %+v", v)
		}
	})

	t.Run("zero allocation never divides", func(t *testing.T) {
		for _, spent := range []float64{0, 10, -10} {
			v := CategoryVariance(Category{Key: Other, Allocated: 0, Spent: spent})
			if v.VariancePercent != 0 || math.IsNaN(v.VariancePercent) || math.IsInf(v.VariancePercent, 0) {
				t.Errorf("expected 0%% for zero allocation, got %v", v.VariancePercent)
			}
		}
	})
}

func TestClassify_Partition(t *testing.T) {
	for _, v := range []float64{-1000, -0.01, 0, 0.01, 1000} {
		s := Classify(v)
		matches := 0
		for _, candidate := range []Status{StatusOver, StatusOnTarget, StatusUnder} {
			if s == candidate {
				matches++
			}
		}
		if matches != 1 {
			t.Errorf("variance %v classified into %d statuses", v, matches)
		}
		if (s == StatusOver) != (v > 0) {
			t.Errorf("variance %v: over status must hold iff variance > 0, got %s", v, s)
		}
	}
}

func TestSortVariances(t *testing.T) {
	custom, _ := Custom("gym")
	// groceries +100, dining +30, utilities -300, housing and transportation -100, gym 0
	got := Variances([]Category{
		{Key: Housing, Allocated: 1000, Spent: 900},
		{Key: Dining, Allocated: 200, Spent: 230},
		{Key: Utilities, Allocated: 300, Spent: 0},
		{Key: Groceries, Allocated: 400, Spent: 500},
		{Key: custom, Allocated: 50, Spent: 50},
		{Key: Transportation, Allocated: 100, Spent: 0},
	})

	wantOrder := []string{"groceries", "dining", "utilities", "housing", "transportation", "custom:gym"}
	if len(got) != len(wantOrder) {
		t.Fatalf("expected %d variances, got %d", len(wantOrder), len(got))
	}
	for i, key := range wantOrder {
		if got[i].Category.String() != key {
			t.Errorf("position %d: expected %s, got %s", i, key, got[i].Category)
		}
	}

	attention := NeedsAttention(got)
	if len(attention) != 2 {
		t.Fatalf("expected 2 categories needing attention, got %d", len(attention))
	}
	for _, v := range attention {
		if v.Status != StatusOver {
			t.Errorf("needs-attention entry %s is not over budget", v.Category)
		}
	}
}

func TestProjectCashFlow(t *testing.T) {
	cf := ProjectCashFlow(6000, 5000, 5200)
	if cf.Expected != 1000 {
		t.Errorf("expected cash flow = %v, want 1000", cf.Expected)
	}
	if cf.Actual != 800 {
		t.Errorf("actual cash flow = %v, want 800", cf.Actual)
	}
	if cf.Variance != -200 {
		t.Errorf("cash flow variance = %v, want -200", cf.Variance)
	}
}

func TestSummarize(t *testing.T) {
	t.Run("populated", func(t *testing.T) {
		s, err := Summarize(Input{
			Income: []IncomeSource{{Amount: 6000, Frequency: FrequencyMonthly, Active: true}},
			Categories: []Category{
				{Key: Housing, Allocated: 3000, Spent: 3000},
				{Key: Groceries, Allocated: 2000, Spent: 2200},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.TotalMonthlyIncome != 6000 || s.TotalAllocated != 5000 || s.TotalMonthlyExpenses != 5200 {
			t.Errorf("unexpected totals %+v", s)
		}
		if s.BudgetVariance != 200 || !almostEqual(s.BudgetVariancePct, 4) {
			t.Errorf("unexpected budget variance %v (%v%%)", s.BudgetVariance, s.BudgetVariancePct)
		}
		if s.CashFlow != (CashFlow{Expected: 1000, Actual: 800, Variance: -200}) {
			t.Errorf("unexpected cash flow %+v", s.CashFlow)
		}
		if s.Categories[0].Category != Groceries {
			t.Errorf("expected over-budget groceries first, got %s", s.Categories[0].Category)
		}
	})

	t.Run("empty state", func(t *testing.T) {
		s, err := Summarize(Input{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.TotalMonthlyIncome != 0 || s.TotalAllocated != 0 || s.BudgetVariancePct != 0 {
			t.Errorf("expected zeroed summary, got %+v", s)
		}
		if s.Categories == nil {
			t.Error("categories should be an empty slice, not nil")
		}
	})

	t.Run("invalid frequency surfaces", func(t *testing.T) {
		_, err := Summarize(Input{Income: []IncomeSource{{Amount: 1, Frequency: "daily", Active: true}}})
		if !errors.Is(err, ErrInvalidFrequency) {
			t.Errorf("expected ErrInvalidFrequency, got %v", err)
		}
	})
}
