package ledger

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"centsible/internal/finance"
)

func baseState() State {
	return State{
		Income: []Income{
			{ID: "inc-1", Source: "Salary", Amount: 600000, Frequency: finance.FrequencyMonthly, Active: true},
		},
		Categories: []Category{
			{ID: "cat-1", Key: finance.Housing, Allocated: 300000},
			{ID: "cat-2", Key: finance.Groceries, Allocated: 200000},
		},
		Transactions: []Transaction{
			{ID: "tx-1", Amount: 300000, Category: finance.Housing, Date: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)},
			{ID: "tx-2", Amount: 150000, Category: finance.Groceries, Date: time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC)},
			{ID: "tx-3", Amount: 70000, Category: finance.Groceries, Date: time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)},
		},
		Goals: []Goal{
			{ID: "g-1", Name: "Rainy day", Category: finance.GoalEmergencyFund, Target: 1000000, Current: 100000, Priority: 1, Active: true},
			{ID: "g-2", Name: "Trip", Category: finance.GoalVacation, Target: 300000, Priority: 2, Active: true},
			{ID: "g-3", Name: "Old car", Category: finance.GoalVehicle, Target: 500000, Priority: 3, Active: false},
			{ID: "g-4", Name: "House", Category: finance.GoalHome, Target: 5000000, Priority: 4, Active: true},
		},
	}
}

func deepCopy(s State) State {
	return State{
		Income:       append([]Income(nil), s.Income...),
		Categories:   append([]Category(nil), s.Categories...),
		Transactions: append([]Transaction(nil), s.Transactions...),
		Goals:        append([]Goal(nil), s.Goals...),
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	custom, _ := finance.Custom("pets")
	actions := []Action{
		AddIncome{Income: Income{ID: "inc-2", Amount: 1000, Frequency: finance.FrequencyWeekly, Active: true}},
		UpdateIncome{Income: Income{ID: "inc-1", Amount: 1, Frequency: finance.FrequencyYearly}},
		ToggleIncome{ID: "inc-1"},
		RemoveIncome{ID: "inc-1"},
		AddCategory{Category: Category{ID: "cat-3", Key: custom, Allocated: 5000}},
		SetAllocation{ID: "cat-1", Allocated: 1},
		RemoveCategory{ID: "cat-2"},
		AddTransaction{Transaction: Transaction{ID: "tx-4", Amount: 100, Category: finance.Dining}},
		UpdateTransaction{Transaction: Transaction{ID: "tx-1", Amount: 5, Category: finance.Housing}},
		RemoveTransaction{ID: "tx-2"},
		AddGoal{Goal: Goal{ID: "g-5", Category: finance.GoalOther, Active: true}},
		AddGoalFunds{ID: "g-2", Amount: 5000},
		MoveGoal{ID: "g-2", Direction: Up},
	}

	for _, a := range actions {
		t.Run(reflect.TypeOf(a).Name(), func(t *testing.T) {
			s := baseState()
			before := deepCopy(s)
			next, err := Reduce(s, a)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(s, before) {
				t.Error("input state was modified")
			}
			if reflect.DeepEqual(next, before) {
				t.Error("action produced no change")
			}
		})
	}
}

func TestReduce_Errors(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   error
	}{
		{"invalid frequency", AddIncome{Income: Income{ID: "x", Frequency: "daily"}}, finance.ErrInvalidFrequency},
		{"missing income", ToggleIncome{ID: "nope"}, ErrNotFound},
		{"duplicate category", AddCategory{Category: Category{ID: "x", Key: finance.Housing}}, ErrDuplicateCategory},
		{"zero category key", AddCategory{Category: Category{ID: "x"}}, finance.ErrUnknownCategory},
		{"non-positive transaction", AddTransaction{Transaction: Transaction{ID: "x", Category: finance.Dining}}, ErrInvalidAmount},
		{"non-positive funds", AddGoalFunds{ID: "g-1", Amount: 0}, ErrInvalidAmount},
		{"bad goal category", AddGoal{Goal: Goal{ID: "x", Category: "yacht"}}, ErrInvalidGoal},
		{"move first goal up", MoveGoal{ID: "g-1", Direction: Up}, ErrGoalOutOfRange},
		{"move last goal down", MoveGoal{ID: "g-4", Direction: Down}, ErrGoalOutOfRange},
		{"bad direction", MoveGoal{ID: "g-1", Direction: "left"}, ErrInvalidDirection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := baseState()
			next, err := Reduce(s, tt.action)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !reflect.DeepEqual(next, s) {
				t.Error("failed action must return the original state")
			}
		})
	}
}

func TestMoveGoal_SkipsInactive(t *testing.T) {
	next, err := Reduce(baseState(), MoveGoal{ID: "g-4", Direction: Up})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	prio := map[string]int{}
	for _, g := range next.Goals {
		prio[g.ID] = g.Priority
	}
	if prio["g-4"] != 2 || prio["g-2"] != 4 {
		t.Errorf("expected g-4 and g-2 to swap priorities, got %v", prio)
	}
	if prio["g-3"] != 3 {
		t.Errorf("inactive goal should keep its priority, got %d", prio["g-3"])
	}
}

func TestAddGoal_AssignsNextPriority(t *testing.T) {
	next, err := Reduce(baseState(), AddGoal{Goal: Goal{ID: "g-5", Category: finance.GoalRetirement, Priority: 1, Active: true}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	last := next.Goals[len(next.Goals)-1]
	if last.Priority != 5 {
		t.Errorf("expected priority 5, got %d", last.Priority)
	}
}

func TestAddGoalFunds_Monotone(t *testing.T) {
	s := baseState()
	prev := s.Goals[0].Current
	for _, amt := range []int64{1, 250, 10000} {
		var err error
		s, err = Reduce(s, AddGoalFunds{ID: "g-1", Amount: amt})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s.Goals[0].Current <= prev {
			t.Fatalf("current amount did not increase: %d -> %d", prev, s.Goals[0].Current)
		}
		prev = s.Goals[0].Current
	}
}

func TestFinanceInput_SpentDerivedFromTransactions(t *testing.T) {
	s := baseState()
	in := s.FinanceInput()

	for _, c := range in.Categories {
		if want := float64(s.Spent(c.Key)); c.Spent != want {
			t.Errorf("%s: spent %v, want %v", c.Key, c.Spent, want)
		}
	}
	if in.Categories[1].Spent != 220000 {
		t.Errorf("groceries spent = %v, want 220000", in.Categories[1].Spent)
	}

	s, _ = Reduce(s, RemoveTransaction{ID: "tx-3"})
	if got := s.FinanceInput().Categories[1].Spent; got != 150000 {
		t.Errorf("after removal groceries spent = %v, want 150000", got)
	}
}

func TestFinanceInput_UnbudgetedSpending(t *testing.T) {
	s := State{
		Income: []Income{
			{ID: "inc-1", Amount: 500000, Frequency: finance.FrequencyMonthly, Active: true},
		},
		Categories: []Category{
			{ID: "cat-1", Key: finance.Groceries, Allocated: 40000},
		},
		Transactions: []Transaction{
			{ID: "tx-1", Amount: 600000, Category: finance.Dining},
			{ID: "tx-2", Amount: 10000, Category: finance.Groceries},
			{ID: "tx-3", Amount: 5000, Category: finance.Dining},
		},
	}

	in := s.FinanceInput()
	if len(in.Categories) != 2 {
		t.Fatalf("expected groceries plus dining, got %+v", in.Categories)
	}
	dining := in.Categories[1]
	if dining.Key != finance.Dining || dining.Allocated != 0 || dining.Spent != 605000 {
		t.Errorf("unexpected unbudgeted category %+v", dining)
	}

	summary, health, err := s.Summary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalMonthlyExpenses != 615000 {
		t.Errorf("expenses = %v, want 615000", summary.TotalMonthlyExpenses)
	}
	if summary.CashFlow.Actual != -115000 {
		t.Errorf("actual cash flow = %v, want -115000", summary.CashFlow.Actual)
	}
	found := false
	for _, r := range health.Recommendations {
		if r == finance.RecNegativeCashFlow {
			found = true
		}
	}
	if !found {
		t.Errorf("expected negative cash flow advice, got %v", health.Recommendations)
	}
}

func TestBetween(t *testing.T) {
	s := baseState().Between(
		time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC),
	)
	if len(s.Transactions) != 2 {
		t.Fatalf("expected 2 transactions in range, got %d", len(s.Transactions))
	}
	if len(baseState().Transactions) != 3 {
		t.Error("Between must not affect the source state")
	}
}

func TestSummary(t *testing.T) {
	summary, health, err := baseState().Summary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalMonthlyIncome != 600000 || summary.TotalAllocated != 500000 || summary.TotalMonthlyExpenses != 520000 {
		t.Errorf("unexpected summary %+v", summary)
	}
	if summary.CashFlow.Variance != -20000 {
		t.Errorf("unexpected cash flow %+v", summary.CashFlow)
	}
	if health.Score < 0 || health.Score > 100 {
		t.Errorf("score out of range: %v", health.Score)
	}
}

func TestMerge(t *testing.T) {
	a := baseState()
	b := State{
		Categories:   []Category{{ID: "cat-9", Key: finance.Groceries, Allocated: 50000}},
		Transactions: []Transaction{{ID: "tx-9", Amount: 1000, Category: finance.Groceries}},
	}
	m := Merge(a, b)
	if len(m.Categories) != 2 {
		t.Fatalf("expected categories folded by key, got %d", len(m.Categories))
	}
	if m.Categories[1].Allocated != 250000 {
		t.Errorf("expected summed allocation 250000, got %d", m.Categories[1].Allocated)
	}
	if m.Spent(finance.Groceries) != 221000 {
		t.Errorf("unexpected merged spend %d", m.Spent(finance.Groceries))
	}
}

func TestStore(t *testing.T) {
	store := NewStore(State{})

	var mu sync.Mutex
	var seen []Action
	unsubscribe := store.Subscribe(func(_ State, a Action) {
		mu.Lock()
		seen = append(seen, a)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = store.Dispatch(AddTransaction{Transaction: Transaction{
				ID: time.Duration(i).String(), Amount: 100, Category: finance.Dining,
			}})
		}(i)
	}
	wg.Wait()

	if got := len(store.Snapshot().Transactions); got != 50 {
		t.Errorf("expected 50 transactions, got %d", got)
	}
	if len(seen) != 50 {
		t.Errorf("expected 50 notifications, got %d", len(seen))
	}

	if _, err := store.Dispatch(AddTransaction{}); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
	if len(seen) != 50 {
		t.Error("failed dispatch must not notify listeners")
	}

	unsubscribe()
	_, _ = store.Dispatch(AddTransaction{Transaction: Transaction{ID: "late", Amount: 1, Category: finance.Dining}})
	if len(seen) != 50 {
		t.Error("listener called after unsubscribe")
	}
}

func TestStore_ConcurrentFailedDispatch(t *testing.T) {
	store := NewStore(State{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := store.Dispatch(AddTransaction{}); !errors.Is(err, ErrInvalidAmount) {
				t.Errorf("expected ErrInvalidAmount, got %v", err)
			}
		}()
		go func(i int) {
			defer wg.Done()
			_, _ = store.Dispatch(AddTransaction{Transaction: Transaction{
				ID: time.Duration(i).String(), Amount: 100, Category: finance.Dining,
			}})
		}(i)
	}
	wg.Wait()

	if got := len(store.Snapshot().Transactions); got != 50 {
		t.Errorf("expected 50 transactions, got %d", got)
	}
}
