package ledger

import (
	"fmt"
	"slices"
	"sort"

	"centsible/internal/finance"
)

// Action is a change to a State.
type Action interface {
	apply(State) (State, error)
}

// Reduce applies a to s and returns the new state. s is left untouched; on
// error the returned state is s.
func Reduce(s State, a Action) (State, error) {
	next, err := a.apply(s)
	if err != nil {
		return s, err
	}
	return next, nil
}

func indexOf[T any](items []T, id string, idOf func(T) string) int {
	for i, item := range items {
		if idOf(item) == id {
			return i
		}
	}
	return -1
}

func incomeID(i Income) string { return i.ID }
func categoryID(c Category) string { return c.ID }
func transactionID(t Transaction) string { return t.ID }
func goalID(g Goal) string { return g.ID }

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}

// AddIncome appends an income source.
type AddIncome struct{ Income Income }

func (a AddIncome) apply(s State) (State, error) {
	if _, err := finance.ParseFrequency(string(a.Income.Frequency)); err != nil {
		return s, err
	}
	s.Income = append(slices.Clip(s.Income), a.Income)
	return s, nil
}

// UpdateIncome replaces the income source with the same ID.
type UpdateIncome struct{ Income Income }

func (a UpdateIncome) apply(s State) (State, error) {
	if _, err := finance.ParseFrequency(string(a.Income.Frequency)); err != nil {
		return s, err
	}
	i := indexOf(s.Income, a.Income.ID, incomeID)
	if i < 0 {
		return s, notFound("income", a.Income.ID)
	}
	s.Income = slices.Clone(s.Income)
	s.Income[i] = a.Income
	return s, nil
}

// ToggleIncome flips the active flag of an income source.
type ToggleIncome struct{ ID string }

func (a ToggleIncome) apply(s State) (State, error) {
	i := indexOf(s.Income, a.ID, incomeID)
	if i < 0 {
		return s, notFound("income", a.ID)
	}
	s.Income = slices.Clone(s.Income)
	s.Income[i].Active = !s.Income[i].Active
	return s, nil
}

// RemoveIncome deletes an income source.
type RemoveIncome struct{ ID string }

func (a RemoveIncome) apply(s State) (State, error) {
	i := indexOf(s.Income, a.ID, incomeID)
	if i < 0 {
		return s, notFound("income", a.ID)
	}
	s.Income = slices.Delete(slices.Clone(s.Income), i, i+1)
	return s, nil
}

// AddCategory adds a budget category. Keys are unique within a state.
type AddCategory struct{ Category Category }

func (a AddCategory) apply(s State) (State, error) {
	if a.Category.Key.IsZero() {
		return s, finance.ErrUnknownCategory
	}
	for _, c := range s.Categories {
		if c.Key == a.Category.Key {
			return s, fmt.Errorf("%s: %w", c.Key, ErrDuplicateCategory)
		}
	}
	s.Categories = append(slices.Clip(s.Categories), a.Category)
	return s, nil
}

// SetAllocation changes how much a category is budgeted.
type SetAllocation struct {
	ID        string
	Allocated int64
}

func (a SetAllocation) apply(s State) (State, error) {
	i := indexOf(s.Categories, a.ID, categoryID)
	if i < 0 {
		return s, notFound("category", a.ID)
	}
	s.Categories = slices.Clone(s.Categories)
	s.Categories[i].Allocated = a.Allocated
	return s, nil
}

// RemoveCategory deletes a category. Its transactions are kept.
type RemoveCategory struct{ ID string }

func (a RemoveCategory) apply(s State) (State, error) {
	i := indexOf(s.Categories, a.ID, categoryID)
	if i < 0 {
		return s, notFound("category", a.ID)
	}
	s.Categories = slices.Delete(slices.Clone(s.Categories), i, i+1)
	return s, nil
}

// AddTransaction records an expense.
type AddTransaction struct{ Transaction Transaction }

func (a AddTransaction) apply(s State) (State, error) {
	if a.Transaction.Amount <= 0 {
		return s, ErrInvalidAmount
	}
	if a.Transaction.Category.IsZero() {
		return s, finance.ErrUnknownCategory
	}
	s.Transactions = append(slices.Clip(s.Transactions), a.Transaction)
	return s, nil
}

// UpdateTransaction replaces the transaction with the same ID.
type UpdateTransaction struct{ Transaction Transaction }

func (a UpdateTransaction) apply(s State) (State, error) {
	if a.Transaction.Amount <= 0 {
		return s, ErrInvalidAmount
	}
	i := indexOf(s.Transactions, a.Transaction.ID, transactionID)
	if i < 0 {
		return s, notFound("transaction", a.Transaction.ID)
	}
	s.Transactions = slices.Clone(s.Transactions)
	s.Transactions[i] = a.Transaction
	return s, nil
}

// RemoveTransaction deletes a transaction.
type RemoveTransaction struct{ ID string }

func (a RemoveTransaction) apply(s State) (State, error) {
	i := indexOf(s.Transactions, a.ID, transactionID)
	if i < 0 {
		return s, notFound("transaction", a.ID)
	}
	s.Transactions = slices.Delete(slices.Clone(s.Transactions), i, i+1)
	return s, nil
}

// AddGoal appends a savings goal after the current lowest priority.
type AddGoal struct{ Goal Goal }

func (a AddGoal) apply(s State) (State, error) {
	if !a.Goal.Category.Valid() {
		return s, fmt.Errorf("%q: %w", a.Goal.Category, ErrInvalidGoal)
	}
	g := a.Goal
	g.Priority = NextPriority(s.Goals)
	s.Goals = append(slices.Clip(s.Goals), g)
	return s, nil
}

// NextPriority returns the priority a newly created goal receives.
func NextPriority(goals []Goal) int {
	next := 1
	for _, g := range goals {
		if g.Priority >= next {
			next = g.Priority + 1
		}
	}
	return next
}

// AddGoalFunds increases a goal's current amount.
type AddGoalFunds struct {
	ID     string
	Amount int64
}

func (a AddGoalFunds) apply(s State) (State, error) {
	if a.Amount <= 0 {
		return s, ErrInvalidAmount
	}
	i := indexOf(s.Goals, a.ID, goalID)
	if i < 0 {
		return s, notFound("goal", a.ID)
	}
	s.Goals = slices.Clone(s.Goals)
	s.Goals[i].Current += a.Amount
	return s, nil
}

// Direction of a goal move.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// MoveGoal swaps a goal's priority with the adjacent active goal.
type MoveGoal struct {
	ID        string
	Direction Direction
}

func (a MoveGoal) apply(s State) (State, error) {
	i, j, err := AdjacentGoals(s.Goals, a.ID, a.Direction)
	if err != nil {
		return s, err
	}
	s.Goals = slices.Clone(s.Goals)
	s.Goals[i].Priority, s.Goals[j].Priority = s.Goals[j].Priority, s.Goals[i].Priority
	return s, nil
}

// AdjacentGoals returns the indexes in goals of the goal with id and of the
// active goal it would swap with when moved in dir.
func AdjacentGoals(goals []Goal, id string, dir Direction) (int, int, error) {
	if dir != Up && dir != Down {
		return 0, 0, ErrInvalidDirection
	}
	self := indexOf(goals, id, goalID)
	if self < 0 {
		return 0, 0, notFound("goal", id)
	}

	order := make([]int, 0, len(goals))
	for i, g := range goals {
		if g.Active || i == self {
			order = append(order, i)
		}
	}
	sort.SliceStable(order, func(x, y int) bool {
		return goals[order[x]].Priority < goals[order[y]].Priority
	})

	pos := slices.Index(order, self)
	switch dir {
	case Up:
		pos--
	case Down:
		pos++
	}
	if pos < 0 || pos >= len(order) {
		return 0, 0, ErrGoalOutOfRange
	}
	return self, order[pos], nil
}
