package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"centsible/internal/finance"
	"centsible/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// monthStart returns the first instant of t's month in UTC.
func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		Currency: "USD",
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestIncome creates an active income source.
func CreateTestIncome(t *testing.T, db *gorm.DB, userID string, amount int64, freq finance.Frequency) *models.IncomeSource {
	t.Helper()

	income := &models.IncomeSource{
		UserID:    userID,
		Source:    fmt.Sprintf("Income %d", nextID()),
		Amount:    amount,
		Frequency: freq,
		StartDate: monthStart(time.Now()),
		IsActive:  true,
	}
	if err := db.Create(income).Error; err != nil {
		t.Fatalf("failed to create test income: %v", err)
	}
	return income
}

// CreateTestCategory creates a budget category with the given allocation (in cents).
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, key finance.CategoryKey, allocated int64) *models.BudgetCategory {
	t.Helper()

	category := &models.BudgetCategory{
		UserID:    userID,
		Key:       key,
		Name:      key.Name(),
		Allocated: allocated,
		IsCustom:  key.IsCustom(),
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestTransaction creates an expense dated now.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID string, key finance.CategoryKey, amount int64) *models.Transaction {
	t.Helper()
	return CreateTestTransactionAt(t, db, userID, key, amount, time.Now().UTC())
}

// CreateTestTransactionAt creates an expense on the given date.
func CreateTestTransactionAt(t *testing.T, db *gorm.DB, userID string, key finance.CategoryKey, amount int64, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:      userID,
		Amount:      amount,
		Description: fmt.Sprintf("Expense %d", nextID()),
		Category:    key,
		Date:        date,
		Source:      models.TransactionSourceManual,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestGoal creates an active savings goal with the given priority.
func CreateTestGoal(t *testing.T, db *gorm.DB, userID string, category finance.GoalCategory, current int64, priority int) *models.SavingsGoal {
	t.Helper()

	goal := &models.SavingsGoal{
		UserID:        userID,
		Name:          fmt.Sprintf("Goal %d", nextID()),
		TargetAmount:  1000000,
		CurrentAmount: current,
		Category:      category,
		Priority:      priority,
		IsActive:      true,
	}
	if err := db.Create(goal).Error; err != nil {
		t.Fatalf("failed to create test goal: %v", err)
	}
	return goal
}

// CreateTestBill creates an active monthly bill reminder.
func CreateTestBill(t *testing.T, db *gorm.DB, userID string, dueDay, remindDays int) *models.BillReminder {
	t.Helper()

	bill := &models.BillReminder{
		UserID:     userID,
		Name:       fmt.Sprintf("Bill %d", nextID()),
		Amount:     12000,
		DueDay:     dueDay,
		Category:   finance.Utilities,
		RemindDays: remindDays,
		IsActive:   true,
	}
	if err := db.Create(bill).Error; err != nil {
		t.Fatalf("failed to create test bill: %v", err)
	}
	return bill
}

// CreateTestHousehold creates a household owned by owner, with extra members.
func CreateTestHousehold(t *testing.T, db *gorm.DB, owner *models.User, members ...*models.User) *models.Household {
	t.Helper()

	household := &models.Household{Name: fmt.Sprintf("Household %d", nextID()), OwnerID: owner.ID}
	if err := db.Create(household).Error; err != nil {
		t.Fatalf("failed to create test household: %v", err)
	}

	add := func(u *models.User, role models.HouseholdRole) {
		m := &models.HouseholdMember{HouseholdID: household.ID, UserID: u.ID, Role: role, JoinedAt: time.Now()}
		if err := db.Create(m).Error; err != nil {
			t.Fatalf("failed to create household member: %v", err)
		}
	}
	add(owner, models.HouseholdRoleOwner)
	for _, m := range members {
		add(m, models.HouseholdRoleMember)
	}
	return household
}
