package services

import (
	"time"

	"centsible/internal/finance"
	"centsible/internal/ledger"
	"centsible/internal/models"
	"centsible/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password, totpCode string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	SetupTOTP(userID string) (*TOTPSetup, error)
	EnableTOTP(userID, code string) error
}

// TOTPSetup is returned when a user starts enrolling an authenticator app.
type TOTPSetup struct {
	Secret string `json:"secret"`
	URL    string `json:"otpauth_url"`
}

// IncomeInput carries the editable fields of an income source.
type IncomeInput struct {
	Source      string
	Amount      int64
	Frequency   finance.Frequency
	StartDate   time.Time
	Category    string
	Description string
	IsActive    *bool
}

// IncomeServicer defines the contract for income sources.
type IncomeServicer interface {
	CreateIncome(userID string, in IncomeInput) (*models.IncomeSource, error)
	GetUserIncome(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.IncomeSource], error)
	GetIncomeByID(userID, incomeID string) (*models.IncomeSource, error)
	UpdateIncome(userID, incomeID string, in IncomeInput) (*models.IncomeSource, error)
	ToggleIncome(userID, incomeID string) (*models.IncomeSource, error)
	DeleteIncome(userID, incomeID string) error
}

// CategoryInput carries the fields of a new budget category. Key is either a
// core key or "custom:<name>"; when empty, Name becomes a custom key.
type CategoryInput struct {
	Key       string
	Name      string
	Allocated int64
	Color     string
	Icon      string
}

// CategoryUpdate holds the optional fields of a category update.
type CategoryUpdate struct {
	Name      *string
	Allocated *int64
	Color     *string
	Icon      *string
}

// CategoryServicer defines the contract for budget categories. Returned
// categories carry Spent for the current period.
type CategoryServicer interface {
	CreateCategory(userID string, in CategoryInput) (*models.BudgetCategory, error)
	GetUserCategories(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.BudgetCategory], error)
	GetCategoryByID(userID, categoryID string) (*models.BudgetCategory, error)
	UpdateCategory(userID, categoryID string, in CategoryUpdate) (*models.BudgetCategory, error)
	DeleteCategory(userID, categoryID string) error
}

// TransactionInput carries the editable fields of a transaction.
type TransactionInput struct {
	Amount      int64
	Description string
	Category    finance.CategoryKey
	Date        time.Time
	Merchant    string
	Notes       string
	ReceiptURL  string
	Source      models.TransactionSource
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate  *time.Time
	ToDate    *time.Time
	Category  *finance.CategoryKey
	MinAmount *int64
	MaxAmount *int64
}

// ImportResult summarises a bank statement import.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// TransactionServicer defines the contract for transactions.
type TransactionServicer interface {
	CreateTransaction(userID string, in TransactionInput) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, in TransactionInput) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
	ImportStatement(userID string, data []byte) (*ImportResult, error)
}

// GoalInput carries the editable fields of a savings goal.
type GoalInput struct {
	Name         string
	TargetAmount int64
	TargetDate   *time.Time
	Category     finance.GoalCategory
	IsActive     *bool
}

// GoalServicer defines the contract for savings goals.
type GoalServicer interface {
	CreateGoal(userID string, in GoalInput) (*models.SavingsGoal, error)
	GetUserGoals(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.SavingsGoal], error)
	GetGoalByID(userID, goalID string) (*models.SavingsGoal, error)
	UpdateGoal(userID, goalID string, in GoalInput) (*models.SavingsGoal, error)
	DeleteGoal(userID, goalID string) error
	AddFunds(userID, goalID string, amount int64) (*models.SavingsGoal, error)
	MoveGoal(userID, goalID string, dir ledger.Direction) ([]models.SavingsGoal, error)
}

// BillInput carries the editable fields of a bill reminder.
type BillInput struct {
	Name       string
	Amount     int64
	DueDay     int
	Category   finance.CategoryKey
	RemindDays int
	IsActive   *bool
}

// UpcomingBill is a bill with its next due date.
type UpcomingBill struct {
	models.BillReminder
	DueDate  time.Time `json:"due_date"`
	DaysLeft int       `json:"days_left"`
}

// BillServicer defines the contract for bill reminders.
type BillServicer interface {
	CreateBill(userID string, in BillInput) (*models.BillReminder, error)
	GetUserBills(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.BillReminder], error)
	GetBillByID(userID, billID string) (*models.BillReminder, error)
	UpdateBill(userID, billID string, in BillInput) (*models.BillReminder, error)
	DeleteBill(userID, billID string) error
	GetUpcomingBills(userID string, days int, now time.Time) ([]UpcomingBill, error)
}

// ReminderServicer finds bills entering their reminder window and
// publishes a reminder for each.
type ReminderServicer interface {
	SendDueReminders(asOf time.Time) (int, error)
}

// Summary is the derived financial picture for a period.
type Summary struct {
	PeriodStart time.Time                `json:"period_start"`
	PeriodEnd   time.Time                `json:"period_end"`
	Currency    string                   `json:"currency"`
	Summary     finance.FinancialSummary `json:"summary"`
	Health      finance.FinancialHealth  `json:"health"`
}

// SummaryServicer computes summaries from stored records.
type SummaryServicer interface {
	GetSummary(userID string, now time.Time) (*Summary, error)
	GetHouseholdSummary(userID, householdID string, now time.Time) (*Summary, error)
	LoadState(userIDs []string, from, to time.Time) (ledger.State, error)
}

// SnapshotServicer records and lists health snapshots.
type SnapshotServicer interface {
	ComputeAndRecordSnapshots(recordedAt time.Time) (int, error)
	GetSnapshots(userID string, from, to time.Time, page pagination.PageRequest) (*pagination.PageResponse[models.HealthSnapshot], error)
}

// HouseholdServicer defines the contract for household collaboration.
type HouseholdServicer interface {
	CreateHousehold(userID, name string) (*models.Household, error)
	GetUserHouseholds(userID string) ([]models.Household, error)
	GetHousehold(userID, householdID string) (*models.Household, error)
	CreateInvitation(userID, householdID, email string) (*models.Invitation, error)
	AcceptInvitation(userID, token string) (*models.Household, error)
	RemoveMember(userID, householdID, memberID string) error
	IsMember(userID, householdID string) (bool, error)
	MemberIDs(householdID string) ([]string, error)
	HouseholdIDsForUser(userID string) ([]string, error)
}

// CheckoutSession is the hosted payment page for a subscription.
type CheckoutSession struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

// BillingServicer defines the contract for subscription billing.
type BillingServicer interface {
	CreateCheckout(userID string) (*CheckoutSession, error)
	GetSubscription(userID string) (*models.Subscription, error)
	HandleWebhook(payload []byte, signature string) error
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
