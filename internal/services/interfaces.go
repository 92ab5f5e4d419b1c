package services

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID, name string, categoryType models.CategoryType) (*models.Category, error)
	ListCategories(userID string, categoryType *models.CategoryType) ([]models.Category, error)
	GetCategoryByID(userID, categoryID string) (*models.Category, error)
	UpdateCategory(userID, categoryID string, name *string, categoryType *models.CategoryType) (*models.Category, error)
	DeleteCategory(userID, categoryID string) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	Type       *models.TransactionType
	CategoryID *string
}

// CreateTransactionParams carries the fields of a new transaction.
type CreateTransactionParams struct {
	CategoryID  string
	Type        models.TransactionType
	Amount      decimal.Decimal
	Date        time.Time
	Note        string
	Description string
}

// UpdateTransactionParams carries a partial transaction update; nil fields are left unchanged.
type UpdateTransactionParams struct {
	CategoryID  *string
	Type        *models.TransactionType
	Amount      *decimal.Decimal
	Date        *time.Time
	Note        *string
	Description *string
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, params CreateTransactionParams) (*models.Transaction, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID string) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID string, params UpdateTransactionParams) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID string) error
}

// CreateBudgetParams carries the fields of a new budget. Exactly one of
// CategoryID and Name must be set.
type CreateBudgetParams struct {
	CategoryID     *string
	Name           string
	Amount         decimal.Decimal
	Period         models.BudgetPeriod
	BudgetType     models.BudgetType
	AlertThreshold *float64
}

// UpdateBudgetParams carries a partial budget update; nil fields are left unchanged.
type UpdateBudgetParams struct {
	Name           *string
	Amount         *decimal.Decimal
	Period         *models.BudgetPeriod
	AlertThreshold *float64
	IsActive       *bool
}

// SpendTotals is the raw aggregate of expense transactions counted against a budget.
type SpendTotals struct {
	TotalSpent       decimal.Decimal
	TransactionCount int64
}

// SpendStatus is the derived spending state of a budget. It is computed on
// every read and never stored.
type SpendStatus struct {
	TotalSpent       decimal.Decimal
	TransactionCount int64
	Remaining        decimal.Decimal
	Percentage       float64
	IsOverBudget     bool
	ShouldAlert      bool
}

// BudgetWithSpending pairs a budget with its current spending status.
type BudgetWithSpending struct {
	Budget      models.Budget
	DisplayName string
	Spending    SpendStatus
}

// OverviewStats is the consolidated budget snapshot for one period window.
type OverviewStats struct {
	Period            models.BudgetPeriod
	WindowStart       time.Time
	WindowEnd         time.Time
	TotalBudget       decimal.Decimal
	TotalSpent        decimal.Decimal
	RemainingBudget   decimal.Decimal
	OverallPercentage float64
	BudgetCount       int
	OverBudgetCount   int
	AlertCount        int
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID string, params CreateBudgetParams) (*models.Budget, error)
	ListBudgets(userID string, period models.BudgetPeriod) ([]BudgetWithSpending, error)
	GetBudgetByID(userID, budgetID string) (*BudgetWithSpending, error)
	UpdateBudget(userID, budgetID string, params UpdateBudgetParams) (*models.Budget, error)
	DeleteBudget(userID, budgetID string) error
	GetBudgetOverview(userID string, period models.BudgetPeriod) (*OverviewStats, error)
}

// AnalyticsOverview holds all-time totals for a user.
type AnalyticsOverview struct {
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal
	NetBalance   decimal.Decimal
}

// MonthlyTrendPoint holds income and expense totals for one calendar month.
type MonthlyTrendPoint struct {
	Month   string
	Income  decimal.Decimal
	Expense decimal.Decimal
}

// CategoryExpense holds the expense total of one category.
type CategoryExpense struct {
	CategoryID   string
	CategoryName string
	Total        decimal.Decimal
	Count        int64
	Percentage   float64
}

// MonthSummary holds the totals of the current calendar month.
type MonthSummary struct {
	Month        string
	Income       decimal.Decimal
	Expense      decimal.Decimal
	Balance      decimal.Decimal
	IncomeCount  int64
	ExpenseCount int64
}

// AnalyticsServicer defines the contract for reporting over transactions.
type AnalyticsServicer interface {
	GetOverview(userID string) (*AnalyticsOverview, error)
	GetMonthlyTrend(userID string, months int) ([]MonthlyTrendPoint, error)
	GetExpensesByCategory(userID string, from, to *time.Time) ([]CategoryExpense, error)
	GetRecentTransactions(userID string, limit int) ([]models.Transaction, error)
	GetCurrentMonthSummary(userID string) (*MonthSummary, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]any)
}
