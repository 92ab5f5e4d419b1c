package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/period"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// RefTime is the instant fixtures and fixed clocks default to: Friday 15 March 2024, noon UTC.
var RefTime = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

// Amount parses a decimal literal and fails the test on bad input.
func Amount(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid amount %q: %v", s, err)
	}
	return d
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	n := nextID()
	return CreateTestUserWithEmail(t, db, fmt.Sprintf("user%d@test.com", n))
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Username: fmt.Sprintf("user%d", nextID()),
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category owned by userID.
func CreateTestCategory(t *testing.T, db *gorm.DB, userID string, categoryType models.CategoryType) *models.Category {
	t.Helper()
	return CreateTestCategoryNamed(t, db, userID, fmt.Sprintf("Test Category %d", nextID()), categoryType)
}

// CreateTestCategoryNamed creates a named category owned by userID.
func CreateTestCategoryNamed(t *testing.T, db *gorm.DB, userID, name string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	owner := userID
	category := &models.Category{
		UserID: &owner,
		Name:   name,
		Type:   categoryType,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateSharedCategory creates a default category visible to every user.
func CreateSharedCategory(t *testing.T, db *gorm.DB, name string, categoryType models.CategoryType) *models.Category {
	t.Helper()

	category := &models.Category{Name: name, Type: categoryType, IsDefault: true}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create shared category: %v", err)
	}
	return category
}

// CreateTestTransaction creates a transaction dated at the given instant.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, categoryID string, txType models.TransactionType, amount string, date time.Time) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:     userID,
		CategoryID: categoryID,
		Type:       txType,
		Amount:     Amount(t, amount),
		Date:       date.UTC(),
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestExpense creates an expense dated at the given instant.
func CreateTestExpense(t *testing.T, db *gorm.DB, userID, categoryID, amount string, date time.Time) *models.Transaction {
	t.Helper()
	return CreateTestTransaction(t, db, userID, categoryID, models.TransactionTypeExpense, amount, date)
}

// BudgetOption customizes a fixture budget.
type BudgetOption func(*models.Budget)

// WithAlertThreshold sets the budget's alert threshold.
func WithAlertThreshold(v float64) BudgetOption {
	return func(b *models.Budget) { b.AlertThreshold = v }
}

// Inactive marks the budget inactive.
func Inactive() BudgetOption {
	return func(b *models.Budget) { b.IsActive = false }
}

// WithBudgetType overrides the derived budget type.
func WithBudgetType(bt models.BudgetType) BudgetOption {
	return func(b *models.Budget) { b.BudgetType = bt }
}

// CreateTestBudget creates an active budget for the window of p containing ref.
// A non-empty categoryID makes it a category budget, otherwise an overall
// budget called name.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, categoryID, name, amount string, p models.BudgetPeriod, ref time.Time, opts ...BudgetOption) *models.Budget {
	t.Helper()

	w := period.Compute(p, ref).Storable()
	budget := &models.Budget{
		UserID:         userID,
		Name:           name,
		Amount:         Amount(t, amount),
		Period:         p,
		BudgetType:     models.BudgetTypeOverall,
		StartDate:      w.Start,
		EndDate:        w.End,
		AlertThreshold: models.DefaultAlertThreshold,
		IsActive:       true,
	}
	if categoryID != "" {
		cid := categoryID
		budget.CategoryID = &cid
		budget.BudgetType = models.BudgetTypeCategory
	}
	for _, opt := range opts {
		opt(budget)
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}
