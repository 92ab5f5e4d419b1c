package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/clock"
	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 10, 0, 0, 0, time.UTC)
}

func TestAnalyticsOverview(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAnalyticsService(db, clock.NewFixed(testutil.RefTime))
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	salary := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)
	food := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

	t.Run("empty", func(t *testing.T) {
		overview, err := svc.GetOverview(user.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "income", overview.TotalIncome, "0")
		testutil.AssertDecimal(t, "expense", overview.TotalExpense, "0")
		testutil.AssertDecimal(t, "balance", overview.NetBalance, "0")
	})

	testutil.CreateTestTransaction(t, db, user.ID, salary.ID, models.TransactionTypeIncome, "1000", day(time.January, 5))
	testutil.CreateTestExpense(t, db, user.ID, food.ID, "250.5", day(time.January, 6))
	testutil.CreateTestExpense(t, db, user.ID, food.ID, "49.5", day(time.March, 1))
	testutil.CreateTestExpense(t, db, other.ID, food.ID, "999", day(time.March, 1))

	t.Run("totals", func(t *testing.T) {
		overview, err := svc.GetOverview(user.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "income", overview.TotalIncome, "1000")
		testutil.AssertDecimal(t, "expense", overview.TotalExpense, "300")
		testutil.AssertDecimal(t, "balance", overview.NetBalance, "700")
	})

	t.Run("cent_sums_are_exact", func(t *testing.T) {
		cents := testutil.CreateTestUser(t, db)
		snacks := testutil.CreateTestCategory(t, db, cents.ID, models.CategoryTypeExpense)
		testutil.CreateTestExpense(t, db, cents.ID, snacks.ID, "0.1", day(time.March, 2))
		testutil.CreateTestExpense(t, db, cents.ID, snacks.ID, "0.2", day(time.March, 3))

		overview, err := svc.GetOverview(cents.ID)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "expense", overview.TotalExpense, "0.3")

		breakdown, err := svc.GetExpensesByCategory(cents.ID, nil, nil)
		testutil.AssertNoError(t, err)
		if len(breakdown) != 1 {
			t.Fatalf("expected 1 category, got %d", len(breakdown))
		}
		testutil.AssertDecimal(t, "category total", breakdown[0].Total, "0.3")
	})
}

func TestAnalyticsMonthlyTrend(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAnalyticsService(db, clock.NewFixed(testutil.RefTime))
	user := testutil.CreateTestUser(t, db)
	salary := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)
	food := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

	testutil.CreateTestTransaction(t, db, user.ID, salary.ID, models.TransactionTypeIncome, "1000", day(time.January, 10))
	testutil.CreateTestExpense(t, db, user.ID, food.ID, "200", day(time.January, 20))
	testutil.CreateTestExpense(t, db, user.ID, food.ID, "50", day(time.March, 1))
	testutil.CreateTestExpense(t, db, user.ID, food.ID, "25", day(time.March, 2))

	t.Run("all_months_ascending", func(t *testing.T) {
		trend, err := svc.GetMonthlyTrend(user.ID, 0)
		testutil.AssertNoError(t, err)

		if len(trend) != 2 {
			t.Fatalf("expected 2 months, got %d: %+v", len(trend), trend)
		}
		if trend[0].Month != "2024-01" || trend[1].Month != "2024-03" {
			t.Errorf("unexpected months %s, %s", trend[0].Month, trend[1].Month)
		}
		testutil.AssertDecimal(t, "january income", trend[0].Income, "1000")
		testutil.AssertDecimal(t, "january expense", trend[0].Expense, "200")
		testutil.AssertDecimal(t, "march income", trend[1].Income, "0")
		testutil.AssertDecimal(t, "march expense", trend[1].Expense, "75")
	})

	t.Run("limited", func(t *testing.T) {
		trend, err := svc.GetMonthlyTrend(user.ID, 2)
		testutil.AssertNoError(t, err)
		if len(trend) != 1 || trend[0].Month != "2024-03" {
			t.Errorf("expected only 2024-03, got %+v", trend)
		}
	})
}

func TestAnalyticsExpensesByCategory(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAnalyticsService(db, clock.NewFixed(testutil.RefTime))
	user := testutil.CreateTestUser(t, db)
	food := testutil.CreateTestCategoryNamed(t, db, user.ID, "Food", models.CategoryTypeExpense)
	rent := testutil.CreateTestCategoryNamed(t, db, user.ID, "Rent", models.CategoryTypeExpense)
	salary := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)

	testutil.CreateTestExpense(t, db, user.ID, rent.ID, "100", day(time.February, 1))
	testutil.CreateTestExpense(t, db, user.ID, food.ID, "25", day(time.March, 1))
	testutil.CreateTestExpense(t, db, user.ID, food.ID, "25", day(time.March, 2))
	testutil.CreateTestTransaction(t, db, user.ID, salary.ID, models.TransactionTypeIncome, "5000", day(time.March, 1))

	t.Run("highest_first_with_share", func(t *testing.T) {
		items, err := svc.GetExpensesByCategory(user.ID, nil, nil)
		testutil.AssertNoError(t, err)

		if len(items) != 2 {
			t.Fatalf("expected 2 categories, got %d", len(items))
		}
		if items[0].CategoryName != "Rent" || items[1].CategoryName != "Food" {
			t.Errorf("unexpected order %s, %s", items[0].CategoryName, items[1].CategoryName)
		}
		if items[0].Percentage != 66.7 || items[1].Percentage != 33.3 {
			t.Errorf("expected 66.7/33.3, got %v/%v", items[0].Percentage, items[1].Percentage)
		}
		if items[1].Count != 2 {
			t.Errorf("expected 2 food transactions, got %d", items[1].Count)
		}
		testutil.AssertDecimal(t, "food total", items[1].Total, "50")
	})

	t.Run("date_range", func(t *testing.T) {
		from := day(time.March, 1).Add(-time.Hour)
		items, err := svc.GetExpensesByCategory(user.ID, &from, nil)
		testutil.AssertNoError(t, err)
		if len(items) != 1 || items[0].CategoryID != food.ID || items[0].Percentage != 100 {
			t.Errorf("expected only food at 100%%, got %+v", items)
		}
	})

	t.Run("unknown_category", func(t *testing.T) {
		testutil.CreateTestExpense(t, db, user.ID, uuid.NewString(), "1", day(time.March, 3))
		items, err := svc.GetExpensesByCategory(user.ID, nil, nil)
		testutil.AssertNoError(t, err)

		last := items[len(items)-1]
		if last.CategoryName != "Unknown" {
			t.Errorf("expected Unknown category last, got %+v", last)
		}
	})
}

func TestAnalyticsRecentTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAnalyticsService(db, clock.NewFixed(testutil.RefTime))
	user := testutil.CreateTestUser(t, db)
	food := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

	for d := 1; d <= 7; d++ {
		testutil.CreateTestExpense(t, db, user.ID, food.ID, "1", day(time.March, d))
	}

	t.Run("default_limit", func(t *testing.T) {
		recent, err := svc.GetRecentTransactions(user.ID, 0)
		testutil.AssertNoError(t, err)
		if len(recent) != 5 {
			t.Fatalf("expected 5 transactions, got %d", len(recent))
		}
		if !recent[0].Date.Equal(day(time.March, 7)) {
			t.Errorf("expected newest first, got %v", recent[0].Date)
		}
		if recent[0].Category == nil {
			t.Error("expected category to be preloaded")
		}
	})

	t.Run("explicit_limit", func(t *testing.T) {
		recent, err := svc.GetRecentTransactions(user.ID, 2)
		testutil.AssertNoError(t, err)
		if len(recent) != 2 {
			t.Errorf("expected 2 transactions, got %d", len(recent))
		}
	})

	t.Run("no_transactions", func(t *testing.T) {
		other := testutil.CreateTestUser(t, db)
		recent, err := svc.GetRecentTransactions(other.ID, 5)
		testutil.AssertNoError(t, err)
		if recent == nil || len(recent) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", recent)
		}
	})
}

func TestAnalyticsCurrentMonthSummary(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAnalyticsService(db, clock.NewFixed(testutil.RefTime))
	user := testutil.CreateTestUser(t, db)
	salary := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeIncome)
	food := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)

	testutil.CreateTestTransaction(t, db, user.ID, salary.ID, models.TransactionTypeIncome, "500", day(time.March, 2))
	testutil.CreateTestExpense(t, db, user.ID, food.ID, "50", day(time.March, 1))
	testutil.CreateTestExpense(t, db, user.ID, food.ID, "25", day(time.March, 14))
	testutil.CreateTestExpense(t, db, user.ID, food.ID, "80", day(time.February, 29))
	testutil.CreateTestExpense(t, db, user.ID, food.ID, "80", day(time.April, 1))

	summary, err := svc.GetCurrentMonthSummary(user.ID)
	testutil.AssertNoError(t, err)

	if summary.Month != "March 2024" {
		t.Errorf("expected March 2024, got %q", summary.Month)
	}
	testutil.AssertDecimal(t, "income", summary.Income, "500")
	testutil.AssertDecimal(t, "expense", summary.Expense, "75")
	testutil.AssertDecimal(t, "balance", summary.Balance, "425")
	if summary.IncomeCount != 1 || summary.ExpenseCount != 2 {
		t.Errorf("expected counts 1/2, got %d/%d", summary.IncomeCount, summary.ExpenseCount)
	}
}
