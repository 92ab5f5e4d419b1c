package testutil_test

import (
	"testing"

	"fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{"users", "categories", "transactions", "budgets", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDBIsolated(t *testing.T) {
	db1 := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db1)
	db2 := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db2)

	testutil.CreateTestUser(t, db1)

	var count int64
	if err := db2.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("expected empty second database, found %d users", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	user := testutil.CreateTestUser(t, db)
	if user.ID == "" {
		t.Fatal("user should have an ID")
	}

	category := testutil.CreateTestCategory(t, db, user.ID, models.CategoryTypeExpense)
	if category.UserID == nil || *category.UserID != user.ID {
		t.Error("category should be owned by the user")
	}

	shared := testutil.CreateSharedCategory(t, db, "Food", models.CategoryTypeExpense)
	if _, ok := shared.Owner().(models.Shared); !ok {
		t.Error("shared category should have Shared ownership")
	}

	tx := testutil.CreateTestExpense(t, db, user.ID, category.ID, "12.50", testutil.RefTime)
	testutil.AssertDecimal(t, "amount", tx.Amount, "12.5")

	budget := testutil.CreateTestBudget(t, db, user.ID, category.ID, "", "100", models.BudgetPeriodMonthly, testutil.RefTime)
	if budget.BudgetType != models.BudgetTypeCategory || !budget.IsActive {
		t.Errorf("unexpected budget %+v", budget)
	}

	inactive := testutil.CreateTestBudget(t, db, user.ID, "", "Overall", "100", models.BudgetPeriodMonthly, testutil.RefTime, testutil.Inactive())
	var stored struct{ IsActive bool }
	if err := db.Model(&models.Budget{}).Select("is_active").Where("id = ?", inactive.ID).Scan(&stored).Error; err != nil {
		t.Fatal(err)
	}
	if stored.IsActive {
		t.Error("inactive budget should persist is_active = false")
	}
}

func TestAssertAppError(t *testing.T) {
	err := errors.WithMessage(errors.ErrBudgetNotFound, "custom message")
	testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
}

func TestAssertNoError(t *testing.T) {
	testutil.AssertNoError(t, nil)
}
