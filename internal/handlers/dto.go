package handlers

import (
	"time"

	"fintrack/internal/models"
	"fintrack/internal/services"
)

// CategoryResponse is the API view of a category.
type CategoryResponse struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Type      models.CategoryType `json:"type"`
	IsDefault bool                `json:"is_default"`
}

func toCategoryResponse(c *models.Category) CategoryResponse {
	_, shared := c.Owner().(models.Shared)
	return CategoryResponse{ID: c.ID, Name: c.Name, Type: c.Type, IsDefault: shared}
}

// TransactionResponse is the API view of a transaction.
type TransactionResponse struct {
	ID          string                 `json:"id"`
	CategoryID  string                 `json:"category_id"`
	Category    *CategoryResponse      `json:"category,omitempty"`
	Type        models.TransactionType `json:"type"`
	Amount      float64                `json:"amount"`
	Date        time.Time              `json:"date"`
	Note        string                 `json:"note,omitempty"`
	Description string                 `json:"description,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

func toTransactionResponse(t *models.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          t.ID,
		CategoryID:  t.CategoryID,
		Type:        t.Type,
		Amount:      t.Amount.InexactFloat64(),
		Date:        t.Date,
		Note:        t.Note,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
	if t.Category != nil {
		cat := toCategoryResponse(t.Category)
		resp.Category = &cat
	}
	return resp
}

func toTransactionResponses(items []models.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(items))
	for i := range items {
		out = append(out, toTransactionResponse(&items[i]))
	}
	return out
}

// SpendingResponse is the derived spending block of a budget.
type SpendingResponse struct {
	TotalSpent       float64 `json:"total_spent"`
	TransactionCount int64   `json:"transaction_count"`
	Remaining        float64 `json:"remaining"`
	Percentage       float64 `json:"percentage"`
	IsOverBudget     bool    `json:"is_over_budget"`
	ShouldAlert      bool    `json:"should_alert"`
}

// BudgetResponse is the API view of a budget, with spending when computed.
type BudgetResponse struct {
	ID             string              `json:"id"`
	CategoryID     *string             `json:"category_id,omitempty"`
	Category       *CategoryResponse   `json:"category,omitempty"`
	Name           string              `json:"name,omitempty"`
	DisplayName    string              `json:"display_name"`
	Amount         float64             `json:"amount"`
	Period         models.BudgetPeriod `json:"period"`
	BudgetType     models.BudgetType   `json:"budget_type"`
	StartDate      time.Time           `json:"start_date"`
	EndDate        time.Time           `json:"end_date"`
	AlertThreshold float64             `json:"alert_threshold"`
	IsActive       bool                `json:"is_active"`
	Spending       *SpendingResponse   `json:"spending,omitempty"`
}

func toBudgetResponse(b *models.Budget) BudgetResponse {
	resp := BudgetResponse{
		ID:             b.ID,
		CategoryID:     b.CategoryID,
		Name:           b.Name,
		DisplayName:    b.DisplayName(),
		Amount:         b.Amount.InexactFloat64(),
		Period:         b.Period,
		BudgetType:     b.BudgetType,
		StartDate:      b.StartDate,
		EndDate:        b.EndDate,
		AlertThreshold: b.AlertThreshold,
		IsActive:       b.IsActive,
	}
	if b.Category != nil {
		cat := toCategoryResponse(b.Category)
		resp.Category = &cat
	}
	return resp
}

func toBudgetWithSpendingResponse(b *services.BudgetWithSpending) BudgetResponse {
	resp := toBudgetResponse(&b.Budget)
	resp.DisplayName = b.DisplayName
	s := b.Spending
	resp.Spending = &SpendingResponse{
		TotalSpent:       s.TotalSpent.InexactFloat64(),
		TransactionCount: s.TransactionCount,
		Remaining:        s.Remaining.InexactFloat64(),
		Percentage:       s.Percentage,
		IsOverBudget:     s.IsOverBudget,
		ShouldAlert:      s.ShouldAlert,
	}
	return resp
}

// OverviewResponse is the consolidated budget snapshot of one period window.
type OverviewResponse struct {
	Period            models.BudgetPeriod `json:"period"`
	WindowStart       time.Time           `json:"window_start"`
	WindowEnd         time.Time           `json:"window_end"`
	TotalBudget       float64             `json:"total_budget"`
	TotalSpent        float64             `json:"total_spent"`
	RemainingBudget   float64             `json:"remaining_budget"`
	OverallPercentage float64             `json:"overall_percentage"`
	BudgetCount       int                 `json:"budget_count"`
	OverBudgetCount   int                 `json:"over_budget_count"`
	AlertCount        int                 `json:"alert_count"`
}

func toOverviewResponse(s *services.OverviewStats) OverviewResponse {
	return OverviewResponse{
		Period:            s.Period,
		WindowStart:       s.WindowStart,
		WindowEnd:         s.WindowEnd,
		TotalBudget:       s.TotalBudget.InexactFloat64(),
		TotalSpent:        s.TotalSpent.InexactFloat64(),
		RemainingBudget:   s.RemainingBudget.InexactFloat64(),
		OverallPercentage: s.OverallPercentage,
		BudgetCount:       s.BudgetCount,
		OverBudgetCount:   s.OverBudgetCount,
		AlertCount:        s.AlertCount,
	}
}

// AnalyticsOverviewResponse holds all-time totals.
type AnalyticsOverviewResponse struct {
	TotalIncome  float64 `json:"total_income"`
	TotalExpense float64 `json:"total_expense"`
	NetBalance   float64 `json:"net_balance"`
}

// MonthlyTrendResponse is one month of the income/expense trend.
type MonthlyTrendResponse struct {
	Month   string  `json:"month"`
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
}

// CategoryExpenseResponse is one slice of the expense breakdown.
type CategoryExpenseResponse struct {
	CategoryID       string  `json:"category_id"`
	CategoryName     string  `json:"category_name"`
	TotalSpent       float64 `json:"total_spent"`
	TransactionCount int64   `json:"transaction_count"`
	Percentage       float64 `json:"percentage"`
}

// MonthSummaryResponse holds the totals of the current month.
type MonthSummaryResponse struct {
	Month             string  `json:"month"`
	Income            float64 `json:"income"`
	Expense           float64 `json:"expense"`
	Balance           float64 `json:"balance"`
	IncomeCount       int64   `json:"income_count"`
	ExpenseCount      int64   `json:"expense_count"`
	TotalTransactions int64   `json:"total_transactions"`
}
