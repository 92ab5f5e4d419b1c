package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"fintrack/internal/response"
	"fintrack/internal/services"
)

// AnalyticsHandler serves dashboard aggregates.
type AnalyticsHandler struct {
	analyticsService services.AnalyticsServicer
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService services.AnalyticsServicer) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

type trendQuery struct {
	Months int `form:"months" binding:"omitempty,min=1,max=120"`
}

type rangeQuery struct {
	FromDate string `form:"from_date"`
	ToDate   string `form:"to_date"`
}

type recentQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}

// GetOverview returns all-time income, expense and net balance.
// @Summary     Analytics overview
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} AnalyticsOverviewResponse
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/overview [get]
func (h *AnalyticsHandler) GetOverview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	overview, err := h.analyticsService.GetOverview(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	response.OK(c, http.StatusOK, "Overview data retrieved successfully", AnalyticsOverviewResponse{
		TotalIncome:  overview.TotalIncome.InexactFloat64(),
		TotalExpense: overview.TotalExpense.InexactFloat64(),
		NetBalance:   overview.NetBalance.InexactFloat64(),
	})
}

// GetMonthlyTrend returns income and expense per month, oldest first.
// @Summary     Monthly trend
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       months query int false "Limit to the most recent N months"
// @Success     200 {array}  MonthlyTrendResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/monthly-trend [get]
func (h *AnalyticsHandler) GetMonthlyTrend(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q trendQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	points, err := h.analyticsService.GetMonthlyTrend(userID, q.Months)
	if err != nil {
		respondWithError(c, err)
		return
	}

	trend := make([]MonthlyTrendResponse, 0, len(points))
	for _, p := range points {
		trend = append(trend, MonthlyTrendResponse{
			Month:   p.Month,
			Income:  p.Income.InexactFloat64(),
			Expense: p.Expense.InexactFloat64(),
		})
	}
	response.OK(c, http.StatusOK, "Monthly trend data retrieved successfully", gin.H{"monthly_trend": trend})
}

// GetExpensesByCategory returns the expense breakdown per category.
// @Summary     Expenses by category
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       from_date query string false "RFC3339 or YYYY-MM-DD"
// @Param       to_date   query string false "RFC3339 or YYYY-MM-DD"
// @Success     200 {array}  CategoryExpenseResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/expenses-by-category [get]
func (h *AnalyticsHandler) GetExpensesByCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q rangeQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	from, err := parseOptionalTime("from_date", &q.FromDate)
	if err != nil {
		respondWithError(c, err)
		return
	}
	to, err := parseOptionalTime("to_date", &q.ToDate)
	if err != nil {
		respondWithError(c, err)
		return
	}

	items, err := h.analyticsService.GetExpensesByCategory(userID, from, to)
	if err != nil {
		respondWithError(c, err)
		return
	}

	total := 0.0
	breakdown := make([]CategoryExpenseResponse, 0, len(items))
	for _, it := range items {
		spent := it.Total.InexactFloat64()
		total += spent
		breakdown = append(breakdown, CategoryExpenseResponse{
			CategoryID:       it.CategoryID,
			CategoryName:     it.CategoryName,
			TotalSpent:       spent,
			TransactionCount: it.Count,
			Percentage:       it.Percentage,
		})
	}
	response.OK(c, http.StatusOK, "Category expenses retrieved successfully", gin.H{
		"category_breakdown": breakdown,
		"total_expenses":     total,
	})
}

// GetRecentTransactions returns the newest transactions.
// @Summary     Recent transactions
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Param       limit query int false "Number of transactions (default 5, max 50)"
// @Success     200 {array}  TransactionResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/recent-transactions [get]
func (h *AnalyticsHandler) GetRecentTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q recentQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	txs, err := h.analyticsService.GetRecentTransactions(userID, q.Limit)
	if err != nil {
		respondWithError(c, err)
		return
	}

	response.OK(c, http.StatusOK, "Recent transactions retrieved successfully", gin.H{
		"recent_transactions": toTransactionResponses(txs),
	})
}

// GetCurrentMonthSummary returns the totals of the current month.
// @Summary     Current month summary
// @Tags        analytics
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} MonthSummaryResponse
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /analytics/current-month [get]
func (h *AnalyticsHandler) GetCurrentMonthSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	s, err := h.analyticsService.GetCurrentMonthSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	response.OK(c, http.StatusOK, "Current month summary retrieved successfully", gin.H{
		"current_month": MonthSummaryResponse{
			Month:             s.Month,
			Income:            s.Income.InexactFloat64(),
			Expense:           s.Expense.InexactFloat64(),
			Balance:           s.Balance.InexactFloat64(),
			IncomeCount:       s.IncomeCount,
			ExpenseCount:      s.ExpenseCount,
			TotalTransactions: s.IncomeCount + s.ExpenseCount,
		},
	})
}
