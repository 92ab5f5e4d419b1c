package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fintrack/internal/clock"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/period"
)

const (
	defaultRecentLimit = 5
	maxRecentLimit     = 50
	unknownCategory    = "Unknown"
)

// analyticsService aggregates transactions for dashboards.
type analyticsService struct {
	db    *gorm.DB
	clock clock.Clock
}

// NewAnalyticsService creates a new AnalyticsServicer.
func NewAnalyticsService(db *gorm.DB, clk clock.Clock) AnalyticsServicer {
	return &analyticsService{db: db, clock: clk}
}

type typeTotal struct {
	Type  models.TransactionType
	Total decimal.Decimal
	Count int64
}

func (s *analyticsService) totalsByType(q *gorm.DB) (income, expense typeTotal, err error) {
	var rows []typeTotal
	if err = q.Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count").
		Group("type").
		Scan(&rows).Error; err != nil {
		return
	}
	income.Total, expense.Total = decimal.Zero, decimal.Zero
	for _, r := range rows {
		r.Total = models.RoundAmount(r.Total)
		switch r.Type {
		case models.TransactionTypeIncome:
			income = r
		case models.TransactionTypeExpense:
			expense = r
		}
	}
	return
}

// GetOverview returns all-time income, expense and their difference.
func (s *analyticsService) GetOverview(userID string) (*AnalyticsOverview, error) {
	income, expense, err := s.totalsByType(s.db.Where("user_id = ?", userID))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &AnalyticsOverview{
		TotalIncome:  income.Total,
		TotalExpense: expense.Total,
		NetBalance:   income.Total.Sub(expense.Total),
	}, nil
}

// GetMonthlyTrend buckets income and expense per calendar month in the
// clock's location, oldest first. months > 0 limits the trend to the most
// recent months including the current one.
func (s *analyticsService) GetMonthlyTrend(userID string, months int) ([]MonthlyTrendPoint, error) {
	now := s.clock.Now()
	q := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	if months > 0 {
		start := period.Compute(models.BudgetPeriodMonthly, now).Start.AddDate(0, -(months - 1), 0)
		q = q.Where("date >= ?", start.UTC())
	}

	var rows []struct {
		Type   models.TransactionType
		Amount decimal.Decimal
		Date   time.Time
	}
	if err := q.Select("type, amount, date").Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	loc := now.Location()
	buckets := make(map[string]*MonthlyTrendPoint)
	for _, r := range rows {
		key := r.Date.In(loc).Format("2006-01")
		point, ok := buckets[key]
		if !ok {
			point = &MonthlyTrendPoint{Month: key, Income: decimal.Zero, Expense: decimal.Zero}
			buckets[key] = point
		}
		if r.Type == models.TransactionTypeIncome {
			point.Income = point.Income.Add(r.Amount)
		} else {
			point.Expense = point.Expense.Add(r.Amount)
		}
	}

	trend := make([]MonthlyTrendPoint, 0, len(buckets))
	for _, p := range buckets {
		trend = append(trend, *p)
	}
	sort.Slice(trend, func(i, j int) bool { return trend[i].Month < trend[j].Month })
	return trend, nil
}

// GetExpensesByCategory totals expenses per category, highest first, with
// each category's share of all expenses to one decimal place.
func (s *analyticsService) GetExpensesByCategory(userID string, from, to *time.Time) ([]CategoryExpense, error) {
	q := s.db.Table("transactions AS t").
		Select("t.category_id AS category_id, c.name AS category_name, COALESCE(SUM(t.amount), 0) AS total, COUNT(*) AS count").
		Joins("LEFT JOIN categories AS c ON c.id = t.category_id").
		Where("t.user_id = ? AND t.type = ?", userID, models.TransactionTypeExpense)
	if from != nil {
		q = q.Where("t.date >= ?", from.UTC())
	}
	if to != nil {
		q = q.Where("t.date <= ?", to.UTC())
	}

	var rows []struct {
		CategoryID   string
		CategoryName *string
		Total        decimal.Decimal
		Count        int64
	}
	if err := q.Group("t.category_id, c.name").Order("total DESC").Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	grand := decimal.Zero
	for i := range rows {
		rows[i].Total = models.RoundAmount(rows[i].Total)
		grand = grand.Add(rows[i].Total)
	}

	result := make([]CategoryExpense, 0, len(rows))
	for _, r := range rows {
		item := CategoryExpense{
			CategoryID:   r.CategoryID,
			CategoryName: unknownCategory,
			Total:        r.Total,
			Count:        r.Count,
		}
		if r.CategoryName != nil && *r.CategoryName != "" {
			item.CategoryName = *r.CategoryName
		}
		if grand.IsPositive() {
			item.Percentage = r.Total.Div(grand).Mul(hundred).Round(1).InexactFloat64()
		}
		result = append(result, item)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Total.GreaterThan(result[j].Total) })
	return result, nil
}

// GetRecentTransactions returns the user's newest transactions.
func (s *analyticsService) GetRecentTransactions(userID string, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	var transactions []models.Transaction
	if err := s.db.Preload("Category").
		Where("user_id = ?", userID).
		Order("date DESC, id DESC").
		Limit(limit).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	return transactions, nil
}

// GetCurrentMonthSummary totals the calendar month containing now.
func (s *analyticsService) GetCurrentMonthSummary(userID string) (*MonthSummary, error) {
	now := s.clock.Now()
	w := period.Compute(models.BudgetPeriodMonthly, now).Storable()

	income, expense, err := s.totalsByType(
		s.db.Where("user_id = ? AND date BETWEEN ? AND ?", userID, w.Start, w.End),
	)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &MonthSummary{
		Month:        now.Format("January 2006"),
		Income:       income.Total,
		Expense:      expense.Total,
		Balance:      income.Total.Sub(expense.Total),
		IncomeCount:  income.Count,
		ExpenseCount: expense.Count,
	}, nil
}
