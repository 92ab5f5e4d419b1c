package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"fintrack/internal/clock"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/events"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/period"
)

// spendConcurrency bounds the number of spend queries in flight per request.
const spendConcurrency = 4

var hundred = decimal.NewFromInt(100)

// budgetService handles budget lifecycle and the budget-vs-spending engine.
type budgetService struct {
	db        *gorm.DB
	clock     clock.Clock
	publisher events.Publisher
}

// NewBudgetService creates a new BudgetServicer. A nil publisher disables events.
func NewBudgetService(db *gorm.DB, clk clock.Clock, publisher events.Publisher) BudgetServicer {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &budgetService{db: db, clock: clk, publisher: publisher}
}

// CreateBudget creates a budget for the period instance containing now.
func (s *budgetService) CreateBudget(userID string, params CreateBudgetParams) (*models.Budget, error) {
	params.Amount = models.RoundAmount(params.Amount)
	if !params.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than 0")
	}

	p := params.Period
	if p == "" {
		p = models.BudgetPeriodMonthly
	}
	if !period.Valid(p) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be weekly, monthly or yearly")
	}

	threshold := models.DefaultAlertThreshold
	if params.AlertThreshold != nil {
		threshold = *params.AlertThreshold
	}
	if err := validateThreshold(threshold); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(params.Name)
	hasCategory := params.CategoryID != nil && *params.CategoryID != ""
	if hasCategory == (name != "") {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "provide either a category or a name")
	}

	budget := &models.Budget{
		UserID:         userID,
		Name:           name,
		Amount:         params.Amount,
		Period:         p,
		AlertThreshold: threshold,
		IsActive:       true,
	}

	if hasCategory {
		category, err := findVisibleCategory(s.db, userID, *params.CategoryID)
		if err != nil {
			return nil, err
		}
		if category.Type != models.CategoryTypeExpense {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budgets can only track expense categories")
		}
		if params.BudgetType != "" && params.BudgetType != models.BudgetTypeCategory {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category budgets cannot use another budget type")
		}
		budget.CategoryID = &category.ID
		budget.BudgetType = models.BudgetTypeCategory
		budget.Category = category
	} else {
		switch params.BudgetType {
		case "", models.BudgetTypeOverall:
			budget.BudgetType = models.BudgetTypeOverall
		case models.BudgetTypeCustom:
			budget.BudgetType = models.BudgetTypeCustom
		default:
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget type must be overall or custom")
		}
	}

	w := period.Compute(p, s.clock.Now()).Storable()
	budget.StartDate = w.Start
	budget.EndDate = w.End

	if err := s.checkConflict(budget, ""); err != nil {
		return nil, err
	}

	if err := s.db.Omit("Category").Create(budget).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.publish(events.BudgetCreated, budget)
	return budget, nil
}

// ListBudgets returns the active budgets overlapping the current window of
// kind p, each with its spending status.
func (s *budgetService) ListBudgets(userID string, p models.BudgetPeriod) ([]BudgetWithSpending, error) {
	if !period.Valid(p) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be weekly, monthly or yearly")
	}
	w := period.Compute(p, s.clock.Now())
	return s.budgetsWithSpending(userID, w)
}

// GetBudgetByID returns a budget owned by the user with its spending status.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*BudgetWithSpending, error) {
	budget, err := s.findBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}
	totals, err := s.computeSpend(budget)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &BudgetWithSpending{
		Budget:      *budget,
		DisplayName: budget.DisplayName(),
		Spending:    ClassifySpend(budget.Amount, budget.AlertThreshold, totals),
	}, nil
}

// UpdateBudget applies a partial update. A period change moves the budget to
// the current window of the new period. Period changes, renames of named
// budgets and reactivation re-run the overlap check.
func (s *budgetService) UpdateBudget(userID, budgetID string, params UpdateBudgetParams) (*models.Budget, error) {
	budget, err := s.findBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	recheck := false

	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" && !budget.IsCategoryScoped() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required for budgets without a category")
		}
		if name != budget.Name {
			updates["name"] = name
			budget.Name = name
			recheck = recheck || !budget.IsCategoryScoped()
		}
	}

	if params.Amount != nil {
		amount := models.RoundAmount(*params.Amount)
		if !amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than 0")
		}
		updates["amount"] = amount
		budget.Amount = amount
	}

	if params.Period != nil && *params.Period != budget.Period {
		if !period.Valid(*params.Period) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be weekly, monthly or yearly")
		}
		w := period.Compute(*params.Period, s.clock.Now()).Storable()
		budget.Period = *params.Period
		budget.StartDate = w.Start
		budget.EndDate = w.End
		updates["period"] = budget.Period
		updates["start_date"] = w.Start
		updates["end_date"] = w.End
		recheck = true
	}

	if params.AlertThreshold != nil {
		if err := validateThreshold(*params.AlertThreshold); err != nil {
			return nil, err
		}
		updates["alert_threshold"] = *params.AlertThreshold
	}

	if params.IsActive != nil && *params.IsActive != budget.IsActive {
		updates["is_active"] = *params.IsActive
		recheck = recheck || *params.IsActive
		budget.IsActive = *params.IsActive
	}

	if len(updates) == 0 {
		return budget, nil
	}

	if recheck && budget.IsActive {
		if err := s.checkConflict(budget, budget.ID); err != nil {
			return nil, err
		}
	}

	if err := s.db.Model(&models.Budget{}).
		Where("id = ? AND user_id = ?", budgetID, userID).
		Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	updated, err := s.findBudget(userID, budgetID)
	if err != nil {
		return nil, err
	}
	s.publish(events.BudgetUpdated, updated)
	return updated, nil
}

// DeleteBudget permanently removes a budget owned by the user.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	result := s.db.Where("id = ? AND user_id = ?", budgetID, userID).Delete(&models.Budget{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrBudgetNotFound
	}

	s.publish(events.BudgetDeleted, &models.Budget{Base: models.Base{ID: budgetID}, UserID: userID})
	return nil
}

// GetBudgetOverview consolidates every active budget of the current window of kind p.
func (s *budgetService) GetBudgetOverview(userID string, p models.BudgetPeriod) (*OverviewStats, error) {
	if !period.Valid(p) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "period must be weekly, monthly or yearly")
	}
	return s.computeOverview(userID, p, s.clock.Now())
}

func (s *budgetService) computeOverview(userID string, p models.BudgetPeriod, ref time.Time) (*OverviewStats, error) {
	w := period.Compute(p, ref)
	items, err := s.budgetsWithSpending(userID, w)
	if err != nil {
		return nil, err
	}

	stats := &OverviewStats{
		Period:      p,
		WindowStart: w.Start,
		WindowEnd:   w.End,
		TotalBudget: decimal.Zero,
		BudgetCount: len(items),
	}
	for _, item := range items {
		stats.TotalBudget = stats.TotalBudget.Add(item.Budget.Amount)
		if item.Spending.IsOverBudget {
			stats.OverBudgetCount++
		}
		if item.Spending.ShouldAlert {
			stats.AlertCount++
		}
	}

	stats.TotalSpent = ConsolidateSpent(items)
	stats.RemainingBudget = stats.TotalBudget.Sub(stats.TotalSpent)
	if stats.TotalBudget.IsPositive() {
		stats.OverallPercentage = stats.TotalSpent.Div(stats.TotalBudget).Mul(hundred).Round(2).InexactFloat64()
	}
	return stats, nil
}

// budgetsWithSpending selects the active budgets overlapping w and computes
// their spend concurrently. Results keep selection order.
func (s *budgetService) budgetsWithSpending(userID string, w period.Window) ([]BudgetWithSpending, error) {
	budgets, err := s.selectActiveBudgets(userID, w)
	if err != nil {
		return nil, err
	}

	totals := make([]SpendTotals, len(budgets))
	var g errgroup.Group
	g.SetLimit(spendConcurrency)
	for i := range budgets {
		i := i
		g.Go(func() error {
			t, err := s.computeSpend(&budgets[i])
			if err != nil {
				return err
			}
			totals[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	items := make([]BudgetWithSpending, len(budgets))
	for i := range budgets {
		items[i] = BudgetWithSpending{
			Budget:      budgets[i],
			DisplayName: budgets[i].DisplayName(),
			Spending:    ClassifySpend(budgets[i].Amount, budgets[i].AlertThreshold, totals[i]),
		}
	}
	return items, nil
}

// selectActiveBudgets returns active budgets of the user whose stored window
// overlaps w, regardless of their own period kind.
func (s *budgetService) selectActiveBudgets(userID string, w period.Window) ([]models.Budget, error) {
	w = w.Storable()
	var budgets []models.Budget
	if err := s.db.Preload("Category").
		Where("user_id = ? AND is_active = ? AND start_date <= ? AND end_date >= ?", userID, true, w.End, w.Start).
		Order("created_at ASC, id ASC").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// computeSpend sums the expense transactions counted against b inside its
// own stored window. Category budgets only count their category.
func (s *budgetService) computeSpend(b *models.Budget) (SpendTotals, error) {
	var row struct {
		TotalSpent       decimal.Decimal
		TransactionCount int64
	}

	q := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0) AS total_spent, COUNT(*) AS transaction_count").
		Where("user_id = ? AND type = ? AND date BETWEEN ? AND ?",
			b.UserID, models.TransactionTypeExpense, b.StartDate.UTC(), b.EndDate.UTC())
	if b.IsCategoryScoped() {
		q = q.Where("category_id = ?", *b.CategoryID)
	}
	if err := q.Scan(&row).Error; err != nil {
		return SpendTotals{}, err
	}
	return SpendTotals{TotalSpent: models.RoundAmount(row.TotalSpent), TransactionCount: row.TransactionCount}, nil
}

// checkConflict rejects b when another active budget of the same user,
// period kind and scope overlaps its window. excludeID skips b itself on update.
func (s *budgetService) checkConflict(b *models.Budget, excludeID string) error {
	q := s.db.Model(&models.Budget{}).
		Where("user_id = ? AND is_active = ? AND period = ? AND start_date <= ? AND end_date >= ?",
			b.UserID, true, b.Period, b.EndDate, b.StartDate)
	if b.IsCategoryScoped() {
		q = q.Where("category_id = ?", *b.CategoryID)
	} else {
		q = q.Where("category_id IS NULL AND name = ?", b.Name)
	}
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrBudgetConflict
	}
	return nil
}

func (s *budgetService) findBudget(userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Preload("Category").Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

func (s *budgetService) publish(t events.Type, b *models.Budget) {
	e := events.Event{
		Type:       t,
		UserID:     b.UserID,
		BudgetID:   b.ID,
		Period:     string(b.Period),
		OccurredAt: s.clock.Now().UTC(),
	}
	if !b.Amount.IsZero() {
		e.Amount = b.Amount.StringFixed(2)
	}
	if err := s.publisher.Publish(context.Background(), e); err != nil {
		logger.Get().Warnw("failed to publish budget event", "error", err, "type", t, "budget_id", b.ID)
	}
}

func validateThreshold(v float64) error {
	if v < 0 || v > 100 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "alert threshold must be between 0 and 100")
	}
	return nil
}

// ClassifySpend derives the spending status of a budget of the given amount
// and alert threshold. The alert decision uses the unrounded percentage.
func ClassifySpend(amount decimal.Decimal, alertThreshold float64, totals SpendTotals) SpendStatus {
	raw := decimal.Zero
	if amount.IsPositive() {
		raw = totals.TotalSpent.Div(amount).Mul(hundred)
	}
	return SpendStatus{
		TotalSpent:       totals.TotalSpent,
		TransactionCount: totals.TransactionCount,
		Remaining:        amount.Sub(totals.TotalSpent),
		Percentage:       raw.Round(2).InexactFloat64(),
		IsOverBudget:     totals.TotalSpent.GreaterThan(amount),
		ShouldAlert:      raw.GreaterThanOrEqual(decimal.NewFromFloat(alertThreshold)),
	}
}

// ConsolidateSpent is the double-count policy for an overview: category
// budgets partition spending and are summed, while overall and custom budgets
// each already cover all spending, so only the largest counts. The result is
// the larger of the two and does not depend on item order.
func ConsolidateSpent(items []BudgetWithSpending) decimal.Decimal {
	categorySum := decimal.Zero
	otherMax := decimal.Zero
	for _, item := range items {
		spent := item.Spending.TotalSpent
		if item.Budget.IsCategoryScoped() {
			categorySum = categorySum.Add(spent)
			continue
		}
		if spent.GreaterThan(otherMax) {
			otherMax = spent
		}
	}
	return decimal.Max(categorySum, otherMax)
}
