package handlers

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
	"fintrack/internal/validator"
)

const (
	testUserID = "0190a6d2-0000-7000-8000-000000000001"
	testID     = "0190a6d2-0000-7000-8000-0000000000aa"
)

var errTest = errors.New("connection reset by peer")

// --- mock services ---

type auditEntry struct {
	userID, action, resourceType, resourceID string
	changes                                  map[string]any
}

type mockAuditService struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (m *mockAuditService) Log(userID, action, resourceType, resourceID, _ string, changes map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, auditEntry{userID, action, resourceType, resourceID, changes})
}

func (m *mockAuditService) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.action)
	}
	return out
}

var _ services.AuditServicer = (*mockAuditService)(nil)

type mockBudgetService struct {
	createBudgetFn func(userID string, params services.CreateBudgetParams) (*models.Budget, error)
	listBudgetsFn  func(userID string, period models.BudgetPeriod) ([]services.BudgetWithSpending, error)
	getBudgetFn    func(userID, budgetID string) (*services.BudgetWithSpending, error)
	updateBudgetFn func(userID, budgetID string, params services.UpdateBudgetParams) (*models.Budget, error)
	deleteBudgetFn func(userID, budgetID string) error
	overviewFn     func(userID string, period models.BudgetPeriod) (*services.OverviewStats, error)
}

func (m *mockBudgetService) CreateBudget(userID string, params services.CreateBudgetParams) (*models.Budget, error) {
	if m.createBudgetFn != nil {
		return m.createBudgetFn(userID, params)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) ListBudgets(userID string, period models.BudgetPeriod) ([]services.BudgetWithSpending, error) {
	if m.listBudgetsFn != nil {
		return m.listBudgetsFn(userID, period)
	}
	return nil, nil
}

func (m *mockBudgetService) GetBudgetByID(userID, budgetID string) (*services.BudgetWithSpending, error) {
	if m.getBudgetFn != nil {
		return m.getBudgetFn(userID, budgetID)
	}
	return &services.BudgetWithSpending{}, nil
}

func (m *mockBudgetService) UpdateBudget(userID, budgetID string, params services.UpdateBudgetParams) (*models.Budget, error) {
	if m.updateBudgetFn != nil {
		return m.updateBudgetFn(userID, budgetID, params)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) DeleteBudget(userID, budgetID string) error {
	if m.deleteBudgetFn != nil {
		return m.deleteBudgetFn(userID, budgetID)
	}
	return nil
}

func (m *mockBudgetService) GetBudgetOverview(userID string, period models.BudgetPeriod) (*services.OverviewStats, error) {
	if m.overviewFn != nil {
		return m.overviewFn(userID, period)
	}
	return &services.OverviewStats{Period: period}, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

type mockCategoryService struct {
	createFn func(userID, name string, t models.CategoryType) (*models.Category, error)
	listFn   func(userID string, t *models.CategoryType) ([]models.Category, error)
	getFn    func(userID, id string) (*models.Category, error)
	updateFn func(userID, id string, name *string, t *models.CategoryType) (*models.Category, error)
	deleteFn func(userID, id string) error
}

func (m *mockCategoryService) CreateCategory(userID, name string, t models.CategoryType) (*models.Category, error) {
	if m.createFn != nil {
		return m.createFn(userID, name, t)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) ListCategories(userID string, t *models.CategoryType) ([]models.Category, error) {
	if m.listFn != nil {
		return m.listFn(userID, t)
	}
	return []models.Category{}, nil
}

func (m *mockCategoryService) GetCategoryByID(userID, id string) (*models.Category, error) {
	if m.getFn != nil {
		return m.getFn(userID, id)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) UpdateCategory(userID, id string, name *string, t *models.CategoryType) (*models.Category, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, id, name, t)
	}
	return &models.Category{}, nil
}

func (m *mockCategoryService) DeleteCategory(userID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, id)
	}
	return nil
}

var _ services.CategoryServicer = (*mockCategoryService)(nil)

type mockTransactionService struct {
	createFn func(userID string, params services.CreateTransactionParams) (*models.Transaction, error)
	listFn   func(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	getFn    func(userID, id string) (*models.Transaction, error)
	updateFn func(userID, id string, params services.UpdateTransactionParams) (*models.Transaction, error)
	deleteFn func(userID, id string) error
}

func (m *mockTransactionService) CreateTransaction(userID string, params services.CreateTransactionParams) (*models.Transaction, error) {
	if m.createFn != nil {
		return m.createFn(userID, params)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.listFn != nil {
		return m.listFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetTransactionByID(userID, id string) (*models.Transaction, error) {
	if m.getFn != nil {
		return m.getFn(userID, id)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(userID, id string, params services.UpdateTransactionParams) (*models.Transaction, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, id, params)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(userID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, id)
	}
	return nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

type mockAnalyticsService struct {
	overviewFn func(userID string) (*services.AnalyticsOverview, error)
	trendFn    func(userID string, months int) ([]services.MonthlyTrendPoint, error)
	byCatFn    func(userID string, from, to *time.Time) ([]services.CategoryExpense, error)
	recentFn   func(userID string, limit int) ([]models.Transaction, error)
	monthFn    func(userID string) (*services.MonthSummary, error)
}

func (m *mockAnalyticsService) GetOverview(userID string) (*services.AnalyticsOverview, error) {
	if m.overviewFn != nil {
		return m.overviewFn(userID)
	}
	return &services.AnalyticsOverview{}, nil
}

func (m *mockAnalyticsService) GetMonthlyTrend(userID string, months int) ([]services.MonthlyTrendPoint, error) {
	if m.trendFn != nil {
		return m.trendFn(userID, months)
	}
	return nil, nil
}

func (m *mockAnalyticsService) GetExpensesByCategory(userID string, from, to *time.Time) ([]services.CategoryExpense, error) {
	if m.byCatFn != nil {
		return m.byCatFn(userID, from, to)
	}
	return nil, nil
}

func (m *mockAnalyticsService) GetRecentTransactions(userID string, limit int) ([]models.Transaction, error) {
	if m.recentFn != nil {
		return m.recentFn(userID, limit)
	}
	return []models.Transaction{}, nil
}

func (m *mockAnalyticsService) GetCurrentMonthSummary(userID string) (*services.MonthSummary, error) {
	if m.monthFn != nil {
		return m.monthFn(userID)
	}
	return &services.MonthSummary{}, nil
}

var _ services.AnalyticsServicer = (*mockAnalyticsService)(nil)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
	logger.Replace(zap.NewNop())
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// dataField returns data[key] as an object.
func dataField(t *testing.T, result map[string]any, key string) map[string]any {
	t.Helper()
	data, ok := result["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object, got %v", result)
	}
	obj, ok := data[key].(map[string]any)
	if !ok {
		t.Fatalf("expected data.%s object, got %v", key, data)
	}
	return obj
}

func assertErrorCode(t *testing.T, result map[string]any, code string) {
	t.Helper()
	if result["success"] != false {
		t.Errorf("expected success=false, got %v", result["success"])
	}
	if result["code"] != code {
		t.Errorf("expected error code %q, got %q", code, result["code"])
	}
}
