package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fintrack/internal/clock"
	"fintrack/internal/events"
	"fintrack/internal/logger"
	"fintrack/internal/middleware"
	"fintrack/internal/models"
	"fintrack/internal/testutil"
	"fintrack/internal/validator"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testSecret = "router-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
	logger.Replace(zap.NewNop())
}

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (a *apiClient) do(method, path string, body any) (int, map[string]any) {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			a.t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			a.t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
		}
	}
	return w.Code, out
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	if !ok {
		t.Fatalf("response has no data object: %v", body)
	}
	return d
}

func setup(t *testing.T, deps Dependencies) (*apiClient, *events.Recorder) {
	t.Helper()
	api, recorder, _ := setupWithDB(t, deps)
	return api, recorder
}

func setupWithDB(t *testing.T, deps Dependencies) (*apiClient, *events.Recorder, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	user := testutil.CreateTestUser(t, db)
	token, err := middleware.GenerateAccessToken(testSecret, user.ID, user.Email, time.Hour)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}

	recorder := &events.Recorder{}
	deps.DB = db
	deps.Clock = clock.NewFixed(testutil.RefTime)
	deps.Publisher = recorder
	deps.JWTSecret = testSecret

	return &apiClient{t: t, router: NewRouter(deps), token: token}, recorder, db
}

func TestHealth(t *testing.T) {
	api, _ := setup(t, Dependencies{})
	api.token = ""

	code, body := api.do(http.MethodGet, "/api/health", nil)
	if code != http.StatusOK || body["status"] != "ok" {
		t.Errorf("expected healthy response, got %d %v", code, body)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api, _ := setup(t, Dependencies{})
	api.token = ""

	for _, path := range []string{"/api/v1/budgets", "/api/v1/categories", "/api/v1/transactions", "/api/v1/analytics/overview"} {
		code, body := api.do(http.MethodGet, path, nil)
		if code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, code)
		}
		if body["code"] != "UNAUTHORIZED" {
			t.Errorf("%s: expected UNAUTHORIZED, got %v", path, body["code"])
		}
	}
}

func TestBudgetFlow(t *testing.T) {
	api, recorder := setup(t, Dependencies{})

	code, body := api.do(http.MethodPost, "/api/v1/categories", map[string]any{"name": "Groceries", "type": "expense"})
	if code != http.StatusCreated {
		t.Fatalf("create category: expected 201, got %d %v", code, body)
	}
	groceries := data(t, body)["category"].(map[string]any)["id"].(string)

	code, body = api.do(http.MethodPost, "/api/v1/categories", map[string]any{"name": "Utilities", "type": "expense"})
	if code != http.StatusCreated {
		t.Fatalf("create category: expected 201, got %d %v", code, body)
	}
	utilities := data(t, body)["category"].(map[string]any)["id"].(string)

	code, body = api.do(http.MethodPost, "/api/v1/budgets", map[string]any{"category_id": groceries, "amount": 200})
	if code != http.StatusCreated {
		t.Fatalf("create category budget: expected 201, got %d %v", code, body)
	}
	budgetID := data(t, body)["budget"].(map[string]any)["id"].(string)

	code, body = api.do(http.MethodPost, "/api/v1/budgets", map[string]any{"name": "Everything", "amount": 500})
	if code != http.StatusCreated {
		t.Fatalf("create overall budget: expected 201, got %d %v", code, body)
	}

	code, body = api.do(http.MethodPost, "/api/v1/budgets", map[string]any{"category_id": groceries, "amount": 300})
	if code != http.StatusConflict || body["code"] != "BUDGET_CONFLICT" {
		t.Fatalf("duplicate budget: expected 409 BUDGET_CONFLICT, got %d %v", code, body)
	}

	for _, tx := range []map[string]any{
		{"category_id": groceries, "amount": 150, "date": "2024-03-10"},
		{"category_id": utilities, "amount": 250, "date": "2024-03-12"},
		{"category_id": utilities, "amount": 75, "date": "2024-02-20"},
	} {
		code, body = api.do(http.MethodPost, "/api/v1/transactions", tx)
		if code != http.StatusCreated {
			t.Fatalf("create transaction: expected 201, got %d %v", code, body)
		}
	}

	t.Run("overview avoids double counting", func(t *testing.T) {
		code, body := api.do(http.MethodGet, "/api/v1/budgets/overview?period=monthly", nil)
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d %v", code, body)
		}
		overview := data(t, body)
		if overview["total_budget"] != 700.0 {
			t.Errorf("expected total_budget 700, got %v", overview["total_budget"])
		}
		if overview["total_spent"] != 400.0 {
			t.Errorf("expected total_spent 400, got %v", overview["total_spent"])
		}
		if overview["budget_count"] != 2.0 {
			t.Errorf("expected budget_count 2, got %v", overview["budget_count"])
		}
	})

	t.Run("list carries spending", func(t *testing.T) {
		code, body := api.do(http.MethodGet, "/api/v1/budgets", nil)
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d %v", code, body)
		}
		budgets := data(t, body)["budgets"].([]any)
		if len(budgets) != 2 {
			t.Fatalf("expected 2 budgets, got %d", len(budgets))
		}
		for _, raw := range budgets {
			b := raw.(map[string]any)
			spent := b["spending"].(map[string]any)["total_spent"]
			switch b["display_name"] {
			case "Groceries":
				if spent != 150.0 {
					t.Errorf("expected Groceries spend 150, got %v", spent)
				}
			case "Everything":
				if spent != 400.0 {
					t.Errorf("expected overall spend 400, got %v", spent)
				}
			default:
				t.Errorf("unexpected budget %v", b["display_name"])
			}
		}
	})

	t.Run("analytics reflect transactions", func(t *testing.T) {
		code, body := api.do(http.MethodGet, "/api/v1/analytics/overview", nil)
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d %v", code, body)
		}
		if got := data(t, body)["total_expense"]; got != 475.0 {
			t.Errorf("expected total_expense 475, got %v", got)
		}

		code, body = api.do(http.MethodGet, "/api/v1/analytics/current-month", nil)
		if code != http.StatusOK {
			t.Fatalf("expected 200, got %d %v", code, body)
		}
		month := data(t, body)["current_month"].(map[string]any)
		if month["expense"] != 400.0 {
			t.Errorf("expected current month expense 400, got %v", month["expense"])
		}
	})

	t.Run("category in use cannot be deleted", func(t *testing.T) {
		code, body := api.do(http.MethodDelete, "/api/v1/categories/"+groceries, nil)
		if code != http.StatusConflict || body["code"] != "CATEGORY_IN_USE" {
			t.Errorf("expected 409 CATEGORY_IN_USE, got %d %v", code, body)
		}
	})

	t.Run("update and delete budget", func(t *testing.T) {
		code, body := api.do(http.MethodPut, "/api/v1/budgets/"+budgetID, map[string]any{"amount": 100})
		if code != http.StatusOK {
			t.Fatalf("update: expected 200, got %d %v", code, body)
		}

		code, body = api.do(http.MethodGet, "/api/v1/budgets/"+budgetID, nil)
		if code != http.StatusOK {
			t.Fatalf("get: expected 200, got %d %v", code, body)
		}
		spending := data(t, body)["budget"].(map[string]any)["spending"].(map[string]any)
		if spending["is_over_budget"] != true {
			t.Errorf("expected budget to be over after lowering amount, got %v", spending)
		}

		code, _ = api.do(http.MethodDelete, "/api/v1/budgets/"+budgetID, nil)
		if code != http.StatusOK {
			t.Fatalf("delete: expected 200, got %d", code)
		}

		code, body = api.do(http.MethodGet, "/api/v1/budgets/"+budgetID, nil)
		if code != http.StatusNotFound || body["code"] != "BUDGET_NOT_FOUND" {
			t.Errorf("expected 404 BUDGET_NOT_FOUND after delete, got %d %v", code, body)
		}
	})

	var types []events.Type
	for _, e := range recorder.Events() {
		types = append(types, e.Type)
	}
	want := []events.Type{events.BudgetCreated, events.BudgetCreated, events.BudgetUpdated, events.BudgetDeleted}
	if len(types) != len(want) {
		t.Fatalf("expected events %v, got %v", want, types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], types[i])
		}
	}
}

func TestStoreFailureHidesCause(t *testing.T) {
	api, _, db := setupWithDB(t, Dependencies{})

	if code, body := api.do(http.MethodPost, "/api/v1/budgets", map[string]any{"name": "Everything", "amount": 500}); code != http.StatusCreated {
		t.Fatalf("create budget: expected 201, got %d %v", code, body)
	}
	if err := db.Migrator().DropTable(&models.Transaction{}); err != nil {
		t.Fatalf("failed to drop transactions: %v", err)
	}

	for _, path := range []string{"/api/v1/budgets/overview?period=monthly", "/api/v1/budgets"} {
		code, body := api.do(http.MethodGet, path, nil)
		if code != http.StatusInternalServerError || body["code"] != "INTERNAL_ERROR" {
			t.Errorf("%s: expected 500 INTERNAL_ERROR, got %d %v", path, code, body)
		}
		if _, ok := body["data"]; ok {
			t.Errorf("%s: expected no data on failure, got %v", path, body["data"])
		}
		msg, _ := body["message"].(string)
		for _, leak := range []string{"no such table", "transactions", "SQL"} {
			if strings.Contains(msg, leak) {
				t.Errorf("%s: message leaks %q: %s", path, leak, msg)
			}
		}
	}
}

func TestRateLimitedRouter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	api, _ := setup(t, Dependencies{Redis: client, RateLimitRequests: 2, RateLimitWindow: time.Hour})

	for i := 0; i < 2; i++ {
		if code, body := api.do(http.MethodGet, "/api/v1/categories", nil); code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d %v", i+1, code, body)
		}
	}

	code, body := api.do(http.MethodGet, "/api/v1/categories", nil)
	if code != http.StatusTooManyRequests || body["code"] != "RATE_LIMITED" {
		t.Errorf("expected 429 RATE_LIMITED, got %d %v", code, body)
	}
}
