// Package server assembles the HTTP router from services and middleware.
package server

import (
	"net/http"
	"time"

	"fintrack/internal/clock"
	"fintrack/internal/events"
	"fintrack/internal/handlers"
	"fintrack/internal/middleware"
	"fintrack/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the router wires into handlers.
type Dependencies struct {
	DB        *gorm.DB
	Clock     clock.Clock
	Publisher events.Publisher
	JWTSecret string

	// Redis enables per-user rate limiting when non-nil.
	Redis             *redis.Client
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// NewRouter builds the gin engine with every API route registered.
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}

	// Services
	auditService := services.NewAuditService(deps.DB)
	categoryService := services.NewCategoryService(deps.DB)
	transactionService := services.NewTransactionService(deps.DB, deps.Clock)
	budgetService := services.NewBudgetService(deps.DB, deps.Clock, deps.Publisher)
	analyticsService := services.NewAnalyticsService(deps.DB, deps.Clock)

	// Handlers
	categoryHandler := handlers.NewCategoryHandler(categoryService, auditService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, auditService)
	budgetHandler := handlers.NewBudgetHandler(budgetService, auditService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(deps.JWTSecret))
	if deps.Redis != nil {
		limiter := middleware.NewRateLimiter(deps.Redis, deps.RateLimitRequests, deps.RateLimitWindow)
		protected.Use(limiter.Middleware())
	}

	// Budget routes
	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetBudgets)
	budgets.GET("/overview", budgetHandler.GetBudgetOverview)
	budgets.GET("/:id", budgetHandler.GetBudget)
	budgets.PUT("/:id", budgetHandler.UpdateBudget)
	budgets.DELETE("/:id", budgetHandler.DeleteBudget)

	// Category routes
	categories := protected.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Analytics routes
	analytics := protected.Group("/analytics")
	analytics.GET("/overview", analyticsHandler.GetOverview)
	analytics.GET("/monthly-trend", analyticsHandler.GetMonthlyTrend)
	analytics.GET("/expenses-by-category", analyticsHandler.GetExpensesByCategory)
	analytics.GET("/recent-transactions", analyticsHandler.GetRecentTransactions)
	analytics.GET("/current-month", analyticsHandler.GetCurrentMonthSummary)

	return router
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
