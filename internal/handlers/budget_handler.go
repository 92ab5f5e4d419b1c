package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/response"
	"fintrack/internal/services"
)

// BudgetHandler handles budget-related requests.
type BudgetHandler struct {
	budgetService services.BudgetServicer
	auditService  services.AuditServicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(budgetService services.BudgetServicer, auditService services.AuditServicer) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService, auditService: auditService}
}

// CreateBudgetRequest represents the request payload for creating a budget.
// Exactly one of category_id and name is required.
type CreateBudgetRequest struct {
	CategoryID     *string             `json:"category_id" binding:"omitempty,uuid"`
	Name           string              `json:"name" binding:"omitempty,max=100"`
	Amount         *decimal.Decimal    `json:"amount" binding:"required" swaggertype:"number"`
	Period         models.BudgetPeriod `json:"period" binding:"omitempty,budget_period"`
	BudgetType     models.BudgetType   `json:"budget_type" binding:"omitempty,budget_type"`
	AlertThreshold *float64            `json:"alert_threshold" binding:"omitempty,gte=0,lte=100"`
}

// UpdateBudgetRequest represents the request payload for updating a budget.
type UpdateBudgetRequest struct {
	Name           *string              `json:"name" binding:"omitempty,min=1,max=100"`
	Amount         *decimal.Decimal     `json:"amount" swaggertype:"number"`
	Period         *models.BudgetPeriod `json:"period" binding:"omitempty,budget_period"`
	AlertThreshold *float64             `json:"alert_threshold" binding:"omitempty,gte=0,lte=100"`
	IsActive       *bool                `json:"is_active"`
}

// periodQuery selects the period window of list and overview requests.
type periodQuery struct {
	Period models.BudgetPeriod `form:"period" binding:"omitempty,budget_period"`
}

func (q periodQuery) value() models.BudgetPeriod {
	if q.Period == "" {
		return models.BudgetPeriodMonthly
	}
	return q.Period
}

// CreateBudget handles the creation of a new budget.
// @Summary     Create a budget
// @Description Create a category budget (category_id) or an overall budget (name) for the current period
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateBudgetRequest true "Budget details"
// @Success     201 {object} BudgetResponse "Budget created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Budget already exists for this period"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [post]
func (h *BudgetHandler) CreateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	budget, err := h.budgetService.CreateBudget(userID, services.CreateBudgetParams{
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Amount:         *req.Amount,
		Period:         req.Period,
		BudgetType:     req.BudgetType,
		AlertThreshold: req.AlertThreshold,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "CREATE_BUDGET", "budget", budget.ID, c.ClientIP(),
		map[string]any{"name": budget.DisplayName(), "amount": budget.Amount.String(), "period": budget.Period})

	response.OK(c, http.StatusCreated, "Budget created successfully", gin.H{"budget": toBudgetResponse(budget)})
}

// GetBudgets handles listing the active budgets of a period window.
// @Summary     Get budgets
// @Description Active budgets overlapping the current period window, each with its spending
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       period query string false "weekly, monthly (default) or yearly"
// @Success     200 {array}  BudgetResponse "Budgets with spending"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets [get]
func (h *BudgetHandler) GetBudgets(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q periodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	items, err := h.budgetService.ListBudgets(userID, q.value())
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgets := make([]BudgetResponse, 0, len(items))
	for i := range items {
		budgets = append(budgets, toBudgetWithSpendingResponse(&items[i]))
	}
	response.OK(c, http.StatusOK, "Budgets fetched successfully", gin.H{"budgets": budgets})
}

// GetBudgetOverview handles the consolidated budget snapshot.
// @Summary     Budget overview
// @Description Total budget, total spent without double counting, and over-budget/alert counts
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       period query string false "weekly, monthly (default) or yearly"
// @Success     200 {object} OverviewResponse "Overview"
// @Failure     400 {object} ErrorResponse "Invalid period"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/overview [get]
func (h *BudgetHandler) GetBudgetOverview(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var q periodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	stats, err := h.budgetService.GetBudgetOverview(userID, q.value())
	if err != nil {
		respondWithError(c, err)
		return
	}

	response.OK(c, http.StatusOK, "Budget overview fetched successfully", toOverviewResponse(stats))
}

// GetBudget handles retrieving a specific budget with its spending.
// @Summary     Get budget by ID
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} BudgetResponse "Budget details"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	budget, err := h.budgetService.GetBudgetByID(userID, budgetID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	response.OK(c, http.StatusOK, "Budget fetched successfully", gin.H{"budget": toBudgetWithSpendingResponse(budget)})
}

// UpdateBudget handles updating an existing budget.
// @Summary     Update budget
// @Description Partial update. Changing the period moves the budget to the current window of the new period.
// @Tags        budgets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Budget ID"
// @Param       request body UpdateBudgetRequest true "Updated budget details"
// @Success     200 {object} BudgetResponse "Updated budget"
// @Failure     400 {object} ErrorResponse "Invalid input or budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     409 {object} ErrorResponse "Conflicting budget"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateBudgetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	budget, err := h.budgetService.UpdateBudget(userID, budgetID, services.UpdateBudgetParams{
		Name:           req.Name,
		Amount:         req.Amount,
		Period:         req.Period,
		AlertThreshold: req.AlertThreshold,
		IsActive:       req.IsActive,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]any{}
	if req.Amount != nil {
		changes["amount"] = req.Amount.String()
	}
	if req.Period != nil {
		changes["period"] = *req.Period
	}
	if req.IsActive != nil {
		changes["is_active"] = *req.IsActive
	}
	h.auditService.Log(userID, "UPDATE_BUDGET", "budget", budgetID, c.ClientIP(), changes)

	response.OK(c, http.StatusOK, "Budget updated successfully", gin.H{"budget": toBudgetResponse(budget)})
}

// DeleteBudget handles deleting a budget.
// @Summary     Delete budget
// @Description Permanently delete a budget by ID
// @Tags        budgets
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Budget ID"
// @Success     200 {object} MessageResponse "Budget deleted"
// @Failure     400 {object} ErrorResponse "Invalid budget ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Budget not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /budgets/{id} [delete]
func (h *BudgetHandler) DeleteBudget(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	budgetID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.budgetService.DeleteBudget(userID, budgetID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "DELETE_BUDGET", "budget", budgetID, c.ClientIP(), nil)

	response.OK(c, http.StatusOK, "Budget deleted successfully", nil)
}
