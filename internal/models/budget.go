package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetPeriod represents the period type for a budget
type BudgetPeriod string

const (
	BudgetPeriodWeekly  BudgetPeriod = "weekly"
	BudgetPeriodMonthly BudgetPeriod = "monthly"
	BudgetPeriodYearly  BudgetPeriod = "yearly"
)

// BudgetType classifies what a budget's spend is measured against.
type BudgetType string

const (
	BudgetTypeCategory BudgetType = "category"
	BudgetTypeOverall  BudgetType = "overall"
	BudgetTypeCustom   BudgetType = "custom"
)

// DefaultAlertThreshold is the percentage used when a budget is created without one.
const DefaultAlertThreshold = 80.0

// Budget is a spending limit for one period instance, either scoped to a
// category or covering all expenses of the user.
type Budget struct {
	Base
	UserID         string          `gorm:"type:uuid;not null;index:idx_budget_user_active" json:"user_id"`
	CategoryID     *string         `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Name           string          `json:"name,omitempty"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Period         BudgetPeriod    `gorm:"not null" json:"period"`
	BudgetType     BudgetType      `gorm:"not null" json:"budget_type"`
	StartDate      time.Time       `gorm:"not null" json:"start_date"`
	EndDate        time.Time       `gorm:"not null" json:"end_date"`
	AlertThreshold float64         `gorm:"not null" json:"alert_threshold"`
	IsActive       bool            `gorm:"not null;index:idx_budget_user_active" json:"is_active"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// IsCategoryScoped reports whether spend is limited to the budget's category.
func (b *Budget) IsCategoryScoped() bool {
	return b.CategoryID != nil
}

// DisplayName is the category name for category budgets, otherwise the budget name.
func (b *Budget) DisplayName() string {
	if b.Category != nil && b.Category.Name != "" {
		return b.Category.Name
	}
	return b.Name
}
