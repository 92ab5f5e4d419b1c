package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// AmountScale is the number of decimal places money columns keep.
const AmountScale = 2

// RoundAmount rounds d to the precision of a decimal(15,2) column. SQLite
// stores those columns as REAL, so sums read back from it are rounded too.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountScale)
}

// Transaction represents a single income or expense entry
type Transaction struct {
	Base
	UserID      string          `gorm:"type:uuid;not null;index:idx_tx_user_date" json:"user_id"`
	CategoryID  string          `gorm:"type:uuid;not null;index" json:"category_id"`
	Type        TransactionType `gorm:"not null" json:"type"`
	Amount      decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Date        time.Time       `gorm:"not null;index:idx_tx_user_date" json:"date"`
	Note        string          `json:"note,omitempty"`
	Description string          `json:"description,omitempty"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
