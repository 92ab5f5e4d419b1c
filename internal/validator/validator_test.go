package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
)

type sample struct {
	TxType   string `validate:"omitempty,transaction_type"`
	CatType  string `validate:"omitempty,category_type"`
	Period   string `validate:"omitempty,budget_period"`
	BudgType string `validate:"omitempty,budget_type"`
}

func TestCustomTags(t *testing.T) {
	v := validator.New()
	RegisterOn(v)

	tests := []struct {
		name  string
		input sample
		valid bool
	}{
		{"empty", sample{}, true},
		{"income_tx", sample{TxType: "income"}, true},
		{"transfer_tx", sample{TxType: "transfer"}, false},
		{"expense_category", sample{CatType: "expense"}, true},
		{"bad_category", sample{CatType: "asset"}, false},
		{"weekly", sample{Period: "weekly"}, true},
		{"monthly", sample{Period: "monthly"}, true},
		{"yearly", sample{Period: "yearly"}, true},
		{"daily", sample{Period: "daily"}, false},
		{"overall", sample{BudgType: "overall"}, true},
		{"custom", sample{BudgType: "custom"}, true},
		{"category_not_requestable", sample{BudgType: "category"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			if tt.valid && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.valid && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
