package database

import (
	"fmt"

	"fintrack/internal/logger"
	"fintrack/internal/models"

	"gorm.io/gorm"
)

// DefaultCategories are the shared categories every user sees.
var DefaultCategories = []struct {
	Name string
	Type models.CategoryType
}{
	{"Food", models.CategoryTypeExpense},
	{"Transport", models.CategoryTypeExpense},
	{"Entertainment", models.CategoryTypeExpense},
	{"Rent", models.CategoryTypeExpense},
	{"Salary", models.CategoryTypeIncome},
	{"Freelance", models.CategoryTypeIncome},
}

// SeedDefaultCategories inserts any missing shared categories. Running it
// again is a no-op.
func SeedDefaultCategories(db *gorm.DB) error {
	created := 0
	for _, def := range DefaultCategories {
		var count int64
		if err := db.Model(&models.Category{}).
			Where("is_default = ? AND name = ? AND type = ?", true, def.Name, def.Type).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check default category %s: %w", def.Name, err)
		}
		if count > 0 {
			continue
		}

		cat := models.Category{Name: def.Name, Type: def.Type, IsDefault: true}
		if err := db.Create(&cat).Error; err != nil {
			return fmt.Errorf("failed to seed default category %s: %w", def.Name, err)
		}
		created++
	}

	if created > 0 {
		logger.Get().Infow("Seeded default categories", "count", created)
	}
	return nil
}
