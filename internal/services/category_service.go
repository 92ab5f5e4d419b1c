package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a category owned by the user. The type defaults to expense.
func (s *categoryService) CreateCategory(userID, name string, categoryType models.CategoryType) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if categoryType == "" {
		categoryType = models.CategoryTypeExpense
	}
	if !validCategoryType(categoryType) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income or expense")
	}

	if err := s.ensureUniqueName(userID, name, ""); err != nil {
		return nil, err
	}

	category := &models.Category{
		UserID: &userID,
		Name:   name,
		Type:   categoryType,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// ListCategories returns the user's categories plus the shared defaults,
// defaults first and then by name.
func (s *categoryService) ListCategories(userID string, categoryType *models.CategoryType) ([]models.Category, error) {
	q := s.db.Where("user_id = ? OR is_default = ?", userID, true)
	if categoryType != nil {
		q = s.db.Where("(user_id = ? OR is_default = ?) AND type = ?", userID, true, *categoryType)
	}

	var categories []models.Category
	if err := q.Order("is_default DESC, name ASC").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}

// GetCategoryByID returns a category the user can see.
func (s *categoryService) GetCategoryByID(userID, categoryID string) (*models.Category, error) {
	return findVisibleCategory(s.db, userID, categoryID)
}

// UpdateCategory renames or retypes a category owned by the user.
func (s *categoryService) UpdateCategory(userID, categoryID string, name *string, categoryType *models.CategoryType) (*models.Category, error) {
	category, err := s.findModifiable(userID, categoryID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
		}
		if trimmed != category.Name {
			if err := s.ensureUniqueName(userID, trimmed, category.ID); err != nil {
				return nil, err
			}
			updates["name"] = trimmed
		}
	}
	if categoryType != nil && *categoryType != category.Type {
		if !validCategoryType(*categoryType) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category type must be income or expense")
		}
		updates["type"] = *categoryType
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if v, ok := updates["name"].(string); ok {
			category.Name = v
		}
		if v, ok := updates["type"].(models.CategoryType); ok {
			category.Type = v
		}
	}
	return category, nil
}

// DeleteCategory removes a category owned by the user. Categories still
// referenced by transactions or budgets cannot be deleted.
func (s *categoryService) DeleteCategory(userID, categoryID string) error {
	category, err := s.findModifiable(userID, categoryID)
	if err != nil {
		return err
	}

	for _, model := range []any{&models.Transaction{}, &models.Budget{}} {
		var count int64
		if err := s.db.Model(model).Where("category_id = ?", category.ID).Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if count > 0 {
			return apperrors.ErrCategoryInUse
		}
	}

	if err := s.db.Delete(category).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// findModifiable loads a category and checks the user may change it.
// Shared categories are forbidden, other users' categories are not found.
func (s *categoryService) findModifiable(userID, categoryID string) (*models.Category, error) {
	category, err := findVisibleCategory(s.db, userID, categoryID)
	if err != nil {
		return nil, err
	}
	switch category.Owner().(type) {
	case models.Shared:
		return nil, apperrors.ErrCategoryImmutable
	}
	if !category.ModifiableBy(userID) {
		return nil, apperrors.ErrCategoryNotFound
	}
	return category, nil
}

func (s *categoryService) ensureUniqueName(userID, name, excludeID string) error {
	q := s.db.Model(&models.Category{}).
		Where("name = ? AND (user_id = ? OR is_default = ?)", name, userID, true)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrCategoryConflict
	}
	return nil
}

// findVisibleCategory loads a category owned by the user or shared with everyone.
func findVisibleCategory(db *gorm.DB, userID, categoryID string) (*models.Category, error) {
	var category models.Category
	if err := db.Where("id = ? AND (user_id = ? OR is_default = ?)", categoryID, userID, true).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

func validCategoryType(t models.CategoryType) bool {
	return t == models.CategoryTypeIncome || t == models.CategoryTypeExpense
}
