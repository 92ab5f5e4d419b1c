package services

import (
	"errors"

	"gorm.io/gorm"

	"fintrack/internal/clock"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db    *gorm.DB
	clock clock.Clock
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, clk clock.Clock) TransactionServicer {
	return &transactionService{db: db, clock: clk}
}

// CreateTransaction records an income or expense against a visible category.
func (s *transactionService) CreateTransaction(userID string, params CreateTransactionParams) (*models.Transaction, error) {
	params.Amount = models.RoundAmount(params.Amount)
	if params.Amount.IsNegative() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
	}

	txType := params.Type
	if txType == "" {
		txType = models.TransactionTypeExpense
	}
	if !validTransactionType(txType) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction type must be income or expense")
	}

	if params.CategoryID == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category is required")
	}
	category, err := findVisibleCategory(s.db, userID, params.CategoryID)
	if err != nil {
		return nil, err
	}

	date := params.Date
	if date.IsZero() {
		date = s.clock.Now()
	}

	transaction := &models.Transaction{
		UserID:      userID,
		CategoryID:  category.ID,
		Type:        txType,
		Amount:      params.Amount,
		Date:        date.UTC(),
		Note:        params.Note,
		Description: params.Description,
	}
	if err := s.db.Omit("Category").Create(transaction).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	transaction.Category = category
	return transaction, nil
}

// GetUserTransactions returns a filtered page of the user's transactions, newest first.
func (s *transactionService) GetUserTransactions(
	userID string,
	page pagination.PageRequest,
	filter TransactionFilter,
) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := applyTransactionFilter(s.db.Model(&models.Transaction{}).Where("user_id = ?", userID), filter).
		Session(&gorm.Session{})

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Preload("Category").
		Order("date DESC, id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

func applyTransactionFilter(q *gorm.DB, filter TransactionFilter) *gorm.DB {
	if filter.FromDate != nil {
		q = q.Where("date >= ?", filter.FromDate.UTC())
	}
	if filter.ToDate != nil {
		q = q.Where("date <= ?", filter.ToDate.UTC())
	}
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	return q
}

// GetTransactionByID returns a transaction owned by the user.
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Category").
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies a partial update. A new category must be visible to the user.
func (s *transactionService) UpdateTransaction(userID, transactionID string, params UpdateTransactionParams) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]any)
	if params.CategoryID != nil && *params.CategoryID != transaction.CategoryID {
		category, err := findVisibleCategory(s.db, userID, *params.CategoryID)
		if err != nil {
			return nil, err
		}
		updates["category_id"] = category.ID
	}
	if params.Type != nil {
		if !validTransactionType(*params.Type) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "transaction type must be income or expense")
		}
		updates["type"] = *params.Type
	}
	if params.Amount != nil {
		amount := models.RoundAmount(*params.Amount)
		if amount.IsNegative() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must not be negative")
		}
		updates["amount"] = amount
	}
	if params.Date != nil {
		updates["date"] = params.Date.UTC()
	}
	if params.Note != nil {
		updates["note"] = *params.Note
	}
	if params.Description != nil {
		updates["description"] = *params.Description
	}

	if len(updates) == 0 {
		return transaction, nil
	}

	if err := s.db.Model(&models.Transaction{}).
		Where("id = ? AND user_id = ?", transactionID, userID).
		Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetTransactionByID(userID, transactionID)
}

// DeleteTransaction permanently removes a transaction owned by the user.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	result := s.db.Where("id = ? AND user_id = ?", transactionID, userID).Delete(&models.Transaction{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

func validTransactionType(t models.TransactionType) bool {
	return t == models.TransactionTypeIncome || t == models.TransactionTypeExpense
}
