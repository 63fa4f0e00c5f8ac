package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trosak/internal/core"
)

// TransactionService records spending against categories. Amounts are
// normalized into the accounting currency at write time; the entered
// amount and currency are kept alongside for display.
type TransactionService struct {
	transactions TransactionStore
	categories   CategoryStore
	settings     *SettingsService
}

func NewTransactionService(transactions TransactionStore, categories CategoryStore, settings *SettingsService) *TransactionService {
	return &TransactionService{
		transactions: transactions,
		categories:   categories,
		settings:     settings,
	}
}

// LoadForCategory returns the category's transactions newest first.
func (s *TransactionService) LoadForCategory(ctx context.Context, categoryID int64) ([]core.Transaction, error) {
	return s.transactions.ListTransactionsByCategory(ctx, categoryID)
}

// Add converts the amount into the accounting currency using the current
// rates and stores both the converted and the original value. The
// referenced category must exist.
func (s *TransactionService) Add(ctx context.Context, categoryID int64, amount float64, currency core.Currency, description string) (int64, error) {
	if _, err := s.categories.GetCategory(ctx, categoryID); err != nil {
		return 0, fmt.Errorf("resolve category %d: %w", categoryID, err)
	}

	rates, err := s.settings.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load rates: %w", err)
	}

	t := core.Transaction{
		CategoryID:       categoryID,
		Amount:           core.ConvertToRSD(amount, currency, rates),
		OriginalAmount:   amount,
		OriginalCurrency: currency,
		Description:      strings.TrimSpace(description),
		CreatedAt:        time.Now().UTC(),
	}
	if err := t.Validate(); err != nil {
		return 0, err
	}

	id, err := s.transactions.CreateTransaction(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	return id, nil
}

// Delete removes a transaction and returns the category's refreshed
// transaction list.
func (s *TransactionService) Delete(ctx context.Context, id, categoryID int64) ([]core.Transaction, error) {
	if err := s.transactions.DeleteTransaction(ctx, id); err != nil {
		return nil, err
	}
	return s.transactions.ListTransactionsByCategory(ctx, categoryID)
}
