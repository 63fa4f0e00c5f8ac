package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"trosak/internal/core"
)

var (
	// ErrInvalidBackup marks a parsed document that is structurally not a
	// backup: missing version, categories or transactions.
	ErrInvalidBackup = errors.New("invalid backup format")

	// ErrMalformedBackup marks input that is not valid JSON at all.
	ErrMalformedBackup = errors.New("backup is not valid JSON")
)

// BackupService serializes the whole store into a versioned JSON
// document and restores such documents. Restore is clear-then-repopulate
// with identifier remapping, not a merge.
type BackupService struct {
	categories    CategoryStore
	transactions  TransactionStore
	settingsStore SettingsStore
	settings      *SettingsService
}

func NewBackupService(categories CategoryStore, transactions TransactionStore, settingsStore SettingsStore, settings *SettingsService) *BackupService {
	return &BackupService{
		categories:    categories,
		transactions:  transactions,
		settingsStore: settingsStore,
		settings:      settings,
	}
}

// Export assembles a snapshot of every category, every transaction and
// the current rates. It reads the settings row directly so an export
// against a pristine store stays a pure read; absent settings fall back
// to the defaults in the document only.
func (s *BackupService) Export(ctx context.Context) (core.BackupDocument, error) {
	cats, err := s.categories.ListCategories(ctx)
	if err != nil {
		return core.BackupDocument{}, fmt.Errorf("export categories: %w", err)
	}

	txs, err := s.transactions.ListTransactions(ctx)
	if err != nil {
		return core.BackupDocument{}, fmt.Errorf("export transactions: %w", err)
	}

	rates := core.DefaultRates()
	settings, err := s.settingsStore.GetSettings(ctx)
	switch {
	case err == nil:
		rates = settings.CurrencyRates
	case errors.Is(err, core.ErrNotFound):
		// keep defaults
	default:
		return core.BackupDocument{}, fmt.Errorf("export settings: %w", err)
	}

	if cats == nil {
		cats = []core.Category{}
	}
	if txs == nil {
		txs = []core.Transaction{}
	}

	return core.BackupDocument{
		Version:      core.BackupVersion,
		ExportedAt:   time.Now().UTC(),
		Categories:   cats,
		Transactions: txs,
		Settings:     core.BackupSettings{CurrencyRates: rates},
	}, nil
}

// Import replaces the store contents with the document's. Validation
// happens before the first destructive step; once the clear has started
// a storage failure leaves the store partially migrated (accepted risk,
// there is no multi-step rollback).
//
// Categories are inserted first and in full, building the old-id to
// new-id mapping that the transaction phase then consults. Transactions
// whose old category id is not in the mapping are dropped silently:
// restore what is restorable rather than all-or-nothing.
func (s *BackupService) Import(ctx context.Context, doc core.BackupDocument) error {
	if doc.Version == 0 || doc.Categories == nil || doc.Transactions == nil {
		return ErrInvalidBackup
	}

	if err := s.transactions.ClearTransactions(ctx); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	if err := s.categories.ClearCategories(ctx); err != nil {
		return fmt.Errorf("clear categories: %w", err)
	}

	idMap := make(map[int64]int64, len(doc.Categories))
	for _, cat := range doc.Categories {
		newID, err := s.categories.CreateCategory(ctx, core.Category{
			Name:        cat.Name,
			BudgetLimit: cat.BudgetLimit,
			CreatedAt:   cat.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("import category %q: %w", cat.Name, err)
		}
		idMap[cat.ID] = newID
	}

	var dropped int
	for _, tx := range doc.Transactions {
		newCategoryID, ok := idMap[tx.CategoryID]
		if !ok {
			dropped++
			continue
		}
		_, err := s.transactions.CreateTransaction(ctx, core.Transaction{
			CategoryID:       newCategoryID,
			Amount:           tx.Amount,
			OriginalAmount:   tx.OriginalAmount,
			OriginalCurrency: tx.OriginalCurrency,
			Description:      tx.Description,
			CreatedAt:        tx.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("import transaction: %w", err)
		}
	}

	// Rates travel optionally; a document without them leaves the current
	// settings untouched.
	if rates := doc.Settings.CurrencyRates; rates.Validate() == nil {
		if err := s.settings.UpdateRates(ctx, rates); err != nil {
			return fmt.Errorf("import settings: %w", err)
		}
	}

	slog.InfoContext(ctx, "Backup imported",
		"categories", len(doc.Categories),
		"transactions", len(doc.Transactions)-dropped,
		"dropped", dropped)

	return nil
}

// ImportJSON parses a serialized backup and applies it. A parse failure
// is distinct from a structurally invalid document so callers can tell a
// broken file apart from a wrong one; neither touches the store.
func (s *BackupService) ImportJSON(ctx context.Context, data []byte) error {
	var doc core.BackupDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBackup, err)
	}
	return s.Import(ctx, doc)
}
