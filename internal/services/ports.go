// Package services implements the application services on top of the
// record store: category and transaction CRUD, the settings singleton
// and JSON backup/restore.
package services

import (
	"context"

	"trosak/internal/core"
)

// Store ports consumed by the services. *storage.SQLiteRepository
// satisfies all of them; tests may substitute any implementation.

type CategoryStore interface {
	CreateCategory(ctx context.Context, c core.Category) (int64, error)
	GetCategory(ctx context.Context, id int64) (core.Category, error)
	UpdateCategory(ctx context.Context, id int64, upd core.CategoryUpdate) error
	DeleteCategory(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]core.Category, error)
	ClearCategories(ctx context.Context) error
}

type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (int64, error)
	DeleteTransaction(ctx context.Context, id int64) error
	ListTransactionsByCategory(ctx context.Context, categoryID int64) ([]core.Transaction, error)
	ListTransactions(ctx context.Context) ([]core.Transaction, error)
	SumByCategory(ctx context.Context) (map[int64]float64, error)
	SumForCategory(ctx context.Context, categoryID int64) (float64, error)
	ClearTransactions(ctx context.Context) error
}

type SettingsStore interface {
	GetSettings(ctx context.Context) (core.Settings, error)
	PutSettings(ctx context.Context, s core.Settings) error
}
