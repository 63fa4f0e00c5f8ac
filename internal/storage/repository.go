package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"trosak/internal/core"

	_ "modernc.org/sqlite"
)

// SQLiteRepository is the record store: categories, transactions and the
// settings singleton, persisted in a single local SQLite file.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateCategory inserts a category and returns its store-assigned id.
// AUTOINCREMENT guarantees ids are unique and never reused.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories (name, budget_limit, created_at) VALUES (?, ?, ?)`,
		c.Name, c.BudgetLimit, c.CreatedAt)
	if err != nil {
		return 0, wrap("create category", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrap("create category id", err)
	}

	slog.InfoContext(ctx, "Category saved", "id", id, "name", c.Name)
	return id, nil
}

func (r *SQLiteRepository) GetCategory(ctx context.Context, id int64) (core.Category, error) {
	var c core.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, budget_limit, created_at FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.BudgetLimit, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, core.ErrNotFound
	}
	if err != nil {
		return core.Category{}, wrap("get category", err)
	}
	return c, nil
}

// UpdateCategory merges the non-nil fields into the existing record.
func (r *SQLiteRepository) UpdateCategory(ctx context.Context, id int64, upd core.CategoryUpdate) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE categories
		 SET name = COALESCE(?, name), budget_limit = COALESCE(?, budget_limit)
		 WHERE id = ?`,
		upd.Name, upd.BudgetLimit, id)
	if err != nil {
		return wrap("update category", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return wrap("update category rows", err)
	}
	if rows == 0 {
		return core.ErrNotFound
	}
	return nil
}

// DeleteCategory removes a category and every transaction referencing it
// in one database transaction, so no orphaned transactions can survive a
// partial failure.
func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrap("begin delete category", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE category_id = ?`, id); err != nil {
		return wrap("delete category transactions", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return wrap("delete category", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return wrap("delete category rows", err)
	}
	if rows == 0 {
		return core.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return wrap("commit delete category", err)
	}

	slog.InfoContext(ctx, "Category deleted with its transactions", "id", id)
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, budget_limit, created_at FROM categories ORDER BY created_at, id`)
	if err != nil {
		return nil, wrap("list categories", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.BudgetLimit, &c.CreatedAt); err != nil {
			return nil, wrap("scan category", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list categories", err)
	}
	return out, nil
}

func (r *SQLiteRepository) ClearCategories(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories`); err != nil {
		return wrap("clear categories", err)
	}
	return nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (category_id, amount, original_amount, original_currency, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.CategoryID, t.Amount, t.OriginalAmount, string(t.OriginalCurrency), t.Description, t.CreatedAt)
	if err != nil {
		return 0, wrap("create transaction", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, wrap("create transaction id", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"category_id", t.CategoryID,
		"amount", t.Amount,
		"original_currency", t.OriginalCurrency)

	return id, nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return wrap("delete transaction", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return wrap("delete transaction rows", err)
	}
	if rows == 0 {
		return core.ErrNotFound
	}
	return nil
}

// ListTransactionsByCategory returns a category's transactions newest
// first.
func (r *SQLiteRepository) ListTransactionsByCategory(ctx context.Context, categoryID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category_id, amount, original_amount, original_currency, description, created_at
		 FROM transactions WHERE category_id = ?
		 ORDER BY created_at DESC, id DESC`, categoryID)
	if err != nil {
		return nil, wrap("list transactions by category", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, category_id, amount, original_amount, original_currency, description, created_at
		 FROM transactions ORDER BY id`)
	if err != nil {
		return nil, wrap("list transactions", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var currency string
		if err := rows.Scan(&t.ID, &t.CategoryID, &t.Amount, &t.OriginalAmount,
			&currency, &t.Description, &t.CreatedAt); err != nil {
			return nil, wrap("scan transaction", err)
		}
		t.OriginalCurrency = core.Currency(currency)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("scan transactions", err)
	}
	return out, nil
}

// SumByCategory returns the spent amount per category id. Categories with
// no transactions have no entry.
func (r *SQLiteRepository) SumByCategory(ctx context.Context) (map[int64]float64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category_id, SUM(amount) FROM transactions GROUP BY category_id`)
	if err != nil {
		return nil, wrap("sum by category", err)
	}
	defer rows.Close()

	sums := make(map[int64]float64)
	for rows.Next() {
		var id int64
		var sum float64
		if err := rows.Scan(&id, &sum); err != nil {
			return nil, wrap("scan category sum", err)
		}
		sums[id] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("sum by category", err)
	}
	return sums, nil
}

func (r *SQLiteRepository) SumForCategory(ctx context.Context, categoryID int64) (float64, error) {
	var sum float64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE category_id = ?`, categoryID).
		Scan(&sum)
	if err != nil {
		return 0, wrap("sum for category", err)
	}
	return sum, nil
}

func (r *SQLiteRepository) ClearTransactions(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return wrap("clear transactions", err)
	}
	return nil
}

// GetSettings returns the settings singleton, or core.ErrNotFound if it
// has never been written.
func (r *SQLiteRepository) GetSettings(ctx context.Context) (core.Settings, error) {
	var s core.Settings
	err := r.db.QueryRowContext(ctx,
		`SELECT eur_rate, rub_rate FROM settings WHERE id = 1`).
		Scan(&s.CurrencyRates.EUR, &s.CurrencyRates.RUB)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Settings{}, core.ErrNotFound
	}
	if err != nil {
		return core.Settings{}, wrap("get settings", err)
	}
	return s, nil
}

// PutSettings creates or fully replaces the settings singleton.
func (r *SQLiteRepository) PutSettings(ctx context.Context, s core.Settings) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO settings (id, eur_rate, rub_rate) VALUES (1, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET eur_rate = excluded.eur_rate, rub_rate = excluded.rub_rate`,
		s.CurrencyRates.EUR, s.CurrencyRates.RUB)
	if err != nil {
		return wrap("put settings", err)
	}
	return nil
}
