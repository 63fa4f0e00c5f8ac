package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"trosak/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "trosak.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestCategoryCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.CreateCategory(ctx, core.Category{
		Name:        "Groceries",
		BudgetLimit: 30000,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected positive id, got %d", id)
	}

	got, err := repo.GetCategory(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Groceries" || got.BudgetLimit != 30000 {
		t.Fatalf("unexpected category %+v", got)
	}

	name := "Food"
	if err := repo.UpdateCategory(ctx, id, core.CategoryUpdate{Name: &name}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err = repo.GetCategory(ctx, id)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Name != "Food" {
		t.Fatalf("name not updated: %+v", got)
	}
	if got.BudgetLimit != 30000 {
		t.Fatalf("partial update touched budget limit: %+v", got)
	}

	if err := repo.DeleteCategory(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetCategory(ctx, id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCategoryIDsAreMonotonic(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	first, err := repo.CreateCategory(ctx, core.Category{Name: "a", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.DeleteCategory(ctx, first); err != nil {
		t.Fatalf("delete: %v", err)
	}

	second, err := repo.CreateCategory(ctx, core.Category{Name: "b", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if second <= first {
		t.Fatalf("id %d reused after deleting %d", second, first)
	}
}

func TestUpdateCategoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	name := "x"
	err := repo.UpdateCategory(ctx, 42, core.CategoryUpdate{Name: &name})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCategoryCascades(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	catID, err := repo.CreateCategory(ctx, core.Category{Name: "Travel", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	other, err := repo.CreateCategory(ctx, core.Category{Name: "Other", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := repo.CreateTransaction(ctx, testTransaction(catID, 100)); err != nil {
			t.Fatalf("create transaction: %v", err)
		}
	}
	if _, err := repo.CreateTransaction(ctx, testTransaction(other, 50)); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if err := repo.DeleteCategory(ctx, catID); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	all, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 surviving transaction, got %d", len(all))
	}
	if all[0].CategoryID != other {
		t.Fatalf("surviving transaction belongs to deleted category: %+v", all[0])
	}
}

func TestListTransactionsByCategoryOrder(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	catID, err := repo.CreateCategory(ctx, core.Category{Name: "Bills", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		tx := testTransaction(catID, float64(100*(i+1)))
		tx.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if _, err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("create transaction: %v", err)
		}
	}

	list, err := repo.ListTransactionsByCategory(ctx, catID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(list))
	}
	// Newest first.
	if list[0].Amount != 300 || list[2].Amount != 100 {
		t.Fatalf("unexpected order: %v %v %v", list[0].Amount, list[1].Amount, list[2].Amount)
	}
}

func TestSumByCategory(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	catID, err := repo.CreateCategory(ctx, core.Category{Name: "Food", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	empty, err := repo.CreateCategory(ctx, core.Category{Name: "Empty", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	for _, amount := range []float64{100, 250, 0} {
		tx := testTransaction(catID, amount)
		tx.OriginalAmount = amount + 1 // sum must use the converted amount
		if _, err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("create transaction: %v", err)
		}
	}

	sums, err := repo.SumByCategory(ctx)
	if err != nil {
		t.Fatalf("sum by category: %v", err)
	}
	if sums[catID] != 350 {
		t.Fatalf("expected 350, got %v", sums[catID])
	}
	if _, ok := sums[empty]; ok {
		t.Fatalf("empty category should have no entry: %v", sums)
	}

	sum, err := repo.SumForCategory(ctx, empty)
	if err != nil {
		t.Fatalf("sum for category: %v", err)
	}
	if sum != 0 {
		t.Fatalf("expected 0 for empty category, got %v", sum)
	}
}

func TestSettingsSingleton(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.GetSettings(ctx); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	s := core.Settings{CurrencyRates: core.DefaultRates()}
	if err := repo.PutSettings(ctx, s); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := repo.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CurrencyRates != s.CurrencyRates {
		t.Fatalf("unexpected rates %+v", got.CurrencyRates)
	}

	// Second put replaces, never duplicates.
	s.CurrencyRates.EUR = 120
	if err := repo.PutSettings(ctx, s); err != nil {
		t.Fatalf("put again: %v", err)
	}
	got, err = repo.GetSettings(ctx)
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if got.CurrencyRates.EUR != 120 || got.CurrencyRates.RUB != 1.15 {
		t.Fatalf("unexpected rates after replace %+v", got.CurrencyRates)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	catID, err := repo.CreateCategory(ctx, core.Category{Name: "a", CreatedAt: time.Now().UTC()})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	if _, err := repo.CreateTransaction(ctx, testTransaction(catID, 10)); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	if err := repo.ClearTransactions(ctx); err != nil {
		t.Fatalf("clear transactions: %v", err)
	}
	if err := repo.ClearCategories(ctx); err != nil {
		t.Fatalf("clear categories: %v", err)
	}

	cats, err := repo.ListCategories(ctx)
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	txs, err := repo.ListTransactions(ctx)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(cats) != 0 || len(txs) != 0 {
		t.Fatalf("store not empty after clear: %d categories, %d transactions", len(cats), len(txs))
	}
}

func testTransaction(categoryID int64, amount float64) core.Transaction {
	return core.Transaction{
		CategoryID:       categoryID,
		Amount:           amount,
		OriginalAmount:   amount,
		OriginalCurrency: core.RSD,
		Description:      "test",
		CreatedAt:        time.Now().UTC(),
	}
}
