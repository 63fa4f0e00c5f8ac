package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"trosak/internal/core"
)

// CategoryService provides category CRUD with the derived spent amount.
type CategoryService struct {
	categories   CategoryStore
	transactions TransactionStore
}

func NewCategoryService(categories CategoryStore, transactions TransactionStore) *CategoryService {
	return &CategoryService{categories: categories, transactions: transactions}
}

// Load returns all categories, each annotated with the sum of its
// transaction amounts. The sum is recomputed on every call; with a
// personal-finance sized dataset that is cheaper than maintaining an
// incremental counter.
func (s *CategoryService) Load(ctx context.Context) ([]core.CategoryWithSpent, error) {
	cats, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	sums, err := s.transactions.SumByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum transactions: %w", err)
	}

	out := make([]core.CategoryWithSpent, len(cats))
	for i, c := range cats {
		out[i] = core.CategoryWithSpent{Category: c, Spent: sums[c.ID]}
	}
	return out, nil
}

func (s *CategoryService) Add(ctx context.Context, name string, budgetLimit float64) (int64, error) {
	c := core.Category{
		Name:        strings.TrimSpace(name),
		BudgetLimit: budgetLimit,
		CreatedAt:   time.Now().UTC(),
	}
	if err := c.Validate(); err != nil {
		return 0, err
	}

	id, err := s.categories.CreateCategory(ctx, c)
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}
	return id, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, upd core.CategoryUpdate) error {
	if upd.Name != nil {
		trimmed := strings.TrimSpace(*upd.Name)
		if trimmed == "" {
			return core.ErrEmptyName
		}
		upd.Name = &trimmed
	}
	if upd.BudgetLimit != nil && *upd.BudgetLimit < 0 {
		return core.ErrInvalidLimit
	}

	if err := s.categories.UpdateCategory(ctx, id, upd); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Category updated", "id", id)
	return nil
}

// Delete removes the category together with all of its transactions.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	return s.categories.DeleteCategory(ctx, id)
}

func (s *CategoryService) GetOne(ctx context.Context, id int64) (core.CategoryWithSpent, error) {
	c, err := s.categories.GetCategory(ctx, id)
	if err != nil {
		return core.CategoryWithSpent{}, err
	}

	spent, err := s.transactions.SumForCategory(ctx, id)
	if err != nil {
		return core.CategoryWithSpent{}, fmt.Errorf("sum transactions: %w", err)
	}

	return core.CategoryWithSpent{Category: c, Spent: spent}, nil
}
