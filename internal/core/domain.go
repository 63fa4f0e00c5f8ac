package core

import (
	"errors"
	"strings"
	"time"
)

const (
	// RSD is the accounting currency. Every stored transaction amount is
	// expressed in RSD regardless of the currency it was entered in.
	RSD Currency = "RSD"
	EUR Currency = "EUR"
	RUB Currency = "RUB"
)

type (
	Currency string

	// CurrencyRates maps each non-accounting currency to its multiplier
	// into RSD.
	CurrencyRates struct {
		EUR float64 `json:"EUR"`
		RUB float64 `json:"RUB"`
	}

	Category struct {
		ID          int64     `json:"id"`
		Name        string    `json:"name"`
		BudgetLimit float64   `json:"budgetLimit"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	// CategoryWithSpent annotates a category with the sum of its
	// transaction amounts. Derived on every load, never stored.
	CategoryWithSpent struct {
		Category
		Spent float64 `json:"spent"`
	}

	Transaction struct {
		ID               int64     `json:"id"`
		CategoryID       int64     `json:"categoryId"`
		Amount           float64   `json:"amount"`
		OriginalAmount   float64   `json:"originalAmount"`
		OriginalCurrency Currency  `json:"originalCurrency"`
		Description      string    `json:"description"`
		CreatedAt        time.Time `json:"createdAt"`
	}

	// CategoryUpdate carries the fields of a partial category update.
	// Nil means "leave unchanged".
	CategoryUpdate struct {
		Name        *string  `json:"name"`
		BudgetLimit *float64 `json:"budgetLimit"`
	}

	// Settings is the single application-wide configuration object. The
	// storage layer owns how the singleton is persisted; callers only ever
	// see one instance.
	Settings struct {
		CurrencyRates CurrencyRates `json:"currencyRates"`
	}
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrEmptyName        = errors.New("empty category name")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidLimit     = errors.New("invalid budget limit")
	ErrUnknownCurrency  = errors.New("unknown currency")
	ErrInvalidRates     = errors.New("invalid currency rates")
)

// DefaultRates returns the conversion rates applied when no settings have
// been persisted yet.
func DefaultRates() CurrencyRates {
	return CurrencyRates{EUR: 117, RUB: 1.15}
}

// ParseCurrency normalizes a currency code, accepting any casing.
func ParseCurrency(s string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	if err := c.Validate(); err != nil {
		return "", err
	}
	return c, nil
}

func (c Currency) Validate() error {
	switch c {
	case RSD, EUR, RUB:
		return nil
	default:
		return ErrUnknownCurrency
	}
}

func (r CurrencyRates) Validate() error {
	if r.EUR <= 0 || r.RUB <= 0 {
		return ErrInvalidRates
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 100 {
		return errors.New("category name too long (max 100 characters)")
	}
	if c.BudgetLimit < 0 {
		return ErrInvalidLimit
	}
	return nil
}

func (t Transaction) Validate() error {
	if t.OriginalAmount <= 0 {
		return ErrInvalidAmount
	}
	if err := t.OriginalCurrency.Validate(); err != nil {
		return err
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(t.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}
