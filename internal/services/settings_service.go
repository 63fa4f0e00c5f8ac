package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"trosak/internal/core"
)

// SettingsService owns the single settings instance. The store keeps it
// as one fixed row; this service adds the init-if-absent lifecycle and an
// in-memory copy of the rates so every read after the first is free. The
// cached value is updated under the same lock as the store write, so it
// can never lag behind what a fresh load would return.
type SettingsService struct {
	store SettingsStore

	mu     sync.RWMutex
	rates  core.CurrencyRates
	loaded bool
}

func NewSettingsService(store SettingsStore) *SettingsService {
	return &SettingsService{store: store}
}

// Load returns the current conversion rates, creating and persisting the
// defaults on the first load against an empty store.
func (s *SettingsService) Load(ctx context.Context) (core.CurrencyRates, error) {
	s.mu.RLock()
	if s.loaded {
		rates := s.rates
		s.mu.RUnlock()
		return rates, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.rates, nil
	}

	settings, err := s.store.GetSettings(ctx)
	switch {
	case errors.Is(err, core.ErrNotFound):
		settings = core.Settings{CurrencyRates: core.DefaultRates()}
		if err := s.store.PutSettings(ctx, settings); err != nil {
			return core.CurrencyRates{}, fmt.Errorf("persist default settings: %w", err)
		}
		slog.InfoContext(ctx, "Settings initialized with defaults",
			"eur", settings.CurrencyRates.EUR, "rub", settings.CurrencyRates.RUB)
	case err != nil:
		return core.CurrencyRates{}, fmt.Errorf("load settings: %w", err)
	}

	s.rates = settings.CurrencyRates
	s.loaded = true
	return s.rates, nil
}

// UpdateRates replaces the stored rates and the cached copy together.
func (s *SettingsService) UpdateRates(ctx context.Context, rates core.CurrencyRates) error {
	if err := rates.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.PutSettings(ctx, core.Settings{CurrencyRates: rates}); err != nil {
		return fmt.Errorf("store settings: %w", err)
	}
	s.rates = rates
	s.loaded = true

	slog.InfoContext(ctx, "Currency rates updated", "eur", rates.EUR, "rub", rates.RUB)
	return nil
}
