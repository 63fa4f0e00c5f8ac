package services

import (
	"path/filepath"
	"testing"

	"trosak/internal/storage"
)

// testEnv wires the services over a real SQLite file; the driver is pure
// Go so this is cheap enough for unit tests.
type testEnv struct {
	repo         *storage.SQLiteRepository
	categories   *CategoryService
	transactions *TransactionService
	settings     *SettingsService
	backup       *BackupService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "trosak.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	settings := NewSettingsService(repo)
	return &testEnv{
		repo:         repo,
		categories:   NewCategoryService(repo, repo),
		transactions: NewTransactionService(repo, repo, settings),
		settings:     settings,
		backup:       NewBackupService(repo, repo, repo, settings),
	}
}
