package core

import "time"

// BackupVersion is the current backup document schema version.
const BackupVersion = 1

// BackupDocument is the versioned JSON snapshot of the whole store:
// every category, every transaction and the conversion rates in effect
// at export time.
type BackupDocument struct {
	Version      int            `json:"version"`
	ExportedAt   time.Time      `json:"exportedAt"`
	Categories   []Category     `json:"categories"`
	Transactions []Transaction  `json:"transactions"`
	Settings     BackupSettings `json:"settings"`
}

type BackupSettings struct {
	CurrencyRates CurrencyRates `json:"currencyRates"`
}

// BackupFilename returns the conventional download name for a backup
// taken at the given time, e.g. "finance-backup-2025-03-14.json".
func BackupFilename(t time.Time) string {
	return "finance-backup-" + t.Format("2006-01-02") + ".json"
}
