package services

import (
	"context"
	"io"

	"github.com/username/moneymirror/src/models"
	"github.com/username/moneymirror/src/storage"
)

// ImportResult reports a bulk import. Partial success is a normal outcome.
type ImportResult struct {
	Imported int      `json:"imported"`
	Errors   []string `json:"errors"`
}

// TransactionService validates and persists transactions.
type TransactionService interface {
	AddTransaction(ctx context.Context, userID string, tx models.Transaction) (models.Transaction, error)
	UpdateTransaction(ctx context.Context, userID, id string, tx models.Transaction) (models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error
	ListTransactions(ctx context.Context, userID string, filter storage.Filter) ([]models.Transaction, error)
	ImportTransactions(ctx context.Context, userID string, txs []models.Transaction) (*ImportResult, error)
	ImportCSV(ctx context.Context, userID string, file io.Reader, format string) (*ImportResult, error)
}

// JournalService stores balance snapshots and mood entries.
type JournalService interface {
	AddSnapshot(ctx context.Context, userID string, snap models.FinancialSnapshot) (models.FinancialSnapshot, error)
	ListSnapshots(ctx context.Context, userID string, filter storage.Filter) ([]models.FinancialSnapshot, error)
	AddEmotion(ctx context.Context, userID string, entry models.EmotionalEntry) (models.EmotionalEntry, error)
	ListEmotions(ctx context.Context, userID string, filter storage.Filter) ([]models.EmotionalEntry, error)
}

// InsightService computes insights, biases and micro-insights for a user.
type InsightService interface {
	GenerateInsights(ctx context.Context, userID string) ([]models.PersonalizedInsight, error)
	StoredInsights(ctx context.Context, userID string) ([]models.PersonalizedInsight, error)
	DetectBiases(ctx context.Context, userID string) ([]models.BiasDetectionResult, error)
	MicroInsights(ctx context.Context, userID string, displayContext models.DisplayContext) ([]models.MicroInsight, error)
}

// VaultService owns the key lifecycle and the privacy switches.
type VaultService interface {
	Unlock(ctx context.Context, passphrase string) error
	Lock()
	IsUnlocked() bool
	SetIncognito(enabled bool)
	Incognito() bool
	EraseUser(ctx context.Context, userID string) error
	ResetInstallation(ctx context.Context) error
}
