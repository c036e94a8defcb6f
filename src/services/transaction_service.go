package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/username/moneymirror/src/logger"
	"github.com/username/moneymirror/src/models"
	"github.com/username/moneymirror/src/parsers"
	"github.com/username/moneymirror/src/storage"
)

type transactionServiceImpl struct {
	store    *storage.SecureStore
	validate *validator.Validate
	cache    *cache.Cache
}

func NewTransactionService(store *storage.SecureStore, validate *validator.Validate, resultCache *cache.Cache) TransactionService {
	return &transactionServiceImpl{store: store, validate: validate, cache: resultCache}
}

// normalize fills the fields ingestion may leave empty for manual entries.
func normalize(tx models.Transaction) models.Transaction {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Source == "" {
		tx.Source = models.SourceManual
	}
	if tx.Source == models.SourceManual && tx.Confidence == 0 {
		tx.Confidence = 1
		tx.Verified = true
	}
	return tx
}

func validationError(v *validator.Validate, s interface{}) error {
	if err := v.Struct(s); err != nil {
		return fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	return nil
}

func (s *transactionServiceImpl) AddTransaction(ctx context.Context, userID string, tx models.Transaction) (models.Transaction, error) {
	tx = normalize(tx)
	if err := validationError(s.validate, tx); err != nil {
		return models.Transaction{}, err
	}
	if err := s.store.PutRecord(ctx, userID, storage.CollectionTransactions, tx.ID, tx); err != nil {
		return models.Transaction{}, err
	}
	InvalidateUserCache(s.cache, userID)
	logger.L.Info("Transaction added", "userID", userID, "id", tx.ID, "domain", tx.Domain)
	return tx, nil
}

func (s *transactionServiceImpl) UpdateTransaction(ctx context.Context, userID, id string, tx models.Transaction) (models.Transaction, error) {
	tx.ID = id
	tx = normalize(tx)
	if err := validationError(s.validate, tx); err != nil {
		return models.Transaction{}, err
	}
	if err := s.store.ReplaceRecord(ctx, userID, storage.CollectionTransactions, id, tx); err != nil {
		return models.Transaction{}, err
	}
	InvalidateUserCache(s.cache, userID)
	return tx, nil
}

func (s *transactionServiceImpl) DeleteTransaction(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteRecord(ctx, userID, storage.CollectionTransactions, id); err != nil {
		return err
	}
	InvalidateUserCache(s.cache, userID)
	return nil
}

func (s *transactionServiceImpl) ListTransactions(ctx context.Context, userID string, filter storage.Filter) ([]models.Transaction, error) {
	return s.store.Transactions(ctx, userID, filter)
}

// ImportTransactions persists rows one by one. A row that fails validation or
// storage is reported and skipped; a locked or unavailable store aborts.
func (s *transactionServiceImpl) ImportTransactions(ctx context.Context, userID string, txs []models.Transaction) (*ImportResult, error) {
	result := &ImportResult{Errors: []string{}}
	defer func() {
		if result.Imported > 0 {
			InvalidateUserCache(s.cache, userID)
		}
	}()

	for i, tx := range txs {
		tx = normalize(tx)
		if err := validationError(s.validate, tx); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("ligne %d: %v", i+1, err))
			continue
		}
		if err := s.store.PutRecord(ctx, userID, storage.CollectionTransactions, tx.ID, tx); err != nil {
			if errors.Is(err, storage.ErrLocked) || errors.Is(err, storage.ErrStorageUnavailable) {
				return result, err
			}
			result.Errors = append(result.Errors, fmt.Sprintf("ligne %d: %v", i+1, err))
			continue
		}
		result.Imported++
	}
	logger.L.Info("Import finished", "userID", userID, "imported", result.Imported, "errors", len(result.Errors))
	return result, nil
}

func (s *transactionServiceImpl) ImportCSV(ctx context.Context, userID string, file io.Reader, format string) (*ImportResult, error) {
	parser, err := parsers.GetParser(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}
	parsed, err := parser.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	result, err := s.ImportTransactions(ctx, userID, parsed.Transactions)
	if result != nil {
		result.Errors = append(append([]string{}, parsed.Errors...), result.Errors...)
	}
	return result, err
}
