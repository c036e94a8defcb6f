package services

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/username/moneymirror/src/models"
	"github.com/username/moneymirror/src/storage"
)

type journalServiceImpl struct {
	store    *storage.SecureStore
	validate *validator.Validate
	cache    *cache.Cache
}

func NewJournalService(store *storage.SecureStore, validate *validator.Validate, resultCache *cache.Cache) JournalService {
	return &journalServiceImpl{store: store, validate: validate, cache: resultCache}
}

func (s *journalServiceImpl) AddSnapshot(ctx context.Context, userID string, snap models.FinancialSnapshot) (models.FinancialSnapshot, error) {
	if snap.ID == "" {
		snap.ID = uuid.NewString()
	}
	if err := validationError(s.validate, snap); err != nil {
		return models.FinancialSnapshot{}, err
	}
	if err := s.store.PutRecord(ctx, userID, storage.CollectionFinancialSnapshots, snap.ID, snap); err != nil {
		return models.FinancialSnapshot{}, err
	}
	return snap, nil
}

func (s *journalServiceImpl) ListSnapshots(ctx context.Context, userID string, filter storage.Filter) ([]models.FinancialSnapshot, error) {
	return s.store.Snapshots(ctx, userID, filter)
}

// AddEmotion stores a mood entry. Entries linked to a transaction feed the
// emotional correlation analysis, so cached insights are dropped.
func (s *journalServiceImpl) AddEmotion(ctx context.Context, userID string, entry models.EmotionalEntry) (models.EmotionalEntry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if err := validationError(s.validate, entry); err != nil {
		return models.EmotionalEntry{}, err
	}
	if err := s.store.PutRecord(ctx, userID, storage.CollectionEmotionalContexts, entry.ID, entry); err != nil {
		return models.EmotionalEntry{}, err
	}
	InvalidateUserCache(s.cache, userID)
	return entry, nil
}

func (s *journalServiceImpl) ListEmotions(ctx context.Context, userID string, filter storage.Filter) ([]models.EmotionalEntry, error) {
	return s.store.Emotions(ctx, userID, filter)
}
