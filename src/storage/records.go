package storage

import (
	"context"
	"fmt"

	"github.com/username/moneymirror/src/models"
)

// Transactions loads the user's transactions. A record missing its id, value or
// date is treated as corrupted.
func (s *SecureStore) Transactions(ctx context.Context, userID string, filter Filter) ([]models.Transaction, error) {
	txs, err := Load[models.Transaction](ctx, s, userID, CollectionTransactions, filter)
	if err != nil {
		return nil, err
	}
	for _, tx := range txs {
		if tx.ID == "" || tx.Value <= 0 || tx.Date.IsZero() {
			return nil, fmt.Errorf("%w: transaction %q is missing required fields", ErrDataIntegrity, tx.ID)
		}
	}
	return txs, nil
}

func (s *SecureStore) Snapshots(ctx context.Context, userID string, filter Filter) ([]models.FinancialSnapshot, error) {
	snaps, err := Load[models.FinancialSnapshot](ctx, s, userID, CollectionFinancialSnapshots, filter)
	if err != nil {
		return nil, err
	}
	for _, snap := range snaps {
		if snap.ID == "" || snap.Date.IsZero() {
			return nil, fmt.Errorf("%w: snapshot %q is missing required fields", ErrDataIntegrity, snap.ID)
		}
	}
	return snaps, nil
}

func (s *SecureStore) Emotions(ctx context.Context, userID string, filter Filter) ([]models.EmotionalEntry, error) {
	entries, err := Load[models.EmotionalEntry](ctx, s, userID, CollectionEmotionalContexts, filter)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.ID == "" || e.Mood < 1 || e.Mood > 10 {
			return nil, fmt.Errorf("%w: emotional entry %q is invalid", ErrDataIntegrity, e.ID)
		}
	}
	return entries, nil
}

func (s *SecureStore) Insights(ctx context.Context, userID string, filter Filter) ([]models.PersonalizedInsight, error) {
	insights, err := Load[models.PersonalizedInsight](ctx, s, userID, CollectionInsights, filter)
	if err != nil {
		return nil, err
	}
	for _, in := range insights {
		if in.ID == "" || in.Type == "" {
			return nil, fmt.Errorf("%w: insight %q is missing required fields", ErrDataIntegrity, in.ID)
		}
	}
	return insights, nil
}
