package services

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/moneymirror/src/logger"
	"github.com/username/moneymirror/src/models"
	"github.com/username/moneymirror/src/processors"
	"github.com/username/moneymirror/src/storage"
)

type insightServiceImpl struct {
	store     *storage.SecureStore
	insights  processors.InsightProcessor
	biases    processors.BiasDetector
	projector processors.MicroInsightProjector
	cache     *cache.Cache
}

func NewInsightService(
	store *storage.SecureStore,
	insights processors.InsightProcessor,
	biases processors.BiasDetector,
	projector processors.MicroInsightProjector,
	resultCache *cache.Cache,
) InsightService {
	return &insightServiceImpl{
		store:     store,
		insights:  insights,
		biases:    biases,
		projector: projector,
		cache:     resultCache,
	}
}

// loadInputs reads transactions and journal moods. This is the only
// suspension point of a generation run.
func (s *insightServiceImpl) loadInputs(ctx context.Context, userID string) ([]models.Transaction, []models.EmotionalEntry, error) {
	txs, err := s.store.Transactions(ctx, userID, storage.Filter{})
	if err != nil {
		return nil, nil, fmt.Errorf("load transactions: %w", err)
	}
	emotions, err := s.store.Emotions(ctx, userID, storage.Filter{})
	if err != nil {
		return nil, nil, fmt.Errorf("load emotions: %w", err)
	}
	return processors.AttachEmotions(txs, emotions), emotions, nil
}

// GenerateInsights returns ranked insights, from cache when fresh. A new run
// replaces the user's stored insight snapshot unless incognito is active.
func (s *insightServiceImpl) GenerateInsights(ctx context.Context, userID string) ([]models.PersonalizedInsight, error) {
	cacheKey := fmt.Sprintf(ckInsights, userID)
	if cached, found := s.cache.Get(cacheKey); found {
		if insights, ok := cached.([]models.PersonalizedInsight); ok {
			logger.L.Debug("Insights served from cache", "userID", userID)
			return insights, nil
		}
	}

	start := time.Now()
	txs, _, err := s.loadInputs(ctx, userID)
	if err != nil {
		return nil, err
	}
	insights := s.insights.Generate(txs)

	if !s.store.Incognito() {
		if err := s.persist(ctx, userID, insights); err != nil {
			return nil, err
		}
	}

	s.cache.Set(cacheKey, insights, cache.DefaultExpiration)
	logger.L.Info("Insights generated", "userID", userID, "transactions", len(txs), "insights", len(insights), "duration", time.Since(start))
	return insights, nil
}

func (s *insightServiceImpl) persist(ctx context.Context, userID string, insights []models.PersonalizedInsight) error {
	if err := s.store.Clear(ctx, userID, storage.CollectionInsights); err != nil {
		return fmt.Errorf("clear stored insights: %w", err)
	}
	for _, in := range insights {
		if err := s.store.PutRecord(ctx, userID, storage.CollectionInsights, in.ID, in); err != nil {
			return fmt.Errorf("store insight %s: %w", in.ID, err)
		}
	}
	return nil
}

// StoredInsights returns the last persisted snapshot without recomputing.
func (s *insightServiceImpl) StoredInsights(ctx context.Context, userID string) ([]models.PersonalizedInsight, error) {
	insights, err := s.store.Insights(ctx, userID, storage.Filter{})
	if err != nil {
		return nil, err
	}
	return processors.RankInsights(insights, processors.MaxInsights), nil
}

func (s *insightServiceImpl) DetectBiases(ctx context.Context, userID string) ([]models.BiasDetectionResult, error) {
	cacheKey := fmt.Sprintf(ckBiases, userID)
	if cached, found := s.cache.Get(cacheKey); found {
		if results, ok := cached.([]models.BiasDetectionResult); ok {
			return results, nil
		}
	}

	txs, emotions, err := s.loadInputs(ctx, userID)
	if err != nil {
		return nil, err
	}
	results := s.biases.Detect(txs, emotions)
	s.cache.Set(cacheKey, results, cache.DefaultExpiration)
	logger.L.Info("Biases detected", "userID", userID, "count", len(results))
	return results, nil
}

// MicroInsights projects insights for transaction, dashboard and simulation
// screens, and bias results for goal screens.
func (s *insightServiceImpl) MicroInsights(ctx context.Context, userID string, displayContext models.DisplayContext) ([]models.MicroInsight, error) {
	if displayContext == models.ContextGoal {
		results, err := s.DetectBiases(ctx, userID)
		if err != nil {
			return nil, err
		}
		return s.projector.ProjectBiases(results, displayContext), nil
	}

	insights, err := s.GenerateInsights(ctx, userID)
	if err != nil {
		return nil, err
	}
	if displayContext == models.ContextSimulation {
		var sims []models.PersonalizedInsight
		for _, in := range insights {
			if in.Type == models.InsightSavingsSimulation || in.Type == models.InsightSymbolicComparison {
				sims = append(sims, in)
			}
		}
		if len(sims) > 0 {
			insights = sims
		}
	}
	return s.projector.ProjectInsights(insights, displayContext), nil
}
