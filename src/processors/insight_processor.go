package processors

import (
	"fmt"
	"sort"

	"github.com/username/moneymirror/src/logger"
	"github.com/username/moneymirror/src/models"
	"github.com/username/moneymirror/src/utils"
)

// MaxInsights is the number of insights kept after ranking.
const MaxInsights = 8

// DefaultAnalyzers returns the six analyzers in emission order.
func DefaultAnalyzers() []Analyzer {
	return []Analyzer{
		NewSpendingPatternAnalyzer(),
		NewHiddenFeeAnalyzer(),
		NewEmotionAnalyzer(),
		NewSavingsAnalyzer(),
		NewSymbolicAnalyzer(),
		NewTrendAnalyzer(),
	}
}

type insightProcessorImpl struct {
	analyzers []Analyzer
	limit     int
}

// NewInsightProcessor uses DefaultAnalyzers when none are given.
func NewInsightProcessor(analyzers ...Analyzer) InsightProcessor {
	if len(analyzers) == 0 {
		analyzers = DefaultAnalyzers()
	}
	return &insightProcessorImpl{analyzers: analyzers, limit: MaxInsights}
}

func (p *insightProcessorImpl) Generate(transactions []models.Transaction) []models.PersonalizedInsight {
	if len(transactions) == 0 {
		return []models.PersonalizedInsight{OnboardingInsight()}
	}

	sorted := sortedByDate(transactions)
	var all []models.PersonalizedInsight
	for _, a := range p.analyzers {
		insights, err := runAnalyzer(a, sorted)
		if err != nil {
			logger.L.Error("Analyzer failed, continuing with the others", "analyzer", a.Name(), "error", err)
			continue
		}
		all = append(all, insights...)
	}
	return RankInsights(all, p.limit)
}

// runAnalyzer converts panics into ErrAnalyzer so one analyzer cannot abort the run.
func runAnalyzer(a Analyzer, transactions []models.Transaction) (insights []models.PersonalizedInsight, err error) {
	defer func() {
		if r := recover(); r != nil {
			insights = nil
			err = fmt.Errorf("%w: %s panicked: %v", ErrAnalyzer, a.Name(), r)
		}
	}()
	insights, err = a.Analyze(transactions)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrAnalyzer, a.Name(), err)
	}
	return insights, nil
}

// RankInsights clamps relevance to [0, 1], sorts by impact weight plus
// relevance, and keeps the first limit. Ties keep their input order.
func RankInsights(insights []models.PersonalizedInsight, limit int) []models.PersonalizedInsight {
	ranked := make([]models.PersonalizedInsight, len(insights))
	copy(ranked, insights)
	for i := range ranked {
		ranked[i].RelevanceScore = utils.Clamp01(ranked[i].RelevanceScore)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return score(ranked[i]) > score(ranked[j])
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func score(in models.PersonalizedInsight) float64 {
	return in.Impact.Weight() + in.RelevanceScore
}

// OnboardingInsight is returned when the user has no transactions yet.
func OnboardingInsight() models.PersonalizedInsight {
	return models.PersonalizedInsight{
		ID:               insightID(models.InsightOnboarding, "welcome"),
		Type:             models.InsightOnboarding,
		Title:            "Bienvenue dans votre miroir financier",
		Description:      "Ajoutez vos premières transactions pour découvrir vos habitudes de dépense.",
		Impact:           models.ImpactMedium,
		ActionSuggestion: "Saisissez une dépense ou importez un relevé CSV.",
		DataSource:       "onboarding",
		RelevanceScore:   1.0,
		PersonalizedData: models.OnboardingData{
			Steps: []string{
				"Ajouter une transaction",
				"Noter votre humeur lors d'un achat",
				"Consulter vos premiers insights",
			},
		},
	}
}
