package processors

import (
	"sort"
	"time"
	"unicode/utf8"

	"github.com/username/moneymirror/src/models"
	"github.com/username/moneymirror/src/psychology"
)

const (
	MaxMicroInsights   = 3
	microInsightTTL    = 24 * time.Hour
	maxMicroContentLen = 140
)

type microInsightProcessorImpl struct {
	now    Clock
	random RandomSource
}

// NewMicroInsightProjector builds a projector. A nil random source disables
// the encouragement quote.
func NewMicroInsightProjector(now Clock, random RandomSource) MicroInsightProjector {
	if now == nil {
		now = time.Now
	}
	return &microInsightProcessorImpl{now: now, random: random}
}

func priorityFor(impact models.Impact) int {
	switch impact {
	case models.ImpactHigh:
		return 8
	case models.ImpactMedium:
		return 5
	}
	return 3
}

// biasImpact maps a detection confidence onto an impact level.
func biasImpact(confidence float64) models.Impact {
	switch {
	case confidence >= 0.7:
		return models.ImpactHigh
	case confidence >= 0.5:
		return models.ImpactMedium
	}
	return models.ImpactLow
}

func microTypeFor(in models.PersonalizedInsight) models.MicroInsightType {
	switch in.Type {
	case models.InsightHiddenFees:
		return models.MicroWarning
	case models.InsightSpendingPattern, models.InsightTrendAnalysis:
		if in.Impact == models.ImpactHigh {
			return models.MicroWarning
		}
		return models.MicroTip
	case models.InsightEmotionalCorrelation, models.InsightTemporalPattern, models.InsightOnboarding:
		return models.MicroEducation
	}
	return models.MicroTip
}

// relatedBias links insight types to the catalog entry they illustrate.
var relatedBias = map[models.InsightType]string{
	models.InsightMicroSpending:   psychology.BiasPresentBias,
	models.InsightTemporalPattern: psychology.BiasPresentBias,
	models.InsightHiddenFees:      psychology.BiasEndowmentEffect,
	models.InsightSpendingPattern: psychology.BiasAnchoring,
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}

func (p *microInsightProcessorImpl) ProjectInsights(insights []models.PersonalizedInsight, context models.DisplayContext) []models.MicroInsight {
	expires := p.now().Add(microInsightTTL)
	out := []models.MicroInsight{}
	for _, in := range insights {
		if len(out) == MaxMicroInsights {
			break
		}
		m := models.MicroInsight{
			ID:             "micro-" + in.ID,
			Type:           microTypeFor(in),
			Content:        truncate(in.Title+" : "+in.ActionSuggestion, maxMicroContentLen),
			DisplayContext: context,
			Priority:       priorityFor(in.Impact),
			ExpiresAt:      &expires,
		}
		if id, ok := relatedBias[in.Type]; ok {
			m.PsychologyReference = &models.PsychologyReference{Type: "bias", ID: id}
		}
		out = append(out, m)
	}
	return p.withQuote(out, context, expires)
}

func (p *microInsightProcessorImpl) ProjectBiases(results []models.BiasDetectionResult, context models.DisplayContext) []models.MicroInsight {
	sorted := make([]models.BiasDetectionResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Confidence > sorted[j].Confidence })

	expires := p.now().Add(microInsightTTL)
	out := []models.MicroInsight{}
	for _, r := range sorted {
		if len(out) == MaxMicroInsights {
			break
		}
		bias, ok := psychology.LookupBias(r.BiasID)
		if !ok {
			continue
		}
		kind := models.MicroEducation
		if r.Confidence >= 0.7 {
			kind = models.MicroWarning
		}
		out = append(out, models.MicroInsight{
			ID:                  "micro-bias-" + r.BiasID,
			Type:                kind,
			Content:             truncate(bias.Name+" : "+bias.Countermeasure, maxMicroContentLen),
			PsychologyReference: &models.PsychologyReference{Type: "bias", ID: r.BiasID},
			DisplayContext:      context,
			Priority:            priorityFor(biasImpact(r.Confidence)),
			ExpiresAt:           &expires,
		})
	}
	return p.withQuote(out, context, expires)
}

// withQuote appends one encouragement for dashboard and goal screens.
func (p *microInsightProcessorImpl) withQuote(out []models.MicroInsight, context models.DisplayContext, expires time.Time) []models.MicroInsight {
	if p.random == nil || (context != models.ContextDashboard && context != models.ContextGoal) {
		return out
	}
	quotes := psychology.QuotesFor(string(context))
	if len(quotes) == 0 {
		return out
	}
	i := int(p.random() * float64(len(quotes)))
	if i < 0 {
		i = 0
	}
	if i >= len(quotes) {
		i = len(quotes) - 1
	}
	q := quotes[i]
	return append(out, models.MicroInsight{
		ID:                  "micro-" + q.ID,
		Type:                models.MicroEncouragement,
		Content:             truncate(q.Text, maxMicroContentLen),
		PsychologyReference: &models.PsychologyReference{Type: "fact", ID: q.ID},
		DisplayContext:      context,
		Priority:            2,
		ExpiresAt:           &expires,
	})
}
