package processors

import (
	"fmt"

	"github.com/username/moneymirror/src/models"
	"github.com/username/moneymirror/src/utils"
)

const (
	dominantShareThreshold = 0.30
	dominantHighShare      = 0.50
	microAmountThreshold   = 10.0
	microCountThreshold    = 10
	weekendShareThreshold  = 0.40
)

type spendingPatternAnalyzer struct{}

// NewSpendingPatternAnalyzer reports dominant categories, micro-spending and
// weekend-heavy spending.
func NewSpendingPatternAnalyzer() Analyzer {
	return &spendingPatternAnalyzer{}
}

func (a *spendingPatternAnalyzer) Name() string { return "spending_pattern" }

func (a *spendingPatternAnalyzer) Analyze(transactions []models.Transaction) ([]models.PersonalizedInsight, error) {
	expenses := expensesOf(transactions)
	total := sumValues(expenses)
	if total <= 0 {
		return nil, nil
	}

	var insights []models.PersonalizedInsight
	groups := GroupByCategory(expenses)

	for _, g := range groups {
		amount := utils.SumMoney(g.Values())
		share := amount / total
		if share <= dominantShareThreshold {
			continue
		}
		impact := models.ImpactMedium
		if share > dominantHighShare {
			impact = models.ImpactHigh
		}
		percentage := utils.RoundFloat(share*100, 2)
		insights = append(insights, models.PersonalizedInsight{
			ID:               insightID(models.InsightSpendingPattern, g.Key),
			Type:             models.InsightSpendingPattern,
			Title:            fmt.Sprintf("%s domine vos dépenses", g.Label),
			Description:      fmt.Sprintf("%s représente %.0f%% de vos dépenses (%.2f).", g.Label, percentage, amount),
			Impact:           impact,
			ActionSuggestion: fmt.Sprintf("Fixez-vous un budget mensuel pour %s et suivez-le chaque semaine.", g.Label),
			DataSource:       "transactions",
			RelevanceScore:   share,
			PersonalizedData: models.SpendingPatternData{
				Category:   g.Label,
				Amount:     utils.RoundMoney(amount),
				Percentage: percentage,
			},
		})
	}

	for _, g := range groups {
		var count int
		var micro []float64
		for _, tx := range g.Transactions {
			if tx.Value < microAmountThreshold {
				count++
				micro = append(micro, tx.Value)
			}
		}
		if count <= microCountThreshold {
			continue
		}
		microTotal := utils.RoundMoney(utils.SumMoney(micro))
		insights = append(insights, models.PersonalizedInsight{
			ID:               insightID(models.InsightMicroSpending, g.Key),
			Type:             models.InsightMicroSpending,
			Title:            fmt.Sprintf("Petites dépenses répétées en %s", g.Label),
			Description:      fmt.Sprintf("%d achats de moins de %.0f en %s totalisent %.2f.", count, microAmountThreshold, g.Label, microTotal),
			Impact:           models.ImpactMedium,
			ActionSuggestion: "Regroupez ces petits achats ou fixez-vous un plafond hebdomadaire.",
			DataSource:       "transactions",
			RelevanceScore:   utils.Clamp01(float64(count) / 30),
			PersonalizedData: models.MicroSpendingData{
				Category:   g.Label,
				Count:      count,
				MicroTotal: microTotal,
				Threshold:  microAmountThreshold,
			},
		})
	}

	var weekend float64
	for _, tx := range expenses {
		if utils.IsWeekend(tx.Date) {
			weekend += tx.Value
		}
	}
	if share := weekend / total; share > weekendShareThreshold {
		percentage := utils.RoundFloat(share*100, 2)
		insights = append(insights, models.PersonalizedInsight{
			ID:               insightID(models.InsightTemporalPattern, "weekend"),
			Type:             models.InsightTemporalPattern,
			Title:            "Vos week-ends coûtent cher",
			Description:      fmt.Sprintf("%.0f%% de vos dépenses ont lieu le week-end.", percentage),
			Impact:           models.ImpactMedium,
			ActionSuggestion: "Planifiez une activité gratuite par week-end.",
			DataSource:       "transactions",
			RelevanceScore:   share,
			PersonalizedData: models.TemporalPatternData{
				WeekendAmount:     utils.RoundMoney(weekend),
				WeekendPercentage: percentage,
			},
		})
	}

	return insights, nil
}
