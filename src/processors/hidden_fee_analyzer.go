package processors

import (
	"fmt"

	"github.com/username/moneymirror/src/models"
	"github.com/username/moneymirror/src/psychology"
	"github.com/username/moneymirror/src/utils"
)

const (
	recurringMinOccurrences = 3
	recurringVarianceShare  = 0.10
)

// Frequency is the cadence derived from the average interval between charges.
type Frequency string

const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// ClassifyFrequency maps an average interval in days to a cadence.
func ClassifyFrequency(avgDays float64) Frequency {
	switch {
	case avgDays <= 7:
		return FrequencyDaily
	case avgDays <= 14:
		return FrequencyWeekly
	case avgDays <= 35:
		return FrequencyMonthly
	case avgDays <= 100:
		return FrequencyQuarterly
	}
	return FrequencyYearly
}

type hiddenFeeAnalyzer struct{}

// NewHiddenFeeAnalyzer reports monthly recurring charges and bank fees.
func NewHiddenFeeAnalyzer() Analyzer {
	return &hiddenFeeAnalyzer{}
}

func (a *hiddenFeeAnalyzer) Name() string { return "hidden_fees" }

func (a *hiddenFeeAnalyzer) Analyze(transactions []models.Transaction) ([]models.PersonalizedInsight, error) {
	expenses := sortedByDate(expensesOf(transactions))
	var insights []models.PersonalizedInsight

	for _, g := range GroupByDescription(expenses) {
		n := len(g.Transactions)
		if n < recurringMinOccurrences {
			continue
		}
		values := g.Values()
		mean := utils.Mean(values)
		if mean <= 0 || utils.Variance(values) >= recurringVarianceShare*mean {
			continue
		}
		span := utils.DaysBetween(g.Transactions[0].Date, g.Transactions[n-1].Date)
		freq := ClassifyFrequency(span / float64(n-1))
		if freq != FrequencyMonthly {
			continue
		}

		monthly := utils.RoundMoney(mean)
		yearly := utils.RoundMoney(mean * 12)
		impact := models.ImpactLow
		switch {
		case yearly >= 300:
			impact = models.ImpactHigh
		case yearly >= 100:
			impact = models.ImpactMedium
		}
		insights = append(insights, models.PersonalizedInsight{
			ID:               insightID(models.InsightHiddenFees, "recurring-"+g.Key),
			Type:             models.InsightHiddenFees,
			Title:            fmt.Sprintf("Abonnement détecté : %s", g.Label),
			Description:      fmt.Sprintf("%s vous coûte %.2f par mois, soit %.2f par an.", g.Label, monthly, yearly),
			Impact:           impact,
			ActionSuggestion: "Vérifiez que vous utilisez encore ce service, sinon résiliez-le.",
			DataSource:       "transactions",
			RelevanceScore:   0.75,
			PersonalizedData: models.HiddenFeesData{
				Kind:          models.HiddenFeeRecurring,
				Description:   g.Label,
				Frequency:     string(freq),
				Occurrences:   n,
				MonthlyAmount: monthly,
				YearlyAmount:  yearly,
			},
		})
	}

	var fees []float64
	for _, tx := range expenses {
		if psychology.IsFeeDescription(tx.Description) {
			fees = append(fees, tx.Value)
		}
	}
	if len(fees) > 0 {
		total := utils.RoundMoney(utils.SumMoney(fees))
		impact := models.ImpactLow
		if total > 50 {
			impact = models.ImpactMedium
		}
		insights = append(insights, models.PersonalizedInsight{
			ID:               insightID(models.InsightHiddenFees, "bank-fees"),
			Type:             models.InsightHiddenFees,
			Title:            "Frais bancaires",
			Description:      fmt.Sprintf("%d prélèvements de frais ou commissions pour un total de %.2f.", len(fees), total),
			Impact:           impact,
			ActionSuggestion: "Comparez votre offre bancaire ou négociez la suppression de ces frais.",
			DataSource:       "transactions",
			RelevanceScore:   0.6,
			PersonalizedData: models.HiddenFeesData{
				Kind:        models.HiddenFeeBankFees,
				Occurrences: len(fees),
				TotalFees:   total,
			},
		})
	}

	return insights, nil
}
