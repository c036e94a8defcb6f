package processors

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/username/moneymirror/src/models"
	"github.com/username/moneymirror/src/psychology"
	"github.com/username/moneymirror/src/utils"
)

const (
	symbolicMinAmount      = 1.0
	symbolicMaxAmount      = 15.0
	symbolicMinOccurrences = 3
	averageTolerance       = 2.0
	totalTolerance         = 5.0
)

type symbolicAnalyzer struct {
	references []psychology.ReferenceItem
}

// NewSymbolicAnalyzer restates repeated small purchases as everyday items.
func NewSymbolicAnalyzer() Analyzer {
	return &symbolicAnalyzer{references: psychology.ReferencePrices()}
}

func (a *symbolicAnalyzer) Name() string { return "symbolic_comparison" }

// matchReference tries the average against every item first, then the total.
func (a *symbolicAnalyzer) matchReference(avg, total float64) (psychology.ReferenceItem, bool) {
	for _, ref := range a.references {
		if math.Abs(avg-ref.Price) <= averageTolerance {
			return ref, true
		}
	}
	for _, ref := range a.references {
		if math.Abs(total-ref.Price) <= totalTolerance {
			return ref, true
		}
	}
	return psychology.ReferenceItem{}, false
}

func (a *symbolicAnalyzer) Analyze(transactions []models.Transaction) ([]models.PersonalizedInsight, error) {
	var small []models.Transaction
	for _, tx := range expensesOf(transactions) {
		if tx.Value >= symbolicMinAmount && tx.Value <= symbolicMaxAmount {
			small = append(small, tx)
		}
	}

	groups := GroupBy(small,
		func(tx models.Transaction) string {
			if d := NormalizeDescription(tx.Description); d != "" {
				return d
			}
			return NormalizeDescription(tx.Category)
		},
		func(tx models.Transaction) string {
			if tx.Description != "" {
				return tx.Description
			}
			return tx.Category
		})

	var insights []models.PersonalizedInsight
	for _, g := range groups {
		if len(g.Transactions) < symbolicMinOccurrences {
			continue
		}
		values := g.Values()
		total := utils.SumMoney(values)
		avg := total / float64(len(values))
		ref, ok := a.matchReference(avg, total)
		if !ok {
			continue
		}
		count := int(decimal.NewFromFloat(total).Div(decimal.NewFromFloat(ref.Price)).Floor().IntPart())
		if count < 1 {
			continue
		}

		insights = append(insights, models.PersonalizedInsight{
			ID:               insightID(models.InsightSymbolicComparison, g.Key+"-"+ref.Name),
			Type:             models.InsightSymbolicComparison,
			Title:            fmt.Sprintf("%s en %s", g.Label, ref.Name),
			Description:      fmt.Sprintf("Vos %d achats « %s » (%.2f) équivalent à %d × %s.", len(values), g.Label, total, count, ref.Name),
			Impact:           models.ImpactLow,
			ActionSuggestion: "Visualisez chaque petit achat comme un objet concret avant de payer.",
			DataSource:       "transactions",
			RelevanceScore:   utils.Clamp01(0.5 + float64(count)/100),
			PersonalizedData: models.SymbolicComparisonData{
				OriginalItem:    g.Label,
				OriginalCount:   len(values),
				TotalSpent:      utils.RoundMoney(total),
				ComparisonItem:  ref.Name,
				ComparisonCount: count,
			},
		})
	}
	return insights, nil
}
