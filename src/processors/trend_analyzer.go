package processors

import (
	"fmt"
	"math"
	"sort"

	"github.com/username/moneymirror/src/models"
	"github.com/username/moneymirror/src/utils"
)

const (
	trendChangeThreshold = 0.10
	trendHighChange      = 0.25
)

type trendAnalyzer struct{}

// NewTrendAnalyzer compares the two most recent calendar months.
func NewTrendAnalyzer() Analyzer {
	return &trendAnalyzer{}
}

func (a *trendAnalyzer) Name() string { return "trend_analysis" }

func (a *trendAnalyzer) Analyze(transactions []models.Transaction) ([]models.PersonalizedInsight, error) {
	monthly := make(map[string][]float64)
	for _, tx := range expensesOf(transactions) {
		key := utils.MonthKey(tx.Date)
		monthly[key] = append(monthly[key], tx.Value)
	}
	if len(monthly) < 2 {
		return nil, nil
	}

	keys := make([]string, 0, len(monthly))
	for k := range monthly {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	curKey, prevKey := keys[len(keys)-1], keys[len(keys)-2]
	cur, prev := utils.SumMoney(monthly[curKey]), utils.SumMoney(monthly[prevKey])
	if prev <= 0 {
		return nil, nil
	}

	change := (cur - prev) / prev
	if math.Abs(change) <= trendChangeThreshold {
		return nil, nil
	}
	impact := models.ImpactMedium
	if math.Abs(change) > trendHighChange {
		impact = models.ImpactHigh
	}
	pct := utils.RoundFloat(change*100, 1)

	title := "Vos dépenses augmentent"
	action := "Identifiez la catégorie qui a le plus progressé ce mois-ci."
	if change < 0 {
		title = "Vos dépenses baissent"
		action = "Continuez ainsi et placez la différence sur votre épargne."
	}

	return []models.PersonalizedInsight{{
		ID:               insightID(models.InsightTrendAnalysis, curKey),
		Type:             models.InsightTrendAnalysis,
		Title:            title,
		Description:      fmt.Sprintf("%.2f en %s contre %.2f en %s (%+.1f%%).", cur, curKey, prev, prevKey, pct),
		Impact:           impact,
		ActionSuggestion: action,
		DataSource:       "transactions",
		RelevanceScore:   utils.Clamp01(math.Abs(change)),
		PersonalizedData: models.TrendData{
			CurrentMonth:   curKey,
			PreviousMonth:  prevKey,
			CurrentAmount:  utils.RoundMoney(cur),
			PreviousAmount: utils.RoundMoney(prev),
			ChangePercent:  pct,
		},
	}}, nil
}
