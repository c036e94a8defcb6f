package processors

import (
	"fmt"

	"github.com/username/moneymirror/src/models"
	"github.com/username/moneymirror/src/utils"
)

const (
	savingsReductionShare = 0.20
	savingsRelevance      = 0.85
)

type savingsAnalyzer struct{}

// NewSavingsAnalyzer simulates a fixed reduction on the top spending category.
func NewSavingsAnalyzer() Analyzer {
	return &savingsAnalyzer{}
}

func (a *savingsAnalyzer) Name() string { return "savings_simulation" }

func (a *savingsAnalyzer) Analyze(transactions []models.Transaction) ([]models.PersonalizedInsight, error) {
	expenses := expensesOf(transactions)
	if len(expenses) == 0 {
		return nil, nil
	}

	months := make(map[string]bool)
	for _, tx := range expenses {
		months[utils.MonthKey(tx.Date)] = true
	}

	var top Group
	var topAmount float64
	for _, g := range GroupByCategory(expenses) {
		if amount := utils.SumMoney(g.Values()); amount > topAmount {
			top, topAmount = g, amount
		}
	}
	if top.Key == "" {
		return nil, nil
	}

	monthlySpend := topAmount / float64(len(months))
	monthlySavings := utils.RoundMoney(monthlySpend * savingsReductionShare)
	yearlySavings := utils.RoundMoney(monthlySpend * savingsReductionShare * 12)

	impact := models.ImpactLow
	switch {
	case yearlySavings >= 1000:
		impact = models.ImpactHigh
	case yearlySavings >= 200:
		impact = models.ImpactMedium
	}

	return []models.PersonalizedInsight{{
		ID:               insightID(models.InsightSavingsSimulation, top.Key),
		Type:             models.InsightSavingsSimulation,
		Title:            fmt.Sprintf("Et si vous réduisiez %s de 20 %% ?", top.Label),
		Description:      fmt.Sprintf("Vous économiseriez %.2f par mois, soit %.2f par an.", monthlySavings, yearlySavings),
		Impact:           impact,
		ActionSuggestion: fmt.Sprintf("Essayez pendant un mois de réduire vos dépenses en %s.", top.Label),
		DataSource:       "transactions",
		RelevanceScore:   savingsRelevance,
		PersonalizedData: models.SavingsSimulationData{
			Category:               top.Label,
			CurrentMonthlySpending: utils.RoundMoney(monthlySpend),
			ReductionPercentage:    savingsReductionShare * 100,
			MonthlySavings:         monthlySavings,
			YearlySavings:          yearlySavings,
		},
	}}, nil
}
