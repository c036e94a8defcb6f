package processors

import (
	"fmt"
	"math"
	"time"

	"github.com/username/moneymirror/src/models"
	"github.com/username/moneymirror/src/psychology"
	"github.com/username/moneymirror/src/utils"
)

// Detector thresholds. The increments and caps are heuristic and kept as-is.
const (
	anchoringRatioThreshold    = 0.5
	anchoringIncrement         = 0.2
	anchoringEmitThreshold     = 0.4
	anchoringCap               = 0.9
	anchoringImpactShare       = 0.10
	lossAversionSavingsFactor  = 3.0
	lossAversionSavingsBoost   = 0.3
	insuranceShareThreshold    = 0.15
	lossAversionInsuranceBoost = 0.2
	lossAversionEmitThreshold  = 0.3
	lossAversionCap            = 0.8
	lossAversionImpactShare    = 0.05
	impulsiveRatioThreshold    = 0.3
	lowSavingsRateThreshold    = 0.1
	lowSavingsPenalty          = 0.3
	presentBiasEmitThreshold   = 0.4
	presentBiasCap             = 0.9
	presentBiasImpactShare     = 0.30
)

// biasInput holds the aggregates every detector reads.
type biasInput struct {
	transactions     []models.Transaction
	emotions         []models.EmotionalEntry
	expenses         []models.Transaction
	totalExpense     float64
	income           float64
	savings          float64
	investments      float64
	insurance        float64
	discretionary    float64
	discretionaryIDs []string
}

func newBiasInput(transactions []models.Transaction, emotions []models.EmotionalEntry) *biasInput {
	in := &biasInput{transactions: transactions, emotions: emotions}
	for _, tx := range transactions {
		switch tx.Domain {
		case models.DomainExpense:
			in.expenses = append(in.expenses, tx)
			in.totalExpense += tx.Value
			if psychology.IsInsurance(tx.Category) {
				in.insurance += tx.Value
			}
			if psychology.IsDiscretionary(tx.Category) {
				in.discretionary += tx.Value
				in.discretionaryIDs = append(in.discretionaryIDs, tx.ID)
			}
		case models.DomainIncome:
			in.income += tx.Value
		case models.DomainSavings:
			in.savings += tx.Value
		case models.DomainInvestment:
			in.investments += tx.Value
		}
	}
	return in
}

type detectorFunc func(in *biasInput) *models.BiasDetectionResult

type biasDetectorImpl struct {
	now       Clock
	detectors []detectorFunc
}

// NewBiasDetector builds the detector chain. now stamps DetectedAt.
func NewBiasDetector(now Clock) BiasDetector {
	if now == nil {
		now = time.Now
	}
	return &biasDetectorImpl{
		now: now,
		detectors: []detectorFunc{
			detectAnchoring,
			detectLossAversion,
			detectPresentBias,
			detectConfirmationBias,
			detectEndowmentEffect,
		},
	}
}

func (d *biasDetectorImpl) Detect(transactions []models.Transaction, emotions []models.EmotionalEntry) []models.BiasDetectionResult {
	in := newBiasInput(sortedByDate(transactions), emotions)
	detectedAt := d.now()

	results := []models.BiasDetectionResult{}
	for _, detect := range d.detectors {
		if r := detect(in); r != nil {
			r.DetectedAt = detectedAt
			r.Confidence = utils.RoundFloat(r.Confidence, 4)
			r.FinancialImpact = utils.RoundMoney(r.FinancialImpact)
			results = append(results, *r)
		}
	}
	return results
}

// anchoringRatio is the population variance over the mean of the amounts.
func anchoringRatio(values []float64) float64 {
	mean := utils.Mean(values)
	if mean <= 0 {
		return 0
	}
	return utils.Variance(values) / mean
}

func detectAnchoring(in *biasInput) *models.BiasDetectionResult {
	var confidence float64
	var evidence, related []string

	for _, g := range GroupByCategory(in.expenses) {
		if len(g.Transactions) < 2 {
			continue
		}
		ratio := anchoringRatio(g.Values())
		if ratio <= anchoringRatioThreshold {
			continue
		}
		confidence += anchoringIncrement
		evidence = append(evidence, fmt.Sprintf("Montants très variables en %s (ratio variance/moyenne %.2f)", g.Label, ratio))
		for _, tx := range g.Transactions {
			related = append(related, tx.ID)
		}
	}

	if confidence <= anchoringEmitThreshold {
		return nil
	}
	return &models.BiasDetectionResult{
		BiasID:              psychology.BiasAnchoring,
		Confidence:          math.Min(confidence, anchoringCap),
		Evidence:            evidence,
		FinancialImpact:     in.totalExpense * anchoringImpactShare,
		RelatedTransactions: related,
	}
}

func detectLossAversion(in *biasInput) *models.BiasDetectionResult {
	var confidence float64
	var evidence []string

	if in.savings > 0 && in.savings > lossAversionSavingsFactor*in.investments {
		confidence += lossAversionSavingsBoost
		evidence = append(evidence, fmt.Sprintf("Épargne (%.2f) plus de trois fois supérieure aux investissements (%.2f)", in.savings, in.investments))
	}
	if in.income > 0 {
		share := in.insurance / in.income
		if share > insuranceShareThreshold {
			confidence += lossAversionInsuranceBoost
			evidence = append(evidence, fmt.Sprintf("Les assurances représentent %.0f%% des revenus", share*100))
		}
	}

	if confidence <= lossAversionEmitThreshold {
		return nil
	}
	return &models.BiasDetectionResult{
		BiasID:          psychology.BiasLossAversion,
		Confidence:      math.Min(confidence, lossAversionCap),
		Evidence:        evidence,
		FinancialImpact: in.savings * lossAversionImpactShare,
	}
}

func detectPresentBias(in *biasInput) *models.BiasDetectionResult {
	var confidence float64
	var evidence []string

	if in.totalExpense > 0 {
		ratio := in.discretionary / in.totalExpense
		if ratio > impulsiveRatioThreshold {
			confidence += ratio
			evidence = append(evidence, fmt.Sprintf("%.0f%% des dépenses sont discrétionnaires", ratio*100))
		}
	}
	if in.income > 0 {
		rate := in.savings / in.income
		if rate < lowSavingsRateThreshold {
			confidence += lowSavingsPenalty
			evidence = append(evidence, fmt.Sprintf("Taux d'épargne de %.0f%%, sous le seuil de 10%%", rate*100))
		}
	}

	if confidence <= presentBiasEmitThreshold {
		return nil
	}
	return &models.BiasDetectionResult{
		BiasID:              psychology.BiasPresentBias,
		Confidence:          math.Min(confidence, presentBiasCap),
		Evidence:            evidence,
		FinancialImpact:     in.discretionary * presentBiasImpactShare,
		RelatedTransactions: in.discretionaryIDs,
	}
}

// Transaction data alone carries no signal for these two.
func detectConfirmationBias(*biasInput) *models.BiasDetectionResult { return nil }
func detectEndowmentEffect(*biasInput) *models.BiasDetectionResult  { return nil }
