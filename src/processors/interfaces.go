package processors

import (
	"errors"
	"time"

	"github.com/username/moneymirror/src/models"
)

// ErrAnalyzer marks a failure isolated to a single analyzer run.
var ErrAnalyzer = errors.New("analyzer failed")

// BiasDetector runs every bias detector over a transaction set. Detection is a
// pure recomputation; identical inputs give identical results.
type BiasDetector interface {
	Detect(transactions []models.Transaction, emotions []models.EmotionalEntry) []models.BiasDetectionResult
}

// Analyzer produces zero or more insights of its own types.
type Analyzer interface {
	Name() string
	Analyze(transactions []models.Transaction) ([]models.PersonalizedInsight, error)
}

// InsightProcessor runs all analyzers and ranks their output.
type InsightProcessor interface {
	Generate(transactions []models.Transaction) []models.PersonalizedInsight
}

// MicroInsightProjector turns insights and bias results into short display items.
type MicroInsightProjector interface {
	ProjectInsights(insights []models.PersonalizedInsight, context models.DisplayContext) []models.MicroInsight
	ProjectBiases(results []models.BiasDetectionResult, context models.DisplayContext) []models.MicroInsight
}

// RandomSource returns a float in [0, 1). A nil source disables random picks.
type RandomSource func() float64

// Clock returns the current time.
type Clock func() time.Time
