package models

import "time"

// BiasDetectionResult is one detector's finding for a single detection run.
// Results are recomputed on every run and never stored as mutable state.
type BiasDetectionResult struct {
	BiasID              string    `json:"biasId"`
	Confidence          float64   `json:"confidence"`
	Evidence            []string  `json:"evidence"`
	FinancialImpact     float64   `json:"financialImpact"`
	DetectedAt          time.Time `json:"detectedAt"`
	RelatedTransactions []string  `json:"relatedTransactions,omitempty"`
}
