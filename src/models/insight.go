package models

import (
	"encoding/json"
	"fmt"
)

type InsightType string

const (
	InsightSpendingPattern      InsightType = "spending_pattern"
	InsightHiddenFees           InsightType = "hidden_fees"
	InsightEmotionalCorrelation InsightType = "emotional_correlation"
	InsightSavingsSimulation    InsightType = "savings_simulation"
	InsightSymbolicComparison   InsightType = "symbolic_comparison"
	InsightTrendAnalysis        InsightType = "trend_analysis"
	InsightMicroSpending        InsightType = "micro_spending"
	InsightTemporalPattern      InsightType = "temporal_pattern"
	InsightOnboarding           InsightType = "onboarding"
)

type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// Weight is the ranking weight of an impact level.
func (i Impact) Weight() float64 {
	switch i {
	case ImpactHigh:
		return 3
	case ImpactMedium:
		return 2
	case ImpactLow:
		return 1
	}
	return 0
}

// PersonalizedInsight is an explainable observation produced by one analyzer.
// IDs derive from semantic keys, so identical content yields identical ids.
type PersonalizedInsight struct {
	ID               string      `json:"id"`
	Type             InsightType `json:"type"`
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Impact           Impact      `json:"impact"`
	ActionSuggestion string      `json:"actionSuggestion"`
	DataSource       string      `json:"dataSource"`
	RelevanceScore   float64     `json:"relevanceScore"`
	PersonalizedData InsightData `json:"personalizedData"`
}

// InsightData is the type-specific payload of an insight. Each implementation
// belongs to exactly one InsightType; consumers switch on the concrete type.
type InsightData interface {
	InsightType() InsightType
}

type SpendingPatternData struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

type MicroSpendingData struct {
	Category   string  `json:"category"`
	Count      int     `json:"count"`
	MicroTotal float64 `json:"microTotal"`
	Threshold  float64 `json:"threshold"`
}

type TemporalPatternData struct {
	WeekendAmount     float64 `json:"weekendAmount"`
	WeekendPercentage float64 `json:"weekendPercentage"`
}

// HiddenFeeKind separates recurring subscriptions from bank fees.
type HiddenFeeKind string

const (
	HiddenFeeRecurring HiddenFeeKind = "recurring_charge"
	HiddenFeeBankFees  HiddenFeeKind = "bank_fees"
)

type HiddenFeesData struct {
	Kind          HiddenFeeKind `json:"kind"`
	Description   string        `json:"description,omitempty"`
	Frequency     string        `json:"frequency,omitempty"`
	Occurrences   int           `json:"occurrences"`
	MonthlyAmount float64       `json:"monthlyAmount,omitempty"`
	YearlyAmount  float64       `json:"yearlyAmount,omitempty"`
	TotalFees     float64       `json:"totalFees,omitempty"`
}

type EmotionalCorrelationData struct {
	MoodRange       string  `json:"moodRange"`
	Archetype       string  `json:"archetype"`
	AverageSpending float64 `json:"averageSpending"`
	GlobalAverage   float64 `json:"globalAverage"`
	Deviation       float64 `json:"deviation"`
	Transactions    int     `json:"transactions"`
}

type SavingsSimulationData struct {
	Category               string  `json:"category"`
	CurrentMonthlySpending float64 `json:"currentMonthlySpending"`
	ReductionPercentage    float64 `json:"reductionPercentage"`
	MonthlySavings         float64 `json:"monthlySavings"`
	YearlySavings          float64 `json:"yearlySavings"`
}

type SymbolicComparisonData struct {
	OriginalItem    string  `json:"originalItem"`
	OriginalCount   int     `json:"originalCount"`
	TotalSpent      float64 `json:"totalSpent"`
	ComparisonItem  string  `json:"comparisonItem"`
	ComparisonCount int     `json:"comparisonCount"`
}

type TrendData struct {
	CurrentMonth   string  `json:"currentMonth"`
	PreviousMonth  string  `json:"previousMonth"`
	CurrentAmount  float64 `json:"currentAmount"`
	PreviousAmount float64 `json:"previousAmount"`
	ChangePercent  float64 `json:"changePercent"`
}

type OnboardingData struct {
	Steps []string `json:"steps"`
}

func (SpendingPatternData) InsightType() InsightType      { return InsightSpendingPattern }
func (MicroSpendingData) InsightType() InsightType        { return InsightMicroSpending }
func (TemporalPatternData) InsightType() InsightType      { return InsightTemporalPattern }
func (HiddenFeesData) InsightType() InsightType           { return InsightHiddenFees }
func (EmotionalCorrelationData) InsightType() InsightType { return InsightEmotionalCorrelation }
func (SavingsSimulationData) InsightType() InsightType    { return InsightSavingsSimulation }
func (SymbolicComparisonData) InsightType() InsightType   { return InsightSymbolicComparison }
func (TrendData) InsightType() InsightType                { return InsightTrendAnalysis }
func (OnboardingData) InsightType() InsightType           { return InsightOnboarding }

// newInsightData returns an empty payload for the given type.
func newInsightData(t InsightType) (InsightData, error) {
	switch t {
	case InsightSpendingPattern:
		return &SpendingPatternData{}, nil
	case InsightMicroSpending:
		return &MicroSpendingData{}, nil
	case InsightTemporalPattern:
		return &TemporalPatternData{}, nil
	case InsightHiddenFees:
		return &HiddenFeesData{}, nil
	case InsightEmotionalCorrelation:
		return &EmotionalCorrelationData{}, nil
	case InsightSavingsSimulation:
		return &SavingsSimulationData{}, nil
	case InsightSymbolicComparison:
		return &SymbolicComparisonData{}, nil
	case InsightTrendAnalysis:
		return &TrendData{}, nil
	case InsightOnboarding:
		return &OnboardingData{}, nil
	}
	return nil, fmt.Errorf("unknown insight type %q", t)
}

// UnmarshalJSON decodes personalizedData into the payload matching the insight type.
func (p *PersonalizedInsight) UnmarshalJSON(b []byte) error {
	type alias PersonalizedInsight
	var raw struct {
		alias
		PersonalizedData json.RawMessage `json:"personalizedData"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = PersonalizedInsight(raw.alias)

	data, err := newInsightData(p.Type)
	if err != nil {
		return err
	}
	if len(raw.PersonalizedData) > 0 && string(raw.PersonalizedData) != "null" {
		if err := json.Unmarshal(raw.PersonalizedData, data); err != nil {
			return fmt.Errorf("personalizedData for %s: %w", p.Type, err)
		}
	}
	p.PersonalizedData = derefInsightData(data)
	return nil
}

func derefInsightData(d InsightData) InsightData {
	switch v := d.(type) {
	case *SpendingPatternData:
		return *v
	case *MicroSpendingData:
		return *v
	case *TemporalPatternData:
		return *v
	case *HiddenFeesData:
		return *v
	case *EmotionalCorrelationData:
		return *v
	case *SavingsSimulationData:
		return *v
	case *SymbolicComparisonData:
		return *v
	case *TrendData:
		return *v
	case *OnboardingData:
		return *v
	}
	return d
}

func (p PersonalizedInsight) IndexFields() IndexFields {
	score := p.RelevanceScore
	return IndexFields{Kind: string(p.Type), Amount: &score}
}
