package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestPersonalizedInsight_DecodesPayloadByType(t *testing.T) {
	tests := []struct {
		name string
		in   PersonalizedInsight
	}{
		{"spending", PersonalizedInsight{ID: "a", Type: InsightSpendingPattern, Impact: ImpactHigh,
			PersonalizedData: SpendingPatternData{Category: "Loisirs", Amount: 420, Percentage: 61.5}}},
		{"hidden fees", PersonalizedInsight{ID: "b", Type: InsightHiddenFees, Impact: ImpactMedium,
			PersonalizedData: HiddenFeesData{Kind: HiddenFeeRecurring, Description: "netflix", Frequency: "monthly", Occurrences: 3, MonthlyAmount: 15, YearlyAmount: 180}}},
		{"symbolic", PersonalizedInsight{ID: "c", Type: InsightSymbolicComparison, Impact: ImpactLow,
			PersonalizedData: SymbolicComparisonData{OriginalItem: "café", OriginalCount: 5, TotalSpent: 17.5, ComparisonItem: "café", ComparisonCount: 5}}},
		{"onboarding", PersonalizedInsight{ID: "d", Type: InsightOnboarding, Impact: ImpactLow,
			PersonalizedData: OnboardingData{Steps: []string{"add", "review"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			var got PersonalizedInsight
			if err := json.Unmarshal(b, &got); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.in) {
				t.Errorf("decoded insight mismatch:\n got  %+v\n want %+v", got, tt.in)
			}
			if got.PersonalizedData.InsightType() != got.Type {
				t.Errorf("payload type %s does not match insight type %s", got.PersonalizedData.InsightType(), got.Type)
			}
		})
	}
}

func TestPersonalizedInsight_RejectsUnknownType(t *testing.T) {
	var got PersonalizedInsight
	err := json.Unmarshal([]byte(`{"id":"x","type":"horoscope","personalizedData":{}}`), &got)
	if err == nil {
		t.Fatal("expected error for unknown insight type")
	}
}

func TestImpactWeight(t *testing.T) {
	if ImpactHigh.Weight() <= ImpactMedium.Weight() || ImpactMedium.Weight() <= ImpactLow.Weight() {
		t.Errorf("impact weights are not ordered: high=%v medium=%v low=%v",
			ImpactHigh.Weight(), ImpactMedium.Weight(), ImpactLow.Weight())
	}
}

func TestFinancialSnapshot_NetWorth(t *testing.T) {
	s := FinancialSnapshot{Savings: 1000, Investments: 500, Debt: 300}
	if got := s.NetWorth(); got != 1200 {
		t.Errorf("NetWorth = %v, want 1200", got)
	}
}
