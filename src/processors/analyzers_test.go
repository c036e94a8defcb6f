package processors

import (
	"testing"

	"github.com/username/moneymirror/src/models"
)

func TestClassifyFrequency(t *testing.T) {
	tests := []struct {
		days float64
		want Frequency
	}{
		{1, FrequencyDaily},
		{7, FrequencyDaily},
		{7.5, FrequencyWeekly},
		{14, FrequencyWeekly},
		{30, FrequencyMonthly},
		{35, FrequencyMonthly},
		{36, FrequencyQuarterly},
		{100, FrequencyQuarterly},
		{365, FrequencyYearly},
	}
	for _, tt := range tests {
		if got := ClassifyFrequency(tt.days); got != tt.want {
			t.Errorf("ClassifyFrequency(%v) = %s, want %s", tt.days, got, tt.want)
		}
	}
}

func TestHiddenFees_SkipsVariableAndNonMonthly(t *testing.T) {
	var txs []models.Transaction
	for i, v := range []float64{9.99, 30, 4} {
		txs = append(txs, withDescription(expense("v"+string(rune('a'+i)), v, "Divers", day(i*30)), "Marché"))
	}
	for i := 0; i < 4; i++ {
		txs = append(txs, withDescription(expense("w"+string(rune('a'+i)), 5, "Presse", day(i*7)), "Journal"))
	}

	insights, err := NewHiddenFeeAnalyzer().Analyze(txs)
	if err != nil {
		t.Fatal(err)
	}
	if len(insights) != 0 {
		t.Errorf("expected no recurring insight, got %+v", insights)
	}
}

func TestHiddenFees_BankFees(t *testing.T) {
	txs := []models.Transaction{
		withDescription(expense("f1", 2.5, "Banque", day(0)), "Frais de tenue de compte"),
		withDescription(expense("f2", 8, "Banque", day(3)), "AGIOS trimestriels"),
		withDescription(expense("x", 40, "Courses", day(4)), "Supermarché"),
	}
	insights, _ := NewHiddenFeeAnalyzer().Analyze(txs)
	if len(insights) != 1 {
		t.Fatalf("expected one bank fee insight, got %+v", insights)
	}
	data := insights[0].PersonalizedData.(models.HiddenFeesData)
	if data.Kind != models.HiddenFeeBankFees || data.Occurrences != 2 || data.TotalFees != 10.5 {
		t.Errorf("unexpected bank fee data %+v", data)
	}
}

func TestSpendingPattern_MicroAndWeekend(t *testing.T) {
	var txs []models.Transaction
	for i := 0; i < 11; i++ {
		// day(5) and day(6) are Saturday and Sunday
		txs = append(txs, expense("c"+string(rune('a'+i)), 2, "Café", day(5+(i%2))))
	}
	txs = append(txs, expense("big", 20, "Courses", day(1)))

	insights, err := NewSpendingPatternAnalyzer().Analyze(txs)
	if err != nil {
		t.Fatal(err)
	}

	micro := findByType(insights, models.InsightMicroSpending)
	if len(micro) != 1 {
		t.Fatalf("expected micro-spending insight, got %+v", insights)
	}
	if d := micro[0].PersonalizedData.(models.MicroSpendingData); d.Count != 11 || d.MicroTotal != 22 {
		t.Errorf("unexpected micro data %+v", d)
	}

	temporal := findByType(insights, models.InsightTemporalPattern)
	if len(temporal) != 1 {
		t.Fatalf("expected temporal insight, got %+v", insights)
	}
	if d := temporal[0].PersonalizedData.(models.TemporalPatternData); d.WeekendAmount != 22 || d.WeekendPercentage != 52.38 {
		t.Errorf("unexpected temporal data %+v", d)
	}
}

func TestSpendingPattern_IgnoresNonExpenses(t *testing.T) {
	txs := []models.Transaction{
		withDomain(expense("i", 3000, "Salaire", day(0)), models.DomainIncome),
		expense("a", 100, "Courses", day(1)),
		expense("b", 100, "Transport", day(2)),
		expense("c", 100, "Santé", day(3)),
		expense("d", 100, "Énergie", day(4)),
	}
	insights, _ := NewSpendingPatternAnalyzer().Analyze(txs)
	if p := findByType(insights, models.InsightSpendingPattern); len(p) != 0 {
		t.Errorf("income should not count as spending: %+v", p)
	}
}

func TestEmotionAnalyzer(t *testing.T) {
	txs := []models.Transaction{
		withMood(expense("s1", 100, "Shopping", day(0)), 2),
		withMood(expense("s2", 100, "Shopping", day(1)), 3),
		withMood(expense("c1", 20, "Courses", day(2)), 6),
		withMood(expense("c2", 20, "Courses", day(3)), 6),
		withMood(expense("c3", 20, "Courses", day(4)), 7),
		withMood(expense("c4", 20, "Courses", day(5)), 6),
	}
	insights, err := NewEmotionAnalyzer().Analyze(txs)
	if err != nil {
		t.Fatal(err)
	}
	if len(insights) != 2 {
		t.Fatalf("expected two mood insights, got %+v", insights)
	}

	byRange := map[string]models.EmotionalCorrelationData{}
	for _, in := range insights {
		d := in.PersonalizedData.(models.EmotionalCorrelationData)
		byRange[d.MoodRange] = d
		if in.Impact != models.ImpactHigh {
			t.Errorf("expected high impact for %s, got %s", d.MoodRange, in.Impact)
		}
	}
	if byRange["triste"].Archetype != "Acheteur de réconfort" {
		t.Errorf("sad archetype = %q", byRange["triste"].Archetype)
	}
	if byRange["content"].Archetype != "Équilibré satisfait" {
		t.Errorf("content archetype = %q", byRange["content"].Archetype)
	}
}

func TestEmotionAnalyzer_NeedsFiveTagged(t *testing.T) {
	txs := []models.Transaction{
		withMood(expense("a", 100, "Shopping", day(0)), 2),
		withMood(expense("b", 10, "Courses", day(1)), 8),
		withMood(expense("c", 10, "Courses", day(2)), 8),
		withMood(expense("d", 10, "Courses", day(3)), 8),
		expense("e", 10, "Courses", day(4)),
	}
	if insights, _ := NewEmotionAnalyzer().Analyze(txs); len(insights) != 0 {
		t.Errorf("expected nothing below five tagged transactions, got %+v", insights)
	}
}

func TestSavingsAnalyzer(t *testing.T) {
	txs := []models.Transaction{
		expense("a", 300, "Restaurant", day(0)),
		expense("b", 300, "Restaurant", day(31)),
		expense("c", 100, "Transport", day(2)),
	}
	insights, _ := NewSavingsAnalyzer().Analyze(txs)
	if len(insights) != 1 {
		t.Fatalf("expected exactly one simulation, got %d", len(insights))
	}
	d := insights[0].PersonalizedData.(models.SavingsSimulationData)
	if d.Category != "Restaurant" || d.CurrentMonthlySpending != 300 || d.MonthlySavings != 60 || d.YearlySavings != 720 {
		t.Errorf("unexpected simulation %+v", d)
	}
	if d.ReductionPercentage != 20 {
		t.Errorf("reduction = %v", d.ReductionPercentage)
	}

	if none, _ := NewSavingsAnalyzer().Analyze(nil); len(none) != 0 {
		t.Error("expected no simulation without expenses")
	}
}

func TestSymbolicAnalyzer_MatchesInTableOrder(t *testing.T) {
	var txs []models.Transaction
	for i := 0; i < 3; i++ {
		txs = append(txs, withDescription(expense("m"+string(rune('a'+i)), 6, "Presse", day(i)), "Kiosque"))
	}
	insights, _ := NewSymbolicAnalyzer().Analyze(txs)
	if len(insights) != 1 {
		t.Fatalf("expected one comparison, got %+v", insights)
	}
	d := insights[0].PersonalizedData.(models.SymbolicComparisonData)
	if d.ComparisonItem != "magazine" || d.ComparisonCount != 3 || d.OriginalItem != "Kiosque" {
		t.Errorf("unexpected comparison %+v", d)
	}
}

func TestTrendAnalyzer(t *testing.T) {
	feb := baseDay.AddDate(0, -1, 0)
	tests := []struct {
		name       string
		prev, cur  float64
		wantEmit   bool
		wantImpact models.Impact
	}{
		{"large increase", 100, 150, true, models.ImpactHigh},
		{"moderate decrease", 100, 85, true, models.ImpactMedium},
		{"within ten percent", 100, 109, false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txs := []models.Transaction{
				expense("p", tt.prev, "Courses", feb),
				expense("c", tt.cur, "Courses", baseDay),
			}
			insights, _ := NewTrendAnalyzer().Analyze(txs)
			if (len(insights) == 1) != tt.wantEmit {
				t.Fatalf("emitted %d insights, want emit=%v", len(insights), tt.wantEmit)
			}
			if !tt.wantEmit {
				return
			}
			if insights[0].Impact != tt.wantImpact {
				t.Errorf("impact = %s, want %s", insights[0].Impact, tt.wantImpact)
			}
			d := insights[0].PersonalizedData.(models.TrendData)
			if d.CurrentMonth != "2024-03" || d.PreviousMonth != "2024-02" {
				t.Errorf("unexpected months %+v", d)
			}
		})
	}
}

func TestGroupByDescription_NormalizesAndKeepsOrder(t *testing.T) {
	txs := []models.Transaction{
		withDescription(expense("1", 1, "X", day(0)), "  Spotify "),
		withDescription(expense("2", 1, "X", day(1)), "Boulangerie"),
		withDescription(expense("3", 1, "X", day(2)), "SPOTIFY"),
		expense("4", 1, "X", day(3)),
	}
	groups := GroupByDescription(txs)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Key != "spotify" || len(groups[0].Transactions) != 2 || groups[0].Label != "Spotify" {
		t.Errorf("unexpected first group %+v", groups[0])
	}
	if groups[1].Key != "boulangerie" {
		t.Errorf("unexpected second group %+v", groups[1])
	}
}

func TestAttachEmotions(t *testing.T) {
	txs := []models.Transaction{
		expense("a", 10, "Courses", day(0)),
		withMood(expense("b", 10, "Courses", day(1)), 9),
	}
	entries := []models.EmotionalEntry{
		{ID: "e1", Mood: 2, TransactionID: "a"},
		{ID: "e2", Mood: 4, TransactionID: "b"},
	}
	got := AttachEmotions(txs, entries)
	if got[0].EmotionalContext == nil || got[0].EmotionalContext.Mood != 2 {
		t.Errorf("expected mood attached to a, got %+v", got[0].EmotionalContext)
	}
	if got[1].EmotionalContext.Mood != 9 {
		t.Errorf("existing context overwritten: %+v", got[1].EmotionalContext)
	}
	if txs[0].EmotionalContext != nil {
		t.Error("AttachEmotions mutated its input")
	}
}
