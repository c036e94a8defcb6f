package processors

import (
	"fmt"
	"math"

	"github.com/username/moneymirror/src/models"
	"github.com/username/moneymirror/src/utils"
)

const (
	emotionMinTransactions = 5
	emotionDeviationShare  = 0.20
	emotionHighDeviation   = 0.50
)

type moodBucket struct {
	name      string
	maxMood   int
	overName  string
	underName string
}

// moodBuckets are checked in order; the last one catches every higher mood.
var moodBuckets = []moodBucket{
	{name: "triste", maxMood: 3, overName: "Acheteur de réconfort", underName: "Économe mélancolique"},
	{name: "neutre", maxMood: 5, overName: "Dépensier routinier", underName: "Gestionnaire posé"},
	{name: "content", maxMood: 7, overName: "Épicurien serein", underName: "Équilibré satisfait"},
	{name: "joyeux", maxMood: math.MaxInt, overName: "Célébrateur généreux", underName: "Joyeux prudent"},
}

func bucketFor(mood int) int {
	for i, b := range moodBuckets {
		if mood <= b.maxMood {
			return i
		}
	}
	return len(moodBuckets) - 1
}

type emotionAnalyzer struct{}

// NewEmotionAnalyzer correlates spend per mood bucket against the global average.
func NewEmotionAnalyzer() Analyzer {
	return &emotionAnalyzer{}
}

func (a *emotionAnalyzer) Name() string { return "emotional_correlation" }

func (a *emotionAnalyzer) Analyze(transactions []models.Transaction) ([]models.PersonalizedInsight, error) {
	var tagged []models.Transaction
	for _, tx := range expensesOf(transactions) {
		if tx.EmotionalContext != nil {
			tagged = append(tagged, tx)
		}
	}
	if len(tagged) < emotionMinTransactions {
		return nil, nil
	}

	all := make([]float64, len(tagged))
	perBucket := make([][]float64, len(moodBuckets))
	for i, tx := range tagged {
		all[i] = tx.Value
		b := bucketFor(tx.EmotionalContext.Mood)
		perBucket[b] = append(perBucket[b], tx.Value)
	}
	global := utils.Mean(all)
	if global <= 0 {
		return nil, nil
	}

	var insights []models.PersonalizedInsight
	for i, values := range perBucket {
		if len(values) == 0 {
			continue
		}
		avg := utils.Mean(values)
		deviation := (avg - global) / global
		if math.Abs(deviation) <= emotionDeviationShare {
			continue
		}

		bucket := moodBuckets[i]
		archetype, direction := bucket.underName, "moins"
		if deviation > 0 {
			archetype, direction = bucket.overName, "plus"
		}
		impact := models.ImpactMedium
		if math.Abs(deviation) > emotionHighDeviation {
			impact = models.ImpactHigh
		}
		pct := utils.RoundFloat(deviation*100, 1)

		insights = append(insights, models.PersonalizedInsight{
			ID:               insightID(models.InsightEmotionalCorrelation, bucket.name),
			Type:             models.InsightEmotionalCorrelation,
			Title:            fmt.Sprintf("Profil « %s »", archetype),
			Description:      fmt.Sprintf("Quand vous êtes %s, vous dépensez %.0f%% de %s que d'habitude.", bucket.name, math.Abs(pct), direction),
			Impact:           impact,
			ActionSuggestion: "Avant un achat, notez votre humeur et attendez quelques minutes.",
			DataSource:       "transactions+emotions",
			RelevanceScore:   utils.Clamp01(math.Abs(deviation)),
			PersonalizedData: models.EmotionalCorrelationData{
				MoodRange:       bucket.name,
				Archetype:       archetype,
				AverageSpending: utils.RoundMoney(avg),
				GlobalAverage:   utils.RoundMoney(global),
				Deviation:       pct,
				Transactions:    len(values),
			},
		})
	}
	return insights, nil
}
