package processors

import (
	"fmt"
	"time"

	"github.com/username/moneymirror/src/models"
)

var baseDay = time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC) // a Monday

func day(offset int) time.Time {
	return baseDay.AddDate(0, 0, offset)
}

func expense(id string, value float64, category string, date time.Time) models.Transaction {
	return models.Transaction{
		ID:         id,
		Value:      value,
		Domain:     models.DomainExpense,
		Category:   category,
		Date:       date,
		Source:     models.SourceManual,
		Confidence: 1,
	}
}

func withDomain(tx models.Transaction, d models.Domain) models.Transaction {
	tx.Domain = d
	return tx
}

func withDescription(tx models.Transaction, desc string) models.Transaction {
	tx.Description = desc
	return tx
}

func withMood(tx models.Transaction, mood int) models.Transaction {
	tx.EmotionalContext = &models.EmotionalContext{Mood: mood}
	return tx
}

// series builds n expenses in one category from the given values, one per day.
func series(prefix, category string, values ...float64) []models.Transaction {
	out := make([]models.Transaction, len(values))
	for i, v := range values {
		out[i] = expense(fmt.Sprintf("%s-%d", prefix, i), v, category, day(i))
	}
	return out
}

func findByType(insights []models.PersonalizedInsight, t models.InsightType) []models.PersonalizedInsight {
	var out []models.PersonalizedInsight
	for _, in := range insights {
		if in.Type == t {
			out = append(out, in)
		}
	}
	return out
}
