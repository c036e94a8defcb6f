package processors

import (
	"sort"
	"strings"
	"unicode"

	"github.com/username/moneymirror/src/models"
)

// Group is an ordered bucket of transactions sharing a key.
type Group struct {
	Key          string
	Label        string
	Transactions []models.Transaction
}

func (g Group) Values() []float64 {
	values := make([]float64, len(g.Transactions))
	for i, tx := range g.Transactions {
		values[i] = tx.Value
	}
	return values
}

// NormalizeDescription lowercases and trims a description. No locale folding
// is applied, so "Café" and "cafe" stay distinct.
func NormalizeDescription(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// GroupBy buckets transactions by key, keeping groups in order of first
// appearance. Transactions with an empty key are skipped. Label is the raw
// value of the first member, as returned by label.
func GroupBy(transactions []models.Transaction, key, label func(models.Transaction) string) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, tx := range transactions {
		k := key(tx)
		if k == "" {
			continue
		}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k, Label: label(tx)})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
	}
	return groups
}

// GroupByDescription groups on the normalized description.
func GroupByDescription(transactions []models.Transaction) []Group {
	return GroupBy(transactions,
		func(tx models.Transaction) string { return NormalizeDescription(tx.Description) },
		func(tx models.Transaction) string { return strings.TrimSpace(tx.Description) })
}

// GroupByCategory groups on the exact category string.
func GroupByCategory(transactions []models.Transaction) []Group {
	return GroupBy(transactions,
		func(tx models.Transaction) string { return tx.Category },
		func(tx models.Transaction) string { return tx.Category })
}

func expensesOf(transactions []models.Transaction) []models.Transaction {
	var out []models.Transaction
	for _, tx := range transactions {
		if tx.IsExpense() {
			out = append(out, tx)
		}
	}
	return out
}

func sumValues(transactions []models.Transaction) float64 {
	var total float64
	for _, tx := range transactions {
		total += tx.Value
	}
	return total
}

// sortedByDate returns a copy ordered by date, then id.
func sortedByDate(transactions []models.Transaction) []models.Transaction {
	out := make([]models.Transaction, len(transactions))
	copy(out, transactions)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// AttachEmotions copies mood from journal entries onto the transactions they
// reference, unless the transaction already carries its own context.
func AttachEmotions(transactions []models.Transaction, entries []models.EmotionalEntry) []models.Transaction {
	if len(entries) == 0 {
		return transactions
	}
	byTx := make(map[string]models.EmotionalEntry)
	for _, e := range entries {
		if e.TransactionID != "" {
			byTx[e.TransactionID] = e
		}
	}
	out := make([]models.Transaction, len(transactions))
	for i, tx := range transactions {
		if e, ok := byTx[tx.ID]; ok && tx.EmotionalContext == nil {
			tx.EmotionalContext = &models.EmotionalContext{Mood: e.Mood, Tags: e.Tags, Notes: e.Notes}
		}
		out[i] = tx
	}
	return out
}

// insightID derives a stable id from the insight type and a semantic key.
func insightID(t models.InsightType, key string) string {
	var b strings.Builder
	b.WriteString(string(t))
	b.WriteByte('-')
	dash := false
	for _, r := range strings.ToLower(key) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
