package parsers

import (
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/username/moneymirror/src/models"
	"github.com/username/moneymirror/src/utils"
)

// ErrMissingColumns is returned when the header lacks a required column.
var ErrMissingColumns = errors.New("missing required CSV columns")

// headerAliases maps accepted header names to canonical columns.
var headerAliases = map[string]string{
	"date":           "date",
	"date opération": "date",
	"amount":         "amount",
	"montant":        "amount",
	"value":          "amount",
	"category":       "category",
	"catégorie":      "category",
	"categorie":      "category",
	"description":    "description",
	"libellé":        "description",
	"libelle":        "description",
	"domain":         "domain",
	"type":           "domain",
	"mood":           "mood",
	"humeur":         "mood",
}

const defaultCategory = "Non catégorisé"

// CSVParser reads a header-driven statement export. Negative amounts are
// expenses and positive amounts income, unless a domain column says otherwise.
type CSVParser struct {
	comma rune
}

func NewCSVParser(comma rune) *CSVParser {
	return &CSVParser{comma: comma}
}

func (p *CSVParser) Parse(file io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(file)
	reader.Comma = p.comma
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := make(map[string]int)
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canonical, ok := headerAliases[name]; ok {
			if _, seen := columns[canonical]; !seen {
				columns[canonical] = i
			}
		}
	}
	for _, required := range []string{"date", "amount"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumns, required)
		}
	}

	result := &ParseResult{}
	occurrences := make(map[string]int)
	line := 1
	for {
		record, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("ligne %d: %v", line, err))
			continue
		}
		if isBlank(record) {
			continue
		}
		tx, err := p.parseRow(record, columns)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("ligne %d: %v", line, err))
			continue
		}
		key := strings.Join(record, "\x1f")
		occurrences[key]++
		tx.ID = rowID(key, occurrences[key])
		result.Transactions = append(result.Transactions, tx)
	}
	return result, nil
}

func (p *CSVParser) parseRow(record []string, columns map[string]int) (models.Transaction, error) {
	field := func(name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	date, err := utils.ParseDate(field("date"))
	if err != nil {
		return models.Transaction{}, err
	}
	amount, err := parseAmount(field("amount"))
	if err != nil {
		return models.Transaction{}, err
	}
	if amount == 0 {
		return models.Transaction{}, fmt.Errorf("zero amount")
	}

	domain := models.DomainIncome
	if amount < 0 {
		domain = models.DomainExpense
	}
	if d := strings.ToLower(field("domain")); d != "" {
		switch models.Domain(d) {
		case models.DomainIncome, models.DomainExpense, models.DomainSavings, models.DomainInvestment, models.DomainDebt:
			domain = models.Domain(d)
		default:
			return models.Transaction{}, fmt.Errorf("unknown domain %q", d)
		}
	}

	category := field("category")
	if category == "" {
		category = defaultCategory
	}

	tx := models.Transaction{
		Value:       utils.RoundMoney(abs(amount)),
		Domain:      domain,
		Category:    category,
		Description: field("description"),
		Date:        date,
		Source:      models.SourceCSV,
		Confidence:  1,
	}
	if m := field("mood"); m != "" {
		mood, err := strconv.Atoi(m)
		if err != nil || mood < 1 || mood > 10 {
			return models.Transaction{}, fmt.Errorf("invalid mood %q", m)
		}
		tx.EmotionalContext = &models.EmotionalContext{Mood: mood}
	}
	return tx, nil
}

// parseAmount accepts "1234.56", "-12,50", "1 234,56", "1,234.56" and
// "1.234,56". The last separator present is the decimal one.
func parseAmount(s string) (float64, error) {
	clean := strings.NewReplacer(" ", "", "\u00a0", "", "€", "").Replace(s)
	lastDot := strings.LastIndex(clean, ".")
	lastComma := strings.LastIndex(clean, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			clean = strings.ReplaceAll(clean, ".", "")
			clean = strings.ReplaceAll(clean, ",", ".")
		} else {
			clean = strings.ReplaceAll(clean, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(clean, ",") > 1 {
			clean = strings.ReplaceAll(clean, ",", "")
		} else {
			clean = strings.ReplaceAll(clean, ",", ".")
		}
	case strings.Count(clean, ".") > 1:
		clean = strings.ReplaceAll(clean, ".", "")
	}
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}

// rowID hashes the raw row so re-importing a file yields the same ids. The
// nth repeat of an identical row gets its own id.
func rowID(key string, occurrence int) string {
	if occurrence > 1 {
		key = fmt.Sprintf("%s\x1f#%d", key, occurrence)
	}
	sum := sha256.Sum256([]byte(key))
	return "csv-" + hex.EncodeToString(sum[:12])
}

func isBlank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
