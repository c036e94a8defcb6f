package models

import (
	"time"
)

// Domain classifies what a transaction represents for the user's finances.
type Domain string

const (
	DomainIncome     Domain = "income"
	DomainExpense    Domain = "expense"
	DomainSavings    Domain = "savings"
	DomainInvestment Domain = "investment"
	DomainDebt       Domain = "debt"
)

// Source records how a transaction entered the system.
type Source string

const (
	SourceManual  Source = "manual"
	SourceCSV     Source = "csv"
	SourceOCR     Source = "ocr"
	SourceBankAPI Source = "bank_api"
)

// EmotionalContext is the optional mood annotation attached to a transaction.
type EmotionalContext struct {
	Mood  int      `json:"mood" validate:"min=1,max=10"`
	Tags  []string `json:"tags,omitempty"`
	Notes string   `json:"notes,omitempty"`
}

// Transaction is the atomic financial record. It is replaced as a whole by id,
// never mutated field by field once stored.
type Transaction struct {
	ID               string            `json:"id" validate:"required"`
	Value            float64           `json:"value" validate:"gt=0"`
	Domain           Domain            `json:"domain" validate:"oneof=income expense savings investment debt"`
	Category         string            `json:"category" validate:"required"`
	Description      string            `json:"description,omitempty"`
	Date             time.Time         `json:"date" validate:"required"`
	Source           Source            `json:"source" validate:"oneof=manual csv ocr bank_api"`
	Verified         bool              `json:"verified"`
	Confidence       float64           `json:"confidence" validate:"min=0,max=1"`
	EmotionalContext *EmotionalContext `json:"emotionalContext,omitempty"`
}

// IsExpense reports whether the transaction counts towards spending.
func (t Transaction) IsExpense() bool {
	return t.Domain == DomainExpense
}

// IndexFields implements Indexable.
func (t Transaction) IndexFields() IndexFields {
	value := t.Value
	date := t.Date
	return IndexFields{
		Category: t.Category,
		Date:     &date,
		Amount:   &value,
		Kind:     string(t.Domain),
	}
}
