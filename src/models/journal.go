package models

import "time"

// EmotionalEntry is a standalone mood journal entry, optionally linked to a transaction.
type EmotionalEntry struct {
	ID            string    `json:"id" validate:"required"`
	Date          time.Time `json:"date" validate:"required"`
	Mood          int       `json:"mood" validate:"min=1,max=10"`
	Tags          []string  `json:"tags,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	TransactionID string    `json:"transactionId,omitempty"`
}

func (e EmotionalEntry) IndexFields() IndexFields {
	date := e.Date
	mood := float64(e.Mood)
	return IndexFields{Date: &date, Amount: &mood}
}

// FinancialSnapshot is a point-in-time summary of the user's balances.
type FinancialSnapshot struct {
	ID          string    `json:"id" validate:"required"`
	Date        time.Time `json:"date" validate:"required"`
	Income      float64   `json:"income" validate:"min=0"`
	Expenses    float64   `json:"expenses" validate:"min=0"`
	Savings     float64   `json:"savings" validate:"min=0"`
	Debt        float64   `json:"debt" validate:"min=0"`
	Investments float64   `json:"investments" validate:"min=0"`
	Notes       string    `json:"notes,omitempty"`
}

// NetWorth is savings plus investments minus debt.
func (s FinancialSnapshot) NetWorth() float64 {
	return s.Savings + s.Investments - s.Debt
}

func (s FinancialSnapshot) IndexFields() IndexFields {
	date := s.Date
	net := s.NetWorth()
	return IndexFields{Date: &date, Amount: &net}
}
