package models

import "time"

type MicroInsightType string

const (
	MicroTip           MicroInsightType = "tip"
	MicroWarning       MicroInsightType = "warning"
	MicroEncouragement MicroInsightType = "encouragement"
	MicroEducation     MicroInsightType = "education"
)

type DisplayContext string

const (
	ContextTransaction DisplayContext = "transaction"
	ContextDashboard   DisplayContext = "dashboard"
	ContextGoal        DisplayContext = "goal"
	ContextSimulation  DisplayContext = "simulation"
)

// ParseDisplayContext validates a context name coming from the UI.
func ParseDisplayContext(s string) (DisplayContext, bool) {
	switch c := DisplayContext(s); c {
	case ContextTransaction, ContextDashboard, ContextGoal, ContextSimulation:
		return c, true
	}
	return "", false
}

type PsychologyReference struct {
	Type string `json:"type"` // "bias" or "fact"
	ID   string `json:"id"`
}

// MicroInsight is a display-ready string. Content is already truncated.
type MicroInsight struct {
	ID                  string               `json:"id"`
	Type                MicroInsightType     `json:"type"`
	Content             string               `json:"content"`
	PsychologyReference *PsychologyReference `json:"psychologyReference,omitempty"`
	DisplayContext      DisplayContext       `json:"displayContext"`
	Priority            int                  `json:"priority"`
	ExpiresAt           *time.Time           `json:"expiresAt,omitempty"`
}
