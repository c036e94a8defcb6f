package utils

import (
	"fmt"
	"strings"
	"time"
)

const DefaultDateFormat = "02-01-2006"

// acceptedDateLayouts are tried in order by ParseDate.
var acceptedDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02",
	DefaultDateFormat,
	"02/01/2006",
}

// ParseDate accepts ISO-8601 timestamps, plain ISO dates and day-first dates.
func ParseDate(dateStr string) (time.Time, error) {
	s := strings.TrimSpace(dateStr)
	for _, layout := range acceptedDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", dateStr)
}

// MonthKey groups a date by calendar month, e.g. "2024-03".
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// IsWeekend reports whether t falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DaysBetween returns the signed number of days from a to b.
func DaysBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / 24
}
