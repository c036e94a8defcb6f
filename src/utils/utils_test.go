package utils

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0.1 + 0.2, 0.3},
		{12.345, 12.35},
		{-1.005, -1.01},
		{100, 100},
	}
	for _, tt := range tests {
		if got := RoundMoney(tt.in); got != tt.want {
			t.Errorf("RoundMoney(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestMeanVariance(t *testing.T) {
	values := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := Mean(values); got != 5 {
		t.Errorf("Mean = %v, want 5", got)
	}
	if got := Variance(values); math.Abs(got-4) > 1e-9 {
		t.Errorf("Variance = %v, want 4", got)
	}
	if Mean(nil) != 0 || Variance(nil) != 0 {
		t.Error("expected zero for empty input")
	}
}

func TestClamp01(t *testing.T) {
	for in, want := range map[float64]float64{-0.5: 0, 0.4: 0.4, 1.7: 1} {
		if got := Clamp01(in); got != want {
			t.Errorf("Clamp01(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-03-09", "09-03-2024", "09/03/2024", "2024-03-09T00:00:00Z"} {
		got, err := ParseDate(in)
		if err != nil {
			t.Errorf("ParseDate(%q) failed: %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseDate("next tuesday"); err == nil {
		t.Error("expected error for unparseable date")
	}
}

func TestDateHelpers(t *testing.T) {
	sat := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	if !IsWeekend(sat) || IsWeekend(sat.AddDate(0, 0, 2)) {
		t.Error("IsWeekend misclassified Saturday/Monday")
	}
	if MonthKey(sat) != "2024-03" {
		t.Errorf("MonthKey = %q", MonthKey(sat))
	}
	if d := DaysBetween(sat, sat.AddDate(0, 0, 7)); d != 7 {
		t.Errorf("DaysBetween = %v, want 7", d)
	}
}

func TestGenerateETag_Stable(t *testing.T) {
	a, err := GenerateETag(map[string]int{"x": 1})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := GenerateETag(map[string]int{"x": 1})
	c, _ := GenerateETag(map[string]int{"x": 2})
	if a != b || a == c {
		t.Errorf("ETag not stable/distinct: %s %s %s", a, b, c)
	}
	if _, err := GenerateETag(func() {}); err == nil || errors.Unwrap(err) == nil {
		t.Errorf("expected wrapped marshal error, got %v", err)
	}
}

func TestSendJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	SendJSONError(rec, "nope", http.StatusBadRequest)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"error":"nope"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
