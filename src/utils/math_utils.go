package utils

import (
	"math"

	"github.com/shopspring/decimal"
)

// RoundFloat rounds a float64 to a specified number of decimal places.
func RoundFloat(val float64, precision int32) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return val
	}
	return decimal.NewFromFloat(val).Round(precision).InexactFloat64()
}

// RoundMoney rounds an amount to cents.
func RoundMoney(val float64) float64 {
	return RoundFloat(val, 2)
}

// SumMoney adds amounts in decimal so that long series of cents do not drift.
func SumMoney(values []float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return SumMoney(values) / float64(len(values))
}

// Variance returns the population variance, or 0 for an empty slice.
func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(values))
}

// Clamp01 bounds x to [0, 1].
func Clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
