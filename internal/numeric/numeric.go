// Package numeric holds the fixed-precision helpers shared by the analysis stages.
package numeric

import (
	"math"

	"github.com/shopspring/decimal"
)

// Precision is the number of decimal places analysis outputs are rounded to
const Precision = 8

// Round rounds v to Precision decimal places. NaN and infinities collapse to 0.
func Round(v float64) float64 {
	return RoundTo(v, Precision)
}

// RoundTo rounds v to the given number of decimal places
func RoundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Fixed formats v with exactly places decimals ("2.50")
func Fixed(v float64, places int32) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// Clamp bounds v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
