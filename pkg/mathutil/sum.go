package mathutil

import (
	"github.com/shopspring/decimal"
)

// Sum adds currency amounts in decimal space so long fee lists do not pick up
// binary floating point drift. Non-finite entries are skipped.
func Sum(values ...float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		if !IsFinite(v) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}

// RoundCents rounds half away from zero to whole cents.
func RoundCents(val float64) float64 {
	if !IsFinite(val) {
		return 0
	}
	return decimal.NewFromFloat(val).Round(2).InexactFloat64()
}
