package format

import (
	"math"
	"strconv"
)

// Percent renders a percentage number with at most two decimals, e.g. 6.5 -> "6.5%".
// NaN renders as an em dash placeholder.
func Percent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "—"
	}
	rounded := math.Round(p*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + "%"
}

// RatePercent renders a decimal fraction as a fixed two-decimal percentage, e.g. 0.01 -> "1.00%".
func RatePercent(fraction float64) string {
	if math.IsNaN(fraction) || math.IsInf(fraction, 0) {
		return "—"
	}
	return strconv.FormatFloat(fraction*100, 'f', 2, 64) + "%"
}
