// Package format converts between user-typed text and numbers, and renders
// numbers for display. Parsing never fails: malformed text yields 0.
package format

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	nonNumeric    = regexp.MustCompile(`[^0-9.\-]`)
	numericPrefix = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)`)
)

// ParseCurrency strips everything except digits, '.' and '-' and parses the
// longest leading number, e.g. "$1,234.50" -> 1234.5. Returns 0 when nothing
// numeric remains.
func ParseCurrency(text string) float64 {
	return parseLeadingNumber(nonNumeric.ReplaceAllString(text, ""))
}

// ParsePercent parses a percentage as typed and returns the percentage number:
// "6%", "6" and " 6.0 % " all return 6, and "0.5" returns 0.5. No fraction
// heuristic is applied here; convert with mathutil.PercentToFraction when a
// rate is needed.
func ParsePercent(text string) float64 {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimSuffix(trimmed, "%")
	return parseLeadingNumber(nonNumeric.ReplaceAllString(trimmed, ""))
}

func parseLeadingNumber(stripped string) float64 {
	match := numericPrefix.FindString(stripped)
	if match == "" {
		return 0
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
