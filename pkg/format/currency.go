package format

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
// NaN and infinities render as "$0.00".
func Currency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "$0.00"
	}
	formatted, negative := fixedCents(amount)
	if negative {
		return "-$" + formatted
	}
	return "$" + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "0.00"
	}
	formatted, negative := fixedCents(amount)
	if negative {
		return "-" + formatted
	}
	return formatted
}

// fixedCents rounds to cents and groups the integer part. The sign is
// reported separately so "-0.004" renders as "0.00" rather than "-0.00".
func fixedCents(amount float64) (string, bool) {
	d := decimal.NewFromFloat(amount).Round(2)
	negative := d.IsNegative()
	return groupThousands(d.Abs().StringFixed(2)), negative
}

func groupThousands(fixed string) string {
	parts := strings.SplitN(fixed, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
