// Package priceexpr evaluates the free-text "final sale price" field. Users may
// type a plain amount, an amount relative to MSRP ("MSRP - 6%", "-7500") or a
// small arithmetic expression. Evaluation never fails: text that cannot be
// understood falls back to plain currency parsing.
package priceexpr

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/iwvelando/auto-loan-calc/pkg/format"
	"github.com/iwvelando/auto-loan-calc/pkg/mathutil"
)

var (
	basePercentPattern  = regexp.MustCompile(`(?i)^\s*(msrp|[\d$,.]+)\s*([+\-])\s*([\d.]+)\s*%\s*$`)
	shortPercentPattern = regexp.MustCompile(`^\s*([+\-])\s*([\d.]+)\s*%\s*$`)
	shortDollarPattern  = regexp.MustCompile(`^\s*[+\-]\s*[\d$,.]`)
	msrpToken           = regexp.MustCompile(`(?i)msrp`)
	percentToken        = regexp.MustCompile(`(\d+(?:\.\d+)?|\.\d+)\s*%`)
	safeExpression      = regexp.MustCompile(`^[0-9+\-*/().\s]+$`)
)

// Evaluate resolves raw against msrp. The result is always finite and may be
// negative; callers decide how to surface a negative price.
func Evaluate(raw string, msrp float64) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	msrp = mathutil.Finite(msrp)

	if v, ok := evalBasePercent(s, msrp); ok {
		return v
	}
	if v, ok := evalShortPercent(s, msrp); ok {
		return v
	}
	if !msrpToken.MatchString(s) && shortDollarPattern.MatchString(s) {
		if v, ok := evalArithmetic(formatNumber(msrp)+s, msrp); ok {
			return v
		}
	}
	if v, ok := evalArithmetic(s, msrp); ok {
		return v
	}
	return format.ParseCurrency(s)
}

// evalBasePercent handles "<base> +/- N%" where base is MSRP or a literal.
func evalBasePercent(s string, msrp float64) (float64, bool) {
	m := basePercentPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	base := msrp
	if !strings.EqualFold(m[1], "msrp") {
		base = format.ParseCurrency(m[1])
	}
	pct, err := strconv.ParseFloat(m[3], 64)
	if err != nil {
		return 0, false
	}
	return applyPercent(base, m[2], pct)
}

// evalShortPercent handles "+N%" / "-N%", relative to msrp.
func evalShortPercent(s string, msrp float64) (float64, bool) {
	m := shortPercentPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	pct, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return 0, false
	}
	return applyPercent(msrp, m[1], pct)
}

func applyPercent(base float64, op string, pct float64) (float64, bool) {
	delta := base * (pct / 100)
	var v float64
	if op == "+" {
		v = base + delta
	} else {
		v = base - delta
	}
	if !mathutil.IsFinite(v) {
		return 0, false
	}
	return v, true
}

// evalArithmetic substitutes MSRP, strips currency punctuation, rewrites N%
// as (N/100) and parses what remains as arithmetic.
func evalArithmetic(s string, msrp float64) (float64, bool) {
	expr := msrpToken.ReplaceAllString(s, formatNumber(msrp))
	expr = strings.NewReplacer("$", "", ",", "").Replace(expr)
	expr = percentToken.ReplaceAllString(expr, "($1/100)")
	if !safeExpression.MatchString(expr) {
		return 0, false
	}
	v, err := Parse(expr)
	if err != nil || !mathutil.IsFinite(v) {
		return 0, false
	}
	return v, true
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
