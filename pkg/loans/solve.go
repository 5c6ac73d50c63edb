package loans

import (
	"math"

	"github.com/iwvelando/auto-loan-calc/pkg/constants"
	"github.com/iwvelando/auto-loan-calc/pkg/mathutil"
)

// SolveMonthlyRateForPayment finds the monthly rate at which principal is
// amortized over termMonths by targetPayment. A target at or below the
// zero-rate payment implies a rate of 0. The bool is false when the inputs
// are unusable or the target needs more than 100% per month.
func SolveMonthlyRateForPayment(principal, targetPayment float64, termMonths int) (float64, bool) {
	if principal <= 0 || targetPayment <= 0 || termMonths <= 0 ||
		!mathutil.IsFinite(principal) || !mathutil.IsFinite(targetPayment) {
		return 0, false
	}
	if targetPayment <= principal/float64(termMonths) {
		return 0, true
	}

	lo, hi := 0.0, constants.MaxMonthlyRate
	if MonthlyPayment(principal, hi, termMonths) < targetPayment {
		return 0, false
	}
	for i := 0; i < constants.RateSearchIterations; i++ {
		mid := (lo + hi) / 2
		if MonthlyPayment(principal, mid, termMonths) < targetPayment {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2, true
}

// SolveTermForPayment returns the number of months (fractional) needed to
// amortize principal with targetPayment at monthlyRate. When the payment does
// not cover the first month's interest the loan never amortizes and the
// result is +Inf. The bool is false for unusable inputs.
func SolveTermForPayment(principal, targetPayment, monthlyRate float64) (float64, bool) {
	if principal <= 0 || targetPayment <= 0 ||
		!mathutil.IsFinite(principal) || !mathutil.IsFinite(targetPayment) {
		return 0, false
	}
	if monthlyRate <= 0 {
		return principal / targetPayment, true
	}
	if targetPayment <= principal*monthlyRate {
		return math.Inf(1), true
	}
	return -math.Log(1-principal*monthlyRate/targetPayment) / math.Log(1+monthlyRate), true
}

// SolveRequiredPrincipal returns the largest principal that targetPayment
// amortizes over termMonths at monthlyRate.
func SolveRequiredPrincipal(targetPayment, monthlyRate float64, termMonths int) (float64, bool) {
	if targetPayment <= 0 || termMonths <= 0 || !mathutil.IsFinite(targetPayment) || monthlyRate < 0 {
		return 0, false
	}
	n := float64(termMonths)
	if monthlyRate == 0 {
		return targetPayment * n, true
	}
	return targetPayment * (1 - math.Pow(1+monthlyRate, -n)) / monthlyRate, true
}
