// Package loans implements the amortized payment formula, its algebraic
// inverses and amortization schedules.
package loans

import (
	"math"

	"github.com/iwvelando/auto-loan-calc/pkg/constants"
	"github.com/iwvelando/auto-loan-calc/pkg/mathutil"
)

// MonthlyPayment calculates the payment that amortizes principal over
// termMonths at monthlyRate using the standard amortization formula. A zero
// rate divides the principal evenly; a non-positive principal or term pays 0.
func MonthlyPayment(principal, monthlyRate float64, termMonths int) float64 {
	if termMonths <= 0 || principal <= 0 || !mathutil.IsFinite(principal) {
		return 0
	}
	n := float64(termMonths)
	if monthlyRate == 0 {
		return principal / n
	}

	power := math.Pow(1.00+monthlyRate, n)
	return principal * monthlyRate * power / (power - 1.00)
}

// MonthlyRateFromAPR converts an annual percentage rate (6.5) into a monthly
// decimal rate (0.0054167).
func MonthlyRateFromAPR(aprPercent float64) float64 {
	return aprPercent / (constants.PercentageMultiplier * constants.MonthsPerYear)
}

// APRFromMonthlyRate converts a monthly decimal rate back to an annual percentage rate.
func APRFromMonthlyRate(monthlyRate float64) float64 {
	return monthlyRate * constants.PercentageMultiplier * constants.MonthsPerYear
}

// InterestPayment calculates the interest portion of a payment.
func InterestPayment(remainingPrincipal, monthlyRate float64) float64 {
	return remainingPrincipal * monthlyRate
}
