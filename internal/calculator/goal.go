package calculator

import (
	"fmt"
	"math"

	"github.com/iwvelando/auto-loan-calc/pkg/constants"
	"github.com/iwvelando/auto-loan-calc/pkg/format"
	"github.com/iwvelando/auto-loan-calc/pkg/loans"
	"github.com/iwvelando/auto-loan-calc/pkg/mathutil"
	"github.com/iwvelando/auto-loan-calc/pkg/tax"
)

// computeGoal inverts the payment to find what would reach target. It
// returns nil for a target that is not a positive amount.
func computeGoal(target float64, out LoanOutputs, priceInputs loans.PriceSolveInputs,
	rates tax.RateContext, opts Options) *GoalResult {
	if !mathutil.IsFinite(target) || target <= 0 {
		return nil
	}

	result := &GoalResult{Target: target}
	if out.MonthlyPayment <= target {
		result.Met = true
		result.Surplus = target - out.MonthlyPayment
		return result
	}

	result.ExtraCashDown = extraCashDownStrategy(target, out)
	result.RequiredAPR = requiredAPRStrategy(target, out)
	result.RequiredTerm = requiredTermStrategy(target, out, opts.MaxTermMonths)
	result.RequiredPrice = requiredPriceStrategy(target, priceInputs, rates)
	return result
}

func extraCashDownStrategy(target float64, out LoanOutputs) *Strategy {
	principal, ok := loans.SolveRequiredPrincipal(target, out.MonthlyRate, out.TermMonths)
	if !ok {
		return &Strategy{OutOfRange: true, Note: "no down payment reaches this goal"}
	}
	extra := math.Max(0, out.AmountFinanced-principal)
	return &Strategy{
		Value: extra,
		Note:  fmt.Sprintf("put %s more down at %s for %d months", format.Currency(extra), format.Percent(out.APRPercent), out.TermMonths),
	}
}

func requiredAPRStrategy(target float64, out LoanOutputs) *Strategy {
	rate, ok := loans.SolveMonthlyRateForPayment(out.AmountFinanced, target, out.TermMonths)
	apr := loans.APRFromMonthlyRate(rate)
	if !ok || apr <= constants.MinAPRPercent {
		return &Strategy{
			OutOfRange: true,
			Note:       fmt.Sprintf("not reachable at any APR above %s over %d months", format.Percent(constants.MinAPRPercent), out.TermMonths),
		}
	}
	return &Strategy{
		Value: apr,
		Note:  fmt.Sprintf("need an APR of %s or lower over %d months", format.Percent(apr), out.TermMonths),
	}
}

func requiredTermStrategy(target float64, out LoanOutputs, maxTerm int) *Strategy {
	months, ok := loans.SolveTermForPayment(out.AmountFinanced, target, out.MonthlyRate)
	if !ok || math.IsInf(months, 1) {
		return &Strategy{
			OutOfRange: true,
			Note:       fmt.Sprintf("the payment does not cover interest at %s", format.Percent(out.APRPercent)),
		}
	}
	// Tolerate float noise so an exact 72.0000000001 stays 72.
	whole := math.Ceil(months - 1e-9)
	if whole > float64(maxTerm) {
		return &Strategy{
			OutOfRange: true,
			Note:       fmt.Sprintf("needs %.0f months, longer than the %d month maximum", whole, maxTerm),
		}
	}
	return &Strategy{
		Value: whole,
		Note:  fmt.Sprintf("stretch the term to %.0f months at %s", whole, format.Percent(out.APRPercent)),
	}
}

func requiredPriceStrategy(target float64, in loans.PriceSolveInputs, rates tax.RateContext) *Strategy {
	solution, ok := loans.SolveRequiredPrice(target, in, rates)
	if !ok || solution.Price <= 0 {
		return &Strategy{OutOfRange: true, Note: "no sale price reaches this goal with the current trade-in and fees"}
	}
	return &Strategy{
		Value:    solution.Price,
		Boundary: solution.Boundary,
		Note:     "negotiate the price to " + format.Currency(solution.Price),
	}
}
