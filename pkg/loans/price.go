package loans

import (
	"math"

	"github.com/iwvelando/auto-loan-calc/pkg/tax"
)

// PriceSolveInputs holds everything besides the sale price that feeds the
// amount financed. TradeInPayoff should already be zero when there is no
// trade-in value.
type PriceSolveInputs struct {
	TradeInValue          float64
	TradeInPayoff         float64
	CashDown              float64
	DealerFeesTotal       float64
	GovFeesTotal          float64
	MonthlyRate           float64
	TermMonths            int
	FinanceTaxesAndFees   bool
	FinanceNegativeEquity bool
}

// PriceBranch names the linear piece of the tax function a solution lies on.
type PriceBranch string

const (
	// BranchUntaxed is used when taxes and fees are paid upfront.
	BranchUntaxed PriceBranch = "untaxed"
	// BranchUnderCap means the county surtax applies to the whole taxable base.
	BranchUnderCap PriceBranch = "under-cap"
	// BranchOverCap means the county surtax is saturated at the cap.
	BranchOverCap PriceBranch = "over-cap"
	// BranchTradeCovered means the trade-in covers the whole price, so only
	// the dealer fees are taxed.
	BranchTradeCovered PriceBranch = "trade-covered"
)

// PriceSolution is the sale price that produces a target payment.
type PriceSolution struct {
	Price       float64     `json:"price"`
	Principal   float64     `json:"principal"`
	TaxableBase float64     `json:"taxableBase"`
	Branch      PriceBranch `json:"branch"`
	// Boundary is set when neither tax branch was self-consistent and the
	// under-cap candidate was returned anyway.
	Boundary bool `json:"boundary,omitempty"`
}

// SolveRequiredPrice inverts the amount-financed pipeline: it finds the sale
// price whose financed amount is paid off by targetPayment at the given rate
// and term. The tax is piecewise linear in the price: flat while the trade-in
// covers the price, then under and over the county cap. Each piece is solved
// and the one consistent with its own taxable base is kept.
func SolveRequiredPrice(targetPayment float64, in PriceSolveInputs, rates tax.RateContext) (PriceSolution, bool) {
	principalNeeded, ok := SolveRequiredPrincipal(targetPayment, in.MonthlyRate, in.TermMonths)
	if !ok {
		return PriceSolution{}, false
	}

	negativeEquity := 0.0
	if !in.FinanceNegativeEquity {
		negativeEquity = math.Max(0, in.TradeInPayoff-in.TradeInValue)
	}
	// Price-independent part of the amount financed.
	base := -in.TradeInValue + in.TradeInPayoff - in.CashDown - negativeEquity

	if !in.FinanceTaxesAndFees {
		price := principalNeeded - base
		return PriceSolution{
			Price:       price,
			Principal:   principalNeeded,
			TaxableBase: taxableBase(price, in),
			Branch:      BranchUntaxed,
		}, true
	}

	fees := in.DealerFeesTotal + in.GovFeesTotal
	// Above the trade-in value the taxable base is price - trade + dealer fees.
	baseOffset := in.DealerFeesTotal - in.TradeInValue

	s, c := rates.StateRate, rates.CountyRate
	if in.TradeInValue > 0 {
		feesTax := tax.Compute(0, in.TradeInValue, in.DealerFeesTotal, rates).TotalTax
		price0 := principalNeeded - base - fees - feesTax
		if price0 <= in.TradeInValue {
			return solution(price0, principalNeeded, in, BranchTradeCovered, false), true
		}
	}

	k1 := base + fees + (s+c)*baseOffset
	price1 := (principalNeeded - k1) / (1 + s + c)
	if price1+baseOffset <= rates.CountyCap {
		return solution(price1, principalNeeded, in, BranchUnderCap, false), true
	}

	k2 := base + fees + s*baseOffset + c*rates.CountyCap
	price2 := (principalNeeded - k2) / (1 + s)
	if price2+baseOffset >= rates.CountyCap {
		return solution(price2, principalNeeded, in, BranchOverCap, false), true
	}

	return solution(price1, principalNeeded, in, BranchUnderCap, true), true
}

func solution(price, principal float64, in PriceSolveInputs, branch PriceBranch, boundary bool) PriceSolution {
	return PriceSolution{
		Price:       price,
		Principal:   principal,
		TaxableBase: taxableBase(price, in),
		Branch:      branch,
		Boundary:    boundary,
	}
}

func taxableBase(price float64, in PriceSolveInputs) float64 {
	return tax.Compute(price, in.TradeInValue, in.DealerFeesTotal, tax.RateContext{}).TaxableBase
}
