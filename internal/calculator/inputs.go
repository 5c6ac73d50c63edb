// Package calculator holds the recompute pipeline: given a snapshot of the
// deal being considered and the tax rates in force, it derives taxes, the
// amount financed, the monthly payment and goal-seeking suggestions.
package calculator

import (
	"github.com/iwvelando/auto-loan-calc/pkg/constants"
	"github.com/iwvelando/auto-loan-calc/pkg/mathutil"
)

// Fee is one dealer or government fee line item.
type Fee struct {
	Description string  `json:"description" yaml:"description"`
	Amount      float64 `json:"amount" yaml:"amount"`
}

// LoanInputs is a snapshot of everything the user has entered. Amounts are in
// dollars, APR is a percentage number and CountyRateOverride is a decimal
// fraction.
type LoanInputs struct {
	MSRP float64 `json:"msrp" yaml:"msrp"`
	// FinalPrice is the raw sale price text, e.g. "MSRP - 6%" or "27,500".
	FinalPrice    string  `json:"finalPrice,omitempty" yaml:"finalPrice,omitempty"`
	TradeInValue  float64 `json:"tradeInValue,omitempty" yaml:"tradeInValue,omitempty"`
	TradeInPayoff float64 `json:"tradeInPayoff,omitempty" yaml:"tradeInPayoff,omitempty"`
	CashDown      float64 `json:"cashDown,omitempty" yaml:"cashDown,omitempty"`

	APR        *float64 `json:"apr,omitempty" yaml:"apr,omitempty"`
	TermMonths int      `json:"termMonths,omitempty" yaml:"termMonths,omitempty"`

	FinanceTaxesAndFees   bool `json:"financeTaxesAndFees" yaml:"financeTaxesAndFees"`
	FinanceNegativeEquity bool `json:"financeNegativeEquity" yaml:"financeNegativeEquity"`

	DealerFees []Fee `json:"dealerFees,omitempty" yaml:"dealerFees,omitempty"`
	GovFees    []Fee `json:"govFees,omitempty" yaml:"govFees,omitempty"`

	CountyRateOverride *float64 `json:"countyRateOverride,omitempty" yaml:"countyRateOverride,omitempty"`
	GoalMonthlyPayment *float64 `json:"goalMonthlyPayment,omitempty" yaml:"goalMonthlyPayment,omitempty"`
}

// Options are the policy knobs of the pipeline that are not user inputs.
type Options struct {
	DefaultAPRPercent float64
	DefaultTermMonths int
	MaxTermMonths     int
	// DefaultCountyRate applies when neither an override nor a looked-up
	// county rate is available. Nil means 1%; zero is a valid rate.
	DefaultCountyRate *float64
}

// DefaultOptions returns the stock defaults: 6.5% APR, 72 months, goal
// suggestions capped at 96 months and a 1% fallback county rate.
func DefaultOptions() Options {
	return Options{
		DefaultAPRPercent: constants.DefaultAPRPercent,
		DefaultTermMonths: constants.DefaultTermMonths,
		MaxTermMonths:     constants.MaxTermMonths,
		DefaultCountyRate: Float(constants.DefaultCountyRate),
	}
}

func (o Options) withDefaults() Options {
	if o.DefaultAPRPercent < 0 || !mathutil.IsFinite(o.DefaultAPRPercent) {
		o.DefaultAPRPercent = constants.DefaultAPRPercent
	}
	if o.DefaultTermMonths <= 0 {
		o.DefaultTermMonths = constants.DefaultTermMonths
	}
	if o.MaxTermMonths <= 0 {
		o.MaxTermMonths = constants.MaxTermMonths
	}
	if o.DefaultCountyRate == nil || *o.DefaultCountyRate < 0 || !mathutil.IsFinite(*o.DefaultCountyRate) {
		o.DefaultCountyRate = Float(constants.DefaultCountyRate)
	}
	return o
}

// FeesTotal sums fee amounts in order, ignoring non-finite and negative values.
func FeesTotal(fees []Fee) float64 {
	amounts := make([]float64, len(fees))
	for i, fee := range fees {
		amounts[i] = mathutil.NonNegative(fee.Amount)
	}
	return mathutil.Sum(amounts...)
}

// Float returns a pointer to v, for populating optional inputs.
func Float(v float64) *float64 {
	return &v
}
