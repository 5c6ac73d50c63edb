// Package tax computes sales tax on a vehicle purchase: a flat state rate on
// the whole taxable base plus a county surtax on the base up to a cap.
package tax

import (
	"math"

	"github.com/iwvelando/auto-loan-calc/pkg/constants"
	"github.com/iwvelando/auto-loan-calc/pkg/mathutil"
)

// RateContext carries the rates in force for one computation. Rates are
// decimal fractions (0.06 = 6%).
type RateContext struct {
	StateRate  float64 `json:"stateRate" yaml:"stateRate" mapstructure:"stateRate"`
	CountyRate float64 `json:"countyRate" yaml:"countyRate" mapstructure:"countyRate"`
	CountyCap  float64 `json:"countyCap" yaml:"countyCap" mapstructure:"countyCap"`
}

// DefaultRateContext returns the reference jurisdiction's rates.
func DefaultRateContext() RateContext {
	return RateContext{
		StateRate:  constants.DefaultStateTaxRate,
		CountyRate: constants.DefaultCountyRate,
		CountyCap:  constants.DefaultCountyCap,
	}
}

// Clamped replaces negative or non-finite figures with zero. Zero is a real
// value (a state without sales tax) and is kept as given.
func (r RateContext) Clamped() RateContext {
	r.StateRate = mathutil.NonNegative(r.StateRate)
	r.CountyRate = mathutil.NonNegative(r.CountyRate)
	r.CountyCap = mathutil.NonNegative(r.CountyCap)
	return r
}

// Result is the breakdown of one tax computation.
type Result struct {
	TaxableBase float64 `json:"taxableBase"`
	StateTax    float64 `json:"stateTax"`
	CountyTax   float64 `json:"countyTax"`
	TotalTax    float64 `json:"totalTax"`
}

// Compute returns the taxes owed. A trade-in credit is applied only when a
// trade-in value is present; dealer fees are taxable, government fees are not
// and never reach this function.
func Compute(priceForCalc, tradeInValue, dealerFeesTotal float64, rates RateContext) Result {
	baseBeforeFees := priceForCalc
	if tradeInValue > 0 {
		baseBeforeFees = math.Max(0, priceForCalc-tradeInValue)
	}
	taxableBase := math.Max(0, baseBeforeFees+dealerFeesTotal)

	stateTax := taxableBase * rates.StateRate
	countyTax := math.Min(taxableBase, rates.CountyCap) * rates.CountyRate

	return Result{
		TaxableBase: taxableBase,
		StateTax:    stateTax,
		CountyTax:   countyTax,
		TotalTax:    stateTax + countyTax,
	}
}

// TradeInSavings is the tax avoided by trading in a vehicle rather than
// selling it separately. Never negative.
func TradeInSavings(priceForCalc, tradeInValue, dealerFeesTotal float64, rates RateContext) float64 {
	without := Compute(priceForCalc, 0, dealerFeesTotal, rates)
	with := Compute(priceForCalc, tradeInValue, dealerFeesTotal, rates)
	return math.Max(0, without.TotalTax-with.TotalTax)
}
