package calculator

import (
	"fmt"
	"math"

	"github.com/iwvelando/auto-loan-calc/pkg/constants"
	"github.com/iwvelando/auto-loan-calc/pkg/format"
	"github.com/iwvelando/auto-loan-calc/pkg/loans"
	"github.com/iwvelando/auto-loan-calc/pkg/mathutil"
	"github.com/iwvelando/auto-loan-calc/pkg/priceexpr"
	"github.com/iwvelando/auto-loan-calc/pkg/tax"
	"go.uber.org/zap"
)

// ComputeAll runs the pipeline with DefaultOptions.
func ComputeAll(logger *zap.Logger, in LoanInputs, rates tax.RateContext) LoanOutputs {
	return ComputeAllWithOptions(logger, in, rates, DefaultOptions())
}

// ComputeAllWithOptions derives every output from in and rates. It never
// fails: malformed or missing values degrade to neutral ones and a negative
// sale price is reported in Warnings. rates.CountyRate is the looked-up county
// rate; zero means no lookup was available.
func ComputeAllWithOptions(logger *zap.Logger, in LoanInputs, rates tax.RateContext, opts Options) LoanOutputs {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()
	var out LoanOutputs

	// Sale price.
	msrp := mathutil.NonNegative(in.MSRP)
	evaluated := priceexpr.ParseFinalPrice(in.FinalPrice).Resolve(msrp)
	switch {
	case evaluated < 0:
		out.Warnings = append(out.Warnings,
			fmt.Sprintf("final price evaluates to %s; using %s until it is corrected",
				format.Currency(evaluated), format.Currency(0)))
		out.PriceForCalc = 0
	case evaluated == 0:
		out.PriceForCalc = msrp
	default:
		out.PriceForCalc = evaluated
	}
	out.MSRPDelta = msrpDelta(evaluated, msrp)

	// Fees.
	out.DealerFeesTotal = FeesTotal(in.DealerFees)
	out.GovFeesTotal = FeesTotal(in.GovFees)
	feesTotal := out.DealerFeesTotal + out.GovFeesTotal

	// Rates.
	rates = rates.Clamped()
	switch {
	case in.CountyRateOverride != nil && mathutil.IsFinite(*in.CountyRateOverride) && *in.CountyRateOverride >= 0:
		rates.CountyRate = *in.CountyRateOverride
		out.CountyRateSource = RateSourceOverride
	case rates.CountyRate > 0 && mathutil.IsFinite(rates.CountyRate):
		out.CountyRateSource = RateSourceLookup
	default:
		rates.CountyRate = *opts.DefaultCountyRate
		out.CountyRateSource = RateSourceDefault
	}
	if in.CountyRateOverride != nil && out.CountyRateSource != RateSourceOverride {
		out.Warnings = append(out.Warnings, "county rate override ignored: rate must be zero or positive")
	}
	out.CountyRate = rates.CountyRate

	// Trade-in. A payoff only counts against a trade-in that has a value.
	tradeIn := mathutil.NonNegative(in.TradeInValue)
	payoff := 0.0
	if tradeIn > 0 {
		payoff = mathutil.NonNegative(in.TradeInPayoff)
	}
	out.TradeEquity = tradeIn - payoff
	out.NegativeEquity = math.Max(0, payoff-tradeIn)

	// Taxes.
	out.Taxes = tax.Compute(out.PriceForCalc, tradeIn, out.DealerFeesTotal, rates)
	if tradeIn > 0 {
		out.TradeInTaxSavings = tax.TradeInSavings(out.PriceForCalc, tradeIn, out.DealerFeesTotal, rates)
	}
	out.TotalTaxesAndFees = out.Taxes.TotalTax + feesTotal

	// Amount financed.
	cashDown := mathutil.NonNegative(in.CashDown)
	out.BaseAmount = (out.PriceForCalc - tradeIn + payoff) - cashDown
	principal := func(financeTaxesAndFees, financeNegativeEquity bool) float64 {
		amount := out.BaseAmount
		if financeTaxesAndFees {
			amount += out.TotalTaxesAndFees
		}
		if !financeNegativeEquity {
			amount -= out.NegativeEquity
		}
		return math.Max(0, amount)
	}
	out.AmountFinanced = principal(in.FinanceTaxesAndFees, in.FinanceNegativeEquity)

	// Payment.
	out.APRPercent = opts.DefaultAPRPercent
	if in.APR != nil && mathutil.IsFinite(*in.APR) {
		out.APRPercent = math.Max(constants.MinAPRPercent, *in.APR)
	}
	out.TermMonths = opts.DefaultTermMonths
	if in.TermMonths > 0 {
		out.TermMonths = in.TermMonths
	}
	out.MonthlyRate = loans.MonthlyRateFromAPR(out.APRPercent)
	payment := func(amount float64) float64 {
		return loans.MonthlyPayment(amount, out.MonthlyRate, out.TermMonths)
	}
	out.MonthlyPayment = payment(out.AmountFinanced)
	out.ZeroAPRMonthlyPayment = loans.MonthlyPayment(out.AmountFinanced, 0, out.TermMonths)
	out.FinancingCostPerMonth = math.Max(0, out.MonthlyPayment-out.ZeroAPRMonthlyPayment)
	out.TotalOfPayments = out.MonthlyPayment * float64(out.TermMonths)
	out.TotalInterest = math.Max(0, out.TotalOfPayments-out.AmountFinanced)

	// What paying each component upfront would save per month.
	out.SavingsFromNotFinancingTaxesFees = math.Max(0,
		payment(principal(true, in.FinanceNegativeEquity))-payment(principal(false, in.FinanceNegativeEquity)))
	out.SavingsFromNotFinancingNegEquity = math.Max(0,
		payment(principal(in.FinanceTaxesAndFees, true))-payment(principal(in.FinanceTaxesAndFees, false)))

	// Goal.
	if in.GoalMonthlyPayment != nil {
		out.Goal = computeGoal(*in.GoalMonthlyPayment, out, loans.PriceSolveInputs{
			TradeInValue:          tradeIn,
			TradeInPayoff:         payoff,
			CashDown:              cashDown,
			DealerFeesTotal:       out.DealerFeesTotal,
			GovFeesTotal:          out.GovFeesTotal,
			MonthlyRate:           out.MonthlyRate,
			TermMonths:            out.TermMonths,
			FinanceTaxesAndFees:   in.FinanceTaxesAndFees,
			FinanceNegativeEquity: in.FinanceNegativeEquity,
		}, rates, opts)
	}

	logger.Debug(fmt.Sprintf("computed payment %.2f on %.2f financed over %d months",
		out.MonthlyPayment, out.AmountFinanced, out.TermMonths),
		zap.String("op", "calculator.ComputeAll"),
		zap.String("countyRateSource", string(out.CountyRateSource)),
		zap.Int("warnings", len(out.Warnings)),
	)
	return out
}

// msrpDelta describes how the evaluated sale price compares with MSRP. It is
// nil when either is unknown or they are equal.
func msrpDelta(price, msrp float64) *MSRPDelta {
	if price <= 0 || msrp <= 0 || price == msrp {
		return nil
	}
	if price < msrp {
		saved := msrp - price
		return &MSRPDelta{Amount: saved, Note: "You save " + format.Currency(saved)}
	}
	over := price - msrp
	return &MSRPDelta{Amount: -over, Note: "Over MSRP by " + format.Currency(over)}
}
