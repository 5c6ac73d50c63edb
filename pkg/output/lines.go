package output

import (
	"fmt"

	"github.com/iwvelando/auto-loan-calc/internal/calculator"
	"github.com/iwvelando/auto-loan-calc/pkg/format"
)

// line is one labelled value of a report summary.
type line struct {
	Label string
	Value string
}

// summaryLines lists a report's figures in display order. money renders
// currency amounts so each surface can choose its own notation.
func summaryLines(r calculator.Report, money func(float64) string) []line {
	o := r.Outputs
	msrpNote := ""
	if o.MSRPDelta != nil {
		msrpNote = o.MSRPDelta.Note
	}
	return []line{
		{"MSRP", money(r.Inputs.MSRP)},
		{"Sale price", money(o.PriceForCalc)},
		{"Versus MSRP", msrpNote},
		{"Dealer fees", money(o.DealerFeesTotal)},
		{"Government fees", money(o.GovFeesTotal)},
		{"Taxable base", money(o.Taxes.TaxableBase)},
		{"State tax", money(o.Taxes.StateTax)},
		{"County rate", fmt.Sprintf("%s (%s)", format.RatePercent(o.CountyRate), o.CountyRateSource)},
		{"County tax", money(o.Taxes.CountyTax)},
		{"Total taxes", money(o.Taxes.TotalTax)},
		{"Trade-in tax savings", money(o.TradeInTaxSavings)},
		{"Taxes and fees", money(o.TotalTaxesAndFees)},
		{"Trade-in equity", money(o.TradeEquity)},
		{"Amount financed", money(o.AmountFinanced)},
		{"APR", format.Percent(o.APRPercent)},
		{"Term", fmt.Sprintf("%d months", o.TermMonths)},
		{"Monthly payment", money(o.MonthlyPayment)},
		{"Payment at 0% APR", money(o.ZeroAPRMonthlyPayment)},
		{"Financing cost per month", money(o.FinancingCostPerMonth)},
		{"Total of payments", money(o.TotalOfPayments)},
		{"Total interest", money(o.TotalInterest)},
		{"Monthly savings paying taxes and fees upfront", money(o.SavingsFromNotFinancingTaxesFees)},
		{"Monthly savings paying negative equity upfront", money(o.SavingsFromNotFinancingNegEquity)},
	}
}

// goalLines describes the goal outcome, or nothing when no goal was set.
func goalLines(goal *calculator.GoalResult, money func(float64) string) []line {
	if goal == nil {
		return nil
	}
	lines := []line{{"Goal payment", money(goal.Target)}}
	if goal.Met {
		return append(lines, line{"Goal status", "met with " + money(goal.Surplus) + " to spare"})
	}
	lines = append(lines, line{"Goal status", "not met"})
	for _, s := range []struct {
		label    string
		strategy *calculator.Strategy
	}{
		{"Extra cash down", goal.ExtraCashDown},
		{"Required APR", goal.RequiredAPR},
		{"Required term", goal.RequiredTerm},
		{"Required price", goal.RequiredPrice},
	} {
		if s.strategy != nil {
			lines = append(lines, line{s.label, s.strategy.Note})
		}
	}
	return lines
}

var goalLabels = []string{
	"Goal payment", "Goal status", "Extra cash down", "Required APR", "Required term", "Required price",
}
