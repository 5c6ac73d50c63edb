package calculator

import (
	"math"
	"testing"

	"github.com/iwvelando/auto-loan-calc/pkg/format"
	"github.com/iwvelando/auto-loan-calc/pkg/loans"
)

func TestGoalMet(t *testing.T) {
	// $4,500 over 10 months at 0% is exactly $450/month.
	in := LoanInputs{
		MSRP:               4500,
		APR:                Float(0),
		TermMonths:         10,
		GoalMonthlyPayment: Float(500),
	}
	out := ComputeAll(nil, in, referenceRates())

	assertClose(t, "MonthlyPayment", out.MonthlyPayment, 450, 1e-9)
	if out.Goal == nil || !out.Goal.Met {
		t.Fatalf("Goal = %+v, expected goal met", out.Goal)
	}
	assertClose(t, "Surplus", out.Goal.Surplus, 50, 1e-9)
	if out.Goal.ExtraCashDown != nil || out.Goal.RequiredAPR != nil ||
		out.Goal.RequiredTerm != nil || out.Goal.RequiredPrice != nil {
		t.Errorf("Goal = %+v, expected no strategies when the goal is met", out.Goal)
	}
}

func TestGoalStrategies(t *testing.T) {
	in := exampleInputs()
	in.GoalMonthlyPayment = Float(400)
	out := ComputeAll(nil, in, referenceRates())

	goal := out.Goal
	if goal == nil || goal.Met {
		t.Fatalf("Goal = %+v, expected an unmet goal", goal)
	}

	t.Run("Extra cash down", func(t *testing.T) {
		s := goal.ExtraCashDown
		if s == nil || s.OutOfRange {
			t.Fatalf("ExtraCashDown = %+v", s)
		}
		got := loans.MonthlyPayment(out.AmountFinanced-s.Value, out.MonthlyRate, out.TermMonths)
		assertClose(t, "payment after extra down", got, 400, 1e-6)
	})

	t.Run("Required APR", func(t *testing.T) {
		s := goal.RequiredAPR
		if s == nil || s.OutOfRange {
			t.Fatalf("RequiredAPR = %+v", s)
		}
		if s.Value <= 0 || s.Value >= 6.5 {
			t.Errorf("RequiredAPR = %v, expected between 0 and 6.5", s.Value)
		}
		got := loans.MonthlyPayment(out.AmountFinanced, loans.MonthlyRateFromAPR(s.Value), out.TermMonths)
		assertClose(t, "payment at required APR", got, 400, 1e-6)
	})

	t.Run("Required term", func(t *testing.T) {
		s := goal.RequiredTerm
		if s == nil || s.OutOfRange {
			t.Fatalf("RequiredTerm = %+v", s)
		}
		months := int(s.Value)
		if loans.MonthlyPayment(out.AmountFinanced, out.MonthlyRate, months) > 400 {
			t.Errorf("payment over %d months exceeds the goal", months)
		}
		if loans.MonthlyPayment(out.AmountFinanced, out.MonthlyRate, months-1) <= 400 {
			t.Errorf("%d months is not the shortest term meeting the goal", months)
		}
	})

	t.Run("Required price", func(t *testing.T) {
		s := goal.RequiredPrice
		if s == nil || s.OutOfRange || s.Boundary {
			t.Fatalf("RequiredPrice = %+v", s)
		}
		if s.Value >= 30000 {
			t.Errorf("RequiredPrice = %v, expected below MSRP", s.Value)
		}
		atPrice := exampleInputs()
		atPrice.FinalPrice = format.NumericCurrency(s.Value)
		check := ComputeAll(nil, atPrice, referenceRates())
		// The price is rounded to cents when fed back in.
		assertClose(t, "payment at required price", check.MonthlyPayment, 400, 0.01)
	})
}

func TestGoalOutOfRange(t *testing.T) {
	tests := []struct {
		name         string
		goal         float64
		maxTerm      int
		aprOutOfRng  bool
		termOutOfRng bool
	}{
		// $25,375.94 / 72 is $352.44, so $300 needs a negative APR; the
		// term solution is 113 months.
		{"Below zero-rate payment", 300, 0, true, true},
		{"Longer cap admits the term", 300, 120, true, false},
		// $100 does not cover the first month's interest of $137.45.
		{"Payment below interest", 100, 0, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := exampleInputs()
			in.GoalMonthlyPayment = Float(tt.goal)
			opts := DefaultOptions()
			if tt.maxTerm > 0 {
				opts.MaxTermMonths = tt.maxTerm
			}
			out := ComputeAllWithOptions(nil, in, referenceRates(), opts)
			if out.Goal == nil || out.Goal.Met {
				t.Fatalf("Goal = %+v, expected an unmet goal", out.Goal)
			}
			if out.Goal.RequiredAPR.OutOfRange != tt.aprOutOfRng {
				t.Errorf("RequiredAPR = %+v, expected OutOfRange %v", out.Goal.RequiredAPR, tt.aprOutOfRng)
			}
			if out.Goal.RequiredTerm.OutOfRange != tt.termOutOfRng {
				t.Errorf("RequiredTerm = %+v, expected OutOfRange %v", out.Goal.RequiredTerm, tt.termOutOfRng)
			}
			if out.Goal.RequiredAPR.OutOfRange && out.Goal.RequiredAPR.Value != 0 {
				t.Errorf("out of range APR carries a value %v", out.Goal.RequiredAPR.Value)
			}
			if out.Goal.RequiredTerm.OutOfRange && out.Goal.RequiredTerm.Value != 0 {
				t.Errorf("out of range term carries a value %v", out.Goal.RequiredTerm.Value)
			}
		})
	}
}

func TestGoalIgnoredWhenNotPositive(t *testing.T) {
	for _, goal := range []float64{0, -100, math.NaN()} {
		in := exampleInputs()
		in.GoalMonthlyPayment = Float(goal)
		if out := ComputeAll(nil, in, referenceRates()); out.Goal != nil {
			t.Errorf("goal %v produced %+v, expected nil", goal, out.Goal)
		}
	}
}
