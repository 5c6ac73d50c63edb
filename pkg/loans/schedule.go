package loans

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/auto-loan-calc/pkg/mathutil"
	"go.uber.org/zap"
)

// Schedule validation errors.
var (
	ErrInvalidPrincipal = errors.New("principal must be a finite, non-negative amount")
	ErrInvalidRate      = errors.New("monthly rate must be a finite, non-negative rate")
	ErrInvalidTerm      = errors.New("term must be at least one month")
)

// Payment holds the values for a given payment.
type Payment struct {
	Month              int     `json:"month"`
	Payment            float64 `json:"payment"`
	Principal          float64 `json:"principal"`
	Interest           float64 `json:"interest"`
	RemainingPrincipal float64 `json:"remainingPrincipal"`
}

// LoanTerms describes a loan to amortize.
type LoanTerms struct {
	Principal   float64
	MonthlyRate float64
	TermMonths  int
	// ExtraPrincipal is paid on top of the scheduled payment every month.
	ExtraPrincipal float64
}

// ScheduleGenerator provides utilities for generating loan amortization schedules
type ScheduleGenerator struct {
	logger *zap.Logger
}

// NewScheduleGenerator creates a new generator instance
func NewScheduleGenerator(logger *zap.Logger) *ScheduleGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleGenerator{logger: logger}
}

// Generate creates a month-by-month amortization schedule. The final
// payment clears the remaining balance exactly; extra principal is capped so
// the loan is never overpaid, which may end the schedule early.
func (g *ScheduleGenerator) Generate(terms LoanTerms) ([]Payment, error) {
	if !mathutil.IsFinite(terms.Principal) || terms.Principal < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrincipal, terms.Principal)
	}
	if !mathutil.IsFinite(terms.MonthlyRate) || terms.MonthlyRate < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRate, terms.MonthlyRate)
	}
	if terms.TermMonths <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTerm, terms.TermMonths)
	}
	if terms.Principal == 0 {
		return nil, nil
	}

	monthlyPayment := MonthlyPayment(terms.Principal, terms.MonthlyRate, terms.TermMonths)
	extra := mathutil.NonNegative(terms.ExtraPrincipal)
	schedule := make([]Payment, 0, terms.TermMonths)
	remaining := terms.Principal

	for month := 1; month <= terms.TermMonths; month++ {
		current := Payment{Month: month}
		current.Interest = InterestPayment(remaining, terms.MonthlyRate)
		current.Principal = monthlyPayment - current.Interest + extra

		if month == terms.TermMonths || mathutil.Round(remaining-current.Principal) <= 0 {
			if current.Principal > remaining && extra > 0 {
				g.logger.Debug(fmt.Sprintf("month %d: capping extra principal to remaining balance %.2f", month, remaining),
					zap.String("op", "loans.Generate"),
					zap.Float64("requested", current.Principal),
				)
			}
			// We will get machine error otherwise so just clear the balance.
			current.Principal = remaining
			current.Payment = current.Principal + current.Interest
			current.RemainingPrincipal = 0.00
			schedule = append(schedule, current)
			break
		}

		current.Payment = monthlyPayment + extra
		current.RemainingPrincipal = remaining - current.Principal
		remaining = current.RemainingPrincipal
		schedule = append(schedule, current)
	}

	if len(schedule) < terms.TermMonths {
		g.logger.Debug(fmt.Sprintf("loan paid off after %d of %d months", len(schedule), terms.TermMonths),
			zap.String("op", "loans.Generate"),
		)
	}
	return schedule, nil
}

// Schedule is a convenience wrapper returning nil for invalid terms.
func Schedule(principal, monthlyRate float64, termMonths int) []Payment {
	schedule, err := NewScheduleGenerator(nil).Generate(LoanTerms{
		Principal:   principal,
		MonthlyRate: monthlyRate,
		TermMonths:  termMonths,
	})
	if err != nil {
		return nil
	}
	return schedule
}

// TotalInterest sums the interest paid across a schedule.
func TotalInterest(schedule []Payment) float64 {
	interest := make([]float64, len(schedule))
	for i, p := range schedule {
		interest[i] = p.Interest
	}
	return mathutil.Sum(interest...)
}

// TotalPaid sums every payment in a schedule.
func TotalPaid(schedule []Payment) float64 {
	paid := make([]float64, len(schedule))
	for i, p := range schedule {
		paid[i] = p.Payment
	}
	return math.Max(0, mathutil.Sum(paid...))
}
