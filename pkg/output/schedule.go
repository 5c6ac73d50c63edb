package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/auto-loan-calc/internal/calculator"
	"github.com/iwvelando/auto-loan-calc/pkg/loans"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ScheduleFor amortizes the amount a report finances, paying
// extraPrincipal on top of every scheduled payment.
func ScheduleFor(r calculator.Report, extraPrincipal float64) ([]loans.Payment, error) {
	return loans.NewScheduleGenerator(nil).Generate(loans.LoanTerms{
		Principal:      r.Outputs.AmountFinanced,
		MonthlyRate:    r.Outputs.MonthlyRate,
		TermMonths:     r.Outputs.TermMonths,
		ExtraPrincipal: extraPrincipal,
	})
}

// WriteSchedule writes a month-by-month amortization table for each report.
func WriteSchedule(w io.Writer, results []calculator.Report, extraPrincipal float64) error {
	p := message.NewPrinter(language.English)
	for _, result := range results {
		schedule, err := ScheduleFor(result, extraPrincipal)
		if err != nil {
			return fmt.Errorf("scenario %s: %w", result.Name, err)
		}
		fmt.Fprintf(w, "--- Amortization for scenario %s ---\n", result.Name)
		fmt.Fprintf(w, "Month | Payment      | Principal    | Interest     | Remaining\n")
		fmt.Fprintf(w, "_____ | ____________ | ____________ | ____________ | _________\n")
		for _, payment := range schedule {
			_, _ = p.Fprintf(w, "%5d | $%11.2f | $%11.2f | $%11.2f | $%.2f\n",
				payment.Month, payment.Payment, payment.Principal, payment.Interest, payment.RemainingPrincipal)
		}
		_, _ = p.Fprintf(w, "Total interest: $%.2f over %d payments\n\n", loans.TotalInterest(schedule), len(schedule))
	}
	return nil
}

// ScheduleCsvString renders the amortization tables as CSV with a scenario
// column so several reports can share one file.
func ScheduleCsvString(results []calculator.Report, extraPrincipal float64) (string, error) {
	var b strings.Builder
	b.WriteString(`"scenario","month","payment","principal","interest","remaining"` + "\n")
	for _, result := range results {
		schedule, err := ScheduleFor(result, extraPrincipal)
		if err != nil {
			return "", fmt.Errorf("scenario %s: %w", result.Name, err)
		}
		for _, payment := range schedule {
			fmt.Fprintf(&b, "%s,\"%d\",%s,%s,%s,%s\n",
				quote(result.Name), payment.Month,
				quote(csvMoney(payment.Payment)),
				quote(csvMoney(payment.Principal)),
				quote(csvMoney(payment.Interest)),
				quote(csvMoney(payment.RemainingPrincipal)))
		}
	}
	return b.String(), nil
}
