package output

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/iwvelando/auto-loan-calc/internal/calculator"
	"github.com/iwvelando/auto-loan-calc/pkg/loans"
)

func scheduleReport() calculator.Report {
	var r calculator.Report
	r.Name = "short loan"
	r.Outputs.AmountFinanced = 12000
	r.Outputs.MonthlyRate = loans.MonthlyRateFromAPR(6)
	r.Outputs.TermMonths = 12
	return r
}

func TestScheduleFor(t *testing.T) {
	schedule, err := ScheduleFor(scheduleReport(), 0)
	if err != nil {
		t.Fatalf("ScheduleFor() error = %v", err)
	}
	if len(schedule) != 12 {
		t.Fatalf("Expected 12 payments, got %d", len(schedule))
	}
	if schedule[11].RemainingPrincipal != 0 {
		t.Errorf("Expected the final payment to clear the balance, got %.2f", schedule[11].RemainingPrincipal)
	}

	withExtra, err := ScheduleFor(scheduleReport(), 2000)
	if err != nil {
		t.Fatalf("ScheduleFor() error = %v", err)
	}
	if len(withExtra) >= 12 {
		t.Errorf("Expected extra principal to shorten the schedule, got %d payments", len(withExtra))
	}

	bad := scheduleReport()
	bad.Outputs.TermMonths = 0
	if _, err := ScheduleFor(bad, 0); err == nil {
		t.Errorf("Expected an error for a zero-month term")
	}
}

func TestWriteSchedule(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSchedule(&buf, []calculator.Report{scheduleReport()}, 0); err != nil {
		t.Fatalf("WriteSchedule() error = %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "--- Amortization for scenario short loan ---") {
		t.Errorf("WriteSchedule missing header")
	}
	payment := loans.MonthlyPayment(12000, loans.MonthlyRateFromAPR(6), 12)
	if math.Abs(payment-1032.80) > 0.01 {
		t.Fatalf("Unexpected reference payment %.2f", payment)
	}
	if !strings.Contains(output, "1,032.80") {
		t.Errorf("WriteSchedule missing the monthly payment, got %q", output)
	}
	if !strings.Contains(output, "over 12 payments") {
		t.Errorf("WriteSchedule missing total line")
	}
}

func TestScheduleCsvString(t *testing.T) {
	csv, err := ScheduleCsvString([]calculator.Report{scheduleReport()}, 0)
	if err != nil {
		t.Fatalf("ScheduleCsvString() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 13 {
		t.Fatalf("Expected header plus 12 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], `"short loan","1","1032.80"`) {
		t.Errorf("Unexpected first row: %s", lines[1])
	}
	if !strings.HasSuffix(lines[12], `"0.00"`) {
		t.Errorf("Expected the last row to end with a zero balance: %s", lines[12])
	}
}
