package loans

import (
	"math"
	"testing"
)

func TestMonthlyPayment(t *testing.T) {
	tests := []struct {
		name          string
		principal     float64
		monthlyRate   float64
		termMonths    int
		expectedRange []float64 // [min, max] expected range
	}{
		{
			name:          "Standard 30-year mortgage",
			principal:     240000,
			monthlyRate:   0.005,
			termMonths:    360,
			expectedRange: []float64{1438, 1440}, // Around $1438.92
		},
		{
			name:          "5-year car loan",
			principal:     20000,
			monthlyRate:   MonthlyRateFromAPR(4.0),
			termMonths:    60,
			expectedRange: []float64{368, 369}, // Around $368.33
		},
		{
			name:          "Zero interest loan",
			principal:     10000,
			monthlyRate:   0,
			termMonths:    60,
			expectedRange: []float64{166.66, 166.67}, // Exactly $166.666...
		},
		{
			name:          "Nothing financed",
			principal:     0,
			monthlyRate:   0.005,
			termMonths:    60,
			expectedRange: []float64{0, 0},
		},
		{
			name:          "Negative principal",
			principal:     -500,
			monthlyRate:   0.005,
			termMonths:    60,
			expectedRange: []float64{0, 0},
		},
		{
			name:          "Zero term",
			principal:     10000,
			monthlyRate:   0.005,
			termMonths:    0,
			expectedRange: []float64{0, 0},
		},
		{
			name:          "High interest loan",
			principal:     10000,
			monthlyRate:   MonthlyRateFromAPR(18.0),
			termMonths:    36,
			expectedRange: []float64{361, 362}, // Around $361.52
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MonthlyPayment(tt.principal, tt.monthlyRate, tt.termMonths)

			if result < tt.expectedRange[0] || result > tt.expectedRange[1] {
				t.Errorf("MonthlyPayment() = %.2f, expected range [%.2f, %.2f]",
					result, tt.expectedRange[0], tt.expectedRange[1])
			}
		})
	}
}

func TestMonthlyPaymentZeroRateIsStraightLine(t *testing.T) {
	for _, principal := range []float64{1, 999.99, 25375.94, 1e6} {
		for _, term := range []int{1, 12, 72, 96} {
			got := MonthlyPayment(principal, 0, term)
			expected := principal / float64(term)
			if got != expected {
				t.Errorf("MonthlyPayment(%v, 0, %d) = %v, expected %v", principal, term, got, expected)
			}
		}
	}
}

func TestMonthlyPaymentEndToEndExample(t *testing.T) {
	got := MonthlyPayment(25375.94, MonthlyRateFromAPR(6.5), 72)
	if math.Abs(got-426.57) > 0.01 {
		t.Errorf("MonthlyPayment(25375.94, 6.5%% APR, 72) = %.4f, expected 426.57", got)
	}
}

func TestRateConversions(t *testing.T) {
	rate := MonthlyRateFromAPR(6.5)
	if math.Abs(rate-0.065/12) > 1e-15 {
		t.Errorf("MonthlyRateFromAPR(6.5) = %v, expected %v", rate, 0.065/12)
	}
	if math.Abs(APRFromMonthlyRate(rate)-6.5) > 1e-12 {
		t.Errorf("APRFromMonthlyRate(%v) = %v, expected 6.5", rate, APRFromMonthlyRate(rate))
	}
	if got := InterestPayment(175000, MonthlyRateFromAPR(4.5)); math.Abs(got-656.25) > 1e-9 {
		t.Errorf("InterestPayment() = %v, expected 656.25", got)
	}
}
