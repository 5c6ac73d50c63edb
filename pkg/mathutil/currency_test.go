package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up at midpoint", 1.235, 1.24},
		{"Round down below midpoint", 1.234, 1.23},
		{"No rounding needed", 1.23, 1.23},
		{"Large number", 12345.678, 12345.68},
		{"Negative number round down", -1.234, -1.23},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
		{"Nearly two cents", 0.019, 0.02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsZero(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected bool
	}{
		{"Exactly zero", 0.0, true},
		{"Very small positive", 0.001, true},
		{"Very small negative", -0.001, true},
		{"Exactly tolerance", 0.01, true},
		{"Just above tolerance", 0.02, false},
		{"Large negative", -100.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsZero(tt.input); got != tt.expected {
				t.Errorf("IsZero(%v) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNonNegative(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Positive passes through", 42.5, 42.5},
		{"Zero stays zero", 0, 0},
		{"Negative clamps", -10, 0},
		{"NaN collapses", math.NaN(), 0},
		{"Positive infinity collapses", math.Inf(1), 0},
		{"Negative infinity collapses", math.Inf(-1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NonNegative(tt.input); got != tt.expected {
				t.Errorf("NonNegative(%v) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFinite(t *testing.T) {
	if got := Finite(-3); got != -3 {
		t.Errorf("Finite(-3) = %v, expected -3", got)
	}
	if got := Finite(math.NaN()); got != 0 {
		t.Errorf("Finite(NaN) = %v, expected 0", got)
	}
	if IsFinite(math.Inf(1)) {
		t.Errorf("IsFinite(+Inf) = true, expected false")
	}
}

func TestWithinTolerance(t *testing.T) {
	if !WithinTolerance(100.004, 100.0, 0.01) {
		t.Errorf("WithinTolerance(100.004, 100.0, 0.01) = false, expected true")
	}
	if WithinTolerance(100.02, 100.0, 0.01) {
		t.Errorf("WithinTolerance(100.02, 100.0, 0.01) = true, expected false")
	}
}

func TestPercentConversions(t *testing.T) {
	if got := PercentToFraction(6.5); math.Abs(got-0.065) > 1e-12 {
		t.Errorf("PercentToFraction(6.5) = %v, expected 0.065", got)
	}
	if got := FractionToPercent(0.01); math.Abs(got-1) > 1e-12 {
		t.Errorf("FractionToPercent(0.01) = %v, expected 1", got)
	}
}
