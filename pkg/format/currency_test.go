package format

import (
	"math"
	"testing"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"Zero", 0, "$0.00"},
		{"Small amount", 5.5, "$5.50"},
		{"Thousands", 1234.5, "$1,234.50"},
		{"Millions", 1234567.891, "$1,234,567.89"},
		{"Negative", -1591.94, "-$1,591.94"},
		{"Rounds half up", 2.345, "$2.35"},
		{"Negative rounds to zero", -0.004, "$0.00"},
		{"NaN", math.NaN(), "$0.00"},
		{"Infinity", math.Inf(1), "$0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Currency(tt.input); got != tt.expected {
				t.Errorf("Currency(%v) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNumericCurrency(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{25375.94, "25,375.94"},
		{-1000, "-1,000.00"},
		{999.999, "1,000.00"},
		{math.NaN(), "0.00"},
	}

	for _, tt := range tests {
		if got := NumericCurrency(tt.input); got != tt.expected {
			t.Errorf("NumericCurrency(%v) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}
