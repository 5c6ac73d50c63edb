package mathutil

import (
	"math"
	"testing"
)

func TestSum(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"Empty list", nil, 0},
		{"Doc and title fees", []float64{699, 85}, 784},
		{"Tenths add exactly", []float64{0.1, 0.2}, 0.3},
		{"Duplicates kept", []float64{50, 50, 50}, 150},
		{"NaN skipped", []float64{10, math.NaN(), 5}, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sum(tt.values...); got != tt.expected {
				t.Errorf("Sum(%v) = %v, expected %v", tt.values, got, tt.expected)
			}
		})
	}
}

func TestRoundCents(t *testing.T) {
	if got := RoundCents(1541.9400000001); got != 1541.94 {
		t.Errorf("RoundCents() = %v, expected 1541.94", got)
	}
	if got := RoundCents(2.345); got != 2.35 {
		t.Errorf("RoundCents(2.345) = %v, expected 2.35", got)
	}
	if got := RoundCents(math.Inf(1)); got != 0 {
		t.Errorf("RoundCents(+Inf) = %v, expected 0", got)
	}
}
