package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyCostModifier(t *testing.T) {
	tests := []struct {
		name     string
		price    int64
		modifier float64
		want     int64
	}{
		{"discount", 1000, -30, 700},
		{"no modifier rounds to step", 1234, 0, 1250},
		{"increase", 1000, 40, 1400},
		{"clamped above", 1000, 500, 4000},
		{"clamped below", 1000, -200, 0},
		{"half rounds up", 1025, 0, 1050},
		{"just under half rounds down", 1024, 0, 1000},
		{"zero price", 0, 100, 0},
		{"NaN modifier", 1000, math.NaN(), 1000},
		{"fractional modifier", 1000, 12.5, 1150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyCostModifier(tt.price, tt.modifier))
		})
	}
}

func TestApplyCostModifierResultIsStepAligned(t *testing.T) {
	for price := int64(0); price <= 5000; price += 37 {
		for _, m := range []float64{-100, -55, -10, 0, 15, 99, 300} {
			got := ApplyCostModifier(price, m)
			assert.Zero(t, got%RoundingStep, "price %d modifier %v", price, m)
			assert.GreaterOrEqual(t, got, int64(0))
		}
	}
}

func TestSplitShare(t *testing.T) {
	assert.Equal(t, int64(500), SplitShare(1000, 2))
	assert.Equal(t, int64(334), SplitShare(1000, 3))
	assert.Equal(t, int64(1000), SplitShare(1000, 1))
	assert.Equal(t, int64(0), SplitShare(1000, 0))
	assert.Equal(t, int64(0), SplitShare(0, 4))
}
