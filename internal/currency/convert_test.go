package currency

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestToBase(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		rate     string
		want     string
	}{
		{"foreign converts", "100.00", "EUR", "11.25", "1125.00"},
		{"base is identity", "100.00", "SEK", "11.25", "100.00"},
		{"empty currency is base", "42.50", "", "2", "42.50"},
		{"negative amount", "-50.00", "USD", "10.50", "-525.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToBase(dec(tt.amount), tt.currency, "SEK", dec(tt.rate))
			assert.True(t, got.Equal(dec(tt.want)), "got %s want %s", got, tt.want)
		})
	}
}

func TestFxGainLoss(t *testing.T) {
	// Booked 1000, settled 1050: paid 50 more, a loss.
	assert.True(t, FxGainLoss(dec("1000"), dec("1050")).Equal(dec("50")))
	// Booked 1000, settled 980: a gain, reported negative.
	assert.True(t, FxGainLoss(dec("1000"), dec("980")).Equal(dec("-20")))
	assert.True(t, FxGainLoss(dec("1000"), dec("1000")).IsZero())
}
