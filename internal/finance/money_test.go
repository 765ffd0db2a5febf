package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeTax(t *testing.T) {
	tests := []struct {
		name     string
		subtotal string
		rate     string
		want     string
	}{
		{"standard rate", "24.50", "0.08", "1.96"},
		{"half cent rounds up", "1.5625", "0.08", "0.13"},
		{"exact half rounds up", "125.0625", "0.08", "10.01"},
		{"zero rate", "100.00", "0", "0.00"},
		{"zero subtotal", "0", "0.08", "0.00"},
		{"no float drift", "0.10", "0.1", "0.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTax(d(tt.subtotal), d(tt.rate))
			assert.True(t, d(tt.want).Equal(got), "ComputeTax(%s, %s) = %s, want %s", tt.subtotal, tt.rate, got, tt.want)
		})
	}
}

func TestComputeTaxPanicsOnNegativeInput(t *testing.T) {
	assert.Panics(t, func() { ComputeTax(d("-1.00"), d("0.08")) })
	assert.Panics(t, func() { ComputeTax(d("1.00"), d("-0.08")) })
}

func TestRoundMoney(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.125", "0.13"},
		{"10.005", "10.01"},
		{"2.494", "2.49"},
		{"2.495", "2.50"},
		{"5", "5.00"},
	}

	for _, tt := range tests {
		got := RoundMoney(d(tt.in))
		assert.True(t, d(tt.want).Equal(got), "RoundMoney(%s) = %s, want %s", tt.in, got, tt.want)
	}
}

func TestFormatUSD(t *testing.T) {
	assert.Equal(t, "$26.46", FormatUSD(d("26.46")))
	assert.Equal(t, "$40.00", FormatUSD(d("40")))
	assert.Equal(t, "$0.00", FormatUSD(decimal.Zero))
	assert.Equal(t, "$5.00", FormatUSD(d("5.0")))
}
