package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTotalize(t *testing.T) {
	lines := []Line{
		{UnitPrice: d("8.50"), Quantity: 1},
		{UnitPrice: d("5.00"), Quantity: 2},
		{UnitPrice: d("6.00"), Quantity: 1},
	}

	totals := Totalize(lines, d("0.08"))

	assert.True(t, d("24.50").Equal(totals.Subtotal), "subtotal %s", totals.Subtotal)
	assert.True(t, d("1.96").Equal(totals.Tax), "tax %s", totals.Tax)
	assert.True(t, d("26.46").Equal(totals.Total), "total %s", totals.Total)
	assert.Equal(t, "$26.46", totals.TotalFormatted)
}

func TestTotalizeOrderIndependent(t *testing.T) {
	forward := []Line{
		{UnitPrice: d("3.33"), Quantity: 1},
		{UnitPrice: d("7.77"), Quantity: 3},
		{UnitPrice: d("0.01"), Quantity: 99},
	}
	reversed := []Line{forward[2], forward[1], forward[0]}

	a := Totalize(forward, d("0.08"))
	b := Totalize(reversed, d("0.08"))

	assert.True(t, a.Subtotal.Equal(b.Subtotal))
	assert.True(t, a.Tax.Equal(b.Tax))
	assert.True(t, a.Total.Equal(b.Total))
}

func TestTotalizeEmpty(t *testing.T) {
	totals := Totalize(nil, d("0.08"))

	assert.True(t, decimal.Zero.Equal(totals.Subtotal))
	assert.True(t, decimal.Zero.Equal(totals.Tax))
	assert.Equal(t, "$0.00", totals.TotalFormatted)
}

func TestTotalizeQuantityMultiplies(t *testing.T) {
	totals := Totalize([]Line{{UnitPrice: d("2.50"), Quantity: 4}}, decimal.Zero)
	assert.True(t, d("10.00").Equal(totals.Subtotal))
	assert.True(t, totals.Tax.IsZero())
}
