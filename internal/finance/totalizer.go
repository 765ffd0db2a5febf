package finance

import "github.com/shopspring/decimal"

// Line is one (unit price, quantity) pair whose price was already fixed at
// the time of sale.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Totals holds the computed figures for a tab or a shift batch.
type Totals struct {
	Subtotal       decimal.Decimal
	Tax            decimal.Decimal
	Total          decimal.Decimal
	TotalFormatted string
}

// Totalize computes subtotal, tax and total for a set of lines. Summation is
// commutative and the function has no side effects, so the same call serves
// both the live tab view and the end-of-shift batch. Lines never pass through
// floating point.
func Totalize(lines []Line, taxRate decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	tax := ComputeTax(subtotal, taxRate)
	total := subtotal.Add(tax)
	return Totals{
		Subtotal:       subtotal,
		Tax:            tax,
		Total:          total,
		TotalFormatted: FormatUSD(total),
	}
}
