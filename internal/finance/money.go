// Package finance is the single source of truth for money arithmetic: tax,
// pricing resolution and transaction totals. All values are fixed-point
// decimals; nothing in here touches binary floating point.
package finance

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of decimal places of the currency's minor unit.
const MoneyScale = 2

// ComputeTax multiplies subtotal by rate and rounds half-up to two decimal
// places. The half-up rule is contractual: it decides whose favor a half-cent
// rounds to, and audits check it.
//
// Money values are non-negative by construction; a negative subtotal or rate
// is a programming error and panics rather than producing a bogus figure.
func ComputeTax(subtotal, rate decimal.Decimal) decimal.Decimal {
	if subtotal.IsNegative() || rate.IsNegative() {
		panic(fmt.Sprintf("finance: negative tax input (subtotal=%s rate=%s)", subtotal, rate))
	}
	return subtotal.Mul(rate).Round(MoneyScale)
}

// RoundMoney normalizes an amount to the currency's minor unit, half-up.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyScale)
}

// FormatUSD renders an amount as a display string, e.g. "$26.46".
func FormatUSD(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(MoneyScale)
}
