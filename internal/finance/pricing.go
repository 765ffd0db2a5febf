package finance

import (
	"time"

	"barpos_backend/internal/models"

	"github.com/shopspring/decimal"
)

// PricingConfig is a snapshot of the venue's pricing rules, taken fresh per
// resolution. It is a plain value: callers build it from settings and pass it
// in, so the resolver is a pure function of its inputs.
type PricingConfig struct {
	TaxRate           decimal.Decimal
	HappyHourStart    int             // hour of day, inclusive
	HappyHourEnd      int             // hour of day, exclusive
	HappyHourDiscount decimal.Decimal // fraction in [0,1]
	Specials          map[int64]decimal.Decimal
}

// Pricing rules, reported back to callers for receipts and logs.
const (
	RuleStandard  = "standard"
	RuleSpecial   = "special"
	RuleHappyHour = "happy_hour"
)

// PriceResult is the outcome of resolving a unit price. OutOfStock is an
// expected condition, not an error: callers must check it before adding the
// item to a tab.
type PriceResult struct {
	UnitPrice  decimal.Decimal
	Rule       string
	OutOfStock bool
}

// ResolveUnitPrice resolves the price to charge for one unit of item at the
// given instant. Precedence: stock gate, then specials, then happy hour, then
// the base price. This is the only stock-gating checkpoint in the system.
//
// The result is only ever used for a new tab line; once a line is written its
// frozen price is authoritative and later config changes never touch it.
//
// A structurally invalid item or config falls back to the unmodified base
// price rather than blocking the sale.
func ResolveUnitPrice(item models.CatalogItem, cfg PricingConfig, now time.Time) PriceResult {
	if item.TracksStock() && item.StockCount <= 0 {
		return PriceResult{OutOfStock: true}
	}

	if item.BasePrice.IsNegative() {
		return PriceResult{UnitPrice: item.BasePrice, Rule: RuleStandard}
	}

	if special, ok := cfg.Specials[item.ID]; ok {
		return PriceResult{UnitPrice: RoundMoney(special), Rule: RuleSpecial}
	}

	if inHappyHour(now, cfg) {
		discount := cfg.HappyHourDiscount
		if discount.IsNegative() || discount.GreaterThan(decimal.NewFromInt(1)) {
			return PriceResult{UnitPrice: item.BasePrice, Rule: RuleStandard}
		}
		price := item.BasePrice.Mul(decimal.NewFromInt(1).Sub(discount))
		return PriceResult{UnitPrice: RoundMoney(price), Rule: RuleHappyHour}
	}

	return PriceResult{UnitPrice: item.BasePrice, Rule: RuleStandard}
}

// inHappyHour checks whether now's local hour falls in [start, end).
func inHappyHour(now time.Time, cfg PricingConfig) bool {
	if cfg.HappyHourStart >= cfg.HappyHourEnd {
		return false
	}
	hour := now.Hour()
	return hour >= cfg.HappyHourStart && hour < cfg.HappyHourEnd
}
