package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AppSettings is the singleton configuration row for the venue: tax rate,
// happy hour window and the current specials. SpecialsJSON is the raw stored
// form; the settings service validates it into a typed map before any pricing
// resolution sees it.
type AppSettings struct {
	ID                int64           `json:"id" db:"id"`
	BarName           string          `json:"bar_name" db:"bar_name"`
	TaxRate           decimal.Decimal `json:"tax_rate" db:"tax_rate"`
	HappyHourStart    int             `json:"happy_hour_start" db:"happy_hour_start"`
	HappyHourEnd      int             `json:"happy_hour_end" db:"happy_hour_end"`
	HappyHourDiscount decimal.Decimal `json:"happy_hour_discount" db:"happy_hour_discount"`
	SpecialsJSON      string          `json:"specials_json" db:"specials_json"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}
