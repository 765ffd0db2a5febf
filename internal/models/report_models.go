package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ShiftReport is the immutable audit record of a shift close (Z-Report).
// Rows are written exactly once and never updated or deleted afterwards.
type ShiftReport struct {
	ID           int64           `json:"id" db:"id"`
	Timestamp    time.Time       `json:"timestamp" db:"timestamp"`
	TotalRevenue decimal.Decimal `json:"total_revenue" db:"total_revenue"`
	ManagerID    int64           `json:"manager_id" db:"manager_id"`
	ReportData   string          `json:"report_data" db:"report_data"` // serialized ReportBreakdown
	IsVerified   bool            `json:"is_verified" db:"is_verified"`
}

// ReportBreakdown is the payload stored in ShiftReport.ReportData. Downstream
// export tooling reads it; the core only ever writes it once.
type ReportBreakdown struct {
	TotalRaw       string         `json:"total_raw"`
	TotalFormatted string         `json:"total_formatted"`
	ItemCounts     map[string]int `json:"item_counts"`
	Timestamp      time.Time      `json:"timestamp"`
}

// UnreportedLine is one entry of the unreported-items ledger: a line item from
// a closed tab that no shift report has claimed yet, joined with the catalog
// item it references.
type UnreportedLine struct {
	LineID      int64           `json:"line_id" db:"line_id"`
	TabID       int64           `json:"tab_id" db:"tab_id"`
	ItemName    string          `json:"item_name" db:"item_name"`
	PriceAtSale decimal.Decimal `json:"price_at_sale" db:"price_at_sale"`
	Quantity    int             `json:"quantity" db:"quantity"`
}
