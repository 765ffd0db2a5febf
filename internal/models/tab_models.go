package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tab is a running customer order. A tab is closed exactly once, at settlement
// time, and is never reopened.
type Tab struct {
	ID           int64     `json:"id" db:"id"`
	CustomerName string    `json:"customer_name" db:"customer_name" binding:"required"`
	IsOpen       bool      `json:"is_open" db:"is_open"`
	ServerID     int64     `json:"server_id" db:"server_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	LineItems []TabLineItem `json:"line_items,omitempty"`
}

// TabLineItem is one unit-of-sale entry on a tab. PriceAtSale is frozen the
// moment the item is added and is authoritative for all downstream totals;
// it is never recomputed from the catalog. ReportID stays NULL until a shift
// close claims the line, after which it is immutable.
type TabLineItem struct {
	ID            int64           `json:"id" db:"id"`
	TabID         int64           `json:"tab_id" db:"tab_id"`
	CatalogItemID int64           `json:"catalog_item_id" db:"catalog_item_id"`
	PriceAtSale   decimal.Decimal `json:"price_at_sale" db:"price_at_sale"`
	Quantity      int             `json:"quantity" db:"quantity"`
	Note          string          `json:"note" db:"note"`
	ReportID      *int64          `json:"report_id,omitempty" db:"report_id"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`

	CatalogItem *CatalogItem `json:"catalog_item,omitempty"`
}

// Sale is the settlement record written when a tab is cashed out.
type Sale struct {
	ID           int64           `json:"id" db:"id"`
	Timestamp    time.Time       `json:"timestamp" db:"timestamp"`
	TotalAmount  decimal.Decimal `json:"total_amount" db:"total_amount"`
	TaxAmount    decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	PaymentType  string          `json:"payment_type" db:"payment_type"`
	CustomerName *string         `json:"customer_name,omitempty" db:"customer_name"`
	ServerID     int64           `json:"server_id" db:"server_id"`

	Items []SaleItem `json:"items,omitempty"`
}

// SaleItem is a denormalized line snapshot attached to a Sale, kept for
// receipts and history even if the catalog item is later deactivated.
type SaleItem struct {
	ID        int64           `json:"id" db:"id"`
	SaleID    int64           `json:"sale_id" db:"sale_id"`
	ItemName  string          `json:"item_name" db:"item_name"`
	PricePaid decimal.Decimal `json:"price_paid" db:"price_paid"`
	Quantity  int             `json:"quantity" db:"quantity"`
}
