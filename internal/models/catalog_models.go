package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockUnlimited is the sentinel stock count for items whose inventory is not
// tracked. Stock gating only applies to items with a real (non-sentinel) count.
const StockUnlimited = -1

// MenuGroup is the top level of the menu hierarchy (e.g. "Drinks", "Kitchen").
type MenuGroup struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// MenuCategory groups catalog items within a menu group.
type MenuCategory struct {
	ID           int64     `json:"id" db:"id"`
	MenuGroupID  int64     `json:"menu_group_id" db:"menu_group_id" binding:"required"`
	Name         string    `json:"name" db:"name" binding:"required"`
	IconName     string    `json:"icon_name" db:"icon_name"`
	DisplayOrder int       `json:"display_order" db:"display_order"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`

	MenuGroup *MenuGroup `json:"menu_group,omitempty"`
}

// CatalogItem is a sellable product. All price fields are fixed-point decimals;
// ExtraTiers carries free-form named price tiers (e.g. "pitcher", "double")
// validated when loaded from storage.
type CatalogItem struct {
	ID              int64                      `json:"id" db:"id"`
	CategoryID      int64                      `json:"category_id" db:"category_id" binding:"required"`
	Name            string                     `json:"name" db:"name" binding:"required"`
	Description     string                     `json:"description" db:"description"`
	BasePrice       decimal.Decimal            `json:"base_price" db:"base_price"`
	HappyHourPrice  *decimal.Decimal           `json:"happy_hour_price,omitempty" db:"happy_hour_price"`
	BucketPrice     *decimal.Decimal           `json:"bucket_price,omitempty" db:"bucket_price"`
	HHBucketPrice   *decimal.Decimal           `json:"hh_bucket_price,omitempty" db:"hh_bucket_price"`
	ExtraTiers      map[string]decimal.Decimal `json:"extra_tiers,omitempty" db:"extra_tiers"`
	StockCount      int                        `json:"stock_count" db:"stock_count"`
	IsActive        bool                       `json:"is_active" db:"is_active"`
	RequiresBuilder bool                       `json:"requires_builder" db:"requires_builder"`
	IsFood          bool                       `json:"is_food" db:"is_food"`
	IsModifier      bool                       `json:"is_modifier" db:"is_modifier"`
	IsLimitedStock  bool                       `json:"is_limited_stock" db:"is_limited_stock"`
	CreatedAt       time.Time                  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time                  `json:"updated_at" db:"updated_at"`

	Category *MenuCategory `json:"category,omitempty"`
}

// TracksStock reports whether this item participates in stock gating.
func (i *CatalogItem) TracksStock() bool {
	return i.StockCount != StockUnlimited
}
