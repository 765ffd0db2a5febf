package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"barpos_backend/internal/models"

	"github.com/lib/pq"
)

// TabRepository defines the interface for tab and settlement database operations.
type TabRepository interface {
	// Tab methods
	CreateTab(executor SQLExecutor, tab *models.Tab) (int64, error)
	GetTabByID(tabID int64) (*models.Tab, error)
	GetTabs(openOnly bool) ([]models.Tab, error)
	RenameTab(executor SQLExecutor, tabID int64, customerName string) error
	CloseTab(executor SQLExecutor, tabID int64) error

	// TabLineItem methods
	CreateLineItem(executor SQLExecutor, item *models.TabLineItem) (int64, error)
	GetLineItemsByTabID(executor SQLExecutor, tabID int64) ([]models.TabLineItem, error)
	DeleteLineItem(executor SQLExecutor, lineItemID int64) error
	UpdateLineItemNote(executor SQLExecutor, lineItemID int64, note string) error

	// Settlement methods
	CreateSale(executor SQLExecutor, sale *models.Sale) (int64, error)
	CreateSaleItems(executor SQLExecutor, saleID int64, items []models.SaleItem) error
}

type tabRepository struct {
	db *sql.DB
}

// NewTabRepository creates a new instance of TabRepository.
func NewTabRepository(db *sql.DB) TabRepository {
	return &tabRepository{db: db}
}

// --- Tab Methods ---

func (r *tabRepository) CreateTab(executor SQLExecutor, tab *models.Tab) (int64, error) {
	query := `INSERT INTO tabs (customer_name, is_open, server_id, created_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`
	if tab.CreatedAt.IsZero() {
		tab.CreatedAt = time.Now()
	}
	tab.IsOpen = true

	err := executor.QueryRow(query, tab.CustomerName, tab.IsOpen, tab.ServerID, tab.CreatedAt).Scan(&tab.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating tab: %v", ErrDatabaseError, err)
	}
	return tab.ID, nil
}

func (r *tabRepository) GetTabByID(tabID int64) (*models.Tab, error) {
	tab := &models.Tab{}
	query := `SELECT id, customer_name, is_open, server_id, created_at FROM tabs WHERE id = $1`
	err := r.db.QueryRow(query, tabID).Scan(&tab.ID, &tab.CustomerName, &tab.IsOpen, &tab.ServerID, &tab.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting tab by ID %d: %v", ErrDatabaseError, tabID, err)
	}
	return tab, nil
}

func (r *tabRepository) GetTabs(openOnly bool) ([]models.Tab, error) {
	tabs := []models.Tab{}
	query := `SELECT id, customer_name, is_open, server_id, created_at FROM tabs`
	if openOnly {
		query += ` WHERE is_open = TRUE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying tabs: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var tab models.Tab
		if err := rows.Scan(&tab.ID, &tab.CustomerName, &tab.IsOpen, &tab.ServerID, &tab.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning tab: %v", ErrDatabaseError, err)
		}
		tabs = append(tabs, tab)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating tab rows: %v", ErrDatabaseError, err)
	}
	return tabs, nil
}

func (r *tabRepository) RenameTab(executor SQLExecutor, tabID int64, customerName string) error {
	query := `UPDATE tabs SET customer_name = $1 WHERE id = $2`
	result, err := executor.Exec(query, customerName, tabID)
	if err != nil {
		return fmt.Errorf("%w: renaming tab ID %d: %v", ErrDatabaseError, tabID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CloseTab flips is_open exactly once. Updating only open tabs makes a repeat
// close observable as ErrNotFound instead of a silent second transition.
func (r *tabRepository) CloseTab(executor SQLExecutor, tabID int64) error {
	query := `UPDATE tabs SET is_open = FALSE WHERE id = $1 AND is_open = TRUE`
	result, err := executor.Exec(query, tabID)
	if err != nil {
		return fmt.Errorf("%w: closing tab ID %d: %v", ErrDatabaseError, tabID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- TabLineItem Methods ---

func (r *tabRepository) CreateLineItem(executor SQLExecutor, item *models.TabLineItem) (int64, error) {
	query := `INSERT INTO tab_line_items
	            (tab_id, catalog_item_id, price_at_sale, quantity, note, report_id, created_at)
	          VALUES ($1, $2, $3, $4, $5, NULL, $6)
	          RETURNING id`
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		item.TabID, item.CatalogItemID, item.PriceAtSale, item.Quantity, item.Note, item.CreatedAt,
	).Scan(&item.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return 0, fmt.Errorf("%w: creating tab line item (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating tab line item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func (r *tabRepository) GetLineItemsByTabID(executor SQLExecutor, tabID int64) ([]models.TabLineItem, error) {
	items := []models.TabLineItem{}
	query := `
		SELECT
		    tli.id, tli.tab_id, tli.catalog_item_id, tli.price_at_sale,
		    tli.quantity, tli.note, tli.report_id, tli.created_at,
		    ci.name AS item_name, ci.is_food AS item_is_food
		FROM tab_line_items tli
		JOIN menu_items ci ON tli.catalog_item_id = ci.id
		WHERE tli.tab_id = $1
		ORDER BY tli.id`

	rows, err := executor.Query(query, tabID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying line items for tab ID %d: %v", ErrDatabaseError, tabID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.TabLineItem
		var catalogItem models.CatalogItem
		var reportID sql.NullInt64

		err := rows.Scan(
			&item.ID, &item.TabID, &item.CatalogItemID, &item.PriceAtSale,
			&item.Quantity, &item.Note, &reportID, &item.CreatedAt,
			&catalogItem.Name, &catalogItem.IsFood,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning line item for tab ID %d: %v", ErrDatabaseError, tabID, err)
		}
		if reportID.Valid {
			id := reportID.Int64
			item.ReportID = &id
		}
		catalogItem.ID = item.CatalogItemID
		item.CatalogItem = &catalogItem
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating line item rows for tab ID %d: %v", ErrDatabaseError, tabID, err)
	}
	return items, nil
}

// DeleteLineItem removes an unclaimed line from an open tab (voided before
// settlement). Claimed lines are part of a report and must never be deleted.
func (r *tabRepository) DeleteLineItem(executor SQLExecutor, lineItemID int64) error {
	query := `DELETE FROM tab_line_items WHERE id = $1 AND report_id IS NULL`
	result, err := executor.Exec(query, lineItemID)
	if err != nil {
		return fmt.Errorf("%w: deleting tab line item ID %d: %v", ErrDatabaseError, lineItemID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *tabRepository) UpdateLineItemNote(executor SQLExecutor, lineItemID int64, note string) error {
	query := `UPDATE tab_line_items SET note = $1 WHERE id = $2`
	result, err := executor.Exec(query, note, lineItemID)
	if err != nil {
		return fmt.Errorf("%w: updating note for tab line item ID %d: %v", ErrDatabaseError, lineItemID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Settlement Methods ---

func (r *tabRepository) CreateSale(executor SQLExecutor, sale *models.Sale) (int64, error) {
	query := `INSERT INTO sales (timestamp, total_amount, tax_amount, payment_type, customer_name, server_id)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	if sale.Timestamp.IsZero() {
		sale.Timestamp = time.Now()
	}
	err := executor.QueryRow(query,
		sale.Timestamp, sale.TotalAmount, sale.TaxAmount, sale.PaymentType, sale.CustomerName, sale.ServerID,
	).Scan(&sale.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating sale record: %v", ErrDatabaseError, err)
	}
	return sale.ID, nil
}

func (r *tabRepository) CreateSaleItems(executor SQLExecutor, saleID int64, items []models.SaleItem) error {
	query := `INSERT INTO sale_items (sale_id, item_name, price_paid, quantity)
	          VALUES ($1, $2, $3, $4)`
	for i := range items {
		items[i].SaleID = saleID
		if _, err := executor.Exec(query, saleID, items[i].ItemName, items[i].PricePaid, items[i].Quantity); err != nil {
			return fmt.Errorf("%w: creating sale item for sale ID %d: %v", ErrDatabaseError, saleID, err)
		}
	}
	return nil
}
