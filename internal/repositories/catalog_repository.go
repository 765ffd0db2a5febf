package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"barpos_backend/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// CatalogRepository defines the interface for menu catalog database operations.
type CatalogRepository interface {
	// MenuGroup methods
	CreateMenuGroup(executor SQLExecutor, group *models.MenuGroup) (int64, error)
	GetMenuGroups() ([]models.MenuGroup, error)

	// MenuCategory methods
	CreateCategory(executor SQLExecutor, category *models.MenuCategory) (int64, error)
	GetCategories() ([]models.MenuCategory, error)

	// CatalogItem methods
	CreateItem(executor SQLExecutor, item *models.CatalogItem) (int64, error)
	GetItemByID(id int64) (*models.CatalogItem, error)
	GetActiveItems(categoryID *int64) ([]models.CatalogItem, error)
	UpdateItem(executor SQLExecutor, item *models.CatalogItem) error
	DeactivateItem(executor SQLExecutor, id int64) error
	RestockItem(executor SQLExecutor, id int64, stockCount int) error
	DecrementStock(executor SQLExecutor, id int64, quantity int) error
}

type catalogRepository struct {
	db *sql.DB
}

// NewCatalogRepository creates a new instance of CatalogRepository.
func NewCatalogRepository(db *sql.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// encodeExtraTiers serializes the named pricing tiers for storage.
func encodeExtraTiers(tiers map[string]decimal.Decimal) ([]byte, error) {
	if tiers == nil {
		tiers = map[string]decimal.Decimal{}
	}
	return json.Marshal(tiers)
}

// decodeExtraTiers validates the stored tier map at the storage boundary:
// every tier must carry a parseable, non-negative price.
func decodeExtraTiers(raw []byte) (map[string]decimal.Decimal, error) {
	tiers := map[string]decimal.Decimal{}
	if len(raw) == 0 {
		return tiers, nil
	}
	if err := json.Unmarshal(raw, &tiers); err != nil {
		return nil, fmt.Errorf("malformed extra_tiers payload: %w", err)
	}
	for name, price := range tiers {
		if price.IsNegative() {
			return nil, fmt.Errorf("extra tier %q has negative price %s", name, price)
		}
	}
	return tiers, nil
}

// --- MenuGroup Methods ---

func (r *catalogRepository) CreateMenuGroup(executor SQLExecutor, group *models.MenuGroup) (int64, error) {
	query := `INSERT INTO menu_groups (name, sort_order, created_at, updated_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query, group.Name, group.SortOrder, currentTime, currentTime).Scan(&group.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: menu group name '%s' already exists (constraint: %s)", ErrDuplicateKey, group.Name, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating menu group: %v", ErrDatabaseError, err)
	}
	return group.ID, nil
}

func (r *catalogRepository) GetMenuGroups() ([]models.MenuGroup, error) {
	groups := []models.MenuGroup{}
	query := `SELECT id, name, sort_order, created_at, updated_at FROM menu_groups ORDER BY sort_order ASC, name ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: getting menu groups: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var group models.MenuGroup
		if err := rows.Scan(&group.ID, &group.Name, &group.SortOrder, &group.CreatedAt, &group.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning menu group: %v", ErrDatabaseError, err)
		}
		groups = append(groups, group)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating menu groups: %v", ErrDatabaseError, err)
	}
	return groups, nil
}

// --- MenuCategory Methods ---

func (r *catalogRepository) CreateCategory(executor SQLExecutor, category *models.MenuCategory) (int64, error) {
	query := `INSERT INTO menu_categories (menu_group_id, name, icon_name, display_order, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	currentTime := time.Now()
	err := executor.QueryRow(query,
		category.MenuGroupID, category.Name, category.IconName, category.DisplayOrder, currentTime, currentTime,
	).Scan(&category.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return 0, fmt.Errorf("%w: invalid menu_group_id %d (constraint: %s)", ErrDatabaseError, category.MenuGroupID, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating menu category: %v", ErrDatabaseError, err)
	}
	return category.ID, nil
}

func (r *catalogRepository) GetCategories() ([]models.MenuCategory, error) {
	categories := []models.MenuCategory{}
	query := `SELECT id, menu_group_id, name, icon_name, display_order, created_at, updated_at
	          FROM menu_categories
	          ORDER BY display_order ASC, name ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: getting menu categories: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var category models.MenuCategory
		if err := rows.Scan(
			&category.ID, &category.MenuGroupID, &category.Name, &category.IconName,
			&category.DisplayOrder, &category.CreatedAt, &category.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning menu category: %v", ErrDatabaseError, err)
		}
		categories = append(categories, category)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating menu categories: %v", ErrDatabaseError, err)
	}
	return categories, nil
}

// --- CatalogItem Methods ---

const catalogItemColumns = `ci.id, ci.category_id, ci.name, ci.description, ci.base_price,
	    ci.happy_hour_price, ci.bucket_price, ci.hh_bucket_price, ci.extra_tiers,
	    ci.stock_count, ci.is_active, ci.requires_builder, ci.is_food, ci.is_modifier,
	    ci.is_limited_stock, ci.created_at, ci.updated_at`

func (r *catalogRepository) CreateItem(executor SQLExecutor, item *models.CatalogItem) (int64, error) {
	query := `INSERT INTO menu_items
	          (category_id, name, description, base_price, happy_hour_price, bucket_price,
	           hh_bucket_price, extra_tiers, stock_count, is_active, requires_builder,
	           is_food, is_modifier, is_limited_stock, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	          RETURNING id`
	currentTime := time.Now()

	tiersJSON, err := encodeExtraTiers(item.ExtraTiers)
	if err != nil {
		return 0, fmt.Errorf("%w: encoding extra tiers for item '%s': %v", ErrDatabaseError, item.Name, err)
	}

	err = executor.QueryRow(query,
		item.CategoryID, item.Name, item.Description, item.BasePrice, item.HappyHourPrice,
		item.BucketPrice, item.HHBucketPrice, tiersJSON, item.StockCount, item.IsActive,
		item.RequiresBuilder, item.IsFood, item.IsModifier, item.IsLimitedStock,
		currentTime, currentTime,
	).Scan(&item.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return 0, fmt.Errorf("%w: creating catalog item (constraint: %s): %v", ErrDuplicateKey, pqErr.Constraint, err)
			}
			if pqErr.Code.Name() == "foreign_key_violation" {
				return 0, fmt.Errorf("%w: invalid category_id %d (constraint: %s): %v", ErrDatabaseError, item.CategoryID, pqErr.Constraint, err)
			}
		}
		return 0, fmt.Errorf("%w: creating catalog item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func (r *catalogRepository) scanItem(row interface {
	Scan(dest ...interface{}) error
}) (*models.CatalogItem, error) {
	item := &models.CatalogItem{}
	var tiersRaw []byte
	err := row.Scan(
		&item.ID, &item.CategoryID, &item.Name, &item.Description, &item.BasePrice,
		&item.HappyHourPrice, &item.BucketPrice, &item.HHBucketPrice, &tiersRaw,
		&item.StockCount, &item.IsActive, &item.RequiresBuilder, &item.IsFood,
		&item.IsModifier, &item.IsLimitedStock, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.ExtraTiers, err = decodeExtraTiers(tiersRaw)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *catalogRepository) GetItemByID(id int64) (*models.CatalogItem, error) {
	query := `SELECT ` + catalogItemColumns + ` FROM menu_items ci WHERE ci.id = $1`
	item, err := r.scanItem(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting catalog item by ID %d: %v", ErrDatabaseError, id, err)
	}
	return item, nil
}

func (r *catalogRepository) GetActiveItems(categoryID *int64) ([]models.CatalogItem, error) {
	items := []models.CatalogItem{}
	query := `SELECT ` + catalogItemColumns + ` FROM menu_items ci WHERE ci.is_active = TRUE`
	args := []interface{}{}
	if categoryID != nil {
		query += ` AND ci.category_id = $1`
		args = append(args, *categoryID)
	}
	query += ` ORDER BY ci.category_id ASC, ci.name ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getting catalog items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := r.scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning catalog item: %v", ErrDatabaseError, err)
		}
		items = append(items, *item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating catalog items: %v", ErrDatabaseError, err)
	}
	return items, nil
}

func (r *catalogRepository) UpdateItem(executor SQLExecutor, item *models.CatalogItem) error {
	query := `UPDATE menu_items SET
	            category_id = $1, name = $2, description = $3, base_price = $4,
	            happy_hour_price = $5, bucket_price = $6, hh_bucket_price = $7,
	            extra_tiers = $8, stock_count = $9, is_active = $10, requires_builder = $11,
	            is_food = $12, is_modifier = $13, is_limited_stock = $14, updated_at = $15
	          WHERE id = $16`

	tiersJSON, err := encodeExtraTiers(item.ExtraTiers)
	if err != nil {
		return fmt.Errorf("%w: encoding extra tiers for item ID %d: %v", ErrDatabaseError, item.ID, err)
	}

	result, err := executor.Exec(query,
		item.CategoryID, item.Name, item.Description, item.BasePrice, item.HappyHourPrice,
		item.BucketPrice, item.HHBucketPrice, tiersJSON, item.StockCount, item.IsActive,
		item.RequiresBuilder, item.IsFood, item.IsModifier, item.IsLimitedStock,
		time.Now(), item.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: updating catalog item (constraint: %s): %v", ErrDuplicateKey, pqErr.Constraint, err)
		}
		return fmt.Errorf("%w: updating catalog item ID %d: %v", ErrDatabaseError, item.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateItem performs the logical delete. Items referenced by historical
// sales are never physically removed.
func (r *catalogRepository) DeactivateItem(executor SQLExecutor, id int64) error {
	query := `UPDATE menu_items SET is_active = FALSE, updated_at = $1 WHERE id = $2`
	result, err := executor.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: deactivating catalog item ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *catalogRepository) RestockItem(executor SQLExecutor, id int64, stockCount int) error {
	query := `UPDATE menu_items SET stock_count = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, stockCount, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: restocking catalog item ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DecrementStock reduces a tracked item's stock. Untracked items (the
// unlimited sentinel) are left alone; tracked items never go below zero. A
// decrement that matches no row means the item holds less stock than
// requested, and the caller must abort the sale.
func (r *catalogRepository) DecrementStock(executor SQLExecutor, id int64, quantity int) error {
	query := `UPDATE menu_items
	          SET stock_count = stock_count - $1, updated_at = $2
	          WHERE id = $3 AND stock_count <> $4 AND stock_count >= $1`
	result, err := executor.Exec(query, quantity, time.Now(), id, models.StockUnlimited)
	if err != nil {
		return fmt.Errorf("%w: decrementing stock for catalog item ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("%w: catalog item ID %d, requested %d", ErrInsufficientStock, id, quantity)
	}
	return nil
}
