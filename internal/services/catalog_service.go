package services

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"barpos_backend/internal/models"
	"barpos_backend/internal/repositories"
)

// Custom Errors
var (
	ErrInvalidCatalogItem = errors.New("invalid catalog item")
	ErrDuplicateName      = errors.New("name already exists")
)

// --- Data Transfer Objects (DTOs) ---

// CreateItemRequest carries everything needed to put a new item on the menu.
// StockCount of -1 means the item is not stock-tracked.
type CreateItemRequest struct {
	Name            string                     `json:"name" binding:"required"`
	CategoryID      int64                      `json:"category_id" binding:"required"`
	Description     string                     `json:"description"`
	BasePrice       decimal.Decimal            `json:"base_price"`
	HappyHourPrice  *decimal.Decimal           `json:"happy_hour_price,omitempty"`
	BucketPrice     *decimal.Decimal           `json:"bucket_price,omitempty"`
	HHBucketPrice   *decimal.Decimal           `json:"hh_bucket_price,omitempty"`
	ExtraTiers      map[string]decimal.Decimal `json:"extra_tiers,omitempty"`
	StockCount      int                        `json:"stock_count"`
	RequiresBuilder bool                       `json:"requires_builder"`
	IsFood          bool                       `json:"is_food"`
	IsModifier      bool                       `json:"is_modifier"`
	IsLimitedStock  bool                       `json:"is_limited_stock"`
}

// UpdateItemRequest mirrors CreateItemRequest for full-row updates.
type UpdateItemRequest struct {
	ID int64 `json:"id" binding:"required"`
	CreateItemRequest
}

// MenuResponse is the menu laid out for display: groups, their categories,
// and the active items under each category.
type MenuResponse struct {
	Groups []MenuGroupView `json:"groups"`
}

type MenuGroupView struct {
	Group      models.MenuGroup   `json:"group"`
	Categories []MenuCategoryView `json:"categories"`
}

type MenuCategoryView struct {
	Category models.MenuCategory  `json:"category"`
	Items    []models.CatalogItem `json:"items"`
}

// --- CatalogService Interface ---

type CatalogService interface {
	CreateMenuGroup(name string, sortOrder int) (*models.MenuGroup, error)
	CreateCategory(category *models.MenuCategory) (*models.MenuCategory, error)
	CreateItem(req CreateItemRequest) (*models.CatalogItem, error)
	UpdateItem(req UpdateItemRequest) (*models.CatalogItem, error)
	GetItemByID(id int64) (*models.CatalogItem, error)
	GetMenu() (*MenuResponse, error)
	GetActiveItems(categoryID *int64) ([]models.CatalogItem, error)
	DeactivateItem(id int64) error
	RestockItem(id int64, stockCount int) error
}

// --- catalogService Implementation ---

type catalogService struct {
	catalogRepo repositories.CatalogRepository
	db          *sql.DB
}

// NewCatalogService creates a new instance of CatalogService.
func NewCatalogService(cr repositories.CatalogRepository, db *sql.DB) CatalogService {
	return &catalogService{catalogRepo: cr, db: db}
}

func (s *catalogService) CreateMenuGroup(name string, sortOrder int) (*models.MenuGroup, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrInvalidCatalogItem)
	}
	group := &models.MenuGroup{Name: name, SortOrder: sortOrder}
	if _, err := s.catalogRepo.CreateMenuGroup(s.db, group); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: group '%s'", ErrDuplicateName, name)
		}
		return nil, fmt.Errorf("failed to create menu group: %w", err)
	}
	return group, nil
}

func (s *catalogService) CreateCategory(category *models.MenuCategory) (*models.MenuCategory, error) {
	if category.Name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalidCatalogItem)
	}
	if _, err := s.catalogRepo.CreateCategory(s.db, category); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: category '%s'", ErrDuplicateName, category.Name)
		}
		return nil, fmt.Errorf("failed to create menu category: %w", err)
	}
	return category, nil
}

func (s *catalogService) CreateItem(req CreateItemRequest) (*models.CatalogItem, error) {
	if err := validateItemRequest(req); err != nil {
		return nil, err
	}
	item := itemFromRequest(req)
	if _, err := s.catalogRepo.CreateItem(s.db, item); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: item '%s'", ErrDuplicateName, req.Name)
		}
		return nil, fmt.Errorf("failed to create catalog item: %w", err)
	}
	return item, nil
}

func (s *catalogService) UpdateItem(req UpdateItemRequest) (*models.CatalogItem, error) {
	if err := validateItemRequest(req.CreateItemRequest); err != nil {
		return nil, err
	}
	item := itemFromRequest(req.CreateItemRequest)
	item.ID = req.ID
	item.IsActive = true
	if err := s.catalogRepo.UpdateItem(s.db, item); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: item '%s'", ErrDuplicateName, req.Name)
		}
		return nil, fmt.Errorf("failed to update catalog item %d: %w", req.ID, err)
	}
	return item, nil
}

func (s *catalogService) GetItemByID(id int64) (*models.CatalogItem, error) {
	return s.catalogRepo.GetItemByID(id)
}

func (s *catalogService) GetMenu() (*MenuResponse, error) {
	groups, err := s.catalogRepo.GetMenuGroups()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch menu groups: %w", err)
	}
	categories, err := s.catalogRepo.GetCategories()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch menu categories: %w", err)
	}
	items, err := s.catalogRepo.GetActiveItems(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog items: %w", err)
	}

	itemsByCategory := make(map[int64][]models.CatalogItem)
	for _, item := range items {
		itemsByCategory[item.CategoryID] = append(itemsByCategory[item.CategoryID], item)
	}
	categoriesByGroup := make(map[int64][]MenuCategoryView)
	for _, category := range categories {
		categoriesByGroup[category.MenuGroupID] = append(categoriesByGroup[category.MenuGroupID], MenuCategoryView{
			Category: category,
			Items:    itemsByCategory[category.ID],
		})
	}

	response := &MenuResponse{Groups: make([]MenuGroupView, 0, len(groups))}
	for _, group := range groups {
		response.Groups = append(response.Groups, MenuGroupView{
			Group:      group,
			Categories: categoriesByGroup[group.ID],
		})
	}
	return response, nil
}

func (s *catalogService) GetActiveItems(categoryID *int64) ([]models.CatalogItem, error) {
	return s.catalogRepo.GetActiveItems(categoryID)
}

func (s *catalogService) DeactivateItem(id int64) error {
	return s.catalogRepo.DeactivateItem(s.db, id)
}

func (s *catalogService) RestockItem(id int64, stockCount int) error {
	if stockCount < models.StockUnlimited {
		return fmt.Errorf("%w: stock count must be -1 or greater", ErrInvalidCatalogItem)
	}
	return s.catalogRepo.RestockItem(s.db, id, stockCount)
}

func validateItemRequest(req CreateItemRequest) error {
	if req.Name == "" {
		return fmt.Errorf("%w: item name is required", ErrInvalidCatalogItem)
	}
	if req.BasePrice.IsNegative() {
		return fmt.Errorf("%w: base price must not be negative", ErrInvalidCatalogItem)
	}
	for _, price := range []*decimal.Decimal{req.HappyHourPrice, req.BucketPrice, req.HHBucketPrice} {
		if price != nil && price.IsNegative() {
			return fmt.Errorf("%w: prices must not be negative", ErrInvalidCatalogItem)
		}
	}
	for tier, price := range req.ExtraTiers {
		if price.IsNegative() {
			return fmt.Errorf("%w: tier '%s' price must not be negative", ErrInvalidCatalogItem, tier)
		}
	}
	if req.StockCount < models.StockUnlimited {
		return fmt.Errorf("%w: stock count must be -1 or greater", ErrInvalidCatalogItem)
	}
	return nil
}

func itemFromRequest(req CreateItemRequest) *models.CatalogItem {
	return &models.CatalogItem{
		Name:            req.Name,
		CategoryID:      req.CategoryID,
		Description:     req.Description,
		BasePrice:       req.BasePrice,
		HappyHourPrice:  req.HappyHourPrice,
		BucketPrice:     req.BucketPrice,
		HHBucketPrice:   req.HHBucketPrice,
		ExtraTiers:      req.ExtraTiers,
		StockCount:      req.StockCount,
		IsActive:        true,
		RequiresBuilder: req.RequiresBuilder,
		IsFood:          req.IsFood,
		IsModifier:      req.IsModifier,
		IsLimitedStock:  req.IsLimitedStock,
	}
}
