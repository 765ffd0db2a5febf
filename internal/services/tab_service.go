package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"barpos_backend/internal/finance"
	"barpos_backend/internal/models"
	"barpos_backend/internal/repositories"
	"barpos_backend/pkg/utils"
)

// Custom Errors
var (
	ErrItemNotAvailable = errors.New("catalog item not found or not active")
	ErrOutOfStock       = errors.New("item is out of stock")
	ErrTabNotFound      = errors.New("tab not found")
	ErrTabClosed        = errors.New("tab is already closed")
	ErrValidation       = errors.New("validation failed")
)

// Payment types accepted at settlement.
const (
	PaymentCash = "cash"
	PaymentCard = "card"
)

// --- Data Transfer Objects (DTOs) ---

// CreateTabRequest opens a new tab for a customer.
type CreateTabRequest struct {
	CustomerName string `json:"customer_name" binding:"required"`
	ServerID     int64  `json:"server_id" binding:"required"`
}

// AddItemRequest adds one catalog item to an open tab. The price is resolved
// and frozen at this moment; the response carries the applied pricing rule.
type AddItemRequest struct {
	TabID         int64  `json:"tab_id" binding:"required"`
	CatalogItemID int64  `json:"catalog_item_id" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,gt=0"`
	Note          string `json:"note"`
}

// AddItemResponse returns the created line and the rule that priced it.
type AddItemResponse struct {
	LineItem    *models.TabLineItem `json:"line_item"`
	PricingRule string              `json:"pricing_rule"`
}

// TabDetailResponse is a tab with its lines and live running totals.
type TabDetailResponse struct {
	Tab            *models.Tab          `json:"tab"`
	LineItems      []models.TabLineItem `json:"line_items"`
	Subtotal       string               `json:"subtotal"`
	Tax            string               `json:"tax"`
	Total          string               `json:"total"`
	TotalFormatted string               `json:"total_formatted"`
}

// SettleTabRequest cashes out an open tab.
type SettleTabRequest struct {
	TabID       int64  `json:"tab_id" binding:"required"`
	PaymentType string `json:"payment_type" binding:"required"`
}

// --- TabService Interface ---

type TabService interface {
	CreateTab(req CreateTabRequest) (*models.Tab, error)
	GetTabs(openOnly bool) ([]models.Tab, error)
	GetTabDetail(tabID int64) (*TabDetailResponse, error)
	RenameTab(tabID int64, customerName string) error
	AddItemToTab(req AddItemRequest) (*AddItemResponse, error)
	RemoveLineItem(lineItemID int64) error
	UpdateLineItemNote(lineItemID int64, note string) error
	SettleTab(req SettleTabRequest) (*models.Sale, error)
}

// --- tabService Implementation ---

type tabService struct {
	tabRepo     repositories.TabRepository
	catalogRepo repositories.CatalogRepository
	settings    SettingsService
	db          *sql.DB // For managing transactions
}

// NewTabService creates a new instance of TabService.
func NewTabService(
	tr repositories.TabRepository,
	cr repositories.CatalogRepository,
	ss SettingsService,
	db *sql.DB,
) TabService {
	return &tabService{
		tabRepo:     tr,
		catalogRepo: cr,
		settings:    ss,
		db:          db,
	}
}

func (s *tabService) CreateTab(req CreateTabRequest) (*models.Tab, error) {
	tab := &models.Tab{
		CustomerName: req.CustomerName,
		ServerID:     req.ServerID,
	}
	if _, err := s.tabRepo.CreateTab(s.db, tab); err != nil {
		return nil, fmt.Errorf("failed to create tab: %w", err)
	}
	return tab, nil
}

func (s *tabService) GetTabs(openOnly bool) ([]models.Tab, error) {
	return s.tabRepo.GetTabs(openOnly)
}

func (s *tabService) GetTabDetail(tabID int64) (*TabDetailResponse, error) {
	tab, err := s.tabRepo.GetTabByID(tabID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTabNotFound
		}
		return nil, fmt.Errorf("failed to fetch tab %d: %w", tabID, err)
	}

	items, err := s.tabRepo.GetLineItemsByTabID(s.db, tabID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch line items for tab %d: %w", tabID, err)
	}

	cfg, err := s.settings.PricingConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing config: %w", err)
	}

	totals := finance.Totalize(linesFromItems(items), cfg.TaxRate)
	return &TabDetailResponse{
		Tab:            tab,
		LineItems:      items,
		Subtotal:       totals.Subtotal.StringFixed(finance.MoneyScale),
		Tax:            totals.Tax.StringFixed(finance.MoneyScale),
		Total:          totals.Total.StringFixed(finance.MoneyScale),
		TotalFormatted: totals.TotalFormatted,
	}, nil
}

func (s *tabService) RenameTab(tabID int64, customerName string) error {
	err := s.tabRepo.RenameTab(s.db, tabID, customerName)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrTabNotFound
	}
	return err
}

// AddItemToTab resolves the unit price against a fresh pricing snapshot and
// freezes it on the new line. The line insert and the stock decrement ride
// one transaction.
func (s *tabService) AddItemToTab(req AddItemRequest) (*AddItemResponse, error) {
	tab, err := s.tabRepo.GetTabByID(req.TabID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTabNotFound
		}
		return nil, fmt.Errorf("failed to fetch tab %d: %w", req.TabID, err)
	}
	if !tab.IsOpen {
		return nil, ErrTabClosed
	}

	item, err := s.catalogRepo.GetItemByID(req.CatalogItemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: item ID %d", ErrItemNotAvailable, req.CatalogItemID)
		}
		return nil, fmt.Errorf("failed to fetch catalog item %d: %w", req.CatalogItemID, err)
	}
	if !item.IsActive {
		return nil, fmt.Errorf("%w: item ID %d", ErrItemNotAvailable, req.CatalogItemID)
	}

	cfg, err := s.settings.PricingConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing config: %w", err)
	}

	result := finance.ResolveUnitPrice(*item, cfg, time.Now())
	if result.OutOfStock {
		return nil, fmt.Errorf("%w: %s (ID: %d)", ErrOutOfStock, item.Name, item.ID)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	line := &models.TabLineItem{
		TabID:         req.TabID,
		CatalogItemID: req.CatalogItemID,
		PriceAtSale:   result.UnitPrice,
		Quantity:      req.Quantity,
		Note:          req.Note,
	}
	if _, err := s.tabRepo.CreateLineItem(tx, line); err != nil {
		return nil, fmt.Errorf("failed to create tab line item: %w", err)
	}

	if item.TracksStock() {
		if err := s.catalogRepo.DecrementStock(tx, item.ID, req.Quantity); err != nil {
			if errors.Is(err, repositories.ErrInsufficientStock) {
				return nil, fmt.Errorf("%w: %s (ID: %d)", ErrOutOfStock, item.Name, item.ID)
			}
			return nil, fmt.Errorf("failed to decrement stock for item %d: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit tab line item transaction: %w", err)
	}

	line.CatalogItem = item
	return &AddItemResponse{LineItem: line, PricingRule: result.Rule}, nil
}

func (s *tabService) RemoveLineItem(lineItemID int64) error {
	err := s.tabRepo.DeleteLineItem(s.db, lineItemID)
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: line item ID %d", ErrItemNotAvailable, lineItemID)
	}
	return err
}

func (s *tabService) UpdateLineItemNote(lineItemID int64, note string) error {
	err := s.tabRepo.UpdateLineItemNote(s.db, lineItemID, note)
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("%w: line item ID %d", ErrItemNotAvailable, lineItemID)
	}
	return err
}

// SettleTab cashes out an open tab: it writes the sale record with its item
// snapshot and flips the tab closed, all in one transaction. From that moment
// the tab's lines sit in the unreported-items ledger until the next Z-Report.
func (s *tabService) SettleTab(req SettleTabRequest) (*models.Sale, error) {
	if req.PaymentType != PaymentCash && req.PaymentType != PaymentCard {
		return nil, fmt.Errorf("%w: unknown payment type '%s'", ErrValidation, req.PaymentType)
	}

	tab, err := s.tabRepo.GetTabByID(req.TabID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTabNotFound
		}
		return nil, fmt.Errorf("failed to fetch tab %d: %w", req.TabID, err)
	}
	if !tab.IsOpen {
		return nil, ErrTabClosed
	}

	cfg, err := s.settings.PricingConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load pricing config: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	// Lines are read inside the settlement transaction so the sale record
	// captures exactly what the tab held when it closed.
	items, err := s.tabRepo.GetLineItemsByTabID(tx, req.TabID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch line items for tab %d: %w", req.TabID, err)
	}
	totals := finance.Totalize(linesFromItems(items), cfg.TaxRate)

	sale := &models.Sale{
		TotalAmount:  totals.Total,
		TaxAmount:    totals.Tax,
		PaymentType:  req.PaymentType,
		CustomerName: utils.NewNullString(tab.CustomerName),
		ServerID:     tab.ServerID,
	}
	saleID, err := s.tabRepo.CreateSale(tx, sale)
	if err != nil {
		return nil, fmt.Errorf("failed to create sale record: %w", err)
	}

	saleItems := make([]models.SaleItem, 0, len(items))
	for _, item := range items {
		name := ""
		if item.CatalogItem != nil {
			name = item.CatalogItem.Name
		}
		saleItems = append(saleItems, models.SaleItem{
			ItemName:  name,
			PricePaid: item.PriceAtSale,
			Quantity:  item.Quantity,
		})
	}
	if err := s.tabRepo.CreateSaleItems(tx, saleID, saleItems); err != nil {
		return nil, fmt.Errorf("failed to create sale items: %w", err)
	}

	if err := s.tabRepo.CloseTab(tx, req.TabID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTabClosed
		}
		return nil, fmt.Errorf("failed to close tab %d: %w", req.TabID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit settlement transaction: %w", err)
	}

	sale.Items = saleItems
	return sale, nil
}

func linesFromItems(items []models.TabLineItem) []finance.Line {
	lines := make([]finance.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, finance.Line{UnitPrice: item.PriceAtSale, Quantity: item.Quantity})
	}
	return lines
}
