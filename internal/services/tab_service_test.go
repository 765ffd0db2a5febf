package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barpos_backend/internal/finance"
	"barpos_backend/internal/models"
	"barpos_backend/internal/repositories"
)

// stubSettingsService hands back a fixed pricing snapshot so tab tests do not
// have to mock the settings table on every call.
type stubSettingsService struct {
	cfg finance.PricingConfig
}

func (s *stubSettingsService) GetSettings() (*models.AppSettings, error) {
	return defaultSettings(), nil
}

func (s *stubSettingsService) UpdateSettings(req UpdateSettingsRequest) (*models.AppSettings, error) {
	return defaultSettings(), nil
}

func (s *stubSettingsService) PricingConfig() (finance.PricingConfig, error) {
	return s.cfg, nil
}

func newTabServiceForTest(t *testing.T, cfg finance.PricingConfig) (TabService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	svc := NewTabService(
		repositories.NewTabRepository(db),
		repositories.NewCatalogRepository(db),
		&stubSettingsService{cfg: cfg},
		db,
	)
	return svc, mock, func() { db.Close() }
}

func standardConfig() finance.PricingConfig {
	return finance.PricingConfig{
		TaxRate:           decimal.RequireFromString("0.08"),
		HappyHourStart:    16,
		HappyHourEnd:      18,
		HappyHourDiscount: decimal.RequireFromString("0.50"),
		Specials:          map[int64]decimal.Decimal{},
	}
}

func tabRow(id int64, isOpen bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "customer_name", "is_open", "server_id", "created_at"}).
		AddRow(id, "Walk-in", isOpen, int64(3), time.Now())
}

func itemRow(id int64, basePrice string, stockCount int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "category_id", "name", "description", "base_price",
		"happy_hour_price", "bucket_price", "hh_bucket_price", "extra_tiers",
		"stock_count", "is_active", "requires_builder", "is_food", "is_modifier",
		"is_limited_stock", "created_at", "updated_at",
	}).AddRow(id, int64(2), "Bud Light", "", basePrice,
		nil, nil, nil, []byte(`{}`),
		stockCount, true, false, false, false,
		stockCount >= 0, now, now)
}

func TestAddItemToTabFreezesResolvedPrice(t *testing.T) {
	cfg := standardConfig()
	cfg.Specials = map[int64]decimal.Decimal{7: decimal.RequireFromString("4.00")}
	svc, mock, closeDB := newTabServiceForTest(t, cfg)
	defer closeDB()

	mock.ExpectQuery(`SELECT id, customer_name, is_open, server_id, created_at FROM tabs WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(tabRow(1, true))
	mock.ExpectQuery(`FROM menu_items ci WHERE ci.id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(itemRow(7, "5.50", 3))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO tab_line_items`).
		WithArgs(int64(1), int64(7), decimal.RequireFromString("4.00"), 2, "", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))
	mock.ExpectExec(`UPDATE menu_items[\s\S]*SET stock_count = stock_count - \$1`).
		WithArgs(2, sqlmock.AnyArg(), int64(7), models.StockUnlimited).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp, err := svc.AddItemToTab(AddItemRequest{TabID: 1, CatalogItemID: 7, Quantity: 2})

	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.LineItem.ID)
	assert.Equal(t, finance.RuleSpecial, resp.PricingRule)
	assert.True(t, decimal.RequireFromString("4.00").Equal(resp.LineItem.PriceAtSale),
		"line must carry the special price, got %s", resp.LineItem.PriceAtSale)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddItemToTabUntrackedStockSkipsDecrement(t *testing.T) {
	svc, mock, closeDB := newTabServiceForTest(t, standardConfig())
	defer closeDB()

	mock.ExpectQuery(`FROM tabs WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(tabRow(1, true))
	mock.ExpectQuery(`FROM menu_items ci WHERE ci.id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(itemRow(7, "5.50", models.StockUnlimited))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO tab_line_items`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(43)))
	mock.ExpectCommit()

	_, err := svc.AddItemToTab(AddItemRequest{TabID: 1, CatalogItemID: 7, Quantity: 1})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddItemToTabInsufficientStockRollsBack(t *testing.T) {
	svc, mock, closeDB := newTabServiceForTest(t, standardConfig())
	defer closeDB()

	mock.ExpectQuery(`FROM tabs WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(tabRow(1, true))
	mock.ExpectQuery(`FROM menu_items ci WHERE ci.id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(itemRow(7, "5.50", 2))

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO tab_line_items`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(44)))
	// Guarded decrement matches no row: stock 2 cannot cover quantity 3.
	mock.ExpectExec(`UPDATE menu_items[\s\S]*SET stock_count = stock_count - \$1`).
		WithArgs(3, sqlmock.AnyArg(), int64(7), models.StockUnlimited).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.AddItemToTab(AddItemRequest{TabID: 1, CatalogItemID: 7, Quantity: 3})

	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddItemToTabOutOfStock(t *testing.T) {
	svc, mock, closeDB := newTabServiceForTest(t, standardConfig())
	defer closeDB()

	mock.ExpectQuery(`FROM tabs WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(tabRow(1, true))
	mock.ExpectQuery(`FROM menu_items ci WHERE ci.id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(itemRow(7, "5.50", 0))

	_, err := svc.AddItemToTab(AddItemRequest{TabID: 1, CatalogItemID: 7, Quantity: 1})

	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddItemToClosedTab(t *testing.T) {
	svc, mock, closeDB := newTabServiceForTest(t, standardConfig())
	defer closeDB()

	mock.ExpectQuery(`FROM tabs WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(tabRow(5, false))

	_, err := svc.AddItemToTab(AddItemRequest{TabID: 5, CatalogItemID: 7, Quantity: 1})

	assert.ErrorIs(t, err, ErrTabClosed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func lineItemRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "tab_id", "catalog_item_id", "price_at_sale", "quantity",
		"note", "report_id", "created_at", "item_name", "item_is_food",
	}).
		AddRow(int64(11), int64(1), int64(7), "8.50", 1, "", nil, now, "Old Fashioned", false).
		AddRow(int64(12), int64(1), int64(8), "5.00", 2, "", nil, now, "Bud Light", false).
		AddRow(int64(13), int64(1), int64(9), "6.00", 1, "extra crispy", nil, now, "Wings", true)
}

func TestSettleTab(t *testing.T) {
	svc, mock, closeDB := newTabServiceForTest(t, standardConfig())
	defer closeDB()

	mock.ExpectQuery(`FROM tabs WHERE id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(tabRow(1, true))

	// The line-item read must ride the settlement transaction, so the sale
	// snapshot matches exactly what the tab held at close.
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM tab_line_items tli[\s\S]*WHERE tli.tab_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(lineItemRows())
	mock.ExpectQuery(`INSERT INTO sales`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(21)))
	mock.ExpectExec(`INSERT INTO sale_items`).
		WithArgs(int64(21), "Old Fashioned", decimal.RequireFromString("8.50"), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO sale_items`).
		WithArgs(int64(21), "Bud Light", decimal.RequireFromString("5.00"), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO sale_items`).
		WithArgs(int64(21), "Wings", decimal.RequireFromString("6.00"), 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE tabs SET is_open = FALSE WHERE id = \$1 AND is_open = TRUE`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	sale, err := svc.SettleTab(SettleTabRequest{TabID: 1, PaymentType: PaymentCard})

	require.NoError(t, err)
	// 8.50 + 10.00 + 6.00 = 24.50, tax 1.96, total 26.46
	assert.True(t, decimal.RequireFromString("26.46").Equal(sale.TotalAmount),
		"unexpected total %s", sale.TotalAmount)
	assert.True(t, decimal.RequireFromString("1.96").Equal(sale.TaxAmount))
	assert.Equal(t, PaymentCard, sale.PaymentType)
	assert.Len(t, sale.Items, 3)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleTabRejectsUnknownPaymentType(t *testing.T) {
	svc, _, closeDB := newTabServiceForTest(t, standardConfig())
	defer closeDB()

	_, err := svc.SettleTab(SettleTabRequest{TabID: 1, PaymentType: "iou"})

	assert.ErrorIs(t, err, ErrValidation)
}
