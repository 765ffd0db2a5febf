package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barpos_backend/internal/repositories"
)

func newSettingsServiceForTest(t *testing.T) (SettingsService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewSettingsService(repositories.NewSettingsRepository(db), db), mock, func() { db.Close() }
}

func settingsRow(specialsJSON string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "bar_name", "tax_rate", "happy_hour_start", "happy_hour_end",
		"happy_hour_discount", "specials_json", "updated_at",
	}).AddRow(int64(1), "MidTown POS", "0.08", 16, 18, "0.50", specialsJSON, time.Now())
}

func TestGetSettingsFallsBackToDefaults(t *testing.T) {
	svc, mock, closeDB := newSettingsServiceForTest(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT id, bar_name, tax_rate`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	settings, err := svc.GetSettings()

	require.NoError(t, err)
	assert.Equal(t, "MidTown POS", settings.BarName)
	assert.True(t, decimal.RequireFromString("0.08").Equal(settings.TaxRate))
	assert.Equal(t, 16, settings.HappyHourStart)
	assert.Equal(t, 18, settings.HappyHourEnd)
	assert.True(t, decimal.RequireFromString("0.5").Equal(settings.HappyHourDiscount))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPricingConfigParsesSpecials(t *testing.T) {
	svc, mock, closeDB := newSettingsServiceForTest(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT id, bar_name, tax_rate`).
		WillReturnRows(settingsRow(`{"4": 3.50, "9": 2.00}`))

	cfg, err := svc.PricingConfig()

	require.NoError(t, err)
	require.Len(t, cfg.Specials, 2)
	assert.True(t, decimal.RequireFromString("3.50").Equal(cfg.Specials[4]))
	assert.True(t, decimal.RequireFromString("2.00").Equal(cfg.Specials[9]))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPricingConfigMalformedSpecialsDegrades(t *testing.T) {
	tests := []struct {
		name     string
		specials string
	}{
		{"broken json", `{"4": `},
		{"non-numeric key", `{"wings": 3.50}`},
		{"negative price", `{"4": -1.00}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock, closeDB := newSettingsServiceForTest(t)
			defer closeDB()

			mock.ExpectQuery(`SELECT id, bar_name, tax_rate`).
				WillReturnRows(settingsRow(tt.specials))

			cfg, err := svc.PricingConfig()

			// Bad overrides never block order taking.
			require.NoError(t, err)
			assert.Empty(t, cfg.Specials)
			assert.True(t, decimal.RequireFromString("0.08").Equal(cfg.TaxRate))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUpdateSettingsValidation(t *testing.T) {
	svc, _, closeDB := newSettingsServiceForTest(t)
	defer closeDB()

	base := UpdateSettingsRequest{
		BarName:           "MidTown POS",
		TaxRate:           decimal.RequireFromString("0.08"),
		HappyHourStart:    16,
		HappyHourEnd:      18,
		HappyHourDiscount: decimal.RequireFromString("0.50"),
	}

	t.Run("negative tax rate", func(t *testing.T) {
		req := base
		req.TaxRate = decimal.RequireFromString("-0.01")
		_, err := svc.UpdateSettings(req)
		assert.ErrorIs(t, err, ErrInvalidSettings)
	})

	t.Run("discount above one", func(t *testing.T) {
		req := base
		req.HappyHourDiscount = decimal.RequireFromString("1.25")
		_, err := svc.UpdateSettings(req)
		assert.ErrorIs(t, err, ErrInvalidSettings)
	})

	t.Run("happy hour outside the day", func(t *testing.T) {
		req := base
		req.HappyHourStart = 25
		_, err := svc.UpdateSettings(req)
		assert.ErrorIs(t, err, ErrInvalidSettings)
	})

	t.Run("special key is not an item id", func(t *testing.T) {
		req := base
		req.Specials = map[string]decimal.Decimal{"wings": decimal.RequireFromString("3.50")}
		_, err := svc.UpdateSettings(req)
		assert.ErrorIs(t, err, ErrInvalidSettings)
	})
}

func TestUpdateSettingsPersists(t *testing.T) {
	svc, mock, closeDB := newSettingsServiceForTest(t)
	defer closeDB()

	mock.ExpectQuery(`INSERT INTO app_settings`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "updated_at"}).AddRow(int64(1), time.Now()))

	settings, err := svc.UpdateSettings(UpdateSettingsRequest{
		BarName:           "The Dive",
		TaxRate:           decimal.RequireFromString("0.09"),
		HappyHourStart:    15,
		HappyHourEnd:      19,
		HappyHourDiscount: decimal.RequireFromString("0.25"),
		Specials:          map[string]decimal.Decimal{"4": decimal.RequireFromString("3.50")},
	})

	require.NoError(t, err)
	assert.Equal(t, "The Dive", settings.BarName)
	assert.JSONEq(t, `{"4":"3.5"}`, settings.SpecialsJSON)
	assert.NoError(t, mock.ExpectationsWereMet())
}
