package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"barpos_backend/internal/models"
)

// SettingsRepository manages the singleton venue configuration row.
type SettingsRepository interface {
	GetSettings() (*models.AppSettings, error)
	SaveSettings(executor SQLExecutor, settings *models.AppSettings) error
}

type settingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new instance of SettingsRepository.
func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetSettings() (*models.AppSettings, error) {
	settings := &models.AppSettings{}
	query := `SELECT id, bar_name, tax_rate, happy_hour_start, happy_hour_end,
	                 happy_hour_discount, specials_json, updated_at
	          FROM app_settings
	          LIMIT 1`
	err := r.db.QueryRow(query).Scan(
		&settings.ID, &settings.BarName, &settings.TaxRate, &settings.HappyHourStart,
		&settings.HappyHourEnd, &settings.HappyHourDiscount, &settings.SpecialsJSON,
		&settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting app settings: %v", ErrDatabaseError, err)
	}
	return settings, nil
}

// SaveSettings upserts the singleton row (id is always 1).
func (r *settingsRepository) SaveSettings(executor SQLExecutor, settings *models.AppSettings) error {
	query := `
	    INSERT INTO app_settings (id, bar_name, tax_rate, happy_hour_start, happy_hour_end,
	                              happy_hour_discount, specials_json, updated_at)
	    VALUES (1, $1, $2, $3, $4, $5, $6, $7)
	    ON CONFLICT (id)
	    DO UPDATE SET bar_name = EXCLUDED.bar_name, tax_rate = EXCLUDED.tax_rate,
	                  happy_hour_start = EXCLUDED.happy_hour_start,
	                  happy_hour_end = EXCLUDED.happy_hour_end,
	                  happy_hour_discount = EXCLUDED.happy_hour_discount,
	                  specials_json = EXCLUDED.specials_json,
	                  updated_at = EXCLUDED.updated_at
	    RETURNING id, updated_at`

	settings.UpdatedAt = time.Now()
	err := executor.QueryRow(query,
		settings.BarName, settings.TaxRate, settings.HappyHourStart, settings.HappyHourEnd,
		settings.HappyHourDiscount, settings.SpecialsJSON, settings.UpdatedAt,
	).Scan(&settings.ID, &settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: saving app settings: %v", ErrDatabaseError, err)
	}
	return nil
}
