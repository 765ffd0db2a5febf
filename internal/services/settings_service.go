package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"barpos_backend/internal/finance"
	"barpos_backend/internal/models"
	"barpos_backend/internal/repositories"
	"barpos_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// Venue defaults applied when no settings row exists yet.
var (
	defaultTaxRate           = decimal.NewFromFloat(0.08)
	defaultHappyHourDiscount = decimal.NewFromFloat(0.50)
)

const (
	defaultHappyHourStart = 16
	defaultHappyHourEnd   = 18
)

// ErrInvalidSettings flags a structurally invalid settings update.
var ErrInvalidSettings = errors.New("invalid settings payload")

// UpdateSettingsRequest is the payload for editing venue configuration.
type UpdateSettingsRequest struct {
	BarName           string                     `json:"bar_name" binding:"required"`
	TaxRate           decimal.Decimal            `json:"tax_rate"`
	HappyHourStart    int                        `json:"happy_hour_start"`
	HappyHourEnd      int                        `json:"happy_hour_end"`
	HappyHourDiscount decimal.Decimal            `json:"happy_hour_discount"`
	Specials          map[string]decimal.Decimal `json:"specials"`
}

// --- SettingsService Interface ---

type SettingsService interface {
	GetSettings() (*models.AppSettings, error)
	UpdateSettings(req UpdateSettingsRequest) (*models.AppSettings, error)

	// PricingConfig builds a fresh pricing snapshot for one resolution.
	// Malformed stored specials degrade to an empty override map rather than
	// blocking sales.
	PricingConfig() (finance.PricingConfig, error)
}

// --- settingsService Implementation ---

type settingsService struct {
	settingsRepo repositories.SettingsRepository
	db           *sql.DB
}

// NewSettingsService creates a new instance of SettingsService.
func NewSettingsService(sr repositories.SettingsRepository, db *sql.DB) SettingsService {
	return &settingsService{settingsRepo: sr, db: db}
}

func (s *settingsService) GetSettings() (*models.AppSettings, error) {
	settings, err := s.settingsRepo.GetSettings()
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return defaultSettings(), nil
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

func (s *settingsService) UpdateSettings(req UpdateSettingsRequest) (*models.AppSettings, error) {
	if req.TaxRate.IsNegative() {
		return nil, fmt.Errorf("%w: tax rate must not be negative", ErrInvalidSettings)
	}
	if req.HappyHourDiscount.IsNegative() || req.HappyHourDiscount.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: happy hour discount must be a fraction in [0,1]", ErrInvalidSettings)
	}
	if req.HappyHourStart < 0 || req.HappyHourStart > 23 || req.HappyHourEnd < 0 || req.HappyHourEnd > 24 {
		return nil, fmt.Errorf("%w: happy hour window must use hours of day", ErrInvalidSettings)
	}
	for key, price := range req.Specials {
		if _, err := utils.StrToInt64(key); err != nil {
			return nil, fmt.Errorf("%w: special key '%s' is not an item id", ErrInvalidSettings, key)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("%w: special price for item %s must not be negative", ErrInvalidSettings, key)
		}
	}

	specialsJSON, err := json.Marshal(req.Specials)
	if err != nil {
		return nil, fmt.Errorf("%w: encoding specials: %v", ErrInvalidSettings, err)
	}

	settings := &models.AppSettings{
		BarName:           req.BarName,
		TaxRate:           req.TaxRate,
		HappyHourStart:    req.HappyHourStart,
		HappyHourEnd:      req.HappyHourEnd,
		HappyHourDiscount: req.HappyHourDiscount,
		SpecialsJSON:      string(specialsJSON),
	}
	if err := s.settingsRepo.SaveSettings(s.db, settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	return settings, nil
}

func (s *settingsService) PricingConfig() (finance.PricingConfig, error) {
	settings, err := s.GetSettings()
	if err != nil {
		return finance.PricingConfig{}, err
	}

	specials, err := parseSpecials(settings.SpecialsJSON)
	if err != nil {
		// Malformed specials must not halt order taking; resolve with the
		// override map empty and leave a trace for the operator.
		utils.LogError(err, "Stored specials are malformed, pricing without overrides")
		specials = map[int64]decimal.Decimal{}
	}

	return finance.PricingConfig{
		TaxRate:           settings.TaxRate,
		HappyHourStart:    settings.HappyHourStart,
		HappyHourEnd:      settings.HappyHourEnd,
		HappyHourDiscount: settings.HappyHourDiscount,
		Specials:          specials,
	}, nil
}

// parseSpecials validates the stored specials map at the boundary: keys must
// be item ids, prices must be non-negative decimals.
func parseSpecials(specialsJSON string) (map[int64]decimal.Decimal, error) {
	specials := map[int64]decimal.Decimal{}
	if specialsJSON == "" {
		return specials, nil
	}

	raw := map[string]decimal.Decimal{}
	if err := json.Unmarshal([]byte(specialsJSON), &raw); err != nil {
		return nil, fmt.Errorf("malformed specials payload: %w", err)
	}
	for key, price := range raw {
		itemID, err := utils.StrToInt64(key)
		if err != nil {
			return nil, fmt.Errorf("special key '%s' is not an item id", key)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("special price for item %d is negative", itemID)
		}
		specials[itemID] = price
	}
	return specials, nil
}

func defaultSettings() *models.AppSettings {
	return &models.AppSettings{
		ID:                1,
		BarName:           "MidTown POS",
		TaxRate:           defaultTaxRate,
		HappyHourStart:    defaultHappyHourStart,
		HappyHourEnd:      defaultHappyHourEnd,
		HappyHourDiscount: defaultHappyHourDiscount,
		SpecialsJSON:      "{}",
	}
}
