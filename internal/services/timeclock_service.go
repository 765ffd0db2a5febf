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
	ErrInvalidPunch = errors.New("invalid time clock punch")
	ErrInvalidTip   = errors.New("tip amount must be positive")
)

// validNextPunch maps the last recorded event type to the punches allowed
// to follow it. An empty string key covers a user with no history.
var validNextPunch = map[string]map[string]bool{
	"":                     {models.ClockShiftStart: true},
	models.ClockShiftEnd:   {models.ClockShiftStart: true},
	models.ClockShiftStart: {models.ClockBreakStart: true, models.ClockShiftEnd: true},
	models.ClockBreakEnd:   {models.ClockBreakStart: true, models.ClockShiftEnd: true},
	models.ClockBreakStart: {models.ClockBreakEnd: true},
}

// --- Data Transfer Objects (DTOs) ---

type PunchRequest struct {
	UserID    int64  `json:"user_id" binding:"required"`
	EventType string `json:"event_type" binding:"required"`
}

type LogTipRequest struct {
	UserID int64           `json:"user_id" binding:"required"`
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Note   string          `json:"note"`
}

// TipSummary is one server's declared tips next to the house total.
type TipSummary struct {
	UserTotal     string          `json:"user_total"`
	HouseTotal    string          `json:"house_total"`
	UserTotalRaw  decimal.Decimal `json:"-"`
	HouseTotalRaw decimal.Decimal `json:"-"`
}

// --- TimeClockService Interface ---

type TimeClockService interface {
	Punch(req PunchRequest) (*models.TimeClockEntry, error)
	GetPunches(userID int64) ([]models.TimeClockEntry, error)
	LogTip(req LogTipRequest) (*models.TipLog, error)
	GetTips(userID int64) ([]models.TipLog, error)
	GetTipSummary(userID int64) (*TipSummary, error)
}

// --- timeClockService Implementation ---

type timeClockService struct {
	clockRepo repositories.TimeClockRepository
	db        *sql.DB
}

// NewTimeClockService creates a new instance of TimeClockService.
func NewTimeClockService(cr repositories.TimeClockRepository, db *sql.DB) TimeClockService {
	return &timeClockService{clockRepo: cr, db: db}
}

// Punch records a time clock event after checking it is a legal transition
// from the user's last punch. Double shift-starts and breaks outside a shift
// are rejected.
func (s *timeClockService) Punch(req PunchRequest) (*models.TimeClockEntry, error) {
	lastEvent := ""
	last, err := s.clockRepo.GetLastEntryForUser(req.UserID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to fetch last punch for user %d: %w", req.UserID, err)
	}
	if last != nil {
		lastEvent = last.EventType
	}

	allowed, known := validNextPunch[lastEvent]
	if !known || !allowed[req.EventType] {
		return nil, fmt.Errorf("%w: cannot record %s after %s", ErrInvalidPunch, req.EventType, lastEvent)
	}

	entry := &models.TimeClockEntry{
		UserID:    req.UserID,
		EventType: req.EventType,
	}
	if _, err := s.clockRepo.InsertClockEntry(s.db, entry); err != nil {
		return nil, fmt.Errorf("failed to record punch: %w", err)
	}
	return entry, nil
}

func (s *timeClockService) GetPunches(userID int64) ([]models.TimeClockEntry, error) {
	return s.clockRepo.GetEntriesForUser(userID)
}

func (s *timeClockService) LogTip(req LogTipRequest) (*models.TipLog, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidTip
	}
	tip := &models.TipLog{
		UserID: req.UserID,
		Amount: req.Amount.Round(2),
		Note:   req.Note,
	}
	if _, err := s.clockRepo.LogTip(s.db, tip); err != nil {
		return nil, fmt.Errorf("failed to log tip: %w", err)
	}
	return tip, nil
}

func (s *timeClockService) GetTips(userID int64) ([]models.TipLog, error) {
	return s.clockRepo.GetTipsForUser(userID)
}

func (s *timeClockService) GetTipSummary(userID int64) (*TipSummary, error) {
	userTotal, err := s.clockRepo.GetTotalTipsForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to total tips for user %d: %w", userID, err)
	}
	houseTotal, err := s.clockRepo.GetHouseTipsTotal()
	if err != nil {
		return nil, fmt.Errorf("failed to total house tips: %w", err)
	}
	return &TipSummary{
		UserTotal:     userTotal.StringFixed(2),
		HouseTotal:    houseTotal.StringFixed(2),
		UserTotalRaw:  userTotal,
		HouseTotalRaw: houseTotal,
	}, nil
}
