package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clock event types for time_clock_entries.
const (
	ClockShiftStart = "SHIFT_START"
	ClockShiftEnd   = "SHIFT_END"
	ClockBreakStart = "BREAK_START"
	ClockBreakEnd   = "BREAK_END"
)

// TimeClockEntry is one punch on the staff time clock.
type TimeClockEntry struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	EventType string    `json:"event_type" db:"event_type"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// TipLog records a declared tip for a server.
type TipLog struct {
	ID        int64           `json:"id" db:"id"`
	UserID    int64           `json:"user_id" db:"user_id"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	Note      string          `json:"note" db:"note"`
	Timestamp time.Time       `json:"timestamp" db:"timestamp"`
}
