package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"barpos_backend/internal/models"

	"github.com/shopspring/decimal"
)

// TimeClockRepository covers the staff time clock and tip log tables.
type TimeClockRepository interface {
	// Time clock methods
	InsertClockEntry(executor SQLExecutor, entry *models.TimeClockEntry) (int64, error)
	GetLastEntryForUser(userID int64) (*models.TimeClockEntry, error)
	GetEntriesForUser(userID int64) ([]models.TimeClockEntry, error)

	// Tip methods
	LogTip(executor SQLExecutor, tip *models.TipLog) (int64, error)
	GetTipsForUser(userID int64) ([]models.TipLog, error)
	GetTotalTipsForUser(userID int64) (decimal.Decimal, error)
	GetHouseTipsTotal() (decimal.Decimal, error)
}

type timeClockRepository struct {
	db *sql.DB
}

// NewTimeClockRepository creates a new instance of TimeClockRepository.
func NewTimeClockRepository(db *sql.DB) TimeClockRepository {
	return &timeClockRepository{db: db}
}

// --- Time Clock Methods ---

func (r *timeClockRepository) InsertClockEntry(executor SQLExecutor, entry *models.TimeClockEntry) (int64, error) {
	query := `INSERT INTO time_clock_entries (user_id, event_type, timestamp)
	          VALUES ($1, $2, $3)
	          RETURNING id`
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	err := executor.QueryRow(query, entry.UserID, entry.EventType, entry.Timestamp).Scan(&entry.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: inserting time clock entry: %v", ErrDatabaseError, err)
	}
	return entry.ID, nil
}

func (r *timeClockRepository) GetLastEntryForUser(userID int64) (*models.TimeClockEntry, error) {
	entry := &models.TimeClockEntry{}
	query := `SELECT id, user_id, event_type, timestamp
	          FROM time_clock_entries
	          WHERE user_id = $1
	          ORDER BY timestamp DESC
	          LIMIT 1`
	err := r.db.QueryRow(query, userID).Scan(&entry.ID, &entry.UserID, &entry.EventType, &entry.Timestamp)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting last clock entry for user ID %d: %v", ErrDatabaseError, userID, err)
	}
	return entry, nil
}

func (r *timeClockRepository) GetEntriesForUser(userID int64) ([]models.TimeClockEntry, error) {
	entries := []models.TimeClockEntry{}
	query := `SELECT id, user_id, event_type, timestamp
	          FROM time_clock_entries
	          WHERE user_id = $1
	          ORDER BY timestamp DESC`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying clock entries for user ID %d: %v", ErrDatabaseError, userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry models.TimeClockEntry
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.EventType, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: scanning clock entry: %v", ErrDatabaseError, err)
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating clock entries: %v", ErrDatabaseError, err)
	}
	return entries, nil
}

// --- Tip Methods ---

func (r *timeClockRepository) LogTip(executor SQLExecutor, tip *models.TipLog) (int64, error) {
	query := `INSERT INTO tip_logs (user_id, amount, note, timestamp)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`
	if tip.Timestamp.IsZero() {
		tip.Timestamp = time.Now()
	}
	err := executor.QueryRow(query, tip.UserID, tip.Amount, tip.Note, tip.Timestamp).Scan(&tip.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: logging tip for user ID %d: %v", ErrDatabaseError, tip.UserID, err)
	}
	return tip.ID, nil
}

func (r *timeClockRepository) GetTipsForUser(userID int64) ([]models.TipLog, error) {
	tips := []models.TipLog{}
	query := `SELECT id, user_id, amount, note, timestamp
	          FROM tip_logs
	          WHERE user_id = $1
	          ORDER BY timestamp DESC`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying tips for user ID %d: %v", ErrDatabaseError, userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var tip models.TipLog
		if err := rows.Scan(&tip.ID, &tip.UserID, &tip.Amount, &tip.Note, &tip.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: scanning tip log: %v", ErrDatabaseError, err)
		}
		tips = append(tips, tip)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating tip logs: %v", ErrDatabaseError, err)
	}
	return tips, nil
}

func (r *timeClockRepository) GetTotalTipsForUser(userID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `SELECT COALESCE(SUM(amount), 0) FROM tip_logs WHERE user_id = $1`
	if err := r.db.QueryRow(query, userID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("%w: totaling tips for user ID %d: %v", ErrDatabaseError, userID, err)
	}
	return total, nil
}

func (r *timeClockRepository) GetHouseTipsTotal() (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `SELECT COALESCE(SUM(amount), 0) FROM tip_logs`
	if err := r.db.QueryRow(query).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("%w: totaling house tips: %v", ErrDatabaseError, err)
	}
	return total, nil
}
