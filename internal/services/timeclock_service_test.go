package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barpos_backend/internal/models"
	"barpos_backend/internal/repositories"
)

func newTimeClockServiceForTest(t *testing.T) (TimeClockService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return NewTimeClockService(repositories.NewTimeClockRepository(db), db), mock, func() { db.Close() }
}

func lastPunchRows(eventType string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "event_type", "timestamp"}).
		AddRow(int64(1), int64(3), eventType, time.Now())
}

func TestPunchTransitions(t *testing.T) {
	tests := []struct {
		name      string
		lastEvent string // empty means no punch history
		event     string
		wantErr   bool
	}{
		{"first punch starts a shift", "", models.ClockShiftStart, false},
		{"first punch cannot be a break", "", models.ClockBreakStart, true},
		{"shift start allows break start", models.ClockShiftStart, models.ClockBreakStart, false},
		{"shift start allows shift end", models.ClockShiftStart, models.ClockShiftEnd, false},
		{"double shift start rejected", models.ClockShiftStart, models.ClockShiftStart, true},
		{"break must be closed before shift end", models.ClockBreakStart, models.ClockShiftEnd, true},
		{"break end resumes the shift", models.ClockBreakEnd, models.ClockShiftEnd, false},
		{"no punches after shift end but a new start", models.ClockShiftEnd, models.ClockBreakStart, true},
		{"new shift after shift end", models.ClockShiftEnd, models.ClockShiftStart, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock, closeDB := newTimeClockServiceForTest(t)
			defer closeDB()

			lastQuery := mock.ExpectQuery(`SELECT id, user_id, event_type, timestamp[\s\S]*ORDER BY timestamp DESC[\s\S]*LIMIT 1`).
				WithArgs(int64(3))
			if tt.lastEvent == "" {
				lastQuery.WillReturnRows(sqlmock.NewRows([]string{"id"}))
			} else {
				lastQuery.WillReturnRows(lastPunchRows(tt.lastEvent))
			}
			if !tt.wantErr {
				mock.ExpectQuery(`INSERT INTO time_clock_entries`).
					WithArgs(int64(3), tt.event, sqlmock.AnyArg()).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(10)))
			}

			entry, err := svc.Punch(PunchRequest{UserID: 3, EventType: tt.event})

			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPunch)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.event, entry.EventType)
				assert.False(t, entry.Timestamp.IsZero())
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestLogTipRoundsToCents(t *testing.T) {
	svc, mock, closeDB := newTimeClockServiceForTest(t)
	defer closeDB()

	mock.ExpectQuery(`INSERT INTO tip_logs`).
		WithArgs(int64(3), decimal.RequireFromString("12.35"), "", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	tip, err := svc.LogTip(LogTipRequest{UserID: 3, Amount: decimal.RequireFromString("12.345")})

	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.35").Equal(tip.Amount))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogTipRejectsNonPositiveAmounts(t *testing.T) {
	svc, _, closeDB := newTimeClockServiceForTest(t)
	defer closeDB()

	for _, amount := range []string{"0", "-5.00"} {
		_, err := svc.LogTip(LogTipRequest{UserID: 3, Amount: decimal.RequireFromString(amount)})
		assert.ErrorIs(t, err, ErrInvalidTip)
	}
}

func TestGetTipSummary(t *testing.T) {
	svc, mock, closeDB := newTimeClockServiceForTest(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM tip_logs WHERE user_id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("45.50"))
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) FROM tip_logs`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow("120.00"))

	summary, err := svc.GetTipSummary(3)

	require.NoError(t, err)
	assert.Equal(t, "45.50", summary.UserTotal)
	assert.Equal(t, "120.00", summary.HouseTotal)
	assert.NoError(t, mock.ExpectationsWereMet())
}
