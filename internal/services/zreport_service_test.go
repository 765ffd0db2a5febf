package services

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barpos_backend/internal/repositories"
)

// recordingNotifier captures pushed events and can be told to fail.
type recordingNotifier struct {
	events []DailySummaryEvent
	err    error
}

func (n *recordingNotifier) TriggerDailySummary(_ context.Context, event DailySummaryEvent) error {
	n.events = append(n.events, event)
	return n.err
}

func newZReportServiceForTest(t *testing.T) (ZReportService, sqlmock.Sqlmock, *recordingNotifier, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	svc := NewZReportService(repositories.NewReportRepository(db), notifier, db)
	return svc, mock, notifier, func() { db.Close() }
}

func drawerRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "tab_id", "name", "price_at_sale", "quantity"}).
		AddRow(int64(11), int64(1), "Bud Light", "5.00", 1).
		AddRow(int64(12), int64(2), "Bud Light", "5.00", 1).
		AddRow(int64(13), int64(2), "Wings", "30.00", 1)
}

func TestRunFinalZReport(t *testing.T) {
	svc, mock, notifier, closeDB := newZReportServiceForTest(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT tli.id, tli.tab_id, ci.name, tli.price_at_sale, tli.quantity[\s\S]*FOR UPDATE OF tli`).
		WillReturnRows(drawerRows())
	mock.ExpectQuery(`INSERT INTO shift_reports`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec(`UPDATE tab_line_items SET report_id = \$1 WHERE id = ANY\(\$2\) AND report_id IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	result, err := svc.RunFinalZReport(context.Background(), 42)

	require.NoError(t, err)
	assert.Equal(t, int64(7), result.ReportID)
	assert.Equal(t, "$40.00", result.TotalFormatted)
	assert.Equal(t, map[string]int{"Bud Light": 2, "Wings": 1}, result.ItemCounts)
	assert.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, notifier.events, 1)
	assert.Equal(t, int64(7), notifier.events[0].ReportID)
	assert.Equal(t, "$40.00", notifier.events[0].TotalFormatted)
}

func TestRunFinalZReportEmptyDrawer(t *testing.T) {
	svc, mock, notifier, closeDB := newZReportServiceForTest(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT tli.id, tli.tab_id, ci.name, tli.price_at_sale, tli.quantity[\s\S]*FOR UPDATE OF tli`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tab_id", "name", "price_at_sale", "quantity"}))
	mock.ExpectRollback()

	result, err := svc.RunFinalZReport(context.Background(), 42)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrNothingToReport)
	// No report row, no claim, no notification.
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, notifier.events)
}

func TestRunFinalZReportClaimMismatchRollsBack(t *testing.T) {
	svc, mock, notifier, closeDB := newZReportServiceForTest(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE OF tli`).WillReturnRows(drawerRows())
	mock.ExpectQuery(`INSERT INTO shift_reports`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(8)))
	// Another report claimed one of the lines in between: only 2 of 3 stamped.
	mock.ExpectExec(`UPDATE tab_line_items SET report_id`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectRollback()

	result, err := svc.RunFinalZReport(context.Background(), 42)

	assert.Nil(t, result)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, notifier.events)
}

func TestRunFinalZReportInsertFailureRollsBack(t *testing.T) {
	svc, mock, notifier, closeDB := newZReportServiceForTest(t)
	defer closeDB()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE OF tli`).WillReturnRows(drawerRows())
	mock.ExpectQuery(`INSERT INTO shift_reports`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	result, err := svc.RunFinalZReport(context.Background(), 42)

	assert.Nil(t, result)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, notifier.events)
}

func TestRunFinalZReportNotifierFailureIsSwallowed(t *testing.T) {
	svc, mock, notifier, closeDB := newZReportServiceForTest(t)
	defer closeDB()
	notifier.err = errors.New("analytics endpoint down")

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE OF tli`).WillReturnRows(drawerRows())
	mock.ExpectQuery(`INSERT INTO shift_reports`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))
	mock.ExpectExec(`UPDATE tab_line_items SET report_id`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	result, err := svc.RunFinalZReport(context.Background(), 42)

	// The shift is closed once the claim commits, whatever the notifier does.
	require.NoError(t, err)
	assert.Equal(t, int64(9), result.ReportID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreviewDrawer(t *testing.T) {
	svc, mock, _, closeDB := newZReportServiceForTest(t)
	defer closeDB()

	mock.ExpectQuery(`SELECT tli.id, tli.tab_id, ci.name, tli.price_at_sale, tli.quantity`).
		WillReturnRows(drawerRows())

	preview, err := svc.PreviewDrawer()

	require.NoError(t, err)
	assert.Equal(t, 3, preview.LineCount)
	assert.Equal(t, "$40.00", preview.TotalFormatted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
