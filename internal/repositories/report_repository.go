package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"barpos_backend/internal/models"

	"github.com/lib/pq"
)

// unreportedJoin is the ledger query: line items of closed tabs that no shift
// report has claimed yet, joined against the catalog for item names. It is
// shift-scoped, not server-scoped: every staff member's closed tabs appear.
const unreportedJoin = `
	SELECT tli.id, tli.tab_id, ci.name, tli.price_at_sale, tli.quantity
	FROM tab_line_items tli
	JOIN tabs t ON tli.tab_id = t.id
	JOIN menu_items ci ON tli.catalog_item_id = ci.id
	WHERE t.is_open = FALSE AND tli.report_id IS NULL
	ORDER BY tli.id`

// ReportRepository defines the interface for shift report database operations.
type ReportRepository interface {
	// GetUnreportedClosedItems reads the unreported-items ledger. Restartable,
	// read-only; the only mutation path is ClaimLineItems.
	GetUnreportedClosedItems(executor SQLExecutor) ([]models.UnreportedLine, error)

	// LockUnreportedClosedItems reads the same ledger but takes row locks on
	// the line items. Run inside the finalize transaction it makes the
	// snapshot-and-claim atomic: a concurrent finalize blocks here until the
	// first commits, then sees an empty ledger.
	LockUnreportedClosedItems(executor SQLExecutor) ([]models.UnreportedLine, error)

	InsertShiftReport(executor SQLExecutor, report *models.ShiftReport) (int64, error)

	// ClaimLineItems stamps every given line item with the report id. This is
	// the only writer of report_id in the system; a claimed line is immutable.
	ClaimLineItems(executor SQLExecutor, reportID int64, lineItemIDs []int64) error

	GetReports() ([]models.ShiftReport, error)
	GetReportByID(reportID int64) (*models.ShiftReport, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) queryUnreported(executor SQLExecutor, query string) ([]models.UnreportedLine, error) {
	lines := []models.UnreportedLine{}
	rows, err := executor.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying unreported closed items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.UnreportedLine
		if err := rows.Scan(&line.LineID, &line.TabID, &line.ItemName, &line.PriceAtSale, &line.Quantity); err != nil {
			return nil, fmt.Errorf("%w: scanning unreported line: %v", ErrDatabaseError, err)
		}
		lines = append(lines, line)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating unreported lines: %v", ErrDatabaseError, err)
	}
	return lines, nil
}

func (r *reportRepository) GetUnreportedClosedItems(executor SQLExecutor) ([]models.UnreportedLine, error) {
	return r.queryUnreported(executor, unreportedJoin)
}

func (r *reportRepository) LockUnreportedClosedItems(executor SQLExecutor) ([]models.UnreportedLine, error) {
	return r.queryUnreported(executor, unreportedJoin+` FOR UPDATE OF tli`)
}

func (r *reportRepository) InsertShiftReport(executor SQLExecutor, report *models.ShiftReport) (int64, error) {
	query := `INSERT INTO shift_reports (timestamp, total_revenue, manager_id, report_data, is_verified)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now()
	}
	err := executor.QueryRow(query,
		report.Timestamp, report.TotalRevenue, report.ManagerID, report.ReportData, report.IsVerified,
	).Scan(&report.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: inserting shift report: %v", ErrDatabaseError, err)
	}
	return report.ID, nil
}

func (r *reportRepository) ClaimLineItems(executor SQLExecutor, reportID int64, lineItemIDs []int64) error {
	if len(lineItemIDs) == 0 {
		return nil
	}
	query := `UPDATE tab_line_items SET report_id = $1 WHERE id = ANY($2) AND report_id IS NULL`
	result, err := executor.Exec(query, reportID, pq.Array(lineItemIDs))
	if err != nil {
		return fmt.Errorf("%w: claiming line items for report ID %d: %v", ErrDatabaseError, reportID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for claim of report ID %d: %v", ErrDatabaseError, reportID, err)
	}
	if rowsAffected != int64(len(lineItemIDs)) {
		// A mismatch means some line was already claimed by another report.
		// The caller runs inside a transaction and must roll back.
		return fmt.Errorf("%w: claim for report ID %d stamped %d of %d line items", ErrDatabaseError, reportID, rowsAffected, len(lineItemIDs))
	}
	return nil
}

func (r *reportRepository) GetReports() ([]models.ShiftReport, error) {
	reports := []models.ShiftReport{}
	query := `SELECT id, timestamp, total_revenue, manager_id, report_data, is_verified
	          FROM shift_reports
	          ORDER BY timestamp DESC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying shift reports: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var report models.ShiftReport
		if err := rows.Scan(
			&report.ID, &report.Timestamp, &report.TotalRevenue,
			&report.ManagerID, &report.ReportData, &report.IsVerified,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning shift report: %v", ErrDatabaseError, err)
		}
		reports = append(reports, report)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating shift reports: %v", ErrDatabaseError, err)
	}
	return reports, nil
}

func (r *reportRepository) GetReportByID(reportID int64) (*models.ShiftReport, error) {
	report := &models.ShiftReport{}
	query := `SELECT id, timestamp, total_revenue, manager_id, report_data, is_verified
	          FROM shift_reports
	          WHERE id = $1`
	err := r.db.QueryRow(query, reportID).Scan(
		&report.ID, &report.Timestamp, &report.TotalRevenue,
		&report.ManagerID, &report.ReportData, &report.IsVerified,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting shift report by ID %d: %v", ErrDatabaseError, reportID, err)
	}
	return report, nil
}
