package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"barpos_backend/internal/finance"
	"barpos_backend/internal/models"
	"barpos_backend/internal/repositories"
	"barpos_backend/pkg/utils"

	"github.com/shopspring/decimal"
)

// ErrNothingToReport is returned when the unreported-items ledger is empty at
// close time. It is a user-correctable condition, not a system fault.
var ErrNothingToReport = errors.New("drawer is already empty")

// ZReportSuccess is the result of a successful shift close.
type ZReportSuccess struct {
	ReportID       int64          `json:"report_id"`
	TotalFormatted string         `json:"total_formatted"`
	ItemCounts     map[string]int `json:"item_counts"`
}

// DrawerPreview summarizes what a shift close would capture right now.
type DrawerPreview struct {
	LineCount      int    `json:"line_count"`
	TotalFormatted string `json:"total_formatted"`
}

// --- ZReportService Interface ---

// ZReportService runs the hard-close of a sales session: it locks every
// unreported line item from closed tabs into one immutable shift report.
type ZReportService interface {
	RunFinalZReport(ctx context.Context, managerID int64) (*ZReportSuccess, error)
	PreviewDrawer() (*DrawerPreview, error)
	GetReports() ([]models.ShiftReport, error)
	GetReportByID(reportID int64) (*models.ShiftReport, error)
}

// --- zReportService Implementation ---

type zReportService struct {
	reportRepo repositories.ReportRepository
	notifier   AnalyticsNotifier
	db         *sql.DB // For managing transactions
}

// NewZReportService creates a new instance of ZReportService.
func NewZReportService(rr repositories.ReportRepository, notifier AnalyticsNotifier, db *sql.DB) ZReportService {
	return &zReportService{
		reportRepo: rr,
		notifier:   notifier,
		db:         db,
	}
}

// RunFinalZReport closes the shift. Snapshot, report insert and line-item
// claim all run in one transaction; the snapshot takes row locks, so two
// concurrent closes cannot capture the same lines: the second blocks until
// the first commits and then finds an empty ledger. A failure anywhere before
// commit leaves no partial state.
//
// The analytics push happens after commit and is best-effort: the shift is
// closed once the claim commits, whatever the notifier does.
func (s *zReportService) RunFinalZReport(ctx context.Context, managerID int64) (*ZReportSuccess, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	lines, err := s.reportRepo.LockUnreportedClosedItems(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot unreported items: %w", err)
	}
	if len(lines) == 0 {
		return nil, ErrNothingToReport
	}

	totalLines := make([]finance.Line, 0, len(lines))
	itemCounts := make(map[string]int, len(lines))
	lineIDs := make([]int64, 0, len(lines))
	for _, line := range lines {
		totalLines = append(totalLines, finance.Line{UnitPrice: line.PriceAtSale, Quantity: line.Quantity})
		itemCounts[line.ItemName] += line.Quantity
		lineIDs = append(lineIDs, line.LineID)
	}

	// Shift revenue is the sum of frozen sale prices; tax was already settled
	// per tab at cash-out.
	revenue := finance.Totalize(totalLines, decimal.Zero).Subtotal
	now := time.Now()

	breakdown := models.ReportBreakdown{
		TotalRaw:       revenue.StringFixed(finance.MoneyScale),
		TotalFormatted: finance.FormatUSD(revenue),
		ItemCounts:     itemCounts,
		Timestamp:      now,
	}
	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report breakdown: %w", err)
	}

	report := models.ShiftReport{
		Timestamp:    now,
		TotalRevenue: revenue,
		ManagerID:    managerID,
		ReportData:   string(breakdownJSON),
		IsVerified:   true,
	}

	// Persist strictly precedes claim; both ride the same transaction so a
	// crash between them is unreachable.
	reportID, err := s.reportRepo.InsertShiftReport(tx, &report)
	if err != nil {
		return nil, fmt.Errorf("failed to persist shift report: %w", err)
	}
	if err := s.reportRepo.ClaimLineItems(tx, reportID, lineIDs); err != nil {
		return nil, fmt.Errorf("failed to claim line items for report %d: %w", reportID, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit shift report transaction: %w", err)
	}

	s.pushDailySummary(ctx, reportID, breakdown)

	return &ZReportSuccess{
		ReportID:       reportID,
		TotalFormatted: breakdown.TotalFormatted,
		ItemCounts:     itemCounts,
	}, nil
}

// pushDailySummary fires the external analytics trigger. Failures are logged
// and swallowed.
func (s *zReportService) pushDailySummary(ctx context.Context, reportID int64, breakdown models.ReportBreakdown) {
	notifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	event := DailySummaryEvent{
		ReportID:       reportID,
		TotalFormatted: breakdown.TotalFormatted,
		ItemCounts:     breakdown.ItemCounts,
		ClosedAt:       breakdown.Timestamp,
	}
	if err := s.notifier.TriggerDailySummary(notifyCtx, event); err != nil {
		utils.LogError(err, "Daily summary push failed after shift close")
	}
}

func (s *zReportService) PreviewDrawer() (*DrawerPreview, error) {
	lines, err := s.reportRepo.GetUnreportedClosedItems(s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to read unreported items: %w", err)
	}
	totalLines := make([]finance.Line, 0, len(lines))
	for _, line := range lines {
		totalLines = append(totalLines, finance.Line{UnitPrice: line.PriceAtSale, Quantity: line.Quantity})
	}
	totals := finance.Totalize(totalLines, decimal.Zero)
	return &DrawerPreview{
		LineCount:      len(lines),
		TotalFormatted: finance.FormatUSD(totals.Subtotal),
	}, nil
}

func (s *zReportService) GetReports() ([]models.ShiftReport, error) {
	return s.reportRepo.GetReports()
}

func (s *zReportService) GetReportByID(reportID int64) (*models.ShiftReport, error) {
	return s.reportRepo.GetReportByID(reportID)
}
