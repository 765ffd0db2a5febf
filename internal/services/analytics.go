package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"barpos_backend/pkg/utils"

	"github.com/google/uuid"
)

// DailySummaryEvent is the payload pushed to the external analytics trigger
// after a shift close. It carries enough for the downstream summary job; the
// financial record of truth stays local.
type DailySummaryEvent struct {
	EventID        string         `json:"event_id"`
	ReportID       int64          `json:"report_id"`
	TotalFormatted string         `json:"total_formatted"`
	ItemCounts     map[string]int `json:"item_counts"`
	ClosedAt       time.Time      `json:"closed_at"`
}

// AnalyticsNotifier is the one-way hook to the external analytics trigger.
// Calls are best-effort: the Finalizer logs and swallows failures, they never
// affect the outcome of a shift close.
type AnalyticsNotifier interface {
	TriggerDailySummary(ctx context.Context, event DailySummaryEvent) error
}

// httpAnalyticsNotifier posts summary events to a configured endpoint.
type httpAnalyticsNotifier struct {
	endpoint string
	client   *http.Client
}

// NewHTTPAnalyticsNotifier creates a notifier posting to the given endpoint.
func NewHTTPAnalyticsNotifier(endpoint string, timeout time.Duration) AnalyticsNotifier {
	return &httpAnalyticsNotifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (n *httpAnalyticsNotifier) TriggerDailySummary(ctx context.Context, event DailySummaryEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding daily summary event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building daily summary request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting daily summary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("daily summary endpoint returned status %d", resp.StatusCode)
	}
	utils.LogDebug("Daily summary pushed", map[string]interface{}{"event_id": event.EventID, "report_id": event.ReportID})
	return nil
}

// nopAnalyticsNotifier is used when no analytics endpoint is configured.
type nopAnalyticsNotifier struct{}

// NewNopAnalyticsNotifier returns a notifier that does nothing.
func NewNopAnalyticsNotifier() AnalyticsNotifier {
	return nopAnalyticsNotifier{}
}

func (nopAnalyticsNotifier) TriggerDailySummary(context.Context, DailySummaryEvent) error {
	return nil
}
