package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultSheetsBaseURL = "https://sheets.googleapis.com/v4/spreadsheets"

// SheetsSink delivers daily summaries to a Google Sheets endpoint. Disabled
// unless both the API key and sheet id are configured.
type SheetsSink struct {
	apiKey  string
	sheetID string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewSheetsSink returns the sink wrapper.
func NewSheetsSink(apiKey, sheetID, baseURL string, logger *zap.Logger) *SheetsSink {
	if baseURL == "" {
		baseURL = defaultSheetsBaseURL
	}
	return &SheetsSink{
		apiKey:  apiKey,
		sheetID: sheetID,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Enabled reports whether credentials are configured.
func (s *SheetsSink) Enabled() bool {
	return s.apiKey != "" && s.sheetID != ""
}

// Export appends the summary to the sheet. Best-effort call.
func (s *SheetsSink) Export(ctx context.Context, summary DailySummary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/values/%s:append?key=%s", s.baseURL, s.sheetID, summary.Date, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("sheets export request failed", zap.Error(err))
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		s.logger.Warn("sheets export returned non-success", zap.Int("status", resp.StatusCode))
		return fmt.Errorf("export: sheets returned status %d", resp.StatusCode)
	}
	return nil
}
