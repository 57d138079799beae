package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const worldBankBaseURL = "https://api.worldbank.org"

// YearValue is one yearly indicator value
type YearValue struct {
	Date  string
	Value float64
}

// WorldReserves aggregates the World Bank reserve indicators
type WorldReserves struct {
	Total *YearValue
	Gold  *YearValue
}

// WorldBankClient fetches world reserve indicators (best-effort, no API key)
type WorldBankClient struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewWorldBankClient creates a World Bank API client
func NewWorldBankClient(timeout time.Duration, logger zerolog.Logger) *WorldBankClient {
	return &WorldBankClient{
		baseURL:    worldBankBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "market").Str("source", "worldbank").Logger(),
	}
}

// FetchReserves returns the latest total and gold reserve values. The gold
// series is inconsistent upstream, so its absence is not an error.
func (c *WorldBankClient) FetchReserves(ctx context.Context) (*WorldReserves, error) {
	total, err := c.fetchIndicator(ctx, "FI.RES.TOTL.CD")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch total reserves: %w", err)
	}

	gold, err := c.fetchIndicator(ctx, "FI.RES.XGLD.CD")
	if err != nil {
		c.logger.Debug().Err(err).Msg("Gold reserves unavailable")
		gold = nil
	}

	return &WorldReserves{Total: total, Gold: gold}, nil
}

// fetchIndicator returns the most recent non-null value of a WLD indicator
func (c *WorldBankClient) fetchIndicator(ctx context.Context, indicator string) (*YearValue, error) {
	endpoint := fmt.Sprintf("%s/v2/country/WLD/indicator/%s?format=json&per_page=5", c.baseURL, indicator)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("world bank returned %s", resp.Status)
	}

	// Response shape: [metadata, rows]
	var envelope []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(envelope) < 2 {
		return nil, fmt.Errorf("unexpected response shape for %s", indicator)
	}

	var rows []struct {
		Date  string   `json:"date"`
		Value *float64 `json:"value"`
	}
	if err := json.Unmarshal(envelope[1], &rows); err != nil {
		return nil, fmt.Errorf("failed to parse rows: %w", err)
	}

	for _, row := range rows {
		if row.Value != nil {
			return &YearValue{Date: row.Date, Value: *row.Value}, nil
		}
	}

	return nil, fmt.Errorf("no non-null values for %s", indicator)
}
