// Package market fetches the optional live observations that enrich the
// report prompt context. Everything here is best-effort: a failed source
// degrades to the report's defensive baseline lines, never to a failed run.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

const fredBaseURL = "https://api.stlouisfed.org"

// DXYSeriesID is the FRED broad dollar index series
const DXYSeriesID = "DTWEXBGS"

// Observation is a single dated value from a FRED series
type Observation struct {
	SeriesID string
	Date     string
	Value    float64
}

// FREDClient fetches series observations from the FRED API
type FREDClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewFREDClient creates a FRED client; a nil client is returned when no API
// key is configured so callers can skip the source entirely
func NewFREDClient(apiKey string, timeout time.Duration, logger zerolog.Logger) *FREDClient {
	if apiKey == "" {
		return nil
	}
	return &FREDClient{
		apiKey:     apiKey,
		baseURL:    fredBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "market").Str("source", "fred").Logger(),
	}
}

// FetchDXY returns the latest DXY observation of the current month
func (c *FREDClient) FetchDXY(ctx context.Context) (*Observation, error) {
	monthStart := time.Now().UTC().Format("2006-01") + "-01"

	params := url.Values{}
	params.Set("series_id", DXYSeriesID)
	params.Set("api_key", c.apiKey)
	params.Set("file_type", "json")
	params.Set("observation_start", monthStart)

	endpoint := c.baseURL + "/fred/series/observations?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build FRED request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("FRED request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("FRED returned %s", resp.Status)
	}

	var parsed struct {
		Observations []struct {
			Date  string `json:"date"`
			Value string `json:"value"`
		} `json:"observations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to parse FRED response: %w", err)
	}

	// Walk backwards: FRED reports missing values as "."
	for i := len(parsed.Observations) - 1; i >= 0; i-- {
		obs := parsed.Observations[i]
		value, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			continue
		}
		c.logger.Debug().
			Str("series_id", DXYSeriesID).
			Str("date", obs.Date).
			Float64("value", value).
			Msg("Fetched DXY observation")
		return &Observation{SeriesID: DXYSeriesID, Date: obs.Date, Value: value}, nil
	}

	return nil, fmt.Errorf("no usable observations for %s", DXYSeriesID)
}
