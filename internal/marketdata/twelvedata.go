// Package marketdata fetches OHLC candle series from the Twelve Data
// REST API. Series come back oldest-first, ready for the indicator
// pipeline.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ultron-engine/internal/market"
)

const timeSeriesPath = "/time_series"

// Client talks to the Twelve Data time_series endpoint. A transient
// failure is retried once after a short pause; a second failure is
// returned to the caller.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	retryDelay time.Duration
}

func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		retryDelay: time.Second,
	}
}

// timeSeriesResponse mirrors the wire format. Values arrive as strings
// and newest-first.
type timeSeriesResponse struct {
	Meta struct {
		Symbol   string `json:"symbol"`
		Interval string `json:"interval"`
	} `json:"meta"`
	Values []struct {
		Datetime string `json:"datetime"`
		Open     string `json:"open"`
		High     string `json:"high"`
		Low      string `json:"low"`
		Close    string `json:"close"`
		Volume   string `json:"volume"`
	} `json:"values"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// GetCandles fetches up to outputSize candles for symbol at the given
// interval (e.g. "15min"), oldest first.
func (c *Client) GetCandles(ctx context.Context, symbol, interval string, outputSize int) ([]market.Candle, error) {
	body, err := c.fetch(ctx, symbol, interval, outputSize)
	if err != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryDelay):
		}
		body, err = c.fetch(ctx, symbol, interval, outputSize)
		if err != nil {
			return nil, err
		}
	}

	var ts timeSeriesResponse
	if err := json.Unmarshal(body, &ts); err != nil {
		return nil, fmt.Errorf("error parsing time series: %w", err)
	}
	if ts.Status == "error" {
		return nil, fmt.Errorf("twelvedata error for %s: %s", symbol, ts.Message)
	}
	if len(ts.Values) == 0 {
		return nil, fmt.Errorf("twelvedata returned no candles for %s", symbol)
	}

	candles := make([]market.Candle, len(ts.Values))
	for i, v := range ts.Values {
		when, err := parseDatetime(v.Datetime)
		if err != nil {
			return nil, fmt.Errorf("error parsing candle time %q: %w", v.Datetime, err)
		}
		var perr error
		parse := func(field, raw string) float64 {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil && perr == nil {
				perr = fmt.Errorf("bad %s %q", field, raw)
			}
			return f
		}
		candle := market.Candle{
			Timestamp: when,
			Open:      parse("open", v.Open),
			High:      parse("high", v.High),
			Low:       parse("low", v.Low),
			Close:     parse("close", v.Close),
		}
		if v.Volume != "" { // forex series omit volume
			candle.Volume = parse("volume", v.Volume)
		}
		if perr != nil {
			return nil, fmt.Errorf("candle for %s at %s: %w", symbol, v.Datetime, perr)
		}
		if err := candle.Validate(); err != nil {
			return nil, fmt.Errorf("bad candle for %s at %s: %w", symbol, v.Datetime, err)
		}
		// Values arrive newest-first; store reversed.
		candles[len(candles)-1-i] = candle
	}

	if err := market.ValidateSeries(candles); err != nil {
		return nil, fmt.Errorf("series for %s: %w", symbol, err)
	}
	return candles, nil
}

func (c *Client) fetch(ctx context.Context, symbol, interval string, outputSize int) ([]byte, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("outputsize", strconv.Itoa(outputSize))
	params.Set("apikey", c.apiKey)

	endpoint := fmt.Sprintf("%s%s?%s", c.baseURL, timeSeriesPath, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("error building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error fetching time series: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// parseDatetime accepts both the intraday and the daily formats the
// API emits. All times are UTC.
func parseDatetime(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
