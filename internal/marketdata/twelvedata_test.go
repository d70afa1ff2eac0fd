package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const seriesBody = `{
	"meta": {"symbol": "EUR/USD", "interval": "15min"},
	"values": [
		{"datetime": "2026-03-04 10:30:00", "open": "1.0850", "high": "1.0870", "low": "1.0845", "close": "1.0860", "volume": "1200"},
		{"datetime": "2026-03-04 10:15:00", "open": "1.0840", "high": "1.0855", "low": "1.0835", "close": "1.0850", "volume": "1100"},
		{"datetime": "2026-03-04 10:00:00", "open": "1.0830", "high": "1.0845", "low": "1.0825", "close": "1.0840", "volume": "1000"}
	],
	"status": "ok"
}`

func TestGetCandlesReversesToOldestFirst(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(seriesBody))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL)
	candles, err := c.GetCandles(context.Background(), "EUR/USD", "15min", 200)
	if err != nil {
		t.Fatalf("get candles: %v", err)
	}
	if len(candles) != 3 {
		t.Fatalf("got %d candles, want 3", len(candles))
	}
	if candles[0].Close != 1.0840 || candles[2].Close != 1.0860 {
		t.Errorf("closes = %v/%v, want the series oldest first", candles[0].Close, candles[2].Close)
	}
	if !candles[0].Timestamp.Before(candles[1].Timestamp) {
		t.Error("timestamps not ascending after the reversal")
	}
	if candles[0].Volume != 1000 {
		t.Errorf("volume = %v, want 1000", candles[0].Volume)
	}
	for _, param := range []string{"symbol=EUR%2FUSD", "interval=15min", "outputsize=200", "apikey=test-key"} {
		if !strings.Contains(gotQuery, param) {
			t.Errorf("query %q missing %q", gotQuery, param)
		}
	}
}

func TestGetCandlesRetriesTransientFailure(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		w.Write([]byte(seriesBody))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL)
	c.retryDelay = time.Millisecond

	candles, err := c.GetCandles(context.Background(), "EUR/USD", "15min", 200)
	if err != nil {
		t.Fatalf("get candles: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want one retry", calls)
	}
	if len(candles) != 3 {
		t.Errorf("got %d candles, want 3", len(candles))
	}
}

func TestGetCandlesReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "error", "message": "symbol not found", "values": []}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL)
	c.retryDelay = time.Millisecond

	if _, err := c.GetCandles(context.Background(), "NOPE", "15min", 200); err == nil {
		t.Fatal("expected an error for an API error status")
	} else if !strings.Contains(err.Error(), "symbol not found") {
		t.Errorf("err = %v, want the upstream message", err)
	}
}

func TestGetCandlesRejectsMalformedNumbers(t *testing.T) {
	body := `{
		"status": "ok",
		"values": [
			{"datetime": "2026-03-04 10:00:00", "open": "garbage", "high": "1.0845", "low": "1.0825", "close": "1.0840", "volume": "1000"}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL)
	if _, err := c.GetCandles(context.Background(), "EUR/USD", "15min", 200); err == nil {
		t.Fatal("expected an error for a non-numeric price field")
	} else if !strings.Contains(err.Error(), "open") {
		t.Errorf("err = %v, want it to name the bad field", err)
	}
}

func TestGetCandlesAllowsOmittedVolume(t *testing.T) {
	// Forex series come back without a volume field.
	body := `{
		"status": "ok",
		"values": [
			{"datetime": "2026-03-04 10:00:00", "open": "1.0830", "high": "1.0845", "low": "1.0825", "close": "1.0840"}
		]
	}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL)
	candles, err := c.GetCandles(context.Background(), "EUR/USD", "15min", 200)
	if err != nil {
		t.Fatalf("get candles: %v", err)
	}
	if candles[0].Volume != 0 {
		t.Errorf("volume = %v, want 0 when omitted", candles[0].Volume)
	}
}

func TestGetCandlesRejectsEmptySeries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "ok", "values": []}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", srv.URL)
	c.retryDelay = time.Millisecond

	if _, err := c.GetCandles(context.Background(), "EUR/USD", "15min", 200); err == nil {
		t.Fatal("expected an error for an empty series")
	}
}
