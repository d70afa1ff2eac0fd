package market

import (
	"math"
	"testing"
	"time"
)

func TestCandleValidate(t *testing.T) {
	tests := []struct {
		name    string
		candle  Candle
		wantErr bool
	}{
		{"valid bullish", Candle{Open: 10, High: 12, Low: 9, Close: 11}, false},
		{"valid doji", Candle{Open: 10, High: 10, Low: 10, Close: 10}, false},
		{"high below low", Candle{Open: 10, High: 8, Low: 9, Close: 10}, true},
		{"high below body", Candle{Open: 10, High: 10.5, Low: 9, Close: 11}, true},
		{"low above body", Candle{Open: 10, High: 12, Low: 10.5, Close: 11}, true},
		{"NaN close", Candle{Open: 10, High: 12, Low: 9, Close: math.NaN()}, true},
		{"infinite high", Candle{Open: 10, High: math.Inf(1), Low: 9, Close: 11}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.candle.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSeriesOrdering(t *testing.T) {
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	candles := []Candle{
		{Timestamp: base, Open: 10, High: 11, Low: 9, Close: 10.5},
		{Timestamp: base.Add(15 * time.Minute), Open: 10.5, High: 11.5, Low: 10, Close: 11},
	}
	if err := ValidateSeries(candles); err != nil {
		t.Fatalf("expected ordered series to validate, got %v", err)
	}

	// Swap so the second candle predates the first
	candles[1].Timestamp = base.Add(-15 * time.Minute)
	if err := ValidateSeries(candles); err == nil {
		t.Fatal("expected out-of-order series to fail validation")
	}
}

func TestHighestHighLowestLow(t *testing.T) {
	candles := []Candle{
		{High: 10, Low: 5},
		{High: 14, Low: 7},
		{High: 12, Low: 4},
		{High: 11, Low: 6},
	}

	if got := HighestHigh(candles, 0, 3); got != 14 {
		t.Errorf("HighestHigh(0,3) = %v, want 14", got)
	}
	if got := LowestLow(candles, 1, 4); got != 4 {
		t.Errorf("LowestLow(1,4) = %v, want 4", got)
	}
	if got := HighestHigh(candles, 2, 2); !math.IsNaN(got) {
		t.Errorf("empty range should be NaN, got %v", got)
	}
	if got := LowestLow(candles, -5, 2); got != 5 {
		t.Errorf("clamped LowestLow = %v, want 5", got)
	}
}

func TestAverageVolume(t *testing.T) {
	candles := []Candle{
		{Volume: 100}, {Volume: 200}, {Volume: 300}, {Volume: 400},
	}
	if got := AverageVolume(candles, 2); got != 350 {
		t.Errorf("AverageVolume(2) = %v, want 350", got)
	}
	// n larger than the window falls back to the whole series
	if got := AverageVolume(candles, 10); got != 250 {
		t.Errorf("AverageVolume(10) = %v, want 250", got)
	}
	if got := AverageVolume(nil, 5); got != 0 {
		t.Errorf("AverageVolume(nil) = %v, want 0", got)
	}
}

func TestClassifySymbol(t *testing.T) {
	tests := []struct {
		symbol string
		want   InstrumentClass
	}{
		{"BTC/USD", ClassCrypto},
		{"ETH/USD", ClassCrypto},
		{"EUR/USD", ClassForex},
		{"XAU/USD", ClassForex},
		{"USD/JPY", ClassForex},
		{"EURUSD", ClassForex},
		{"SP500", ClassIndex},
		{"QQQ", ClassIndex},
		{"XLRE", ClassIndex},
		{"AAPL", ClassStock},
		{"TSLA", ClassStock},
		{"SOL/EUR", ClassCrypto},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			if got := ClassifySymbol(tt.symbol); got != tt.want {
				t.Errorf("ClassifySymbol(%q) = %v, want %v", tt.symbol, got, tt.want)
			}
		})
	}
}

func TestPipSize(t *testing.T) {
	tests := []struct {
		symbol string
		want   float64
	}{
		{"USD/JPY", 0.01},
		{"XAU/USD", 0.1},
		{"BTC/USD", 1.0},
		{"EUR/USD", 0.0001},
	}
	for _, tt := range tests {
		if got := PipSize(tt.symbol); got != tt.want {
			t.Errorf("PipSize(%q) = %v, want %v", tt.symbol, got, tt.want)
		}
	}
}

func TestCandleBodyRange(t *testing.T) {
	c := Candle{Open: 10, High: 14, Low: 9, Close: 12}
	if c.Body() != 2 {
		t.Errorf("Body() = %v, want 2", c.Body())
	}
	if c.Range() != 5 {
		t.Errorf("Range() = %v, want 5", c.Range())
	}
	if !c.IsBullish() {
		t.Error("expected bullish candle")
	}
	bearish := Candle{Open: 12, High: 14, Low: 9, Close: 10}
	if bearish.IsBullish() {
		t.Error("expected bearish candle")
	}
}
