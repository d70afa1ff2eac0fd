package indicators

import (
	"math"
	"testing"

	"ultron-engine/internal/market"
)

func TestEMAWarmupAndValues(t *testing.T) {
	// period 3, multiplier 2/(3+1) = 0.5
	got := EMA([]float64{1, 2, 3, 4, 5}, 3)

	if !math.IsNaN(got[0]) || !math.IsNaN(got[1]) {
		t.Errorf("warmup positions should be NaN, got %v %v", got[0], got[1])
	}
	// Seed: SMA(1,2,3) = 2
	if got[2] != 2 {
		t.Errorf("seed EMA = %v, want 2", got[2])
	}
	// 4*0.5 + 2*0.5 = 3, then 5*0.5 + 3*0.5 = 4
	if got[3] != 3 {
		t.Errorf("EMA[3] = %v, want 3", got[3])
	}
	if got[4] != 4 {
		t.Errorf("EMA[4] = %v, want 4", got[4])
	}
}

func TestEMAShortInput(t *testing.T) {
	got := EMA([]float64{1, 2}, 5)
	if len(got) != 2 {
		t.Fatalf("output length = %d, want 2", len(got))
	}
	for i, v := range got {
		if !math.IsNaN(v) {
			t.Errorf("position %d should be NaN, got %v", i, v)
		}
	}
}

func TestSMA(t *testing.T) {
	got := SMA([]float64{1, 3, 5, 7}, 2)
	if !math.IsNaN(got[0]) {
		t.Errorf("SMA[0] should be NaN, got %v", got[0])
	}
	want := []float64{0, 2, 4, 6}
	for i := 1; i < len(got); i++ {
		if got[i] != want[i] {
			t.Errorf("SMA[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestCloseEMAMatchesEMA(t *testing.T) {
	candles := []market.Candle{
		{Open: 1, High: 1, Low: 1, Close: 1},
		{Open: 2, High: 2, Low: 2, Close: 2},
		{Open: 3, High: 3, Low: 3, Close: 3},
	}
	fromCandles := CloseEMA(candles, 3)
	fromSeries := EMA([]float64{1, 2, 3}, 3)
	if fromCandles[2] != fromSeries[2] {
		t.Errorf("CloseEMA = %v, EMA = %v", fromCandles[2], fromSeries[2])
	}
}
