package strategy

import (
	"strings"
	"testing"

	"ultron-engine/internal/market"
)

func TestEMATripleLong(t *testing.T) {
	candles := trendRun(nil, 100, 100, 1)

	v := NewEMATriple().Evaluate(cryptoInput(candles, ModeStandard))
	if !v.Valid {
		t.Fatalf("expected a long in a steady uptrend, got reason %q", v.Reason)
	}
	if v.EntryKind != KindEMATripleLong || v.Direction != Long {
		t.Errorf("kind/direction = %q/%v, want triple EMA long", v.EntryKind, v.Direction)
	}
	if v.Stop >= v.Entry {
		t.Errorf("stop %v not below entry %v", v.Stop, v.Entry)
	}
	riskDist := v.Entry - v.Stop
	if v.TakeProfit != v.Entry+riskDist || v.TP3 != v.Entry+3*riskDist {
		t.Errorf("ladder %v/%v does not step by the risk distance", v.TakeProfit, v.TP3)
	}
	if v.RewardRisk != 1 {
		t.Errorf("reward:risk = %v, want 1 at the first rung", v.RewardRisk)
	}
}

func TestEMATripleShort(t *testing.T) {
	candles := trendRun(nil, 100, 300, -1)

	v := NewEMATriple().Evaluate(cryptoInput(candles, ModeStandard))
	if !v.Valid {
		t.Fatalf("expected a short in a steady downtrend, got reason %q", v.Reason)
	}
	if v.EntryKind != KindEMATripleShort || v.Direction != Short {
		t.Errorf("kind/direction = %q/%v, want triple EMA short", v.EntryKind, v.Direction)
	}
	if v.Stop <= v.Entry {
		t.Errorf("stop %v not above entry %v", v.Stop, v.Entry)
	}
}

func TestEMATripleRejectsWeakTrend(t *testing.T) {
	// A zigzag: directional movement cancels out, ADX sits near zero.
	candles := make([]market.Candle, 100)
	for i := range candles {
		if i%2 == 0 {
			candles[i] = market.Candle{Open: 99, High: 103, Low: 98, Close: 102, Volume: 1000}
		} else {
			candles[i] = market.Candle{Open: 101, High: 102, Low: 97, Close: 98, Volume: 1000}
		}
	}

	v := NewEMATriple().Evaluate(cryptoInput(candles, ModeStandard))
	if v.Valid {
		t.Fatal("expected rejection in a trendless zigzag")
	}
	if !strings.Contains(v.Reason, "trend too weak") {
		t.Errorf("reason = %q, want an ADX rejection", v.Reason)
	}
}

func TestEMATripleRejectsUnstackedEMAs(t *testing.T) {
	// A strong uptrend with one sharp red bar at the end: the close
	// drops under the fast EMA while the stack itself is still bullish.
	candles := trendRun(nil, 100, 100, 1)
	last := candles[99].Close
	candles[99] = market.Candle{
		Timestamp: candles[99].Timestamp,
		Open:      last,
		High:      last + 1,
		Low:       last - 11,
		Close:     last - 10,
		Volume:    1000,
	}

	v := NewEMATriple().Evaluate(cryptoInput(candles, ModeStandard))
	if v.Valid {
		t.Fatal("expected rejection when the close leaves the stack")
	}
	if !strings.Contains(v.Reason, "not stacked") {
		t.Errorf("reason = %q, want a stacking rejection", v.Reason)
	}
}

func TestEMATripleRiskModeShrinksWindow(t *testing.T) {
	// 70 bars: short of the standard 55-EMA warmup, enough for the
	// risk-mode 34-EMA one.
	candles := trendRun(nil, 70, 100, 1)

	if v := NewEMATriple().Evaluate(cryptoInput(candles, ModeStandard)); v.Valid ||
		!strings.Contains(v.Reason, "insufficient data") {
		t.Errorf("standard mode should want more data, got valid=%t reason %q", v.Valid, v.Reason)
	}
	if v := NewEMATriple().Evaluate(cryptoInput(candles, ModeRisk)); !v.Valid {
		t.Errorf("risk mode should trade the 70-bar uptrend, got %q", v.Reason)
	}
}
